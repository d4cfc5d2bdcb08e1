package sfs

import (
	"fmt"

	"go.uber.org/zap"
)

// allocateBlock returns the first free data block, scanning from the end
// of the reserved range. The bitmap is persisted before the index is
// handed out; nothing is mutated when the image is full.
func (e *engine) allocateBlock() (blockRef, error) {
	for b := firstDataBlock; b < int(e.layout.blockCount); b++ {
		if e.blockBitmap[b] {
			continue
		}

		e.blockBitmap[b] = true
		if err := e.flushBlockBitmap(); err != nil {
			e.blockBitmap[b] = false
			return 0, err
		}

		e.log.Debug("block allocated", zap.Int("block", b))

		return blockRef(b), nil
	}

	return 0, fmt.Errorf("out of data blocks: %w", ErrNoSpace)
}

// freeBlock returns a data block to the free pool and persists the bitmap.
// Freeing a reserved or out-of-range block is a caller bug, reported as
// ErrInvalidArgument without touching the bitmap. The allocator does not
// track double frees; callers own that invariant.
func (e *engine) freeBlock(ref blockRef) error {
	if !e.layout.validBlock(uint16(ref)) {
		return fmt.Errorf("cannot free block %d: %w", ref, ErrInvalidArgument)
	}

	e.blockBitmap[ref] = false
	if err := e.flushBlockBitmap(); err != nil {
		return err
	}

	e.log.Debug("block freed", zap.Uint16("block", uint16(ref)))

	return nil
}

// allocateInode returns the first free inode index, scanning from 1: index
// 0 is the root directory and permanently reserved.
func (e *engine) allocateInode() (uint16, error) {
	for i := 1; i < int(e.layout.inodeCount); i++ {
		if e.inodeBitmap[i] {
			continue
		}

		e.inodeBitmap[i] = true
		if err := e.flushInodeBitmap(); err != nil {
			e.inodeBitmap[i] = false
			return 0, err
		}

		e.log.Debug("inode allocated", zap.Int("inode", i))

		return uint16(i), nil
	}

	return 0, fmt.Errorf("out of inodes: %w", ErrNoSpace)
}

// freeInode returns an inode to the free pool and persists the bitmap.
// The root inode can never be freed.
func (e *engine) freeInode(idx uint16) error {
	if idx == RootInode || !e.layout.validInode(idx) {
		return fmt.Errorf("cannot free inode %d: %w", idx, ErrInvalidArgument)
	}

	e.inodeBitmap[idx] = false
	if err := e.flushInodeBitmap(); err != nil {
		return err
	}

	e.log.Debug("inode freed", zap.Uint16("inode", idx))

	return nil
}

// flushBlockBitmap persists the block bitmap to its metadata block.
func (e *engine) flushBlockBitmap() error {
	if err := e.writeBlock(blockBitmapBlock, encodeBitmap(e.blockBitmap)); err != nil {
		return fmt.Errorf("failed to flush block bitmap: %w", err)
	}

	return nil
}

// flushInodeBitmap persists the inode bitmap to its metadata block.
func (e *engine) flushInodeBitmap() error {
	if err := e.writeBlock(inodeBitmapBlock, encodeBitmap(e.inodeBitmap)); err != nil {
		return fmt.Errorf("failed to flush inode bitmap: %w", err)
	}

	return nil
}
