package sfs

import (
	"fmt"

	"go.uber.org/zap"
)

// engine is the context object shared by every operation: the disk backend,
// the image geometry, and in-memory mirrors of both bitmaps and the raw
// inode table block. Mirrors are flushed to the image synchronously within
// the call that mutates them; there is no write-back delay. The engine
// serves one logical session at a time and provides no locking.
type engine struct {
	disk   diskBackend
	layout layout

	blockBitmap []bool
	inodeBitmap []bool
	inodeTable  []byte // raw table block, decoded per record on access

	log *zap.Logger
}

// newEngine constructs an engine over a backend whose image already carries
// the given geometry. Bitmaps and the inode table are not loaded; callers
// either format (initFilesystem) or mount (loadState) next.
func newEngine(disk diskBackend, l layout, log *zap.Logger) *engine {
	if log == nil {
		log = zap.NewNop()
	}

	return &engine{
		disk:   disk,
		layout: l,
		log:    log,
	}
}

// readBlock reads one whole block from the image.
func (e *engine) readBlock(block uint16) ([]byte, error) {
	buf := make([]byte, BlockSize)
	if err := e.disk.readAt(buf, e.layout.blockOffset(block)); err != nil {
		return nil, fmt.Errorf("failed to read block %d: %w", block, err)
	}

	return buf, nil
}

// writeBlock writes one whole block to the image.
func (e *engine) writeBlock(block uint16, buf []byte) error {
	if err := e.disk.writeAt(buf, e.layout.blockOffset(block)); err != nil {
		return fmt.Errorf("failed to write block %d: %w", block, err)
	}

	return nil
}

// loadState reads both bitmaps and the inode table into memory and checks
// the permanent reservations: blocks 0..3 and inode 0 must be marked
// allocated in any well-formed image.
func (e *engine) loadState() error {
	raw, err := e.readBlock(blockBitmapBlock)
	if err != nil {
		return err
	}

	e.blockBitmap, err = decodeBitmap(raw, int(e.layout.blockCount))
	if err != nil {
		return fmt.Errorf("block bitmap: %w", err)
	}

	raw, err = e.readBlock(inodeBitmapBlock)
	if err != nil {
		return err
	}

	e.inodeBitmap, err = decodeBitmap(raw, int(e.layout.inodeCount))
	if err != nil {
		return fmt.Errorf("inode bitmap: %w", err)
	}

	for b := 0; b < firstDataBlock; b++ {
		if !e.blockBitmap[b] {
			return corruptf("reserved block %d is marked free", b)
		}
	}

	if !e.inodeBitmap[RootInode] {
		return corruptf("root inode is marked free")
	}

	e.inodeTable, err = e.readBlock(inodeTableBlock)
	if err != nil {
		return err
	}

	root, err := e.readInode(RootInode)
	if err != nil {
		return err
	}
	if root.Kind != kindDirectory {
		return corruptf("root inode is not a directory")
	}

	e.log.Debug("image state loaded",
		zap.Uint16("blocks", e.layout.blockCount),
		zap.Uint16("inodes", e.layout.inodeCount))

	return nil
}

// countFree re-scans a bitmap block straight from the image, bypassing the
// in-memory mirror. Stats uses this as a self-check.
func (e *engine) countFree(block uint16, n int) (int, error) {
	raw, err := e.readBlock(block)
	if err != nil {
		return 0, err
	}

	bits, err := decodeBitmap(raw, n)
	if err != nil {
		return 0, err
	}

	free := 0
	for _, set := range bits {
		if !set {
			free++
		}
	}

	return free, nil
}
