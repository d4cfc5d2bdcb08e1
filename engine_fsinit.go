package sfs

import (
	"go.uber.org/zap"
)

// initFilesystem writes a freshly formatted image: the ASCII superblock,
// both bitmaps with their permanent reservations, and an inode table whose
// slot 0 holds the root directory with every pointer unassigned. The data
// region is left zero-filled. The engine's in-memory mirrors are
// initialized to match, so the engine is mounted once this returns.
func (e *engine) initFilesystem() error {
	sb := superblock{
		BlockCount: e.layout.blockCount,
		InodeCount: e.layout.inodeCount,
	}

	if err := e.writeBlock(superblockBlock, encodeSuperblock(sb)); err != nil {
		return err
	}

	e.blockBitmap = make([]bool, e.layout.blockCount)
	for b := 0; b < firstDataBlock; b++ {
		e.blockBitmap[b] = true
	}

	if err := e.flushBlockBitmap(); err != nil {
		return err
	}

	e.inodeBitmap = make([]bool, e.layout.inodeCount)
	e.inodeBitmap[RootInode] = true

	if err := e.flushInodeBitmap(); err != nil {
		return err
	}

	e.inodeTable = make([]byte, BlockSize)
	if err := e.writeInode(RootInode, inodeRecord{Kind: kindDirectory}); err != nil {
		return err
	}

	e.log.Debug("filesystem formatted",
		zap.Uint16("blocks", e.layout.blockCount),
		zap.Uint16("inodes", e.layout.inodeCount))

	return nil
}
