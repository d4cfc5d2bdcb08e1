package sfs

import (
	"fmt"
)

// layout holds the image geometry derived from the superblock. Unlike
// larger filesystems there are no block groups: the four metadata blocks
// sit at the front of the image and everything after them is data.
type layout struct {
	blockCount uint16
	inodeCount uint16
}

// newLayout validates superblock geometry and returns the layout.
// The block bitmap, inode bitmap and inode table must each fit in a single
// block, and every block must be addressable by a two-digit pointer field.
func newLayout(sb superblock) (layout, error) {
	if sb.BlockCount <= firstDataBlock {
		return layout{}, fmt.Errorf("block count %d leaves no data blocks: %w", sb.BlockCount, ErrInvalidArgument)
	}

	if sb.BlockCount > maxBlockCount {
		return layout{}, fmt.Errorf("block count %d exceeds maximum %d: %w", sb.BlockCount, maxBlockCount, ErrInvalidArgument)
	}

	if sb.InodeCount < 1 || sb.InodeCount > maxInodeCount {
		return layout{}, fmt.Errorf("inode count %d outside 1..%d: %w", sb.InodeCount, maxInodeCount, ErrInvalidArgument)
	}

	return layout{blockCount: sb.BlockCount, inodeCount: sb.InodeCount}, nil
}

// blockOffset returns the absolute byte offset of a block.
func (l layout) blockOffset(block uint16) int64 {
	return int64(block) * BlockSize
}

// imageSize returns the total image size in bytes.
func (l layout) imageSize() int64 {
	return int64(l.blockCount) * BlockSize
}

// validBlock reports whether block is a legal data block index.
func (l layout) validBlock(block uint16) bool {
	return block >= firstDataBlock && block < l.blockCount
}

// validInode reports whether idx is within the inode table.
func (l layout) validInode(idx uint16) bool {
	return idx < l.inodeCount
}
