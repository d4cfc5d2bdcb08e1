package sfs

import "go.uber.org/zap"

// ImageOption is a functional option for configuring Image creation.
type ImageOption func(*Image)

// WithImagePath sets the image file path.
func WithImagePath(imagePath string) ImageOption {
	return func(i *Image) {
		i.imagePath = imagePath
	}
}

// WithBlockCount sets the total block count for a new image. Ignored by
// Open, which reads the geometry from the superblock.
func WithBlockCount(blocks int) ImageOption {
	return func(i *Image) {
		i.blockCount = uint16(blocks)
	}
}

// WithInodeCount sets the inode table size for a new image. Ignored by
// Open.
func WithInodeCount(inodes int) ImageOption {
	return func(i *Image) {
		i.inodeCount = uint16(inodes)
	}
}

// WithLogger attaches a zap logger; engine internals emit debug events on
// allocation, freeing, and namespace mutation. Defaults to a nop logger.
func WithLogger(log *zap.Logger) ImageOption {
	return func(i *Image) {
		if log != nil {
			i.log = log
		}
	}
}
