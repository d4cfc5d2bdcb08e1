package sfs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Image provides the public API over one mounted disk image. All methods
// operate on inode indices; names are resolved one directory at a time, so
// callers walk paths themselves (typically via ChangeDir). An Image serves
// a single logical session: no method may be called concurrently with
// another.
type Image struct {
	eng  *engine
	disk diskBackend

	imagePath  string
	blockCount uint16
	inodeCount uint16
	log        *zap.Logger
}

// New creates and formats a fresh image file with the configured geometry,
// then mounts it. The file is created or truncated at the configured path.
func New(opts ...ImageOption) (*Image, error) {
	img := &Image{
		blockCount: maxBlockCount,
		inodeCount: maxInodeCount,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(img)
	}

	if img.imagePath == "" {
		return nil, fmt.Errorf("image path is required: %w", ErrInvalidArgument)
	}

	l, err := newLayout(superblock{BlockCount: img.blockCount, InodeCount: img.inodeCount})
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(img.imagePath)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating directory for image %q: %w", img.imagePath, err)
		}
	}

	f, err := os.OpenFile(img.imagePath, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening image file %q: %w", img.imagePath, err)
	}

	if err := f.Truncate(l.imageSize()); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("truncating image file %q to %d bytes: %w", img.imagePath, l.imageSize(), err)
	}

	img.disk = &fileBackend{f: f}
	img.eng = newEngine(img.disk, l, img.log)

	if err := img.eng.initFilesystem(); err != nil {
		_ = img.disk.close()
		return nil, fmt.Errorf("failed to format image: %w", err)
	}

	return img, nil
}

// Open mounts an existing image. The superblock is read once to recover
// the geometry; both bitmaps and the inode table are loaded into memory
// and the permanent reservations are verified.
func Open(opts ...ImageOption) (*Image, error) {
	img := &Image{log: zap.NewNop()}
	for _, opt := range opts {
		opt(img)
	}

	if img.imagePath == "" {
		return nil, fmt.Errorf("image path is required: %w", ErrInvalidArgument)
	}

	f, err := os.OpenFile(img.imagePath, os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening image file %q: %w", img.imagePath, err)
	}

	img.disk = &fileBackend{f: f}

	raw := make([]byte, BlockSize)
	if err := img.disk.readAt(raw, 0); err != nil {
		_ = img.disk.close()
		return nil, fmt.Errorf("failed to read superblock: %w", err)
	}

	sb, err := decodeSuperblock(raw)
	if err != nil {
		_ = img.disk.close()
		return nil, err
	}

	l, err := newLayout(sb)
	if err != nil {
		_ = img.disk.close()
		return nil, fmt.Errorf("superblock geometry: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = img.disk.close()
		return nil, fmt.Errorf("failed to stat image %q: %w", img.imagePath, err)
	}
	if info.Size() < l.imageSize() {
		_ = img.disk.close()
		return nil, corruptf("image is %d bytes, superblock claims %d blocks", info.Size(), sb.BlockCount)
	}

	img.blockCount = sb.BlockCount
	img.inodeCount = sb.InodeCount
	img.eng = newEngine(img.disk, l, img.log)

	if err := img.eng.loadState(); err != nil {
		_ = img.disk.close()
		return nil, err
	}

	return img, nil
}

// List returns the entries of a directory in page order then slot order.
func (im *Image) List(dirInode uint16) ([]EntryInfo, error) {
	return im.eng.listDirEntries(dirInode)
}

// ChangeDir resolves name inside a directory and returns the target inode
// index. ErrTypeMismatch is returned when the entry names a file.
func (im *Image) ChangeDir(dirInode uint16, name string) (uint16, error) {
	target, _, err := im.eng.lookupEntry(dirInode, name)
	if err != nil {
		return 0, err
	}

	if _, err := im.eng.requireKind(target, kindDirectory); err != nil {
		return 0, err
	}

	return target, nil
}

// MakeDir creates an empty directory entry under the given parent.
// Directory pages are allocated lazily on first insertion, so a fresh
// directory consumes one inode and no data blocks.
func (im *Image) MakeDir(dirInode uint16, name string) (uint16, error) {
	return im.createObject(dirInode, name, kindDirectory)
}

// CreateFile creates an empty file entry under the given parent. Content
// is written separately with WriteFile.
func (im *Image) CreateFile(dirInode uint16, name string) (uint16, error) {
	return im.createObject(dirInode, name, kindFile)
}

// createObject allocates and records an inode of the given kind, then
// links it into the parent directory. The inode is released again if the
// directory insertion fails, so a full directory does not leak inodes.
func (im *Image) createObject(dirInode uint16, name string, kind inodeKind) (uint16, error) {
	if err := validateName(name); err != nil {
		return 0, err
	}

	if _, _, err := im.eng.lookupEntry(dirInode, name); err == nil {
		return 0, fmt.Errorf("entry %q: %w", name, ErrExists)
	} else if !errors.Is(err, ErrNotFound) {
		return 0, err
	}

	inodeNum, err := im.eng.allocateInode()
	if err != nil {
		return 0, err
	}

	if err := im.eng.writeInode(inodeNum, inodeRecord{Kind: kind}); err != nil {
		_ = im.eng.freeInode(inodeNum)
		return 0, err
	}

	if err := im.eng.addDirEntry(dirInode, name, inodeNum); err != nil {
		_ = im.eng.freeInode(inodeNum)
		return 0, err
	}

	im.log.Debug("object created",
		zap.String("name", name),
		zap.Uint16("inode", inodeNum),
		zap.String("kind", kind.String()))

	return inodeNum, nil
}

// WriteFile appends content to a file starting at its first unassigned
// pointer slot. See the File Content Engine contract: the returned count
// is what reached the image, and ErrPartialWrite signals truncation at the
// three-block cap or at disk exhaustion.
func (im *Image) WriteFile(fileInode uint16, data []byte) (int, error) {
	return im.eng.writeFileContent(fileInode, data)
}

// ReadFile returns a file's whole content as a snapshot.
func (im *Image) ReadFile(fileInode uint16) ([]byte, error) {
	return im.eng.readFileContent(fileInode)
}

// Remove deletes the named entry of a directory and recursively reclaims
// every block and inode of the subtree behind it.
func (im *Image) Remove(dirInode uint16, name string) error {
	return im.eng.removeEntry(dirInode, name)
}

// Stats returns the free block and free inode counts, computed by
// re-scanning both bitmap blocks from the image rather than trusting the
// in-memory mirrors.
func (im *Image) Stats() (freeBlocks, freeInodes int, err error) {
	freeBlocks, err = im.eng.countFree(blockBitmapBlock, int(im.blockCount))
	if err != nil {
		return 0, 0, err
	}

	freeInodes, err = im.eng.countFree(inodeBitmapBlock, int(im.inodeCount))
	if err != nil {
		return 0, 0, err
	}

	return freeBlocks, freeInodes, nil
}

// Save ensures every written block is durable on disk.
func (im *Image) Save() error {
	if err := im.disk.sync(); err != nil {
		return fmt.Errorf("failed to sync image %q: %w", im.imagePath, err)
	}

	return nil
}

// Close releases the backing file. It is safe to call Close multiple
// times.
func (im *Image) Close() error {
	if im.disk == nil {
		return nil
	}

	if err := im.disk.close(); err != nil {
		return fmt.Errorf("failed to close image %q: %w", im.imagePath, err)
	}

	im.disk = nil

	return nil
}
