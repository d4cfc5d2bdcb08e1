// Package sfs implements a small block-structured file system engine over a
// single fixed-capacity disk image. The image is divided into 1024-byte
// blocks: a superblock, one block each for the block and inode bitmaps, one
// block holding the inode table, and data blocks. On top of that layout the
// engine maintains a hierarchical namespace of directories and files with
// first-fit bitmap allocation, fixed-size directory pages, and up to three
// direct data blocks per file.
//
// The main entry points are New, which formats a fresh image, and Open,
// which mounts an existing one. Both return an Image whose methods operate
// on inode indices resolved one directory at a time.
//
// Example usage:
//
//	img, err := sfs.New(sfs.WithImagePath("disk.sfs"), sfs.WithBlockCount(100))
//	if err != nil {
//		panic(err)
//	}
//	defer img.Close()
//
//	docs, _ := img.MakeDir(sfs.RootInode, "docs")
//	note, _ := img.CreateFile(docs, "note.txt")
//	img.WriteFile(note, []byte("hello"))
package sfs

const (
	// BlockSize is the fixed size of every block in the image.
	BlockSize = 1024

	// Metadata block positions. These four blocks are permanently
	// reserved; the allocator never hands them out.
	superblockBlock  = 0
	blockBitmapBlock = 1
	inodeBitmapBlock = 2
	inodeTableBlock  = 3
	firstDataBlock   = 4

	// RootInode is the inode index of the root directory, created at
	// format time and never destroyed.
	RootInode = 0

	// Inode geometry
	pointersPerInode = 3
	inodeSlotSize    = 8 // 2-char kind tag + three 2-digit block indices

	// Directory page geometry
	entriesPerPage = 4
	entrySize      = 256 // used flag + 252-byte name field + 3-digit inode
	nameFieldSize  = 252

	// MaxNameLen is the longest entry name the on-disk format can hold:
	// the 252-byte name field minus its NUL terminator.
	MaxNameLen = nameFieldSize - 1

	// MaxFileSize is the hard cap on file content: three direct blocks.
	MaxFileSize = pointersPerInode * BlockSize

	// Geometry limits. Inode pointer fields are two ASCII digits, so
	// only blocks 0..99 are addressable; the inode table must fit in a
	// single block.
	maxBlockCount = 100
	maxInodeCount = BlockSize / inodeSlotSize

	// contentTerminator marks the first byte past a file's logical end
	// within its final partially-filled block. Content length is never
	// stored explicitly.
	contentTerminator = 0x00
)

// Kind tags as stored in the inode table.
const (
	kindTagDirectory = "DI"
	kindTagFile      = "FI"
)

// inodeKind identifies what an inode describes.
type inodeKind uint8

const (
	kindDirectory inodeKind = iota
	kindFile
)

func (k inodeKind) String() string {
	if k == kindDirectory {
		return "directory"
	}
	return "file"
}

// blockRef names a data block owned by an inode pointer slot. The zero
// value means the slot is unassigned: block 0 holds the superblock and can
// never be issued by the allocator, so it doubles as the sentinel.
type blockRef uint16

// assigned reports whether the slot references a data block.
func (r blockRef) assigned() bool { return r != 0 }

// superblock holds the image geometry, fixed for the lifetime of an image
// and read once at mount.
type superblock struct {
	BlockCount uint16
	InodeCount uint16
}

// inodeRecord is the decoded form of one 8-byte inode table slot. A file's
// assigned pointers are contiguous from slot 0 and hold bytes in write
// order; a directory's assigned pointers each reference one directory page.
// Whether the record is live is tracked only by the inode bitmap.
type inodeRecord struct {
	Kind   inodeKind
	Blocks [pointersPerInode]blockRef
}

// dirEntry is the decoded form of one 256-byte directory entry slot.
type dirEntry struct {
	Used  bool
	Name  string
	Inode uint16
}

// dirPage is one data block formatted as four directory entries.
type dirPage [entriesPerPage]dirEntry

// entryAddr locates a directory entry: which pointer slot of the directory
// inode, which page block, and which slot within the page.
type entryAddr struct {
	ptrSlot int
	page    blockRef
	slot    int
}

// EntryKind is the public kind of a directory entry.
type EntryKind uint8

const (
	// KindDirectory marks an entry naming a directory.
	KindDirectory EntryKind = iota
	// KindFile marks an entry naming a regular file.
	KindFile
)

func (k EntryKind) String() string {
	if k == KindDirectory {
		return "directory"
	}
	return "file"
}

// EntryInfo describes one directory entry as returned by List.
type EntryInfo struct {
	Name  string
	Kind  EntryKind
	Inode uint16
}
