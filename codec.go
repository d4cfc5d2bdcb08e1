package sfs

import (
	"fmt"
)

// The on-disk format is a text hybrid: counters, bitmaps and index fields
// are stored as zero-padded ASCII digits. Everything here decodes those
// fields into integer types at the storage boundary so no string-typed
// index travels through engine logic.

// putDigits writes v into dst as zero-padded ASCII digits filling dst.
func putDigits(dst []byte, v uint16) {
	for i := len(dst) - 1; i >= 0; i-- {
		dst[i] = '0' + byte(v%10)
		v /= 10
	}
}

// parseDigits reads a zero-padded ASCII digit field.
func parseDigits(src []byte) (uint16, error) {
	var v uint16

	for _, c := range src {
		if c < '0' || c > '9' {
			return 0, corruptf("non-digit byte %#02x in numeric field %q", c, src)
		}

		v = v*10 + uint16(c-'0')
	}

	return v, nil
}

// encodeSuperblock renders the superblock into a full block: a 3-digit
// block count, a 3-digit inode count, and zero padding.
func encodeSuperblock(sb superblock) []byte {
	block := make([]byte, BlockSize)
	putDigits(block[0:3], sb.BlockCount)
	putDigits(block[3:6], sb.InodeCount)

	return block
}

// decodeSuperblock parses the superblock from its raw block.
func decodeSuperblock(block []byte) (superblock, error) {
	blockCount, err := parseDigits(block[0:3])
	if err != nil {
		return superblock{}, fmt.Errorf("superblock block count: %w", err)
	}

	inodeCount, err := parseDigits(block[3:6])
	if err != nil {
		return superblock{}, fmt.Errorf("superblock inode count: %w", err)
	}

	return superblock{BlockCount: blockCount, InodeCount: inodeCount}, nil
}

// encodeBitmap renders allocation bits as ASCII '0'/'1' characters into a
// full block, one character per resource, rest zero padding.
func encodeBitmap(bits []bool) []byte {
	block := make([]byte, BlockSize)
	for i, set := range bits {
		if set {
			block[i] = '1'
		} else {
			block[i] = '0'
		}
	}

	return block
}

// decodeBitmap parses n allocation bits from a raw bitmap block.
func decodeBitmap(block []byte, n int) ([]bool, error) {
	bits := make([]bool, n)

	for i := 0; i < n; i++ {
		switch block[i] {
		case '1':
			bits[i] = true
		case '0':
			bits[i] = false
		default:
			return nil, corruptf("bitmap byte %d is %#02x, want '0' or '1'", i, block[i])
		}
	}

	return bits, nil
}

// encodeInodeRecord renders a record into its 8-byte table slot: a 2-char
// kind tag followed by three 2-digit block indices. Unassigned pointer
// slots encode as "00", the sentinel.
func encodeInodeRecord(dst []byte, rec inodeRecord) {
	tag := kindTagFile
	if rec.Kind == kindDirectory {
		tag = kindTagDirectory
	}

	copy(dst[0:2], tag)

	for i, ref := range rec.Blocks {
		putDigits(dst[2+i*2:4+i*2], uint16(ref))
	}
}

// decodeInodeRecord parses an 8-byte table slot. An unrecognized kind tag
// or a pointer into the reserved block range is a corruption, not a user
// error: the engine only decodes slots the inode bitmap marks allocated.
func decodeInodeRecord(src []byte, idx uint16) (inodeRecord, error) {
	var rec inodeRecord

	switch string(src[0:2]) {
	case kindTagDirectory:
		rec.Kind = kindDirectory
	case kindTagFile:
		rec.Kind = kindFile
	default:
		return inodeRecord{}, corruptf("inode %d has unknown kind tag %q", idx, src[0:2])
	}

	for i := 0; i < pointersPerInode; i++ {
		v, err := parseDigits(src[2+i*2 : 4+i*2])
		if err != nil {
			return inodeRecord{}, fmt.Errorf("inode %d pointer %d: %w", idx, i, err)
		}

		if v != 0 && v < firstDataBlock {
			return inodeRecord{}, corruptf("inode %d pointer %d references reserved block %d", idx, i, v)
		}

		rec.Blocks[i] = blockRef(v)
	}

	return rec, nil
}

// encodeDirPage renders four directory entries into a full block. Each
// 256-byte entry holds a used flag character, the NUL-terminated name, and
// a 3-digit inode index.
func encodeDirPage(page dirPage) []byte {
	block := make([]byte, BlockSize)

	for i, entry := range page {
		slot := block[i*entrySize : (i+1)*entrySize]

		if entry.Used {
			slot[0] = '1'
		} else {
			slot[0] = '0'
		}

		copy(slot[1:1+nameFieldSize], entry.Name)
		putDigits(slot[1+nameFieldSize:entrySize], entry.Inode)
	}

	return block
}

// decodeDirPage parses a directory page block. A raw zero used flag is
// accepted as unused so that freshly zero-filled data blocks decode as
// empty pages.
func decodeDirPage(block []byte, page blockRef) (dirPage, error) {
	var p dirPage

	for i := range p {
		slot := block[i*entrySize : (i+1)*entrySize]

		switch slot[0] {
		case '1':
			p[i].Used = true
		case '0', 0x00:
			p[i].Used = false
		default:
			return dirPage{}, corruptf("page %d entry %d has used flag %#02x", page, i, slot[0])
		}

		if !p[i].Used {
			continue
		}

		name := slot[1 : 1+nameFieldSize]
		end := 0
		for end < len(name) && name[end] != 0 {
			end++
		}
		p[i].Name = string(name[:end])

		inode, err := parseDigits(slot[1+nameFieldSize : entrySize])
		if err != nil {
			return dirPage{}, fmt.Errorf("page %d entry %d inode field: %w", page, i, err)
		}
		p[i].Inode = inode
	}

	return p, nil
}
