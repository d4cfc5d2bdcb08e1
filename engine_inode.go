package sfs

import (
	"fmt"
)

// readInode decodes the record at the given inode table slot. In-range
// reads always succeed structurally; validity of the slot is tracked only
// by the inode bitmap, so decoding garbage from a slot the bitmap marks
// allocated surfaces as a CorruptionError.
func (e *engine) readInode(idx uint16) (inodeRecord, error) {
	if !e.layout.validInode(idx) {
		return inodeRecord{}, fmt.Errorf("inode index %d out of range: %w", idx, ErrInvalidArgument)
	}

	off := int(idx) * inodeSlotSize

	return decodeInodeRecord(e.inodeTable[off:off+inodeSlotSize], idx)
}

// writeInode encodes the record into its table slot and persists the whole
// inode table block. There are no partial-block writes.
func (e *engine) writeInode(idx uint16, rec inodeRecord) error {
	if !e.layout.validInode(idx) {
		return fmt.Errorf("inode index %d out of range: %w", idx, ErrInvalidArgument)
	}

	off := int(idx) * inodeSlotSize
	encodeInodeRecord(e.inodeTable[off:off+inodeSlotSize], rec)

	return e.flushInodeTable()
}

// flushInodeTable persists the inode table to its metadata block.
func (e *engine) flushInodeTable() error {
	if err := e.writeBlock(inodeTableBlock, e.inodeTable); err != nil {
		return fmt.Errorf("failed to flush inode table: %w", err)
	}

	return nil
}

// requireKind reads an inode and checks it against the expected kind,
// returning ErrTypeMismatch on disagreement.
func (e *engine) requireKind(idx uint16, kind inodeKind) (inodeRecord, error) {
	rec, err := e.readInode(idx)
	if err != nil {
		return inodeRecord{}, err
	}

	if rec.Kind != kind {
		return inodeRecord{}, fmt.Errorf("inode %d is a %s, not a %s: %w", idx, rec.Kind, kind, ErrTypeMismatch)
	}

	return rec, nil
}
