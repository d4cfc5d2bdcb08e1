package sfs

import (
	"bytes"
	"fmt"

	"go.uber.org/zap"
)

// readFileContent concatenates a file's data blocks in pointer order,
// stopping at the first terminator byte, at the first unassigned pointer,
// or at the three-block cap. The result is a snapshot of the whole file.
func (e *engine) readFileContent(fileInode uint16) ([]byte, error) {
	rec, err := e.requireKind(fileInode, kindFile)
	if err != nil {
		return nil, err
	}

	var content []byte

	for _, page := range rec.Blocks {
		if !page.assigned() {
			break
		}

		raw, err := e.readBlock(uint16(page))
		if err != nil {
			return nil, err
		}

		if end := bytes.IndexByte(raw, contentTerminator); end >= 0 {
			return append(content, raw[:end]...), nil
		}

		content = append(content, raw...)
	}

	return content, nil
}

// writeFileContent writes data sequentially into 1024-byte blocks starting
// at the file's first unassigned pointer slot, allocating each block from
// the free pool. Writing stops, successfully but with ErrPartialWrite, when
// the three-block cap is reached or allocation fails mid-write; the return
// value is the byte count actually committed to the image. Bytes past that
// point are discarded, never buffered for retry. A terminator byte follows
// the last committed byte whenever its block has room for one.
func (e *engine) writeFileContent(fileInode uint16, data []byte) (int, error) {
	rec, err := e.requireKind(fileInode, kindFile)
	if err != nil {
		return 0, err
	}

	if len(data) == 0 {
		return 0, nil
	}

	slot := 0
	for slot < pointersPerInode && rec.Blocks[slot].assigned() {
		slot++
	}

	written := 0
	installed := false

	for written < len(data) && slot < pointersPerInode {
		chunk := data[written:]
		if len(chunk) > BlockSize {
			chunk = chunk[:BlockSize]
		}

		block, err := e.allocateBlock()
		if err != nil {
			// Disk exhausted mid-write: keep what was committed.
			break
		}

		buf := make([]byte, 0, len(chunk)+1)
		buf = append(buf, chunk...)
		if len(buf) < BlockSize {
			buf = append(buf, contentTerminator)
		}

		if err := e.disk.writeAt(buf, e.layout.blockOffset(uint16(block))); err != nil {
			return written, fmt.Errorf("failed to write file block %d: %w", block, err)
		}

		rec.Blocks[slot] = block
		installed = true
		written += len(chunk)
		slot++
	}

	if installed {
		if err := e.writeInode(fileInode, rec); err != nil {
			return written, err
		}
	}

	e.log.Debug("file content written",
		zap.Uint16("inode", fileInode),
		zap.Int("bytes", written),
		zap.Bool("truncated", written < len(data)))

	if written < len(data) {
		return written, fmt.Errorf("wrote %d of %d bytes: %w", written, len(data), ErrPartialWrite)
	}

	return written, nil
}
