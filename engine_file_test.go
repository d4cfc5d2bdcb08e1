package sfs

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileTerminatorPlacement(t *testing.T) {
	e := newTestEngine(t, 30, 32)

	idx := mkFile(t, e, RootInode, "greeting")

	n, err := e.writeFileContent(idx, []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	rec, err := e.readInode(idx)
	require.NoError(t, err)
	require.True(t, rec.Blocks[0].assigned())

	raw, err := e.readBlock(uint16(rec.Blocks[0]))
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), raw[:5])
	assert.Equal(t, byte(contentTerminator), raw[5])

	got, err := e.readFileContent(idx)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)
}

func TestWriteFileExactBlockHasNoTerminator(t *testing.T) {
	e := newTestEngine(t, 30, 32)

	idx := mkFile(t, e, RootInode, "full")
	data := bytes.Repeat([]byte{'x'}, BlockSize)

	n, err := e.writeFileContent(idx, data)
	require.NoError(t, err)
	assert.Equal(t, BlockSize, n)

	rec, err := e.readInode(idx)
	require.NoError(t, err)
	require.True(t, rec.Blocks[0].assigned())
	assert.False(t, rec.Blocks[1].assigned())

	raw, err := e.readBlock(uint16(rec.Blocks[0]))
	require.NoError(t, err)
	assert.Equal(t, data, raw)

	// Reading stops at the unassigned second pointer, not at a terminator.
	got, err := e.readFileContent(idx)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestWriteFileTruncatesAtBlockCap(t *testing.T) {
	e := newTestEngine(t, 30, 32)

	idx := mkFile(t, e, RootInode, "big")
	data := bytes.Repeat([]byte{'y'}, MaxFileSize+1)

	n, err := e.writeFileContent(idx, data)
	require.ErrorIs(t, err, ErrPartialWrite)
	assert.Equal(t, MaxFileSize, n)

	got, err := e.readFileContent(idx)
	require.NoError(t, err)
	assert.Equal(t, data[:MaxFileSize], got)
}

func TestWriteFileTruncatesAtDiskExhaustion(t *testing.T) {
	// Two data blocks: one for the root's page, one for content.
	e := newTestEngine(t, firstDataBlock+2, 32)

	idx := mkFile(t, e, RootInode, "squeezed")
	data := bytes.Repeat([]byte{'z'}, 2*BlockSize)

	n, err := e.writeFileContent(idx, data)
	require.ErrorIs(t, err, ErrPartialWrite)
	assert.Equal(t, BlockSize, n)

	// The committed prefix stays readable.
	got, err := e.readFileContent(idx)
	require.NoError(t, err)
	assert.Equal(t, data[:BlockSize], got)
}

func TestWriteFileEmptyPayload(t *testing.T) {
	e := newTestEngine(t, 30, 32)

	idx := mkFile(t, e, RootInode, "empty")

	n, err := e.writeFileContent(idx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	rec, err := e.readInode(idx)
	require.NoError(t, err)
	assert.False(t, rec.Blocks[0].assigned(), "an empty write must not allocate")
}

func TestReadFileEmpty(t *testing.T) {
	e := newTestEngine(t, 30, 32)

	idx := mkFile(t, e, RootInode, "fresh")

	got, err := e.readFileContent(idx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFileContentKindChecks(t *testing.T) {
	e := newTestEngine(t, 30, 32)

	dir := mkDir(t, e, RootInode, "sub")

	_, err := e.writeFileContent(dir, []byte("nope"))
	require.ErrorIs(t, err, ErrTypeMismatch)

	_, err = e.readFileContent(dir)
	require.ErrorIs(t, err, ErrTypeMismatch)
}
