package sfs

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupEntryByteExact(t *testing.T) {
	e := newTestEngine(t, 30, 32)

	idx := mkFile(t, e, RootInode, "Readme")

	got, _, err := e.lookupEntry(RootInode, "Readme")
	require.NoError(t, err)
	assert.Equal(t, idx, got)

	// Matching is case-sensitive and byte-exact.
	_, _, err = e.lookupEntry(RootInode, "readme")
	require.ErrorIs(t, err, ErrNotFound)

	_, _, err = e.lookupEntry(RootInode, "Readme ")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLookupEntryOnFile(t *testing.T) {
	e := newTestEngine(t, 30, 32)

	idx := mkFile(t, e, RootInode, "data")

	_, _, err := e.lookupEntry(idx, "anything")
	require.ErrorIs(t, err, ErrTypeMismatch)
}

func TestAddDirEntryRejectsDuplicate(t *testing.T) {
	e := newTestEngine(t, 30, 32)

	mkFile(t, e, RootInode, "twice")

	err := e.addDirEntry(RootInode, "twice", 9)
	require.ErrorIs(t, err, ErrExists)
}

func TestAddDirEntryReusesClearedSlot(t *testing.T) {
	e := newTestEngine(t, 30, 32)

	// Fill the first page and start the second.
	for i := 0; i < entriesPerPage+1; i++ {
		mkFile(t, e, RootInode, fmt.Sprintf("f%d", i))
	}

	// Clear a slot in the middle of page one.
	_, err := e.removeDirEntry(RootInode, "f1")
	require.NoError(t, err)

	// The next insertion lands in that slot, not after the last entry.
	idx := mkFile(t, e, RootInode, "reused")

	got, addr, err := e.lookupEntry(RootInode, "reused")
	require.NoError(t, err)
	assert.Equal(t, idx, got)
	assert.Equal(t, 0, addr.ptrSlot)
	assert.Equal(t, 1, addr.slot)
}

func TestAddDirEntryGrowsPages(t *testing.T) {
	e := newTestEngine(t, 30, 32)

	rec, err := e.readInode(RootInode)
	require.NoError(t, err)
	assert.False(t, rec.Blocks[0].assigned(), "fresh directory owns no pages")

	for i := 0; i < entriesPerPage*pointersPerInode; i++ {
		mkFile(t, e, RootInode, fmt.Sprintf("f%d", i))

		rec, err := e.readInode(RootInode)
		require.NoError(t, err)

		wantPages := i/entriesPerPage + 1
		for p := 0; p < pointersPerInode; p++ {
			assert.Equal(t, p < wantPages, rec.Blocks[p].assigned(),
				"entry %d: pointer slot %d", i, p)
		}
	}
}

func TestAddDirEntryDirectoryFull(t *testing.T) {
	e := newTestEngine(t, 30, 32)

	for i := 0; i < entriesPerPage*pointersPerInode; i++ {
		mkFile(t, e, RootInode, fmt.Sprintf("f%d", i))
	}

	before, err := e.readInode(RootInode)
	require.NoError(t, err)

	err = e.addDirEntry(RootInode, "thirteenth", 30)
	require.ErrorIs(t, err, ErrDirectoryFull)

	// Pointer and page state must be untouched by the failed insert.
	after, err := e.readInode(RootInode)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestAddDirEntryNoSpaceLeavesInodeUntouched(t *testing.T) {
	e := newTestEngine(t, firstDataBlock+1, 32)

	// The single data block goes to the root's first page.
	for i := 0; i < entriesPerPage; i++ {
		mkFile(t, e, RootInode, fmt.Sprintf("f%d", i))
	}

	before, err := e.readInode(RootInode)
	require.NoError(t, err)

	// Growing needs a second page block, and none is left.
	err = e.addDirEntry(RootInode, "overflow", 30)
	require.ErrorIs(t, err, ErrNoSpace)

	after, err := e.readInode(RootInode)
	require.NoError(t, err)
	assert.Equal(t, before, after, "failed growth must not install a half-baked pointer")
}

func TestRemoveDirEntryCompactsEmptyPage(t *testing.T) {
	e := newTestEngine(t, 30, 32)

	mkFile(t, e, RootInode, "only")

	rec, err := e.readInode(RootInode)
	require.NoError(t, err)
	page := rec.Blocks[0]
	require.True(t, page.assigned())

	got, err := e.removeDirEntry(RootInode, "only")
	require.NoError(t, err)
	assert.NotZero(t, got)

	rec, err = e.readInode(RootInode)
	require.NoError(t, err)
	assert.False(t, rec.Blocks[0].assigned(), "emptied page pointer must be cleared")
	assert.False(t, e.blockBitmap[page], "emptied page block must be freed")
}

func TestRemoveDirEntryKeepsPartialPage(t *testing.T) {
	e := newTestEngine(t, 30, 32)

	mkFile(t, e, RootInode, "a")
	keep := mkFile(t, e, RootInode, "b")

	_, err := e.removeDirEntry(RootInode, "a")
	require.NoError(t, err)

	rec, err := e.readInode(RootInode)
	require.NoError(t, err)
	assert.True(t, rec.Blocks[0].assigned(), "page with a survivor stays allocated")

	got, _, err := e.lookupEntry(RootInode, "b")
	require.NoError(t, err)
	assert.Equal(t, keep, got)
}

func TestRemoveDirEntryDoesNotFreeTargetInode(t *testing.T) {
	e := newTestEngine(t, 30, 32)

	idx := mkFile(t, e, RootInode, "keepme")

	got, err := e.removeDirEntry(RootInode, "keepme")
	require.NoError(t, err)
	assert.Equal(t, idx, got)
	assert.True(t, e.inodeBitmap[idx], "entry removal must leave inode reclamation to the caller")
}

func TestListDirEntriesOrder(t *testing.T) {
	e := newTestEngine(t, 30, 32)

	names := []string{"charlie", "alpha", "bravo", "delta", "echo"}
	for _, name := range names {
		mkFile(t, e, RootInode, name)
	}
	mkDir(t, e, RootInode, "subdir")

	entries, err := e.listDirEntries(RootInode)
	require.NoError(t, err)
	require.Len(t, entries, len(names)+1)

	// Page order then slot order, which is insertion order here.
	for i, name := range names {
		assert.Equal(t, name, entries[i].Name)
		assert.Equal(t, KindFile, entries[i].Kind)
	}
	assert.Equal(t, "subdir", entries[len(names)].Name)
	assert.Equal(t, KindDirectory, entries[len(names)].Kind)
}
