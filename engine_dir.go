package sfs

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// readDirPage reads and decodes one directory page block.
func (e *engine) readDirPage(page blockRef) (dirPage, error) {
	raw, err := e.readBlock(uint16(page))
	if err != nil {
		return dirPage{}, err
	}

	return decodeDirPage(raw, page)
}

// writeDirPage encodes and persists one directory page block.
func (e *engine) writeDirPage(page blockRef, p dirPage) error {
	if err := e.writeBlock(uint16(page), encodeDirPage(p)); err != nil {
		return fmt.Errorf("failed to write directory page %d: %w", page, err)
	}

	return nil
}

// lookupEntry scans a directory's pages in pointer order, each page's four
// slots in slot order, for a used entry whose name matches byte for byte.
// Returns the referenced inode index and the entry's location, or
// ErrNotFound.
func (e *engine) lookupEntry(dirInode uint16, name string) (uint16, entryAddr, error) {
	rec, err := e.requireKind(dirInode, kindDirectory)
	if err != nil {
		return 0, entryAddr{}, err
	}

	for ptrSlot, page := range rec.Blocks {
		if !page.assigned() {
			continue
		}

		p, err := e.readDirPage(page)
		if err != nil {
			return 0, entryAddr{}, err
		}

		for slot, entry := range p {
			if entry.Used && entry.Name == name {
				return entry.Inode, entryAddr{ptrSlot: ptrSlot, page: page, slot: slot}, nil
			}
		}
	}

	return 0, entryAddr{}, fmt.Errorf("no entry %q in directory inode %d: %w", name, dirInode, ErrNotFound)
}

// addDirEntry inserts a named entry into a directory. Free slots in
// existing pages are reused first-fit; when every allocated page is full
// and a pointer slot remains, a new page block is allocated, initialized as
// four unused entries, and installed. A failed page allocation leaves the
// directory inode untouched.
func (e *engine) addDirEntry(dirInode uint16, name string, target uint16) error {
	if _, _, err := e.lookupEntry(dirInode, name); err == nil {
		return fmt.Errorf("entry %q: %w", name, ErrExists)
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	rec, err := e.readInode(dirInode)
	if err != nil {
		return err
	}

	// First-fit reuse of a cleared slot in an existing page.
	for _, page := range rec.Blocks {
		if !page.assigned() {
			continue
		}

		p, err := e.readDirPage(page)
		if err != nil {
			return err
		}

		for slot := range p {
			if p[slot].Used {
				continue
			}

			p[slot] = dirEntry{Used: true, Name: name, Inode: target}
			if err := e.writeDirPage(page, p); err != nil {
				return err
			}

			e.log.Debug("directory entry written",
				zap.Uint16("dir", dirInode),
				zap.String("name", name),
				zap.Uint16("page", uint16(page)),
				zap.Int("slot", slot))

			return nil
		}
	}

	// All allocated pages are full; grow into the first empty pointer
	// slot if one remains.
	for ptrSlot, page := range rec.Blocks {
		if page.assigned() {
			continue
		}

		newPage, err := e.allocateBlock()
		if err != nil {
			return fmt.Errorf("failed to grow directory inode %d: %w", dirInode, err)
		}

		var p dirPage
		p[0] = dirEntry{Used: true, Name: name, Inode: target}
		if err := e.writeDirPage(newPage, p); err != nil {
			return err
		}

		rec.Blocks[ptrSlot] = newPage
		if err := e.writeInode(dirInode, rec); err != nil {
			return err
		}

		e.log.Debug("directory page grown",
			zap.Uint16("dir", dirInode),
			zap.String("name", name),
			zap.Uint16("page", uint16(newPage)))

		return nil
	}

	return fmt.Errorf("directory inode %d has 12 entries: %w", dirInode, ErrDirectoryFull)
}

// removeDirEntry clears a named entry and persists its page. A page whose
// four slots all become unused is returned to the free pool and its pointer
// slot in the directory inode is cleared. The referenced inode index is
// returned to the caller, which owns its reclamation; this never frees the
// target inode itself.
func (e *engine) removeDirEntry(dirInode uint16, name string) (uint16, error) {
	target, addr, err := e.lookupEntry(dirInode, name)
	if err != nil {
		return 0, err
	}

	p, err := e.readDirPage(addr.page)
	if err != nil {
		return 0, err
	}

	p[addr.slot] = dirEntry{}
	if err := e.writeDirPage(addr.page, p); err != nil {
		return 0, err
	}

	empty := true
	for _, entry := range p {
		if entry.Used {
			empty = false
			break
		}
	}

	if empty {
		if err := e.freeBlock(addr.page); err != nil {
			return 0, err
		}

		rec, err := e.readInode(dirInode)
		if err != nil {
			return 0, err
		}

		rec.Blocks[addr.ptrSlot] = 0
		if err := e.writeInode(dirInode, rec); err != nil {
			return 0, err
		}

		e.log.Debug("directory page reclaimed",
			zap.Uint16("dir", dirInode),
			zap.Uint16("page", uint16(addr.page)))
	}

	return target, nil
}

// listDirEntries returns every used entry of a directory in page order then
// slot order, with the kind taken from each target's inode record.
func (e *engine) listDirEntries(dirInode uint16) ([]EntryInfo, error) {
	rec, err := e.requireKind(dirInode, kindDirectory)
	if err != nil {
		return nil, err
	}

	var entries []EntryInfo

	for _, page := range rec.Blocks {
		if !page.assigned() {
			continue
		}

		p, err := e.readDirPage(page)
		if err != nil {
			return nil, err
		}

		for _, entry := range p {
			if !entry.Used {
				continue
			}

			child, err := e.readInode(entry.Inode)
			if err != nil {
				return nil, err
			}

			kind := KindFile
			if child.Kind == kindDirectory {
				kind = KindDirectory
			}

			entries = append(entries, EntryInfo{Name: entry.Name, Kind: kind, Inode: entry.Inode})
		}
	}

	return entries, nil
}

// firstUsedEntry returns the first used entry of a directory in page/slot
// order, or ok=false when the directory is empty.
func (e *engine) firstUsedEntry(rec inodeRecord) (dirEntry, bool, error) {
	for _, page := range rec.Blocks {
		if !page.assigned() {
			continue
		}

		p, err := e.readDirPage(page)
		if err != nil {
			return dirEntry{}, false, err
		}

		for _, entry := range p {
			if entry.Used {
				return entry, true, nil
			}
		}
	}

	return dirEntry{}, false, nil
}
