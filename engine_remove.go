package sfs

import (
	"fmt"

	"go.uber.org/zap"
)

// removeFrame is one pending deletion: the entry named name in the
// directory parent, resolving to inode.
type removeFrame struct {
	parent uint16
	name   string
	inode  uint16
}

// removeEntry removes the named entry from a directory and reclaims the
// whole subtree behind it: every content block, every directory page, and
// every inode. The traversal is depth-first in page order then slot order,
// driven by an explicit work stack so memory use does not depend on tree
// depth. Parent pages emptied as children disappear are reclaimed
// immediately through removeDirEntry's page compaction, not deferred.
func (e *engine) removeEntry(parentInode uint16, name string) error {
	target, _, err := e.lookupEntry(parentInode, name)
	if err != nil {
		return err
	}

	stack := []removeFrame{{parent: parentInode, name: name, inode: target}}

	for len(stack) > 0 {
		// A consistent image cannot nest deeper than it has inodes.
		if len(stack) > int(e.layout.inodeCount) {
			return corruptf("directory tree under inode %d contains a cycle", target)
		}

		f := stack[len(stack)-1]

		if !e.layout.validInode(f.inode) || !e.inodeBitmap[f.inode] {
			return corruptf("entry %q references unallocated inode %d", f.name, f.inode)
		}

		rec, err := e.readInode(f.inode)
		if err != nil {
			return err
		}

		if rec.Kind == kindFile {
			if err := e.reclaimLeaf(f, rec); err != nil {
				return err
			}

			stack = stack[:len(stack)-1]

			continue
		}

		// Directory: descend into its first remaining child, if any.
		child, ok, err := e.firstUsedEntry(rec)
		if err != nil {
			return err
		}

		if ok {
			stack = append(stack, removeFrame{parent: f.inode, name: child.Name, inode: child.Inode})
			continue
		}

		if err := e.reclaimLeaf(f, rec); err != nil {
			return err
		}

		stack = stack[:len(stack)-1]
	}

	e.log.Debug("subtree removed",
		zap.Uint16("dir", parentInode),
		zap.String("name", name))

	return nil
}

// reclaimLeaf frees a childless object: its remaining blocks (file content,
// or directory pages not already compacted away), its inode, and finally
// its entry in the parent directory.
func (e *engine) reclaimLeaf(f removeFrame, rec inodeRecord) error {
	for _, ref := range rec.Blocks {
		if !ref.assigned() {
			continue
		}

		if err := e.freeBlock(ref); err != nil {
			return err
		}
	}

	if err := e.freeInode(f.inode); err != nil {
		return err
	}

	if _, err := e.removeDirEntry(f.parent, f.name); err != nil {
		return fmt.Errorf("failed to remove entry %q from inode %d: %w", f.name, f.parent, err)
	}

	return nil
}
