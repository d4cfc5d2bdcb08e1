package sfs

import (
	"errors"
	"fmt"
)

// Recoverable errors. Operations return these to the caller for user-facing
// reporting; the session stays usable and nothing is retried.
var (
	// ErrNotFound reports that no entry with the given name exists in
	// the directory being searched.
	ErrNotFound = errors.New("sfs: entry not found")

	// ErrExists reports that an entry with the given name is already
	// present in the target directory.
	ErrExists = errors.New("sfs: entry already exists")

	// ErrTypeMismatch reports a directory used as a file or vice versa.
	ErrTypeMismatch = errors.New("sfs: object kind mismatch")

	// ErrNoSpace reports that no free block or inode is available.
	ErrNoSpace = errors.New("sfs: no free block or inode")

	// ErrDirectoryFull reports a directory whose three pages hold
	// twelve used entries already.
	ErrDirectoryFull = errors.New("sfs: directory is full")

	// ErrPartialWrite reports that file content was truncated at the
	// three-block cap or at disk exhaustion. The returned byte count is
	// what actually reached the image.
	ErrPartialWrite = errors.New("sfs: content truncated")

	// ErrInvalidArgument reports misuse of a reserved index or an
	// otherwise malformed argument.
	ErrInvalidArgument = errors.New("sfs: invalid argument")
)

// CorruptionError reports an on-disk structure inconsistent with the
// engine's own invariants: an undecodable kind tag, a pointer into the
// reserved range, or an entry referencing an unallocated inode. It is not
// recoverable by the engine; callers decide whether to abort or refuse
// further operations on the image.
type CorruptionError struct {
	Detail string
}

func (e *CorruptionError) Error() string {
	return "sfs: corrupt image: " + e.Detail
}

// corruptf builds a CorruptionError from a format string.
func corruptf(format string, args ...any) error {
	return &CorruptionError{Detail: fmt.Sprintf(format, args...)}
}

// IsCorruption reports whether err carries a CorruptionError anywhere in
// its chain.
func IsCorruption(err error) bool {
	var ce *CorruptionError
	return errors.As(err, &ce)
}
