package sfs

import (
	"fmt"
	"strings"
)

// validateName checks that a directory entry name fits the on-disk entry
// format and contains no separator or NUL bytes.
func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("name is empty: %w", ErrInvalidArgument)
	}

	if len(name) > MaxNameLen {
		return fmt.Errorf("name is %d bytes, maximum is %d: %w", len(name), MaxNameLen, ErrInvalidArgument)
	}

	if strings.ContainsAny(name, "/\x00") {
		return fmt.Errorf("name %q contains reserved characters: %w", name, ErrInvalidArgument)
	}

	return nil
}
