package repositories

import "errors"

var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates the write would violate a uniqueness
	// constraint (duplicate grant triple, second share link per asset,
	// reused storage key).
	ErrConflict = errors.New("record conflict")
)
