package catalog

import "errors"

var (
	// ErrNotFound is returned by any get/update/delete operation that
	// targets a row that doesn't exist.
	ErrNotFound = errors.New("catalog: not found")

	// ErrConflict signals a uniqueness or invariant violation the caller
	// should surface as a 400/409, not retry blindly.
	ErrConflict = errors.New("catalog: conflict")
)
