package fixtures

import "errors"

var (
	// ErrInvalidPath is returned by any operation given a path that fails
	// ValidatePath.
	ErrInvalidPath = errors.New("fixtures: invalid path")

	// ErrInvalidPermissions is returned when a permissions string doesn't
	// match the nine-character rwx layout.
	ErrInvalidPermissions = errors.New("fixtures: invalid permissions")

	// ErrNotFound mirrors catalog.ErrNotFound for callers that only import
	// this package.
	ErrNotFound = errors.New("fixtures: not found")

	// ErrNotAFile / ErrNotAFolder guard kind-specific operations.
	ErrNotAFile   = errors.New("fixtures: not a file")
	ErrNotAFolder = errors.New("fixtures: not a folder")
)
