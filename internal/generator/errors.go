package generator

import "errors"

var (
	// ErrOutputWrite indicates the generated document could not be written
	ErrOutputWrite = errors.New("output write failed")

	// ErrNotDirectory indicates a batch root that is not a directory
	ErrNotDirectory = errors.New("not a directory")
)
