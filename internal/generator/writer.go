package generator

import (
	"fmt"
	"os"
	"path/filepath"
)

// AtomicWriter writes files with the temp → rename pattern so readers never
// see a partially written document.
type AtomicWriter struct {
	perm os.FileMode
}

// NewAtomicWriter creates a new atomic writer.
func NewAtomicWriter() *AtomicWriter {
	return &AtomicWriter{perm: 0644}
}

// Write stores content at path, creating parent directories as needed.
func (w *AtomicWriter) Write(path, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: failed to create directory %s: %v", ErrOutputWrite, dir, err)
	}

	// Temp file lives next to the target so the rename stays on one filesystem
	tmp, err := os.CreateTemp(dir, ".scriptdoc-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: failed to create temp file: %v", ErrOutputWrite, err)
	}
	tempPath := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tempPath)
		return fmt.Errorf("%w: failed to write temp file: %v", ErrOutputWrite, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("%w: failed to close temp file: %v", ErrOutputWrite, err)
	}
	if err := os.Chmod(tempPath, w.perm); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("%w: failed to set permissions: %v", ErrOutputWrite, err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("%w: failed to rename temp file: %v", ErrOutputWrite, err)
	}

	return nil
}
