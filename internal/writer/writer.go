package writer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileWriter writes rendered pages into the output directory.
type FileWriter struct {
	outputDir string
}

// New creates a new FileWriter, creating outputDir if needed
func New(outputDir string) (*FileWriter, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &FileWriter{outputDir: outputDir}, nil
}

// Path returns the full path of name inside the output directory.
func (w *FileWriter) Path(name string) string {
	return filepath.Join(w.outputDir, name)
}

// Exists reports whether name is already present in the output directory.
func (w *FileWriter) Exists(name string) (bool, error) {
	_, err := os.Stat(w.Path(name))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat %s: %w", name, err)
}

// Write stores content under name. The content goes to a temporary file that
// is renamed into place, so a present file is always a complete one.
func (w *FileWriter) Write(name, content string) error {
	tmp, err := os.CreateTemp(w.outputDir, "."+name+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", name, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), w.Path(name)); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", name, err)
	}
	return nil
}
