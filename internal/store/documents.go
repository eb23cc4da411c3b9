package store

import (
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"fintrack/internal/backup"
)

// FileDocuments persists named JSON documents as files in a single
// directory, with temp-file-and-rename writes.
type FileDocuments struct {
	dir string
}

var _ backup.DocumentStore = (*FileDocuments)(nil)

// NewFileDocuments creates a document store over dir, creating it if needed.
func NewFileDocuments(dir string) (*FileDocuments, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &FileDocuments{dir: dir}, nil
}

func (d *FileDocuments) ReadDoc(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(d.dir, name))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	return nil
}

func (d *FileDocuments) WriteDoc(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	return writeFileAtomic(d.dir, name, data)
}

// writeFileAtomic writes data into a temp file in dir and renames it over
// name, so readers never observe a partial document.
func writeFileAtomic(dir, name string, data []byte) error {
	f, err := os.CreateTemp(dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", name, err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("syncing %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", name, err)
	}
	if err := os.Rename(tmp, filepath.Join(dir, name)); err != nil {
		return fmt.Errorf("renaming %s into place: %w", name, err)
	}
	return nil
}
