package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"fintrack/internal/backup"
)

// FilesystemArchive stores snapshot files and metadata documents as plain
// files under a single root directory. All writes go through a temp file and
// rename so a crash never leaves a truncated snapshot or catalog behind.
type FilesystemArchive struct {
	root string
}

var _ backup.Archive = (*FilesystemArchive)(nil)

// NewFilesystemArchive creates a filesystem archive rooted at root,
// creating the directory if needed.
func NewFilesystemArchive(root string) (*FilesystemArchive, error) {
	if err := os.MkdirAll(root, 0750); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}
	return &FilesystemArchive{root: root}, nil
}

func (a *FilesystemArchive) Put(name string, r io.Reader, size int64) error {
	return a.writeFile(name, func(f *os.File) error {
		n, err := io.Copy(f, r)
		if err != nil {
			return err
		}
		if size >= 0 && n != size {
			return fmt.Errorf("short write: got %d bytes, want %d", n, size)
		}
		return nil
	})
}

func (a *FilesystemArchive) Get(name string, w io.Writer) error {
	f, err := os.Open(filepath.Join(a.root, name))
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}
	return nil
}

func (a *FilesystemArchive) Delete(name string) error {
	return os.Remove(filepath.Join(a.root, name))
}

func (a *FilesystemArchive) Stat(name string) (backup.Entry, error) {
	info, err := os.Stat(filepath.Join(a.root, name))
	if err != nil {
		return backup.Entry{}, err
	}
	return backup.Entry{Name: name, Size: info.Size(), ModTime: info.ModTime()}, nil
}

func (a *FilesystemArchive) List() ([]backup.Entry, error) {
	dirEntries, err := os.ReadDir(a.root)
	if err != nil {
		return nil, fmt.Errorf("listing archive directory: %w", err)
	}

	entries := make([]backup.Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() || !backup.IsSnapshotName(de.Name()) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			return nil, fmt.Errorf("statting %s: %w", de.Name(), err)
		}
		entries = append(entries, backup.Entry{
			Name:    de.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return entries, nil
}

func (a *FilesystemArchive) ReadDoc(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(a.root, name))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	return nil
}

func (a *FilesystemArchive) WriteDoc(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	return a.writeFile(name, func(f *os.File) error {
		_, err := f.Write(data)
		return err
	})
}

// writeFile writes into a temp file in the archive directory and renames it
// over the target, so readers never observe a partial file.
func (a *FilesystemArchive) writeFile(name string, write func(*os.File) error) error {
	f, err := os.CreateTemp(a.root, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", name, err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if err := write(f); err != nil {
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
	if err := os.Rename(tmp, filepath.Join(a.root, name)); err != nil {
		return fmt.Errorf("renaming %s into place: %w", name, err)
	}
	return nil
}
