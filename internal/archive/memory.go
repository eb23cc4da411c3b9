package archive

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"fintrack/internal/backup"
)

// MemoryArchive is an in-memory Archive used in tests and throwaway runs.
// Nothing survives process exit.
type MemoryArchive struct {
	mu    sync.RWMutex
	files map[string]memoryFile
	docs  map[string][]byte
	clock backup.Clock
}

type memoryFile struct {
	data    []byte
	modTime time.Time
}

var _ backup.Archive = (*MemoryArchive)(nil)

// NewMemoryArchive creates an empty in-memory archive.
func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{
		files: make(map[string]memoryFile),
		docs:  make(map[string][]byte),
		clock: backup.RealClock{},
	}
}

func (a *MemoryArchive) Put(name string, r io.Reader, size int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading snapshot body: %w", err)
	}
	if size >= 0 && int64(len(data)) != size {
		return fmt.Errorf("short write: got %d bytes, want %d", len(data), size)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.files[name] = memoryFile{data: data, modTime: a.clock.Now()}
	return nil
}

func (a *MemoryArchive) Get(name string, w io.Writer) error {
	a.mu.RLock()
	f, ok := a.files[name]
	a.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%s: %w", name, fs.ErrNotExist)
	}
	_, err := io.Copy(w, bytes.NewReader(f.data))
	return err
}

func (a *MemoryArchive) Delete(name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.files[name]; !ok {
		return fmt.Errorf("%s: %w", name, fs.ErrNotExist)
	}
	delete(a.files, name)
	return nil
}

func (a *MemoryArchive) Stat(name string) (backup.Entry, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	f, ok := a.files[name]
	if !ok {
		return backup.Entry{}, fmt.Errorf("%s: %w", name, fs.ErrNotExist)
	}
	return backup.Entry{Name: name, Size: int64(len(f.data)), ModTime: f.modTime}, nil
}

func (a *MemoryArchive) List() ([]backup.Entry, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	entries := make([]backup.Entry, 0, len(a.files))
	for name, f := range a.files {
		if !backup.IsSnapshotName(name) {
			continue
		}
		entries = append(entries, backup.Entry{
			Name:    name,
			Size:    int64(len(f.data)),
			ModTime: f.modTime,
		})
	}
	return entries, nil
}

func (a *MemoryArchive) ReadDoc(name string, v any) error {
	a.mu.RLock()
	data, ok := a.docs[name]
	a.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%s: %w", name, fs.ErrNotExist)
	}
	return json.Unmarshal(data, v)
}

func (a *MemoryArchive) WriteDoc(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.docs[name] = data
	return nil
}

// SetModTime overrides a stored file's modification time. Retention tests
// use it to age snapshots without sleeping.
func (a *MemoryArchive) SetModTime(name string, t time.Time) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	f, ok := a.files[name]
	if !ok {
		return fmt.Errorf("%s: %w", name, fs.ErrNotExist)
	}
	f.modTime = t
	a.files[name] = f
	return nil
}
