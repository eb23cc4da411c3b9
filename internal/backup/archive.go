package backup

import (
	"io"
	"strings"
	"time"
)

// Entry describes one snapshot file in the archive.
type Entry struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// Archive provides an interface for snapshot storage backends.
// Snapshot bodies stream through io.Reader/io.Writer; the small metadata
// documents (catalog, restore log) are stored beside them as named JSON
// documents.
//
// Get, Stat, Delete and ReadDoc report a missing name with an error that
// satisfies errors.Is(err, fs.ErrNotExist), so callers can distinguish
// absence from real I/O failure.
type Archive interface {
	// Put stores a snapshot file under the given name.
	// size is the number of bytes that will be read from r.
	Put(name string, r io.Reader, size int64) error

	// Get retrieves a snapshot file by name and writes it to w.
	Get(name string, w io.Writer) error

	// Delete removes a snapshot file by name.
	Delete(name string) error

	// Stat returns the entry for a single snapshot file.
	Stat(name string) (Entry, error)

	// List returns all snapshot files in the archive, in no particular
	// order. Metadata documents and foreign files are excluded.
	List() ([]Entry, error)

	// ReadDoc decodes the named JSON metadata document into v.
	ReadDoc(name string, v any) error

	// WriteDoc encodes v and stores it as the named JSON metadata document.
	WriteDoc(name string, v any) error
}

// SnapshotPrefix and SnapshotSuffix bound the deterministic snapshot file
// naming scheme: backup-<id>.json.
const (
	SnapshotPrefix = "backup-"
	SnapshotSuffix = ".json"
)

// IsSnapshotName reports whether name follows the snapshot file naming
// scheme. Archive implementations use it to keep metadata documents out of
// listings; the download path uses it to reject foreign names.
func IsSnapshotName(name string) bool {
	return strings.HasPrefix(name, SnapshotPrefix) &&
		strings.HasSuffix(name, SnapshotSuffix) &&
		len(name) > len(SnapshotPrefix)+len(SnapshotSuffix)
}

// SnapshotFilename returns the archive file name for a snapshot ID.
func SnapshotFilename(id string) string {
	return SnapshotPrefix + id + SnapshotSuffix
}

// SnapshotIDFromFilename extracts the snapshot ID from an archive file name.
func SnapshotIDFromFilename(name string) string {
	return strings.TrimSuffix(strings.TrimPrefix(name, SnapshotPrefix), SnapshotSuffix)
}
