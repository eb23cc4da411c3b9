package backup

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
)

// ErrInvalidSnapshotName reports a download request whose filename does not
// look like a snapshot file, including any path traversal attempt.
var ErrInvalidSnapshotName = errors.New("invalid snapshot filename")

// Download streams the raw snapshot file with the given name to w and
// returns its size. Only plain snapshot filenames are accepted; anything
// with a path separator or an unexpected shape is rejected before touching
// the archive.
func (s *Service) Download(filename string, w io.Writer) (int64, error) {
	if filepath.Base(filename) != filename || !IsSnapshotName(filename) {
		return 0, fmt.Errorf("%w: %s", ErrInvalidSnapshotName, filename)
	}

	entry, err := s.archive.Stat(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("%w: %s", ErrArchiveFileMissing, filename)
		}
		return 0, fmt.Errorf("checking snapshot file: %w", err)
	}
	if err := s.archive.Get(filename, w); err != nil {
		return 0, fmt.Errorf("reading snapshot: %w", err)
	}
	return entry.Size, nil
}
