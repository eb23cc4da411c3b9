package backup

import (
	"errors"
	"fmt"
	"io/fs"

	"fintrack/internal/model"
)

// Delete removes the snapshot with the given ID from the archive and the
// catalog. A descriptor whose file is already gone is still removed from
// the catalog, so Delete converges on a consistent state either way.
func (s *Service) Delete(backupID string) (model.SnapshotDescriptor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	desc, ok, err := s.catalog.FindByID(backupID)
	if err != nil {
		return model.SnapshotDescriptor{}, fmt.Errorf("looking up backup: %w", err)
	}
	if !ok {
		return model.SnapshotDescriptor{}, fmt.Errorf("%w: %s", ErrBackupNotFound, backupID)
	}

	if err := s.archive.Delete(desc.Filename); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return model.SnapshotDescriptor{}, fmt.Errorf("deleting snapshot file: %w", err)
	}
	if err := s.catalog.Remove(backupID); err != nil {
		return model.SnapshotDescriptor{}, fmt.Errorf("removing catalog entry: %w", err)
	}

	s.logger.Info("backup deleted", "id", backupID, "file", desc.Filename)
	return desc, nil
}
