package backup

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"

	json "github.com/goccy/go-json"

	"fintrack/internal/model"
)

// restoreLogDoc is the archive document holding the restore audit log.
const restoreLogDoc = "restore_history.json"

// maxRestoreLogEntries caps the audit log; the oldest entries are dropped
// on overflow.
const maxRestoreLogEntries = 100

// Restore overwrites both live collections from the snapshot with the given
// ID and appends an entry to the restore audit log. The snapshot itself is
// never modified or deleted by a restore.
//
// Two distinct not-found cases are reported: ErrBackupNotFound when no
// descriptor exists for the ID, and ErrArchiveFileMissing when the
// descriptor exists but its file is gone from the archive.
func (s *Service) Restore(backupID string) (model.SnapshotDescriptor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	desc, ok, err := s.catalog.FindByID(backupID)
	if err != nil {
		return model.SnapshotDescriptor{}, fmt.Errorf("looking up backup: %w", err)
	}
	if !ok {
		return model.SnapshotDescriptor{}, fmt.Errorf("%w: %s", ErrBackupNotFound, backupID)
	}

	if _, err := s.archive.Stat(desc.Filename); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.SnapshotDescriptor{}, fmt.Errorf("%w: %s", ErrArchiveFileMissing, desc.Filename)
		}
		return model.SnapshotDescriptor{}, fmt.Errorf("checking snapshot file: %w", err)
	}

	var buf bytes.Buffer
	if err := s.archive.Get(desc.Filename, &buf); err != nil {
		return model.SnapshotDescriptor{}, fmt.Errorf("reading snapshot: %w", err)
	}
	var snap model.Snapshot
	if err := json.Unmarshal(buf.Bytes(), &snap); err != nil {
		return model.SnapshotDescriptor{}, fmt.Errorf("parsing snapshot %s: %w", desc.Filename, err)
	}

	if err := s.collections.ReplaceAll(snap.Records, snap.Categories); err != nil {
		return model.SnapshotDescriptor{}, fmt.Errorf("restoring collections: %w", err)
	}

	if err := s.appendRestoreEntry(desc); err != nil {
		return model.SnapshotDescriptor{}, err
	}

	s.logger.Info("backup restored", "id", backupID, "file", desc.Filename)
	return desc, nil
}

// RestoreHistory returns the restore audit log, newest first.
func (s *Service) RestoreHistory() ([]model.RestoreEntry, error) {
	entries, err := s.loadRestoreLog()
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Service) appendRestoreEntry(desc model.SnapshotDescriptor) error {
	entries, err := s.loadRestoreLog()
	if err != nil {
		return err
	}

	entry := model.RestoreEntry{
		Timestamp:      s.clock.Now().UTC(),
		BackupID:       desc.ID,
		BackupFilename: desc.Filename,
		BackupTime:     desc.CreatedAt,
	}
	entries = append([]model.RestoreEntry{entry}, entries...)
	if len(entries) > maxRestoreLogEntries {
		entries = entries[:maxRestoreLogEntries]
	}

	if err := s.archive.WriteDoc(restoreLogDoc, entries); err != nil {
		return fmt.Errorf("persisting restore history: %w", err)
	}
	return nil
}

func (s *Service) loadRestoreLog() ([]model.RestoreEntry, error) {
	var entries []model.RestoreEntry
	err := s.archive.ReadDoc(restoreLogDoc, &entries)
	if err == nil {
		return entries, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return nil, fmt.Errorf("loading restore history: %w", err)
}
