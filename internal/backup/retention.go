package backup

import (
	"fmt"
	"sort"
	"time"
)

// MaxArchiveFiles is the hard ceiling on stored snapshots, independent of
// the retention window. It protects against disk exhaustion from very
// frequent manual backups that are all younger than the cutoff.
const MaxArchiveFiles = 100

// Evict deletes snapshots that violate the retention policy: any snapshot
// older than the retention window, or any snapshot ranked at or beyond
// MaxArchiveFiles in the newest-first listing. Either condition alone is
// sufficient for deletion.
//
// Settings are re-read on every call since the retention window may change
// between runs. Per-file delete failures are logged and skipped; one bad
// file must not block cleanup of the rest. The catalog is reconciled with
// the surviving files afterwards.
func (s *Service) Evict() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evictLocked()
}

func (s *Service) evictLocked() error {
	settings, err := s.settings.Get()
	if err != nil {
		s.logger.Warn("loading settings for eviction failed, using defaults", "error", err)
		settings = DefaultSettings()
	}
	retentionDays := settings.RetentionDays
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	cutoff := s.clock.Now().Add(-time.Duration(retentionDays) * 24 * time.Hour)

	entries, err := s.archive.List()
	if err != nil {
		return fmt.Errorf("listing archive: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ModTime.After(entries[j].ModTime)
	})

	deleted := 0
	for i, e := range entries {
		if !e.ModTime.Before(cutoff) && i < MaxArchiveFiles {
			continue
		}
		if err := s.archive.Delete(e.Name); err != nil {
			s.logger.Warn("deleting expired snapshot failed", "file", e.Name, "error", err)
			continue
		}
		s.logger.Info("expired snapshot deleted", "file", e.Name)
		deleted++
	}

	if err := s.catalog.Reconcile(); err != nil {
		return fmt.Errorf("reconciling catalog: %w", err)
	}
	if deleted > 0 {
		s.logger.Info("retention eviction complete", "deleted", deleted, "retentionDays", retentionDays)
	}
	return nil
}
