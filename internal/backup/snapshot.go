package backup

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"fintrack/internal/model"
)

// snapshotFormatVersion is written into every snapshot document so a future
// reader can detect incompatible layouts.
const snapshotFormatVersion = "1.0"

// Page is one page of the descriptor catalog.
type Page struct {
	Total    int                        `json:"total"`
	Page     int                        `json:"page"`
	PageSize int                        `json:"pageSize"`
	Data     []model.SnapshotDescriptor `json:"data"`
}

// Create reads both live collections, writes them as a new immutable
// snapshot file and appends the descriptor to the catalog. kind is
// model.BackupManual or model.BackupAuto; an empty description is derived
// from the kind and the current time.
//
// Creation is all-or-nothing with respect to the catalog: if either
// collection cannot be read or the snapshot cannot be written, no descriptor
// is appended. Retention eviction runs after every successful create.
func (s *Service) Create(description, kind string) (model.SnapshotDescriptor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.collections.ReadRecords()
	if err != nil {
		return model.SnapshotDescriptor{}, fmt.Errorf("reading records: %w", err)
	}
	categories, err := s.collections.ReadCategories()
	if err != nil {
		return model.SnapshotDescriptor{}, fmt.Errorf("reading categories: %w", err)
	}

	now := s.clock.Now().UTC()
	id, filename := s.uniqueSnapshotName(now)
	if description == "" {
		description = defaultDescription(kind, s.clock.Now())
	}

	snap := model.Snapshot{
		ID:          id,
		Timestamp:   now,
		Description: description,
		Type:        kind,
		Records:     records,
		Categories:  categories,
		Version:     snapshotFormatVersion,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return model.SnapshotDescriptor{}, fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := s.archive.Put(filename, bytes.NewReader(data), int64(len(data))); err != nil {
		return model.SnapshotDescriptor{}, fmt.Errorf("writing snapshot: %w", err)
	}

	size := int64(len(data))
	if entry, err := s.archive.Stat(filename); err == nil {
		size = entry.Size
	}

	desc := model.SnapshotDescriptor{
		ID:          id,
		Filename:    filename,
		Description: description,
		Type:        kind,
		CreatedAt:   now,
		Size:        size,
	}
	if err := s.catalog.Append(desc); err != nil {
		return model.SnapshotDescriptor{}, fmt.Errorf("cataloging snapshot: %w", err)
	}
	s.logger.Info("backup created", "id", id, "type", kind, "size", size)

	if err := s.settings.SetLastBackupTime(s.clock.Now()); err != nil {
		s.logger.Warn("recording last backup time failed", "error", err)
	}

	// Eviction is best-effort and must not fail the create that
	// triggered it.
	if err := s.evictLocked(); err != nil {
		s.logger.Warn("retention eviction failed", "error", err)
	}

	return desc, nil
}

// List returns one page of the catalog, newest first. Out-of-range paging
// values are coerced to page 1 / size 10.
func (s *Service) List(page, pageSize int) (Page, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	descs, err := s.catalog.Get()
	if err != nil {
		return Page{}, fmt.Errorf("loading catalog: %w", err)
	}

	start := (page - 1) * pageSize
	if start > len(descs) {
		start = len(descs)
	}
	end := start + pageSize
	if end > len(descs) {
		end = len(descs)
	}

	return Page{
		Total:    len(descs),
		Page:     page,
		PageSize: pageSize,
		Data:     descs[start:end],
	}, nil
}

// uniqueSnapshotName derives the snapshot ID and filename from the creation
// time. IDs have millisecond resolution; if a snapshot with the same name
// already exists the timestamp is nudged forward until the name is free.
func (s *Service) uniqueSnapshotName(now time.Time) (string, string) {
	for {
		id := snapshotID(now)
		filename := SnapshotFilename(id)
		if _, err := s.archive.Stat(filename); err != nil {
			return id, filename
		}
		now = now.Add(time.Millisecond)
	}
}

// snapshotID formats a timestamp as a unique, filesystem-safe snapshot ID:
// the UTC RFC 3339 form with colons and periods replaced by dashes.
func snapshotID(t time.Time) string {
	iso := t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
	return strings.NewReplacer(":", "-", ".", "-").Replace(iso)
}

func defaultDescription(kind string, t time.Time) string {
	label := "Manual backup"
	if kind == model.BackupAuto {
		label = "Automatic backup"
	}
	return fmt.Sprintf("%s - %s", label, t.Format("2006-01-02 15:04:05"))
}
