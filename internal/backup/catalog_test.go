package backup_test

import (
	"strings"
	"testing"
	"time"

	"fintrack/internal/archive"
	"fintrack/internal/backup"
	"fintrack/internal/model"
)

func putSnapshot(t *testing.T, arch *archive.MemoryArchive, id string, modTime time.Time) string {
	t.Helper()
	name := backup.SnapshotFilename(id)
	body := `{"id":"` + id + `","records":[],"categories":[],"version":"1.0"}`
	if err := arch.Put(name, strings.NewReader(body), int64(len(body))); err != nil {
		t.Fatalf("Put(%s) error = %v", name, err)
	}
	if err := arch.SetModTime(name, modTime); err != nil {
		t.Fatalf("SetModTime(%s) error = %v", name, err)
	}
	return name
}

func TestCatalog_SelfHeal(t *testing.T) {
	t.Run("rebuilds from archive when catalog is missing", func(t *testing.T) {
		arch := archive.NewMemoryArchive()
		older := time.Date(2025, 3, 1, 2, 0, 0, 0, time.UTC)
		newer := older.Add(24 * time.Hour)
		putSnapshot(t, arch, "2025-03-01T02-00-00-000Z", older)
		putSnapshot(t, arch, "2025-03-02T02-00-00-000Z", newer)

		catalog := backup.NewCatalog(arch, backup.NewNopLogger())
		descs, err := catalog.Get()
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if len(descs) != 2 {
			t.Fatalf("got %d descriptors, want 2", len(descs))
		}

		// Newest first.
		if !descs[0].CreatedAt.Equal(newer) {
			t.Errorf("first descriptor createdAt = %v, want %v", descs[0].CreatedAt, newer)
		}
		for _, d := range descs {
			if !d.Reconstructed {
				t.Errorf("descriptor %s not marked reconstructed", d.ID)
			}
			if d.Type != model.BackupUnknown {
				t.Errorf("descriptor %s type = %q, want %q", d.ID, d.Type, model.BackupUnknown)
			}
			if d.ID != backup.SnapshotIDFromFilename(d.Filename) {
				t.Errorf("ID %q does not match filename %q", d.ID, d.Filename)
			}
		}
	})

	t.Run("rebuild is persisted", func(t *testing.T) {
		arch := archive.NewMemoryArchive()
		putSnapshot(t, arch, "2025-03-01T02-00-00-000Z", time.Now())

		catalog := backup.NewCatalog(arch, backup.NewNopLogger())
		if _, err := catalog.Get(); err != nil {
			t.Fatalf("Get() error = %v", err)
		}

		var persisted []model.SnapshotDescriptor
		if err := arch.ReadDoc("backup_metadata.json", &persisted); err != nil {
			t.Fatalf("ReadDoc() error = %v", err)
		}
		if len(persisted) != 1 {
			t.Fatalf("persisted %d descriptors, want 1", len(persisted))
		}
	})

	t.Run("empty archive stays empty", func(t *testing.T) {
		arch := archive.NewMemoryArchive()
		catalog := backup.NewCatalog(arch, backup.NewNopLogger())

		descs, err := catalog.Get()
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if len(descs) != 0 {
			t.Fatalf("got %d descriptors, want 0", len(descs))
		}
	})
}

func TestCatalog_Remove(t *testing.T) {
	arch := archive.NewMemoryArchive()
	catalog := backup.NewCatalog(arch, backup.NewNopLogger())

	desc := model.SnapshotDescriptor{
		ID:        "2025-03-01T02-00-00-000Z",
		Filename:  backup.SnapshotFilename("2025-03-01T02-00-00-000Z"),
		CreatedAt: time.Now(),
	}
	if err := catalog.Append(desc); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	if err := catalog.Remove(desc.ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	// Removing again is a no-op, not an error.
	if err := catalog.Remove(desc.ID); err != nil {
		t.Fatalf("second Remove() error = %v", err)
	}

	descs, err := catalog.Get()
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(descs) != 0 {
		t.Fatalf("got %d descriptors, want 0", len(descs))
	}
}

func TestCatalog_Reconcile(t *testing.T) {
	arch := archive.NewMemoryArchive()
	catalog := backup.NewCatalog(arch, backup.NewNopLogger())

	kept := putSnapshot(t, arch, "2025-03-01T02-00-00-000Z", time.Now())
	if err := catalog.Append(model.SnapshotDescriptor{
		ID: "2025-03-01T02-00-00-000Z", Filename: kept, CreatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := catalog.Append(model.SnapshotDescriptor{
		ID:       "2025-03-02T02-00-00-000Z",
		Filename: backup.SnapshotFilename("2025-03-02T02-00-00-000Z"),
	}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	if err := catalog.Reconcile(); err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	descs, err := catalog.Get()
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(descs) != 1 {
		t.Fatalf("got %d descriptors after reconcile, want 1", len(descs))
	}
	if descs[0].Filename != kept {
		t.Errorf("surviving descriptor = %q, want %q", descs[0].Filename, kept)
	}
}
