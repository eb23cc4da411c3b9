package archive

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fintrack/internal/backup"
)

func TestNewFilesystemArchive(t *testing.T) {
	t.Run("creates the root directory", func(t *testing.T) {
		tmpDir := t.TempDir()
		root := filepath.Join(tmpDir, "backups")

		if _, err := NewFilesystemArchive(root); err != nil {
			t.Fatalf("NewFilesystemArchive() error = %v", err)
		}
		if _, err := os.Stat(root); err != nil {
			t.Errorf("root directory not created: %v", err)
		}
	})

	t.Run("works with existing directory", func(t *testing.T) {
		if _, err := NewFilesystemArchive(t.TempDir()); err != nil {
			t.Fatalf("NewFilesystemArchive() error = %v", err)
		}
	})
}

func TestFilesystemArchive_PutGet(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		size    int64
		wantErr bool
	}{
		{name: "store successfully", data: `{"id":"x"}`, size: 10, wantErr: false},
		{name: "size mismatch", data: `{"id":"x"}`, size: 99, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewFilesystemArchive(t.TempDir())
			if err != nil {
				t.Fatalf("NewFilesystemArchive() error = %v", err)
			}

			name := backup.SnapshotFilename("2025-06-15T10-30-00-000Z")
			err = a.Put(name, strings.NewReader(tt.data), tt.size)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Put() error = %v, wantErr %t", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			var buf bytes.Buffer
			if err := a.Get(name, &buf); err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if buf.String() != tt.data {
				t.Errorf("Get() = %q, want %q", buf.String(), tt.data)
			}
		})
	}

	t.Run("missing file satisfies fs.ErrNotExist", func(t *testing.T) {
		a, _ := NewFilesystemArchive(t.TempDir())

		if err := a.Get("backup-nope.json", &bytes.Buffer{}); !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("Get() error = %v, want fs.ErrNotExist", err)
		}
		if _, err := a.Stat("backup-nope.json"); !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("Stat() error = %v, want fs.ErrNotExist", err)
		}
		if err := a.Delete("backup-nope.json"); !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("Delete() error = %v, want fs.ErrNotExist", err)
		}
	})

	t.Run("failed put leaves no partial file", func(t *testing.T) {
		a, _ := NewFilesystemArchive(t.TempDir())

		name := backup.SnapshotFilename("2025-06-15T10-30-00-000Z")
		if err := a.Put(name, strings.NewReader("short"), 999); err == nil {
			t.Fatal("Put() with wrong size succeeded")
		}
		if _, err := a.Stat(name); !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("partial file visible after failed put: %v", err)
		}
	})
}

func TestFilesystemArchive_List(t *testing.T) {
	a, err := NewFilesystemArchive(t.TempDir())
	if err != nil {
		t.Fatalf("NewFilesystemArchive() error = %v", err)
	}

	put := func(name, data string) {
		t.Helper()
		if err := a.Put(name, strings.NewReader(data), int64(len(data))); err != nil {
			t.Fatalf("Put(%s) error = %v", name, err)
		}
	}
	put(backup.SnapshotFilename("2025-06-15T10-30-00-000Z"), `{}`)
	put(backup.SnapshotFilename("2025-06-16T10-30-00-000Z"), `{}`)

	// Metadata documents must not appear in listings.
	if err := a.WriteDoc("backup_metadata.json", []string{}); err != nil {
		t.Fatalf("WriteDoc() error = %v", err)
	}

	entries, err := a.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	for _, e := range entries {
		if !backup.IsSnapshotName(e.Name) {
			t.Errorf("listing contains non-snapshot %q", e.Name)
		}
		if e.Size != 2 {
			t.Errorf("entry %s size = %d, want 2", e.Name, e.Size)
		}
		if e.ModTime.IsZero() {
			t.Errorf("entry %s has zero mod time", e.Name)
		}
	}
}

func TestFilesystemArchive_Docs(t *testing.T) {
	a, err := NewFilesystemArchive(t.TempDir())
	if err != nil {
		t.Fatalf("NewFilesystemArchive() error = %v", err)
	}

	t.Run("missing doc satisfies fs.ErrNotExist", func(t *testing.T) {
		var v []string
		if err := a.ReadDoc("backup_metadata.json", &v); !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("ReadDoc() error = %v, want fs.ErrNotExist", err)
		}
	})

	t.Run("write then read", func(t *testing.T) {
		want := map[string]int{"a": 1, "b": 2}
		if err := a.WriteDoc("backup_settings.json", want); err != nil {
			t.Fatalf("WriteDoc() error = %v", err)
		}

		got := map[string]int{}
		if err := a.ReadDoc("backup_settings.json", &got); err != nil {
			t.Fatalf("ReadDoc() error = %v", err)
		}
		if got["a"] != 1 || got["b"] != 2 {
			t.Errorf("ReadDoc() = %v, want %v", got, want)
		}
	})

	t.Run("documents are indented", func(t *testing.T) {
		if err := a.WriteDoc("backup_settings.json", map[string]int{"a": 1}); err != nil {
			t.Fatalf("WriteDoc() error = %v", err)
		}
		data, err := os.ReadFile(filepath.Join(a.root, "backup_settings.json"))
		if err != nil {
			t.Fatalf("ReadFile() error = %v", err)
		}
		if !bytes.Contains(data, []byte("\n  ")) {
			t.Errorf("document not indented: %q", data)
		}
	})
}
