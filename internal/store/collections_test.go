package store

import (
	"errors"
	"testing"

	"fintrack/internal/backup"
	"fintrack/internal/model"
)

func TestFileCollections_Seeding(t *testing.T) {
	c, err := NewFileCollections(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCollections() error = %v", err)
	}

	t.Run("categories seed with defaults", func(t *testing.T) {
		categories, err := c.ReadCategories()
		if err != nil {
			t.Fatalf("ReadCategories() error = %v", err)
		}
		if len(categories) != len(DefaultCategories()) {
			t.Fatalf("got %d categories, want %d", len(categories), len(DefaultCategories()))
		}

		var income, expense int
		for _, cat := range categories {
			switch cat.Type {
			case "income":
				income++
			case "expense":
				expense++
			default:
				t.Errorf("category %s has unknown type %q", cat.ID, cat.Type)
			}
		}
		if expense != 8 || income != 5 {
			t.Errorf("got %d expense / %d income categories, want 8 / 5", expense, income)
		}
	})

	t.Run("records seed empty", func(t *testing.T) {
		records, err := c.ReadRecords()
		if err != nil {
			t.Fatalf("ReadRecords() error = %v", err)
		}
		if len(records) != 0 {
			t.Fatalf("got %d records, want 0", len(records))
		}
	})

	t.Run("seeded data survives reopen", func(t *testing.T) {
		reopened, err := NewFileCollections(c.dir)
		if err != nil {
			t.Fatalf("NewFileCollections() error = %v", err)
		}
		categories, err := reopened.ReadCategories()
		if err != nil {
			t.Fatalf("ReadCategories() error = %v", err)
		}
		if len(categories) != len(DefaultCategories()) {
			t.Errorf("got %d categories after reopen, want %d", len(categories), len(DefaultCategories()))
		}
	})
}

func TestFileCollections_WriteRead(t *testing.T) {
	c, err := NewFileCollections(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCollections() error = %v", err)
	}

	records := []model.Record{
		{ID: "1", Amount: 12.5, Type: "expense", CategoryID: "1", Date: "2025-06-15"},
		{ID: "2", Amount: 3000, Type: "income", CategoryID: "9", Date: "2025-06-01"},
	}
	if err := c.WriteRecords(records); err != nil {
		t.Fatalf("WriteRecords() error = %v", err)
	}

	got, err := c.ReadRecords()
	if err != nil {
		t.Fatalf("ReadRecords() error = %v", err)
	}
	if len(got) != len(records) {
		t.Fatalf("got %d records, want %d", len(got), len(records))
	}
	for i := range records {
		if got[i] != records[i] {
			t.Errorf("record %d = %+v, want %+v", i, got[i], records[i])
		}
	}
}

func TestFileCollections_ReplaceAll(t *testing.T) {
	c, err := NewFileCollections(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCollections() error = %v", err)
	}

	if err := c.WriteRecords([]model.Record{{ID: "live", Amount: 1, Type: "expense", Date: "2025-06-15"}}); err != nil {
		t.Fatalf("WriteRecords() error = %v", err)
	}

	records := []model.Record{{ID: "snap", Amount: 9, Type: "income", Date: "2025-01-01"}}
	categories := []model.Category{{ID: "c1", Name: "Salary", Type: "income"}}
	if err := c.ReplaceAll(records, categories); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}

	gotRecords, _ := c.ReadRecords()
	if len(gotRecords) != 1 || gotRecords[0].ID != "snap" {
		t.Errorf("records after ReplaceAll = %+v", gotRecords)
	}
	gotCategories, _ := c.ReadCategories()
	if len(gotCategories) != 1 || gotCategories[0].ID != "c1" {
		t.Errorf("categories after ReplaceAll = %+v", gotCategories)
	}
}

func TestMemCollections_PartialRestore(t *testing.T) {
	c := NewMemCollections()
	c.FailCategoriesWrite = true

	err := c.ReplaceAll([]model.Record{{ID: "1"}}, []model.Category{{ID: "c"}})
	if !errors.Is(err, backup.ErrPartialRestore) {
		t.Fatalf("ReplaceAll() error = %v, want ErrPartialRestore", err)
	}

	// Records committed, categories did not.
	records, _ := c.ReadRecords()
	if len(records) != 1 {
		t.Errorf("got %d records, want 1", len(records))
	}
	categories, _ := c.ReadCategories()
	if len(categories) != len(DefaultCategories()) {
		t.Errorf("categories changed by failed ReplaceAll")
	}
}

func TestFileDocuments(t *testing.T) {
	d, err := NewFileDocuments(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileDocuments() error = %v", err)
	}

	settings := model.BackupSettings{AutoBackup: true, BackupFrequency: "weekly", RetentionDays: 14}
	if err := d.WriteDoc("backup_settings.json", settings); err != nil {
		t.Fatalf("WriteDoc() error = %v", err)
	}

	var got model.BackupSettings
	if err := d.ReadDoc("backup_settings.json", &got); err != nil {
		t.Fatalf("ReadDoc() error = %v", err)
	}
	if got.BackupFrequency != "weekly" || got.RetentionDays != 14 {
		t.Errorf("ReadDoc() = %+v, want %+v", got, settings)
	}
}
