package store

import (
	"fmt"
	"io/fs"
	"sync"

	json "github.com/goccy/go-json"

	"fintrack/internal/backup"
	"fintrack/internal/model"
)

// MemCollections is an in-memory Collections used in tests.
type MemCollections struct {
	mu         sync.Mutex
	records    []model.Record
	categories []model.Category

	// FailCategoriesWrite makes the next ReplaceAll fail after the records
	// commit, simulating a partial restore.
	FailCategoriesWrite bool
}

var _ backup.Collections = (*MemCollections)(nil)

// NewMemCollections creates a memory store seeded with the default
// categories and no records.
func NewMemCollections() *MemCollections {
	return &MemCollections{categories: DefaultCategories()}
}

func (c *MemCollections) ReadRecords() ([]model.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Record, len(c.records))
	copy(out, c.records)
	return out, nil
}

func (c *MemCollections) WriteRecords(records []model.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append([]model.Record(nil), records...)
	return nil
}

func (c *MemCollections) ReadCategories() ([]model.Category, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Category, len(c.categories))
	copy(out, c.categories)
	return out, nil
}

func (c *MemCollections) WriteCategories(categories []model.Category) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.categories = append([]model.Category(nil), categories...)
	return nil
}

func (c *MemCollections) ReplaceAll(records []model.Record, categories []model.Category) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append([]model.Record(nil), records...)
	if c.FailCategoriesWrite {
		c.FailCategoriesWrite = false
		return fmt.Errorf("%w: injected failure", backup.ErrPartialRestore)
	}
	c.categories = append([]model.Category(nil), categories...)
	return nil
}

// MemDocuments is an in-memory DocumentStore used in tests.
type MemDocuments struct {
	mu   sync.Mutex
	docs map[string][]byte
}

var _ backup.DocumentStore = (*MemDocuments)(nil)

func NewMemDocuments() *MemDocuments {
	return &MemDocuments{docs: make(map[string][]byte)}
}

func (d *MemDocuments) ReadDoc(name string, v any) error {
	d.mu.Lock()
	data, ok := d.docs[name]
	d.mu.Unlock()
	if !ok {
		return fmt.Errorf("%s: %w", name, fs.ErrNotExist)
	}
	return json.Unmarshal(data, v)
}

func (d *MemDocuments) WriteDoc(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.docs[name] = data
	return nil
}
