package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	json "github.com/goccy/go-json"

	"fintrack/internal/backup"
	"fintrack/internal/model"
)

const (
	recordsDoc    = "records.json"
	categoriesDoc = "categories.json"
)

// DefaultCategories is the category set seeded into an empty data directory.
func DefaultCategories() []model.Category {
	return []model.Category{
		{ID: "1", Name: "Dining", Type: "expense", Icon: "🍽️"},
		{ID: "2", Name: "Transport", Type: "expense", Icon: "🚗"},
		{ID: "3", Name: "Shopping", Type: "expense", Icon: "🛒"},
		{ID: "4", Name: "Entertainment", Type: "expense", Icon: "🎬"},
		{ID: "5", Name: "Healthcare", Type: "expense", Icon: "🏥"},
		{ID: "6", Name: "Education", Type: "expense", Icon: "📚"},
		{ID: "7", Name: "Housing", Type: "expense", Icon: "🏠"},
		{ID: "8", Name: "Other Expense", Type: "expense", Icon: "📝"},
		{ID: "9", Name: "Salary", Type: "income", Icon: "💼"},
		{ID: "10", Name: "Bonus", Type: "income", Icon: "🎁"},
		{ID: "11", Name: "Investment", Type: "income", Icon: "📈"},
		{ID: "12", Name: "Side Income", Type: "income", Icon: "💵"},
		{ID: "13", Name: "Other Income", Type: "income", Icon: "💰"},
	}
}

// FileCollections stores the records and categories documents as JSON files
// in the data directory. Missing documents are seeded on first read, so a
// fresh install starts with the default categories and no records.
//
// A mutex serializes writes; the snapshot service layers its own ordering on
// top, but the HTTP handlers mutate collections directly and must not race
// each other.
type FileCollections struct {
	dir string
	mu  sync.Mutex
}

var _ backup.Collections = (*FileCollections)(nil)

// NewFileCollections creates a collections store over dir, creating it if
// needed.
func NewFileCollections(dir string) (*FileCollections, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &FileCollections{dir: dir}, nil
}

func (c *FileCollections) ReadRecords() ([]model.Record, error) {
	var records []model.Record
	if err := c.readOrSeed(recordsDoc, &records, []model.Record{}); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *FileCollections) WriteRecords(records []model.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writeDoc(recordsDoc, records)
}

func (c *FileCollections) ReadCategories() ([]model.Category, error) {
	var categories []model.Category
	if err := c.readOrSeed(categoriesDoc, &categories, DefaultCategories()); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *FileCollections) WriteCategories(categories []model.Category) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writeDoc(categoriesDoc, categories)
}

// ReplaceAll overwrites both documents from a snapshot. Both replacements
// are staged as temp files before either rename, so a failure while staging
// leaves the live documents untouched. A rename failure after the records
// commit is reported as a partial restore.
func (c *FileCollections) ReplaceAll(records []model.Record, categories []model.Category) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	recData, err := marshalDoc(recordsDoc, records)
	if err != nil {
		return err
	}
	catData, err := marshalDoc(categoriesDoc, categories)
	if err != nil {
		return err
	}

	recTmp, err := stageFile(c.dir, recordsDoc, recData)
	if err != nil {
		return err
	}
	defer os.Remove(recTmp)
	catTmp, err := stageFile(c.dir, categoriesDoc, catData)
	if err != nil {
		return err
	}
	defer os.Remove(catTmp)

	if err := os.Rename(recTmp, filepath.Join(c.dir, recordsDoc)); err != nil {
		return fmt.Errorf("committing records: %w", err)
	}
	if err := os.Rename(catTmp, filepath.Join(c.dir, categoriesDoc)); err != nil {
		return fmt.Errorf("%w: %v", backup.ErrPartialRestore, err)
	}
	return nil
}

// readOrSeed reads a document, seeding and returning the default when the
// file does not exist yet.
func (c *FileCollections) readOrSeed(name string, v any, seed any) error {
	data, err := os.ReadFile(filepath.Join(c.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if err := c.writeDoc(name, seed); err != nil {
			return fmt.Errorf("seeding %s: %w", name, err)
		}
		data, err = os.ReadFile(filepath.Join(c.dir, name))
		if err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	return nil
}

func (c *FileCollections) writeDoc(name string, v any) error {
	data, err := marshalDoc(name, v)
	if err != nil {
		return err
	}
	return writeFileAtomic(c.dir, name, data)
}

func marshalDoc(name string, v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", name, err)
	}
	return data, nil
}

// stageFile writes data to a temp file in dir and returns its path without
// renaming it into place.
func stageFile(dir, name string, data []byte) (string, error) {
	f, err := os.CreateTemp(dir, name+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("staging %s: %w", name, err)
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("staging %s: %w", name, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("staging %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("staging %s: %w", name, err)
	}
	return tmp, nil
}
