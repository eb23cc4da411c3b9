package backup

import "fintrack/internal/model"

// Collections provides whole-document access to the two live datasets.
// Reads and writes are wholesale, never incremental: a snapshot captures the
// documents exactly as they are, and a restore replaces them entirely.
type Collections interface {
	ReadRecords() ([]model.Record, error)
	WriteRecords([]model.Record) error
	ReadCategories() ([]model.Category, error)
	WriteCategories([]model.Category) error

	// ReplaceAll overwrites both documents from a snapshot. Implementations
	// stage both writes before committing either, so a failure before the
	// commit leaves live state untouched. A failure between the two commits
	// returns an error wrapping ErrPartialRestore.
	ReplaceAll(records []model.Record, categories []model.Category) error
}

// DocumentStore provides named JSON document persistence in the data
// directory. Used for the backup settings singleton.
// A missing document reads as an error satisfying errors.Is(err,
// fs.ErrNotExist).
type DocumentStore interface {
	ReadDoc(name string, v any) error
	WriteDoc(name string, v any) error
}
