package model

import "time"

// Record is a single income or expense entry in the ledger.
// Category name and icon are denormalized onto the record so the UI can
// render lists without a join against the categories document.
type Record struct {
	ID           string  `json:"id"`
	Amount       float64 `json:"amount"`
	Type         string  `json:"type"` // "income" or "expense"
	CategoryID   string  `json:"categoryId,omitempty"`
	CategoryName string  `json:"categoryName,omitempty"`
	CategoryIcon string  `json:"categoryIcon,omitempty"`
	Description  string  `json:"description,omitempty"`
	Date         string  `json:"date"` // YYYY-MM-DD
	CreatedAt    string  `json:"createdAt,omitempty"`
}

// Category classifies records as a kind of income or expense.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"` // "income" or "expense"
	Icon string `json:"icon,omitempty"`
}

// Snapshot kinds. BackupUnknown is only assigned to descriptors rebuilt from
// file stats, where the original kind is no longer recoverable.
const (
	BackupManual  = "manual"
	BackupAuto    = "auto"
	BackupUnknown = "unknown"
)

// SnapshotDescriptor is the catalog entry for one snapshot file.
// Immutable once created except for deletion. Reconstructed marks entries
// rebuilt from file stats after catalog loss: best-effort provenance rather
// than authoritative.
type SnapshotDescriptor struct {
	ID            string    `json:"id"`
	Filename      string    `json:"filename"`
	Description   string    `json:"description"`
	Type          string    `json:"type"`
	CreatedAt     time.Time `json:"createdAt"`
	Size          int64     `json:"size"`
	Reconstructed bool      `json:"reconstructed,omitempty"`
}

// Snapshot is the self-contained backup document written to the archive.
// Write-once; never mutated after creation.
type Snapshot struct {
	ID          string     `json:"id"`
	Timestamp   time.Time  `json:"timestamp"`
	Description string     `json:"description"`
	Type        string     `json:"type"`
	Records     []Record   `json:"records"`
	Categories  []Category `json:"categories"`
	Version     string     `json:"version"`
}

// Backup frequencies accepted by the scheduler.
const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

// BackupSettings is the singleton backup configuration document.
// LastBackupTime is set only by backup completion, never by user input.
type BackupSettings struct {
	AutoBackup      bool       `json:"autoBackup"`
	BackupFrequency string     `json:"backupFrequency"`
	RetentionDays   int        `json:"backupRetention"`
	LastBackupTime  *time.Time `json:"lastBackupTime"`
}

// RestoreEntry is one line of the restore audit log, newest first.
type RestoreEntry struct {
	Timestamp      time.Time `json:"timestamp"`
	BackupID       string    `json:"backupId"`
	BackupFilename string    `json:"backupFilename"`
	BackupTime     time.Time `json:"backupTime"`
}
