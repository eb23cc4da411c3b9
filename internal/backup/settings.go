package backup

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"time"

	"fintrack/internal/model"
)

// settingsDoc is the data-directory document holding the backup settings
// singleton.
const settingsDoc = "backup_settings.json"

// Retention bounds. Values outside the range are clamped, never rejected.
const (
	DefaultRetentionDays = 30
	MinRetentionDays     = 1
	MaxRetentionDays     = 365
)

// SettingsInput is the caller-supplied settings update. Pointer fields
// distinguish "absent" from zero values; absent or invalid fields fall back
// to defaults rather than producing an error. LastBackupTime is deliberately
// not part of the input: it is owned by backup completion.
type SettingsInput struct {
	AutoBackup      *bool  `json:"autoBackup"`
	BackupFrequency string `json:"backupFrequency"`
	RetentionDays   *int   `json:"backupRetention"`
}

// SettingsStore persists the validated backup settings document.
type SettingsStore struct {
	docs     DocumentStore
	logger   Logger
	mu       sync.Mutex
	onChange func(model.BackupSettings)
}

// NewSettingsStore creates a settings store over the given document store.
func NewSettingsStore(docs DocumentStore, logger Logger) *SettingsStore {
	return &SettingsStore{docs: docs, logger: logger}
}

// OnChange registers a hook invoked after every successful Update with the
// newly persisted settings. The scheduler re-arms through this hook.
func (s *SettingsStore) OnChange(fn func(model.BackupSettings)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// DefaultSettings returns the documented defaults used when nothing has been
// persisted yet.
func DefaultSettings() model.BackupSettings {
	return model.BackupSettings{
		AutoBackup:      true,
		BackupFrequency: model.FrequencyDaily,
		RetentionDays:   DefaultRetentionDays,
		LastBackupTime:  nil,
	}
}

// Get returns the persisted settings, or the defaults if none exist yet.
func (s *SettingsStore) Get() (model.BackupSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked()
}

func (s *SettingsStore) getLocked() (model.BackupSettings, error) {
	var settings model.BackupSettings
	err := s.docs.ReadDoc(settingsDoc, &settings)
	if err == nil {
		return settings, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultSettings(), nil
	}
	return model.BackupSettings{}, fmt.Errorf("loading backup settings: %w", err)
}

// Update validates and persists new settings. Each field is coerced to the
// nearest valid value; LastBackupTime is always carried over from the
// persisted state. The registered change hook fires after the persist.
func (s *SettingsStore) Update(input SettingsInput) (model.BackupSettings, error) {
	s.mu.Lock()

	current, err := s.getLocked()
	if err != nil {
		s.mu.Unlock()
		return model.BackupSettings{}, err
	}

	validated := model.BackupSettings{
		AutoBackup:      true,
		BackupFrequency: model.FrequencyDaily,
		RetentionDays:   DefaultRetentionDays,
		LastBackupTime:  current.LastBackupTime,
	}
	if input.AutoBackup != nil {
		validated.AutoBackup = *input.AutoBackup
	}
	switch input.BackupFrequency {
	case model.FrequencyDaily, model.FrequencyWeekly, model.FrequencyMonthly:
		validated.BackupFrequency = input.BackupFrequency
	}
	// Zero reads as "unset", matching the falsy handling the UI relies on.
	if input.RetentionDays != nil && *input.RetentionDays != 0 {
		validated.RetentionDays = clampRetention(*input.RetentionDays)
	}

	if err := s.docs.WriteDoc(settingsDoc, validated); err != nil {
		s.mu.Unlock()
		return model.BackupSettings{}, fmt.Errorf("persisting backup settings: %w", err)
	}
	hook := s.onChange
	s.mu.Unlock()

	s.logger.Info("backup settings updated",
		"autoBackup", validated.AutoBackup,
		"frequency", validated.BackupFrequency,
		"retentionDays", validated.RetentionDays)

	if hook != nil {
		hook(validated)
	}
	return validated, nil
}

// SetLastBackupTime records the completion time of a backup. This is the
// only path that mutates LastBackupTime.
func (s *SettingsStore) SetLastBackupTime(t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.getLocked()
	if err != nil {
		return err
	}
	settings.LastBackupTime = &t
	if err := s.docs.WriteDoc(settingsDoc, settings); err != nil {
		return fmt.Errorf("persisting last backup time: %w", err)
	}
	return nil
}

func clampRetention(days int) int {
	if days < MinRetentionDays {
		return MinRetentionDays
	}
	if days > MaxRetentionDays {
		return MaxRetentionDays
	}
	return days
}
