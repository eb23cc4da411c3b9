package backup_test

import (
	"testing"
	"time"

	"fintrack/internal/backup"
	"fintrack/internal/model"
	"fintrack/internal/store"
)

func newSettingsStore(t *testing.T) *backup.SettingsStore {
	t.Helper()
	return backup.NewSettingsStore(store.NewMemDocuments(), backup.NewNopLogger())
}

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }

func TestSettingsStore_Get(t *testing.T) {
	t.Run("missing document yields defaults", func(t *testing.T) {
		settings, err := newSettingsStore(t).Get()
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if !settings.AutoBackup {
			t.Error("default AutoBackup = false, want true")
		}
		if settings.BackupFrequency != model.FrequencyDaily {
			t.Errorf("default frequency = %q, want %q", settings.BackupFrequency, model.FrequencyDaily)
		}
		if settings.RetentionDays != backup.DefaultRetentionDays {
			t.Errorf("default retention = %d, want %d", settings.RetentionDays, backup.DefaultRetentionDays)
		}
		if settings.LastBackupTime != nil {
			t.Errorf("default LastBackupTime = %v, want nil", settings.LastBackupTime)
		}
	})
}

func TestSettingsStore_Update(t *testing.T) {
	tests := []struct {
		name          string
		input         backup.SettingsInput
		wantAuto      bool
		wantFrequency string
		wantRetention int
	}{
		{
			name:          "all fields valid",
			input:         backup.SettingsInput{AutoBackup: boolPtr(false), BackupFrequency: "weekly", RetentionDays: intPtr(60)},
			wantAuto:      false,
			wantFrequency: model.FrequencyWeekly,
			wantRetention: 60,
		},
		{
			name:          "empty input falls back to defaults",
			input:         backup.SettingsInput{},
			wantAuto:      true,
			wantFrequency: model.FrequencyDaily,
			wantRetention: backup.DefaultRetentionDays,
		},
		{
			name:          "retention clamped high and frequency coerced",
			input:         backup.SettingsInput{BackupFrequency: "hourly", RetentionDays: intPtr(9999)},
			wantAuto:      true,
			wantFrequency: model.FrequencyDaily,
			wantRetention: backup.MaxRetentionDays,
		},
		{
			name:          "retention clamped low",
			input:         backup.SettingsInput{RetentionDays: intPtr(-5)},
			wantAuto:      true,
			wantFrequency: model.FrequencyDaily,
			wantRetention: backup.MinRetentionDays,
		},
		{
			name:          "zero retention reads as unset",
			input:         backup.SettingsInput{RetentionDays: intPtr(0)},
			wantAuto:      true,
			wantFrequency: model.FrequencyDaily,
			wantRetention: backup.DefaultRetentionDays,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings, err := newSettingsStore(t).Update(tt.input)
			if err != nil {
				t.Fatalf("Update() error = %v", err)
			}
			if settings.AutoBackup != tt.wantAuto {
				t.Errorf("AutoBackup = %t, want %t", settings.AutoBackup, tt.wantAuto)
			}
			if settings.BackupFrequency != tt.wantFrequency {
				t.Errorf("frequency = %q, want %q", settings.BackupFrequency, tt.wantFrequency)
			}
			if settings.RetentionDays != tt.wantRetention {
				t.Errorf("retention = %d, want %d", settings.RetentionDays, tt.wantRetention)
			}
		})
	}

	t.Run("last backup time is carried over", func(t *testing.T) {
		s := newSettingsStore(t)
		stamp := time.Date(2025, 6, 15, 2, 0, 0, 0, time.UTC)
		if err := s.SetLastBackupTime(stamp); err != nil {
			t.Fatalf("SetLastBackupTime() error = %v", err)
		}

		settings, err := s.Update(backup.SettingsInput{BackupFrequency: "monthly"})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if settings.LastBackupTime == nil || !settings.LastBackupTime.Equal(stamp) {
			t.Errorf("LastBackupTime = %v, want %v", settings.LastBackupTime, stamp)
		}
	})

	t.Run("change hook fires with validated settings", func(t *testing.T) {
		s := newSettingsStore(t)
		var got *model.BackupSettings
		s.OnChange(func(settings model.BackupSettings) { got = &settings })

		if _, err := s.Update(backup.SettingsInput{BackupFrequency: "weekly"}); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if got == nil {
			t.Fatal("change hook did not fire")
		}
		if got.BackupFrequency != model.FrequencyWeekly {
			t.Errorf("hook frequency = %q, want %q", got.BackupFrequency, model.FrequencyWeekly)
		}
	})
}
