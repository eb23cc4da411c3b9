package backup

import (
	"sync"

	"github.com/robfig/cron/v3"

	"fintrack/internal/model"
)

// SnapshotCreator is the slice of the service the scheduler needs.
type SnapshotCreator interface {
	Create(description, kind string) (model.SnapshotDescriptor, error)
}

// Scheduler owns the automatic backup job. It holds at most one cron entry
// at a time; Rearm replaces it whenever the settings change. A failed run is
// logged and the schedule stays armed for the next tick.
type Scheduler struct {
	cron    *cron.Cron
	backups SnapshotCreator
	logger  Logger

	mu    sync.Mutex
	entry cron.EntryID
	armed bool
}

// NewScheduler creates a scheduler and starts its cron runner. No job is
// armed until Rearm is called with settings that enable automatic backups.
func NewScheduler(backups SnapshotCreator, logger Logger) *Scheduler {
	s := &Scheduler{
		cron:    cron.New(),
		backups: backups,
		logger:  logger,
	}
	s.cron.Start()
	return s
}

// Rearm replaces the current schedule with one derived from settings. With
// automatic backups disabled the scheduler goes idle.
func (s *Scheduler) Rearm(settings model.BackupSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.armed {
		s.cron.Remove(s.entry)
		s.armed = false
	}
	if !settings.AutoBackup {
		s.logger.Info("automatic backups disabled")
		return
	}

	expr := CronExpression(settings.BackupFrequency)
	id, err := s.cron.AddFunc(expr, s.fire)
	if err != nil {
		s.logger.Error("arming backup schedule failed", "expression", expr, "error", err)
		return
	}
	s.entry = id
	s.armed = true
	s.logger.Info("automatic backups scheduled", "frequency", settings.BackupFrequency, "expression", expr)
}

// Armed reports whether a backup job is currently scheduled.
func (s *Scheduler) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.armed
}

// Stop halts the cron runner and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) fire() {
	desc, err := s.backups.Create("", model.BackupAuto)
	if err != nil {
		s.logger.Error("automatic backup failed", "error", err)
		return
	}
	s.logger.Info("automatic backup created", "id", desc.ID)
}

// CronExpression maps a backup frequency to its cron schedule. All runs
// happen at 02:00; weekly runs on Sunday, monthly on the first of the month.
// Unknown frequencies fall back to the daily schedule.
func CronExpression(frequency string) string {
	switch frequency {
	case model.FrequencyWeekly:
		return "0 2 * * 0"
	case model.FrequencyMonthly:
		return "0 2 1 * *"
	default:
		return "0 2 * * *"
	}
}
