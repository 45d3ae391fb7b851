package settingsstore

import (
	"fmt"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/bookworm/internal/entities"
)

const (
	envExportSyncEnabled  = "EXPORT_SYNC_ENABLED"
	envExportDir          = "EXPORT_DIR"
	envExportSyncSchedule = "EXPORT_SYNC_SCHEDULE"

	// DefaultSchedule runs hourly at :00.
	DefaultSchedule = "0 * * * *"
)

// Sync outcomes stored after each run.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ExportSyncConfig is the effective configuration for the scheduled catalog export.
type ExportSyncConfig struct {
	Enabled   bool   `json:"enabled"`
	ExportDir string `json:"export_dir"`
	Schedule  string `json:"schedule"`
}

// ExportSyncConfigInfo includes where each value came from.
type ExportSyncConfigInfo struct {
	Enabled       bool   `json:"enabled"`
	EnabledSource string `json:"enabled_source"`

	ExportDir       string `json:"export_dir"`
	ExportDirSource string `json:"export_dir_source"`

	Schedule            string `json:"schedule"`
	ScheduleSource      string `json:"schedule_source"`
	ScheduleDescription string `json:"schedule_description"`
}

// ExportSyncStatus is the outcome of the last run.
type ExportSyncStatus struct {
	LastRunAt *time.Time `json:"last_run_at,omitempty"`
	Status    string     `json:"status,omitempty"`
	Message   string     `json:"message,omitempty"`
}

// ExportSyncUpdate carries optional overrides; nil fields are left unchanged.
type ExportSyncUpdate struct {
	Enabled   *bool   `json:"enabled"`
	ExportDir *string `json:"export_dir"`
	Schedule  *string `json:"schedule"`
}

func (s *SettingsStore) ExportSyncEnabled() bool {
	if v, ok := s.stored(entities.SettingKeyExportSyncEnabled); ok {
		return parseBool(v)
	}
	return s.export.SyncEnabled
}

func (s *SettingsStore) ExportDir() string {
	if v, ok := s.stored(entities.SettingKeyExportSyncDir); ok {
		return v
	}
	return s.export.Dir
}

func (s *SettingsStore) ExportSchedule() string {
	if v, ok := s.stored(entities.SettingKeyExportSyncSchedule); ok {
		return v
	}
	if s.export.SyncSchedule != "" {
		return s.export.SyncSchedule
	}
	return DefaultSchedule
}

// ExportSyncConfig returns the effective configuration.
func (s *SettingsStore) ExportSyncConfig() ExportSyncConfig {
	return ExportSyncConfig{
		Enabled:   s.ExportSyncEnabled(),
		ExportDir: s.ExportDir(),
		Schedule:  s.ExportSchedule(),
	}
}

// ExportSyncConfigInfo returns the configuration with source information.
func (s *SettingsStore) ExportSyncConfigInfo() ExportSyncConfigInfo {
	_, enabledDB := s.stored(entities.SettingKeyExportSyncEnabled)
	_, dirDB := s.stored(entities.SettingKeyExportSyncDir)
	_, schedDB := s.stored(entities.SettingKeyExportSyncSchedule)

	schedule := s.ExportSchedule()
	return ExportSyncConfigInfo{
		Enabled:             s.ExportSyncEnabled(),
		EnabledSource:       source(enabledDB, envExportSyncEnabled),
		ExportDir:           s.ExportDir(),
		ExportDirSource:     source(dirDB, envExportDir),
		Schedule:            schedule,
		ScheduleSource:      source(schedDB, envExportSyncSchedule),
		ScheduleDescription: DescribeSchedule(schedule),
	}
}

// UpdateExportSync validates and persists the given overrides.
func (s *SettingsStore) UpdateExportSync(upd ExportSyncUpdate) error {
	if upd.Schedule != nil {
		if err := ValidateCronSchedule(*upd.Schedule); err != nil {
			return fmt.Errorf("invalid cron schedule %q: %w", *upd.Schedule, err)
		}
	}
	if upd.ExportDir != nil && *upd.ExportDir == "" {
		return fmt.Errorf("export directory cannot be empty")
	}

	if upd.Enabled != nil {
		if err := s.repo.SetSetting(entities.SettingKeyExportSyncEnabled, strconv.FormatBool(*upd.Enabled)); err != nil {
			return err
		}
	}
	if upd.ExportDir != nil {
		if err := s.repo.SetSetting(entities.SettingKeyExportSyncDir, *upd.ExportDir); err != nil {
			return err
		}
	}
	if upd.Schedule != nil {
		if err := s.repo.SetSetting(entities.SettingKeyExportSyncSchedule, *upd.Schedule); err != nil {
			return err
		}
	}
	return nil
}

// ClearExportSync removes all database overrides, reverting to env/default.
func (s *SettingsStore) ClearExportSync() error {
	return s.repo.DeleteSettings(
		entities.SettingKeyExportSyncEnabled,
		entities.SettingKeyExportSyncDir,
		entities.SettingKeyExportSyncSchedule,
	)
}

// ExportSyncStatus returns the last run's outcome.
func (s *SettingsStore) ExportSyncStatus() ExportSyncStatus {
	status := ExportSyncStatus{}
	if v, ok := s.stored(entities.SettingKeyExportSyncLastAt); ok {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			status.LastRunAt = &ts
		}
	}
	status.Status, _ = s.stored(entities.SettingKeyExportSyncLastStatus)
	status.Message, _ = s.stored(entities.SettingKeyExportSyncLastMessage)
	return status
}

// SetExportSyncStatus records a run's outcome at time at.
func (s *SettingsStore) SetExportSyncStatus(at time.Time, status, message string) error {
	if err := s.repo.SetSetting(entities.SettingKeyExportSyncLastAt, at.UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	if err := s.repo.SetSetting(entities.SettingKeyExportSyncLastStatus, status); err != nil {
		return err
	}
	return s.repo.SetSetting(entities.SettingKeyExportSyncLastMessage, message)
}

// ValidateCronSchedule checks a 5-field cron expression.
func ValidateCronSchedule(schedule string) error {
	_, err := cronParser.Parse(schedule)
	return err
}

// ParseSchedule parses a 5-field cron expression.
func ParseSchedule(schedule string) (cron.Schedule, error) {
	return cronParser.Parse(schedule)
}

// DescribeSchedule returns a human-readable description of common schedules.
func DescribeSchedule(schedule string) string {
	switch schedule {
	case "0 * * * *":
		return "Every hour at :00"
	case "*/15 * * * *":
		return "Every 15 minutes"
	case "*/30 * * * *":
		return "Every 30 minutes"
	case "0 */6 * * *":
		return "Every 6 hours"
	case "0 0 * * *":
		return "Daily at midnight"
	case "0 0 * * 0":
		return "Weekly on Sunday at midnight"
	default:
		return "Custom schedule: " + schedule
	}
}

// NextRunTime returns the first activation of schedule after from.
func NextRunTime(schedule string, from time.Time) (*time.Time, error) {
	sched, err := cronParser.Parse(schedule)
	if err != nil {
		return nil, err
	}
	next := sched.Next(from)
	return &next, nil
}
