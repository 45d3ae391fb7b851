package tasks

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/mrlokans/bookworm/internal/config"
)

// Config holds configuration for the task queue system.
type Config struct {
	// Workers is the number of concurrent task workers. Default: 2
	Workers int

	// MaxRetries is the default maximum retry attempts for failed tasks. Default: 3
	MaxRetries int

	// RetryDelay is the default backoff duration between retries. Default: 1m
	RetryDelay time.Duration

	// TaskTimeout is the default timeout for task execution. Default: 5m
	TaskTimeout time.Duration

	// ReleaseAfter is when stuck tasks are released back to queue. Default: 15m
	ReleaseAfter time.Duration

	// CleanupInterval is how often to clean up completed tasks. Default: 1h
	CleanupInterval time.Duration

	// RetentionDuration is how long to keep completed tasks. Default: 24h
	RetentionDuration time.Duration

	// AuditRetentionDays is passed to scheduled audit cleanups. Default: 30
	AuditRetentionDays int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Workers:            2,
		MaxRetries:         3,
		RetryDelay:         1 * time.Minute,
		TaskTimeout:        5 * time.Minute,
		ReleaseAfter:       15 * time.Minute,
		CleanupInterval:    1 * time.Hour,
		RetentionDuration:  24 * time.Hour,
		AuditRetentionDays: 30,
	}
}

// ConfigFrom builds a Config from application settings, keeping defaults for zero values.
func ConfigFrom(t config.Tasks, a config.Audit) Config {
	cfg := DefaultConfig()
	if t.Workers > 0 {
		cfg.Workers = t.Workers
	}
	if t.MaxRetries > 0 {
		cfg.MaxRetries = t.MaxRetries
	}
	if t.RetryDelay > 0 {
		cfg.RetryDelay = t.RetryDelay
	}
	if t.TaskTimeout > 0 {
		cfg.TaskTimeout = t.TaskTimeout
	}
	if t.ReleaseAfter > 0 {
		cfg.ReleaseAfter = t.ReleaseAfter
	}
	if t.CleanupInterval > 0 {
		cfg.CleanupInterval = t.CleanupInterval
	}
	if t.RetentionDuration > 0 {
		cfg.RetentionDuration = t.RetentionDuration
	}
	if a.RetentionDays > 0 {
		cfg.AuditRetentionDays = a.RetentionDays
	}
	return cfg
}

// DatabasePath returns override when set, otherwise "<name>-tasks<ext>" next to mainDBPath.
func DatabasePath(mainDBPath, override string) string {
	if strings.TrimSpace(override) != "" {
		return override
	}
	dir := filepath.Dir(mainDBPath)
	base := filepath.Base(mainDBPath)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	if ext == "" {
		ext = ".db"
	}
	return filepath.Join(dir, name+"-tasks"+ext)
}
