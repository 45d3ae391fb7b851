package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, int32(8188), cfg.HTTP.Port)
	assert.Equal(t, "0.0.0.0", cfg.HTTP.Host)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, AuthModeNone, cfg.Auth.Mode)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionLifetime)
	assert.Equal(t, "0 * * * *", cfg.Export.SyncSchedule)
	assert.False(t, cfg.Export.SyncEnabled)
	assert.True(t, cfg.Tasks.Enabled)
	assert.Equal(t, 2, cfg.Tasks.Workers)
	assert.Equal(t, 30, cfg.Audit.RetentionDays)
	assert.Equal(t, DefaultOpenLibraryBaseURL, cfg.Metadata.OpenLibraryBaseURL)
}

func TestNewConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_DSN", "postgres://bookworm@localhost/bookworm")
	t.Setenv("AUTH_MODE", "local")
	t.Setenv("TASK_WORKERS", "5")
	t.Setenv("EXPORT_SYNC_ENABLED", "true")
	t.Setenv("AUTH_LOCKOUT_DURATION", "1h")

	cfg := NewConfig()

	assert.Equal(t, int32(9000), cfg.HTTP.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "postgres://bookworm@localhost/bookworm", cfg.Database.DSN)
	assert.Equal(t, AuthModeLocal, cfg.Auth.Mode)
	assert.Equal(t, 5, cfg.Tasks.Workers)
	assert.True(t, cfg.Export.SyncEnabled)
	assert.Equal(t, time.Hour, cfg.Auth.LockoutDuration)
}
