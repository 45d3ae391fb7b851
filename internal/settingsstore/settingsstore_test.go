package settingsstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookworm/internal/config"
	"github.com/mrlokans/bookworm/internal/database"
	"github.com/mrlokans/bookworm/internal/database/settings"
	"github.com/mrlokans/bookworm/internal/entities"
)

func setupStore(t *testing.T, export config.Export) (*SettingsStore, *settings.Repository) {
	t.Helper()
	db, err := database.NewDatabase(config.Database{
		Driver:   config.DriverSQLite,
		Path:     filepath.Join(t.TempDir(), "settings.db"),
		LogLevel: "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := settings.NewRepository(db.DB)
	return New(repo, export), repo
}

func clearExportEnv(t *testing.T) {
	t.Setenv(envExportSyncEnabled, "")
	t.Setenv(envExportDir, "")
	t.Setenv(envExportSyncSchedule, "")
}

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }

func TestExportSyncEnabled_Defaults(t *testing.T) {
	clearExportEnv(t)
	store, _ := setupStore(t, config.Export{Dir: "./catalog"})

	info := store.ExportSyncConfigInfo()
	assert.False(t, info.Enabled)
	assert.Equal(t, SourceDefault, info.EnabledSource)
	assert.Equal(t, "./catalog", info.ExportDir)
	assert.Equal(t, DefaultSchedule, info.Schedule)
	assert.Equal(t, "Every hour at :00", info.ScheduleDescription)
}

func TestExportSync_EnvironmentSource(t *testing.T) {
	clearExportEnv(t)
	t.Setenv(envExportSyncEnabled, "true")
	store, _ := setupStore(t, config.Export{SyncEnabled: true})

	assert.True(t, store.ExportSyncEnabled())
	assert.Equal(t, SourceEnvironment, store.ExportSyncConfigInfo().EnabledSource)
}

func TestExportSync_DatabaseOverridesEnvironment(t *testing.T) {
	clearExportEnv(t)
	t.Setenv(envExportSyncEnabled, "true")
	store, _ := setupStore(t, config.Export{SyncEnabled: true, Dir: "/env/dir"})

	require.NoError(t, store.UpdateExportSync(ExportSyncUpdate{
		Enabled:   boolPtr(false),
		ExportDir: strPtr("/db/dir"),
		Schedule:  strPtr("*/15 * * * *"),
	}))

	info := store.ExportSyncConfigInfo()
	assert.False(t, info.Enabled)
	assert.Equal(t, SourceDatabase, info.EnabledSource)
	assert.Equal(t, "/db/dir", info.ExportDir)
	assert.Equal(t, SourceDatabase, info.ExportDirSource)
	assert.Equal(t, "*/15 * * * *", info.Schedule)

	require.NoError(t, store.ClearExportSync())
	cfg := store.ExportSyncConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "/env/dir", cfg.ExportDir)
	assert.Equal(t, DefaultSchedule, cfg.Schedule)
}

func TestUpdateExportSync_RejectsInvalid(t *testing.T) {
	clearExportEnv(t)
	store, repo := setupStore(t, config.Export{})

	assert.Error(t, store.UpdateExportSync(ExportSyncUpdate{Schedule: strPtr("every day")}))
	assert.Error(t, store.UpdateExportSync(ExportSyncUpdate{ExportDir: strPtr("")}))

	_, ok, err := repo.GetValue(entities.SettingKeyExportSyncSchedule)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExportSyncStatus(t *testing.T) {
	store, _ := setupStore(t, config.Export{})

	assert.Nil(t, store.ExportSyncStatus().LastRunAt)

	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, store.SetExportSyncStatus(at, StatusSuccess, "Exported 3 books"))

	status := store.ExportSyncStatus()
	require.NotNil(t, status.LastRunAt)
	assert.True(t, at.Equal(*status.LastRunAt))
	assert.Equal(t, StatusSuccess, status.Status)
	assert.Equal(t, "Exported 3 books", status.Message)
}

func TestOwnerPasswordHash(t *testing.T) {
	store, _ := setupStore(t, config.Export{})

	assert.False(t, store.HasOwnerPassword())
	require.NoError(t, store.SetOwnerPasswordHash("$2a$hash"))

	hash, ok := store.OwnerPasswordHash()
	assert.True(t, ok)
	assert.Equal(t, "$2a$hash", hash)
	assert.True(t, store.HasOwnerPassword())
}

func TestOwnerTokenHash(t *testing.T) {
	store, _ := setupStore(t, config.Export{})

	_, ok := store.OwnerTokenHash()
	assert.False(t, ok)

	require.NoError(t, store.SetOwnerTokenHash("abc123"))
	hash, ok := store.OwnerTokenHash()
	assert.True(t, ok)
	assert.Equal(t, "abc123", hash)

	require.NoError(t, store.ClearOwnerTokenHash())
	_, ok = store.OwnerTokenHash()
	assert.False(t, ok)
}

func TestValidateCronSchedule(t *testing.T) {
	for _, s := range []string{"0 * * * *", "*/15 * * * *", "0 0 * * 0"} {
		assert.NoError(t, ValidateCronSchedule(s), s)
	}
	for _, s := range []string{"", "* * *", "0 0 0 * * *", "nope"} {
		assert.Error(t, ValidateCronSchedule(s), s)
	}
}

func TestNextRunTime(t *testing.T) {
	from := time.Date(2025, 1, 1, 10, 30, 0, 0, time.UTC)
	next, err := NextRunTime("0 * * * *", from)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 1, 11, 0, 0, 0, time.UTC), *next)

	_, err = NextRunTime("bad", from)
	assert.Error(t, err)
}

func TestDescribeSchedule(t *testing.T) {
	assert.Equal(t, "Daily at midnight", DescribeSchedule("0 0 * * *"))
	assert.Equal(t, "Custom schedule: 5 4 * * *", DescribeSchedule("5 4 * * *"))
}
