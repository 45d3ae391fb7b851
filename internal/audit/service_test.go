package audit

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	auditRepo "github.com/mrlokans/bookworm/internal/database/audit"
	"github.com/mrlokans/bookworm/internal/entities"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.AuditEvent{})
	require.NoError(t, err)

	return NewService(auditRepo.NewRepository(db)), db
}

func findByAction(t *testing.T, db *gorm.DB, action string) entities.AuditEvent {
	t.Helper()
	var event entities.AuditEvent
	require.NoError(t, db.Where("action = ?", action).First(&event).Error)
	return event
}

func TestService_Log(t *testing.T) {
	svc, db := setupTestService(t)

	event := &entities.AuditEvent{
		EventType: entities.AuditEventImport,
		Action:    "test_import",
		Status:    entities.AuditStatusSuccess,
	}
	require.NoError(t, svc.Log(event))

	saved := findByAction(t, db, "test_import")
	assert.Equal(t, event.ID, saved.ID)
}

func TestService_BookEvents(t *testing.T) {
	svc, db := setupTestService(t)
	book := &entities.Book{ID: 7, Title: "Dune", Author: "Frank Herbert"}

	svc.LogBookAdd(book)
	event := findByAction(t, db, "book_add")
	assert.Equal(t, entities.AuditEventBookAdd, event.EventType)
	assert.Equal(t, "book", event.EntityType)
	require.NotNil(t, event.EntityID)
	assert.Equal(t, uint(7), *event.EntityID)
	assert.Equal(t, "Added 'Dune' by Frank Herbert", event.Description)

	svc.LogBookUpdate(book)
	assert.Equal(t, "Updated 'Dune'", findByAction(t, db, "book_update").Description)

	book.IsRead = true
	svc.LogToggleRead(book)
	assert.Equal(t, "Marked 'Dune' as read", findByAction(t, db, "book_toggle_read").Description)

	svc.LogBookDelete(book)
	assert.Equal(t, entities.AuditEventBookDelete, findByAction(t, db, "book_delete").EventType)
}

func TestService_LogDeleteByTitle(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogDeleteByTitle("X", 2)

	event := findByAction(t, db, "delete_by_title")
	assert.Equal(t, entities.AuditEventBookDelete, event.EventType)
	assert.Nil(t, event.EntityID)
	assert.Contains(t, event.Description, "2 book(s)")
	assert.JSONEq(t, `{"title":"X","removed":2}`, event.Metadata)
}

func TestService_LogImport(t *testing.T) {
	svc, db := setupTestService(t)

	t.Run("successful import", func(t *testing.T) {
		svc.LogImport("csv", "Imported 5 books", 5, 1, nil)

		event := findByAction(t, db, "csv_import")
		assert.Equal(t, entities.AuditStatusSuccess, event.Status)
		assert.JSONEq(t, `{"imported":5,"failed":1}`, event.Metadata)
	})

	t.Run("failed import", func(t *testing.T) {
		svc.LogImport("json", "Import failed", 0, 0, errors.New("malformed file"))

		event := findByAction(t, db, "json_import")
		assert.Equal(t, entities.AuditStatusFailed, event.Status)
		assert.Contains(t, event.ErrorMsg, "malformed file")
	})
}

func TestService_LogExportAndEnrich(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogExport("markdown", "Exported 3 books", nil)
	assert.Equal(t, entities.AuditStatusSuccess, findByAction(t, db, "markdown_export").Status)

	svc.LogMetadataEnrich(4, "Enrichment failed", errors.New("not found"))
	event := findByAction(t, db, "book_enrich")
	assert.Equal(t, entities.AuditStatusFailed, event.Status)
	assert.Equal(t, uint(4), *event.EntityID)
}

func TestService_LogAuth(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogAuth("login", "192.168.1.1", true)
	svc.LogAuth("login_failed", "10.0.0.1", false)

	assert.Equal(t, "192.168.1.1", findByAction(t, db, "login").IPAddress)
	assert.Equal(t, entities.AuditStatusFailed, findByAction(t, db, "login_failed").Status)
}

func TestService_LogSettings(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogSettings("export_settings_update", "Schedule changed")

	assert.Equal(t, entities.AuditEventSettings, findByAction(t, db, "export_settings_update").EventType)
}

func TestService_DeleteOldEvents(t *testing.T) {
	svc, db := setupTestService(t)

	require.NoError(t, svc.Log(&entities.AuditEvent{
		EventType: entities.AuditEventExport, Action: "old", Status: entities.AuditStatusSuccess,
		CreatedAt: time.Now().Add(-72 * time.Hour),
	}))
	svc.LogExport("csv", "fresh", nil)

	deleted, err := svc.DeleteOldEvents(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var count int64
	require.NoError(t, db.Model(&entities.AuditEvent{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	events, total, err := svc.ListEvents(auditRepo.EventFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "csv_export", events[0].Action)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
