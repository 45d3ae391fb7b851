package http

import (
	"context"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookworm/internal/database/audit"
	"github.com/mrlokans/bookworm/internal/entities"
	"github.com/mrlokans/bookworm/internal/exporters"
	"github.com/mrlokans/bookworm/internal/metadata"
	"github.com/mrlokans/bookworm/internal/services"
	"github.com/mrlokans/bookworm/internal/settingsstore"
)

// Each controller depends on the narrow interface it needs. The concrete
// implementations live in services, metadata, tasks, scheduler and audit.

// Library is the book operation set; *services.LibraryService implements it.
type Library interface {
	AddBook(in services.BookInput) (*entities.Book, error)
	UpdateBook(id uint, in services.BookInput) (*entities.Book, error)
	GetBook(id uint) (*entities.Book, error)
	FindByTitle(title string) ([]entities.Book, error)
	Search(field services.SearchField, query string) ([]entities.Book, error)
	Genres() ([]string, error)
	List(opts services.ListOptions) ([]entities.Book, error)
	ToggleRead(id uint) (*entities.Book, error)
	DeleteBook(id uint) error
	DeleteByTitle(title string) (int64, error)
	Statistics(now time.Time) (*services.Statistics, error)
}

// Enricher fills missing metadata synchronously.
type Enricher interface {
	EnrichBook(ctx context.Context, bookID uint) (*metadata.EnrichmentResult, error)
	EnrichAllMissing(ctx context.Context) (*metadata.BatchResult, error)
}

// TaskQueue enqueues background work and reports its status.
type TaskQueue interface {
	Enqueue(ctx context.Context, task backlite.Task) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// ExportRunner runs and reschedules the Markdown catalog export.
type ExportRunner interface {
	RunNow() (exporters.ExportResult, error)
	Reschedule() error
	NextRunTime() *time.Time
	IsRunning() bool
}

// ExportSettings reads and writes the export sync overrides.
type ExportSettings interface {
	ExportSyncConfigInfo() settingsstore.ExportSyncConfigInfo
	ExportSyncStatus() settingsstore.ExportSyncStatus
	UpdateExportSync(upd settingsstore.ExportSyncUpdate) error
	ClearExportSync() error
}

// ExportAuditor records downloads and catalog runs.
type ExportAuditor interface {
	LogExport(format, description string, err error)
}

// SettingsAuditor records settings changes.
type SettingsAuditor interface {
	LogSettings(action, description string)
}

// AuditReader pages through the audit trail.
type AuditReader interface {
	ListEvents(filter audit.EventFilter) ([]entities.AuditEvent, int64, error)
}

// HealthChecker reports database reachability.
type HealthChecker interface {
	Ping() error
}
