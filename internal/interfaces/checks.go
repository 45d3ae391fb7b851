package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/bookworm/internal/audit"
	"github.com/mrlokans/bookworm/internal/auth"
	"github.com/mrlokans/bookworm/internal/cli"
	"github.com/mrlokans/bookworm/internal/database"
	"github.com/mrlokans/bookworm/internal/database/books"
	"github.com/mrlokans/bookworm/internal/database/settings"
	"github.com/mrlokans/bookworm/internal/exporters"
	"github.com/mrlokans/bookworm/internal/http"
	"github.com/mrlokans/bookworm/internal/importers"
	"github.com/mrlokans/bookworm/internal/metadata"
	"github.com/mrlokans/bookworm/internal/scheduler"
	"github.com/mrlokans/bookworm/internal/services"
	"github.com/mrlokans/bookworm/internal/settingsstore"
	"github.com/mrlokans/bookworm/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ services.BookStore = (*books.Repository)(nil)
var _ metadata.BookStore = (*books.Repository)(nil)
var _ scheduler.BookLister = (*books.Repository)(nil)
var _ settingsstore.Repository = (*settings.Repository)(nil)
var _ auth.OwnerStore = (*settingsstore.SettingsStore)(nil)
var _ http.HealthChecker = (*database.Database)(nil)

// =============================================================================
// Library Service
// =============================================================================

var _ http.Library = (*services.LibraryService)(nil)
var _ importers.BookAdder = (*services.LibraryService)(nil)

// =============================================================================
// Audit Trail
// =============================================================================

var _ services.AuditLogger = (*audit.Service)(nil)
var _ services.DeletionSnapshotter = (*audit.Snapshotter)(nil)
var _ metadata.AuditLogger = (*audit.Service)(nil)
var _ importers.ImportAuditor = (*audit.Service)(nil)
var _ scheduler.ExportAuditor = (*audit.Service)(nil)
var _ tasks.AuditTrailPruner = (*audit.Service)(nil)
var _ auth.AuditLogger = (*audit.Service)(nil)
var _ http.AuditReader = (*audit.Service)(nil)
var _ http.ExportAuditor = (*audit.Service)(nil)
var _ http.SettingsAuditor = (*audit.Service)(nil)

// =============================================================================
// External Services and Background Work
// =============================================================================

var _ metadata.MetadataProvider = (*metadata.OpenLibraryClient)(nil)
var _ http.Enricher = (*metadata.Enricher)(nil)
var _ tasks.BookEnricher = (*metadata.Enricher)(nil)
var _ http.TaskQueue = (*tasks.Client)(nil)
var _ http.ExportRunner = (*scheduler.ExportScheduler)(nil)
var _ http.ExportSettings = (*settingsstore.SettingsStore)(nil)

// =============================================================================
// Import / Export
// =============================================================================

var _ importers.Converter = (*importers.CSVConverter)(nil)
var _ importers.Converter = (*importers.JSONConverter)(nil)
var _ exporters.BookExporter = exporters.CSVExporter{}
var _ exporters.BookExporter = exporters.JSONExporter{}
var _ exporters.BookExporter = exporters.YAMLExporter{}

// =============================================================================
// CLI
// =============================================================================

var _ cli.Command = (*cli.AddCommand)(nil)
var _ cli.Command = (*cli.ListCommand)(nil)
var _ cli.Command = (*cli.SearchCommand)(nil)
var _ cli.Command = (*cli.StatsCommand)(nil)
var _ cli.Command = (*cli.ToggleReadCommand)(nil)
var _ cli.Command = (*cli.DeleteCommand)(nil)
var _ cli.Command = (*cli.ImportCommand)(nil)
var _ cli.Command = (*cli.ExportCommand)(nil)
var _ cli.Command = (*cli.SetPasswordCommand)(nil)
