// Package interfaces documents the core abstractions used throughout the application.
//
// Consumers declare the narrow interface they need next to the code that uses
// it; checks.go pins every concrete implementation to those interfaces.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - services.BookStore: the books Repository contract (internal/services/interfaces.go)
//   - metadata.BookStore: lookups and partial updates for enrichment (internal/metadata/enricher.go)
//   - scheduler.BookLister: every book for the catalog export (internal/scheduler/export_sync.go)
//   - settingsstore.Repository: key/value settings (internal/settingsstore/settingsstore.go)
//   - auth.OwnerStore: owner password and API token hashes (internal/auth/service.go)
//
// ## Collaborator Interfaces
//
//   - http.Library: the book operations served over HTTP (internal/http/stores.go)
//   - importers.BookAdder: the validated add path used by imports (internal/importers/pipeline.go)
//   - cli.Command: a subcommand with ParseFlags and Run (internal/cli/command.go)
//
// ## Audit Interfaces
//
// Each consumer names only the events it records: services.AuditLogger,
// metadata.AuditLogger, importers.ImportAuditor, scheduler.ExportAuditor,
// auth.AuditLogger, http.ExportAuditor and http.SettingsAuditor. audit.Service
// implements all of them.
//
// ## External Service Interfaces
//
//   - metadata.MetadataProvider: book metadata from external APIs (internal/metadata/enricher.go)
//   - tasks.BookEnricher: enrichment run by background workers (internal/tasks/enrich_book.go)
//
// # Adding a New Import Source
//
//  1. Create a converter in internal/importers/ producing []importers.Row:
//
//     type GoodreadsConverter struct {
//     rows []GoodreadsRow
//     }
//
//     func (c *GoodreadsConverter) Convert() ([]importers.Row, []importers.RowError)
//     func (c *GoodreadsConverter) Source() string
//
//     var _ importers.Converter = (*GoodreadsConverter)(nil)
//
//  2. Add an endpoint to ImportController and a CLI flag to ImportCommand.
//
// Rows always go through services.LibraryService.AddBook, so validation and
// ISBN uniqueness apply to every source.
//
// # Adding a New Metadata Provider
//
//  1. Implement MetadataProvider in internal/metadata/
//
//     func (c *GoogleBooksClient) SearchByISBN(ctx context.Context, isbn string) (*BookMetadata, error)
//     func (c *GoogleBooksClient) SearchByTitle(ctx context.Context, title, author string) (*BookMetadata, error)
//
//     var _ MetadataProvider = (*GoogleBooksClient)(nil)
//
//  2. Pass it to metadata.NewEnricher in entrypoint.go
//
// # Compile-Time Interface Checks
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go.
package interfaces
