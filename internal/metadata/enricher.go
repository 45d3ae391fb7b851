package metadata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mrlokans/bookworm/internal/database/books"
	"github.com/mrlokans/bookworm/internal/entities"
)

// MetadataProvider fetches book metadata from an external source.
type MetadataProvider interface {
	SearchByISBN(ctx context.Context, isbn string) (*BookMetadata, error)
	SearchByTitle(ctx context.Context, title, author string) (*BookMetadata, error)
}

// BookStore is the subset of the books repository used for enrichment.
type BookStore interface {
	GetByID(id uint) (*entities.Book, error)
	GetByISBN(isbn string) (*entities.Book, error)
	ListMissingMetadata() ([]entities.Book, error)
	Update(id uint, upd books.BookUpdate) error
}

// AuditLogger records enrichment outcomes. Optional.
type AuditLogger interface {
	LogMetadataEnrich(bookID uint, description string, err error)
}

// EnrichmentResult contains the outcome of a single enrichment.
type EnrichmentResult struct {
	BookID        uint     `json:"book_id"`
	Title         string   `json:"title"`
	Source        string   `json:"source,omitempty"`
	UpdatedFields []string `json:"updated_fields"`
	Error         string   `json:"error,omitempty"`
}

// BatchResult summarizes EnrichAllMissing.
type BatchResult struct {
	Total    int                `json:"total"`
	Enriched int                `json:"enriched"`
	Skipped  int                `json:"skipped"`
	Failed   int                `json:"failed"`
	Results  []EnrichmentResult `json:"results"`
}

// Enricher fills missing book fields from a MetadataProvider.
type Enricher struct {
	provider MetadataProvider
	store    BookStore
	audit    AuditLogger
}

// NewEnricher creates an enricher. audit may be nil.
func NewEnricher(provider MetadataProvider, store BookStore, audit AuditLogger) *Enricher {
	return &Enricher{provider: provider, store: store, audit: audit}
}

// EnrichBook looks up the book by ISBN (falling back to title and author)
// and writes only the fields that are currently empty.
func (e *Enricher) EnrichBook(ctx context.Context, bookID uint) (*EnrichmentResult, error) {
	book, err := e.store.GetByID(bookID)
	if err != nil {
		return nil, err
	}

	result := &EnrichmentResult{BookID: book.ID, Title: book.Title}

	md, source, err := e.lookup(ctx, book)
	if err != nil {
		result.Error = err.Error()
		e.logAudit(book, "lookup failed", err)
		return result, err
	}
	result.Source = source

	upd, fields, err := e.buildUpdate(book, md)
	if err != nil {
		result.Error = err.Error()
		return result, err
	}
	result.UpdatedFields = fields
	if len(fields) == 0 {
		return result, nil
	}

	if err := e.store.Update(book.ID, upd); err != nil {
		result.Error = err.Error()
		e.logAudit(book, "update failed", err)
		return result, fmt.Errorf("update book %d: %w", book.ID, err)
	}

	e.logAudit(book, fmt.Sprintf("filled %s from %s", strings.Join(fields, ", "), source), nil)
	slog.Info("Enriched book", "book_id", book.ID, "title", book.Title, "fields", fields, "source", source)
	return result, nil
}

// EnrichAllMissing enriches every book missing a description, year, genre or ISBN.
// Individual failures are recorded in the result and do not stop the batch.
func (e *Enricher) EnrichAllMissing(ctx context.Context) (*BatchResult, error) {
	pending, err := e.store.ListMissingMetadata()
	if err != nil {
		return nil, fmt.Errorf("list books missing metadata: %w", err)
	}

	batch := &BatchResult{Total: len(pending), Results: make([]EnrichmentResult, 0, len(pending))}
	for _, book := range pending {
		if err := ctx.Err(); err != nil {
			return batch, err
		}

		res, err := e.EnrichBook(ctx, book.ID)
		switch {
		case err != nil:
			batch.Failed++
			if res == nil {
				res = &EnrichmentResult{BookID: book.ID, Title: book.Title, Error: err.Error()}
			}
		case len(res.UpdatedFields) == 0:
			batch.Skipped++
		default:
			batch.Enriched++
		}
		batch.Results = append(batch.Results, *res)
	}

	slog.Info("Metadata enrichment finished",
		"total", batch.Total, "enriched", batch.Enriched, "skipped", batch.Skipped, "failed", batch.Failed)
	return batch, nil
}

func (e *Enricher) lookup(ctx context.Context, book *entities.Book) (*BookMetadata, string, error) {
	if isbn := book.ISBNOrEmpty(); isbn != "" {
		md, err := e.provider.SearchByISBN(ctx, isbn)
		if err == nil {
			return md, "isbn", nil
		}
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		slog.Debug("ISBN lookup failed, falling back to title", "book_id", book.ID, "error", err)
	}

	md, err := e.provider.SearchByTitle(ctx, book.Title, book.Author)
	if err != nil {
		return nil, "", err
	}
	return md, "title", nil
}

// buildUpdate never overwrites a field that already has a value.
func (e *Enricher) buildUpdate(book *entities.Book, md *BookMetadata) (books.BookUpdate, []string, error) {
	var upd books.BookUpdate
	var fields []string

	if book.DescriptionOrEmpty() == "" && md.Description != "" {
		desc := md.Description
		upd.Description = &desc
		fields = append(fields, "description")
	}

	if book.Year == nil && md.PublicationYear > 0 {
		year := md.PublicationYear
		upd.Year = &year
		fields = append(fields, "year")
	}

	if book.GenreOrEmpty() == "" {
		if genre := pickGenre(md.Subjects); genre != "" {
			upd.Genre = &genre
			fields = append(fields, "genre")
		}
	}

	if book.ISBNOrEmpty() == "" && md.ISBN != "" && len(md.ISBN) <= entities.ISBNMaxLength {
		owner, err := e.store.GetByISBN(md.ISBN)
		switch {
		case errors.Is(err, books.ErrNotFound):
			isbn := md.ISBN
			upd.ISBN = &isbn
			fields = append(fields, "isbn")
		case err != nil:
			return upd, nil, fmt.Errorf("check isbn owner: %w", err)
		default:
			slog.Debug("ISBN already assigned, not copying", "isbn", md.ISBN, "owner_id", owner.ID, "book_id", book.ID)
		}
	}

	return upd, fields, nil
}

// pickGenre returns the first non-blank subject, cut to the genre column width.
func pickGenre(subjects []string) string {
	for _, s := range subjects {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		r := []rune(s)
		if len(r) > entities.GenreMaxLength {
			r = r[:entities.GenreMaxLength]
		}
		return strings.TrimSpace(string(r))
	}
	return ""
}

func (e *Enricher) logAudit(book *entities.Book, msg string, err error) {
	if e.audit == nil {
		return
	}
	e.audit.LogMetadataEnrich(book.ID, fmt.Sprintf("%s: %s", book.Title, msg), err)
}
