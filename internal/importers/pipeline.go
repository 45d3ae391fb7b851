package importers

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mrlokans/bookworm/internal/entities"
	"github.com/mrlokans/bookworm/internal/services"
)

// Row is one book read from an import source.
type Row struct {
	Line   int
	Input  services.BookInput
	IsRead bool
}

// RowError describes a row that could not be imported.
type RowError struct {
	Line    int    `json:"line"`
	Title   string `json:"title,omitempty"`
	Message string `json:"message"`
}

func (e RowError) String() string {
	if e.Title != "" {
		return fmt.Sprintf("Line %d (%s): %s", e.Line, e.Title, e.Message)
	}
	return fmt.Sprintf("Line %d: %s", e.Line, e.Message)
}

// Converter transforms source data into rows. Rows the source could not parse
// at all are returned as errors alongside the good ones.
type Converter interface {
	Convert() ([]Row, []RowError)
	Source() string
}

// BookAdder is the library operation set used for imports.
type BookAdder interface {
	AddBook(in services.BookInput) (*entities.Book, error)
	ToggleRead(id uint) (*entities.Book, error)
}

// ImportAuditor records import outcomes. Optional.
type ImportAuditor interface {
	LogImport(source, description string, imported, failed int, err error)
}

// ImportResult summarizes an import.
type ImportResult struct {
	Source   string     `json:"source"`
	Imported int        `json:"imported"`
	Failed   int        `json:"failed"`
	BookIDs  []uint     `json:"book_ids,omitempty"`
	Errors   []RowError `json:"errors,omitempty"`
}

// Pipeline adds converted rows to the library one by one.
type Pipeline struct {
	library BookAdder
	audit   ImportAuditor
}

// NewPipeline creates an import pipeline. audit may be nil.
func NewPipeline(library BookAdder, audit ImportAuditor) *Pipeline {
	return &Pipeline{library: library, audit: audit}
}

// Import processes every row. Row failures are collected, never returned as an error.
func (p *Pipeline) Import(converter Converter) ImportResult {
	rows, parseErrs := converter.Convert()
	result := ImportResult{
		Source: converter.Source(),
		Errors: append([]RowError(nil), parseErrs...),
		Failed: len(parseErrs),
	}

	for _, row := range rows {
		book, err := p.library.AddBook(row.Input)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, RowError{Line: row.Line, Title: row.Input.Title, Message: describe(err)})
			continue
		}
		if row.IsRead && !book.IsRead {
			if _, err := p.library.ToggleRead(book.ID); err != nil {
				slog.Warn("Imported book but could not mark it read", "book_id", book.ID, "error", err)
			}
		}
		result.Imported++
		result.BookIDs = append(result.BookIDs, book.ID)
	}

	slog.Info("Import finished", "source", result.Source, "imported", result.Imported, "failed", result.Failed)
	if p.audit != nil {
		desc := fmt.Sprintf("Imported %d books from %s (%d failed)", result.Imported, result.Source, result.Failed)
		var err error
		if result.Imported == 0 && result.Failed > 0 {
			err = errors.New(result.Errors[0].Message)
		}
		p.audit.LogImport(result.Source, desc, result.Imported, result.Failed, err)
	}
	return result
}

func describe(err error) string {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Error()
	case errors.Is(err, services.ErrConstraintViolation):
		return "a book with this ISBN already exists"
	}
	return err.Error()
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "y", "read", "x":
		return true
	}
	return false
}
