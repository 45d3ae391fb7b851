package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookworm/internal/metadata"
)

// BookEnricher enriches books from an external metadata source.
type BookEnricher interface {
	EnrichBook(ctx context.Context, bookID uint) (*metadata.EnrichmentResult, error)
	EnrichAllMissing(ctx context.Context) (*metadata.BatchResult, error)
}

// EnrichBookTask enriches a single book's metadata from external sources.
type EnrichBookTask struct {
	BookID uint `json:"book_id"`
}

// Config returns the queue configuration for book enrichment tasks.
func (t EnrichBookTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "enrich_book",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// EnrichBookProcessor creates a processor function for EnrichBookTask.
func EnrichBookProcessor(enricher BookEnricher) backlite.QueueProcessor[EnrichBookTask] {
	return func(ctx context.Context, task EnrichBookTask) error {
		if enricher == nil {
			return fmt.Errorf("enricher not configured")
		}

		result, err := enricher.EnrichBook(ctx, task.BookID)
		if err != nil {
			return fmt.Errorf("enrich book %d: %w", task.BookID, err)
		}

		if len(result.UpdatedFields) > 0 {
			slog.Info("Enrich task updated book",
				"book_id", task.BookID, "title", result.Title, "fields", result.UpdatedFields, "source", result.Source)
		} else {
			slog.Info("Enrich task found nothing to update", "book_id", task.BookID, "title", result.Title)
		}
		return nil
	}
}

// NewEnrichBookQueue creates a backlite queue for book enrichment tasks.
func NewEnrichBookQueue(enricher BookEnricher) backlite.Queue {
	return backlite.NewQueue(EnrichBookProcessor(enricher))
}
