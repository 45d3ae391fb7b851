package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mikestefanello/backlite"
)

// EnrichAllBooksTask triggers enrichment for every book missing metadata.
type EnrichAllBooksTask struct {
	RequestedAt time.Time `json:"requested_at"`
}

// Config returns the queue configuration for bulk enrichment tasks.
func (t EnrichAllBooksTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "enrich_all_books",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     60 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// EnrichAllBooksProcessor creates a processor function for EnrichAllBooksTask.
func EnrichAllBooksProcessor(enricher BookEnricher) backlite.QueueProcessor[EnrichAllBooksTask] {
	return func(ctx context.Context, task EnrichAllBooksTask) error {
		if enricher == nil {
			return fmt.Errorf("enricher not configured")
		}

		result, err := enricher.EnrichAllMissing(ctx)
		if err != nil {
			return fmt.Errorf("enrich all books: %w", err)
		}

		slog.Info("Bulk enrichment task complete",
			"total", result.Total, "enriched", result.Enriched, "skipped", result.Skipped, "failed", result.Failed)
		return nil
	}
}

// NewEnrichAllBooksQueue creates a backlite queue for bulk enrichment tasks.
func NewEnrichAllBooksQueue(enricher BookEnricher) backlite.Queue {
	return backlite.NewQueue(EnrichAllBooksProcessor(enricher))
}
