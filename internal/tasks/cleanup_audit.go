package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mikestefanello/backlite"
)

// AuditTrailPruner deletes audit events older than a retention window.
// *audit.Service implements it.
type AuditTrailPruner interface {
	DeleteOldEvents(retention time.Duration) (int64, error)
}

// CleanupAuditEventsTask prunes the library's audit trail. It is enqueued by
// the nightly maintenance job with the configured AUDIT_RETENTION_DAYS.
type CleanupAuditEventsTask struct {
	RetentionDays int `json:"retention_days"`
}

// Config keeps failed cleanups for a day so their payload can be inspected.
func (t CleanupAuditEventsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_audit_events",
		MaxAttempts: 2,
		Backoff:     10 * time.Minute,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// AuditRetention converts a day count into a retention window. Non-positive
// values fall back to the default retention.
func AuditRetention(days int) time.Duration {
	if days <= 0 {
		days = DefaultConfig().AuditRetentionDays
	}
	return time.Duration(days) * 24 * time.Hour
}

// CleanupAuditEventsProcessor prunes the audit trail through pruner.
func CleanupAuditEventsProcessor(pruner AuditTrailPruner) backlite.QueueProcessor[CleanupAuditEventsTask] {
	return func(ctx context.Context, task CleanupAuditEventsTask) error {
		if pruner == nil {
			return errors.New("audit trail is not available")
		}

		window := AuditRetention(task.RetentionDays)
		removed, err := pruner.DeleteOldEvents(window)
		if err != nil {
			return fmt.Errorf("prune audit trail: %w", err)
		}

		slog.Info("Audit trail pruned", "removed", removed, "older_than", time.Now().Add(-window).Format(time.DateOnly))
		return nil
	}
}

func NewCleanupAuditEventsQueue(pruner AuditTrailPruner) backlite.Queue {
	return backlite.NewQueue(CleanupAuditEventsProcessor(pruner))
}
