package audit

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mrlokans/bookworm/internal/database/audit"
	"github.com/mrlokans/bookworm/internal/entities"
)

const maxMessageLen = 500

// Service records what happened to the library. Failures to record are
// logged and never returned to the caller.
type Service struct {
	repo *audit.Repository
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

func (s *Service) record(event *entities.AuditEvent) {
	if err := s.repo.LogEvent(event); err != nil {
		slog.Warn("failed to log audit event", "action", event.Action, "err", err)
	}
}

func (s *Service) bookEvent(eventType entities.AuditEventType, book *entities.Book, description string) *entities.AuditEvent {
	id := book.ID
	return &entities.AuditEvent{
		EventType:   eventType,
		Action:      string(eventType),
		Description: truncate(description, maxMessageLen),
		EntityType:  "book",
		EntityID:    &id,
		Status:      entities.AuditStatusSuccess,
	}
}

// LogBookAdd records a newly added book.
func (s *Service) LogBookAdd(book *entities.Book) {
	s.record(s.bookEvent(entities.AuditEventBookAdd, book,
		fmt.Sprintf("Added '%s' by %s", book.Title, book.Author)))
}

// LogBookUpdate records an edit.
func (s *Service) LogBookUpdate(book *entities.Book) {
	s.record(s.bookEvent(entities.AuditEventBookUpdate, book,
		fmt.Sprintf("Updated '%s'", book.Title)))
}

// LogToggleRead records a read status flip.
func (s *Service) LogToggleRead(book *entities.Book) {
	state := "unread"
	if book.IsRead {
		state = "read"
	}
	s.record(s.bookEvent(entities.AuditEventBookToggleRead, book,
		fmt.Sprintf("Marked '%s' as %s", book.Title, state)))
}

// LogBookDelete records the removal of a single book.
func (s *Service) LogBookDelete(book *entities.Book) {
	s.record(s.bookEvent(entities.AuditEventBookDelete, book,
		fmt.Sprintf("Deleted '%s' by %s", book.Title, book.Author)))
}

// LogDeleteByTitle records a delete that may have removed several books.
func (s *Service) LogDeleteByTitle(title string, removed int64) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventBookDelete,
		Action:      "delete_by_title",
		Description: truncate(fmt.Sprintf("Deleted %d book(s) titled '%s'", removed, title), maxMessageLen),
		EntityType:  "book",
		Status:      entities.AuditStatusSuccess,
	}
	event.Metadata = marshalMetadata(map[string]any{"title": title, "removed": removed})
	s.record(event)
}

// LogImport records an import run.
func (s *Service) LogImport(source, description string, imported, failed int, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventImport,
		Action:      source + "_import",
		Description: truncate(description, maxMessageLen),
		EntityType:  "book",
		Status:      entities.AuditStatusSuccess,
		Metadata:    marshalMetadata(map[string]any{"imported": imported, "failed": failed}),
	}
	markFailed(event, err)
	s.record(event)
}

// LogExport records an export run.
func (s *Service) LogExport(format, description string, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventExport,
		Action:      format + "_export",
		Description: truncate(description, maxMessageLen),
		Status:      entities.AuditStatusSuccess,
	}
	markFailed(event, err)
	s.record(event)
}

// LogMetadataEnrich records a metadata enrichment attempt.
func (s *Service) LogMetadataEnrich(bookID uint, description string, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventMetadataEnrich,
		Action:      "book_enrich",
		Description: truncate(description, maxMessageLen),
		EntityType:  "book",
		EntityID:    &bookID,
		Status:      entities.AuditStatusSuccess,
	}
	markFailed(event, err)
	s.record(event)
}

// LogAuth records an authentication event.
func (s *Service) LogAuth(action, ipAddr string, success bool) {
	event := &entities.AuditEvent{
		EventType: entities.AuditEventAuth,
		Action:    action,
		IPAddress: ipAddr,
		Status:    entities.AuditStatusSuccess,
	}
	if !success {
		event.Status = entities.AuditStatusFailed
	}
	s.record(event)
}

// LogSettings records a settings change event.
func (s *Service) LogSettings(action, description string) {
	s.record(&entities.AuditEvent{
		EventType:   entities.AuditEventSettings,
		Action:      action,
		Description: truncate(description, maxMessageLen),
		Status:      entities.AuditStatusSuccess,
	})
}

// ListEvents retrieves a page of audit events.
func (s *Service) ListEvents(filter audit.EventFilter) ([]entities.AuditEvent, int64, error) {
	return s.repo.ListEvents(filter)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(cutoff)
}

func markFailed(event *entities.AuditEvent, err error) {
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), maxMessageLen)
	}
}

func marshalMetadata(md map[string]any) string {
	b, err := json.Marshal(md)
	if err != nil {
		return ""
	}
	return string(b)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
