package entities

import "time"

type AuditEventType string

const (
	AuditEventBookAdd        AuditEventType = "book_add"
	AuditEventBookUpdate     AuditEventType = "book_update"
	AuditEventBookToggleRead AuditEventType = "book_toggle_read"
	AuditEventBookDelete     AuditEventType = "book_delete"
	AuditEventImport         AuditEventType = "import"
	AuditEventExport         AuditEventType = "export"
	AuditEventMetadataEnrich AuditEventType = "metadata_enrich"
	AuditEventAuth           AuditEventType = "auth"
	AuditEventSettings       AuditEventType = "settings"
)

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
)

type AuditEvent struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	EventType   AuditEventType `gorm:"index;size:50" json:"event_type"`
	Action      string         `gorm:"size:100" json:"action"`      // e.g., "csv_import", "delete_by_title"
	Description string         `gorm:"size:500" json:"description"` // Human-readable summary
	EntityType  string         `gorm:"size:50" json:"entity_type"`
	EntityID    *uint          `gorm:"index" json:"entity_id,omitempty"`
	Metadata    string         `gorm:"type:text" json:"metadata,omitempty"` // JSON for extra data
	IPAddress   string         `gorm:"size:45" json:"ip_address,omitempty"`
	Status      AuditStatus    `gorm:"size:20" json:"status"`
	ErrorMsg    string         `gorm:"size:500" json:"error_msg,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
