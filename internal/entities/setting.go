package entities

import (
	"time"
)

type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

// Known setting keys
const (
	// Catalog export settings
	SettingKeyExportSyncEnabled     = "export_sync_enabled"
	SettingKeyExportSyncDir         = "export_sync_dir"
	SettingKeyExportSyncSchedule    = "export_sync_schedule"
	SettingKeyExportSyncLastAt      = "export_sync_last_at"
	SettingKeyExportSyncLastStatus  = "export_sync_last_status"
	SettingKeyExportSyncLastMessage = "export_sync_last_message"

	// Owner credentials for local auth mode
	SettingKeyOwnerPasswordHash = "owner_password_hash"
	SettingKeyOwnerTokenHash    = "owner_api_token_hash"
)
