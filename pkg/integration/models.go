package integration

import (
	"time"

	"gorm.io/datatypes"
)

const (
	StatusActive = "active"
	StatusError  = "error"
)

// Integration is one tenant's connection to an external ad/analytics platform.
// Credentials hold the provider access token and account identifiers; they are
// stripped from every outward-facing response.
type Integration struct {
	ID                   string             `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID             string             `gorm:"index;size:64;not null" json:"tenant_id"`
	Provider             string             `gorm:"index;size:50;not null" json:"provider"`
	Name                 string             `gorm:"size:255" json:"name"`
	IsActive             bool               `gorm:"index;default:true" json:"is_active"`
	Status               string             `gorm:"size:20;default:active" json:"status"`
	LastSyncAt           *time.Time         `json:"last_sync_at,omitempty"`
	SyncFrequencyMinutes *int               `json:"sync_frequency_minutes,omitempty"`
	Credentials          datatypes.JSONMap  `json:"-"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
}

func (Integration) TableName() string {
	return "integrations"
}

// SyncHistory is an append-only record of one sync attempt. Never updated.
type SyncHistory struct {
	ID            int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID      string            `gorm:"index;size:64;not null" json:"tenant_id"`
	IntegrationID string            `gorm:"index;type:uuid;not null" json:"integration_id"`
	Platform      string            `gorm:"size:50;not null" json:"platform"`
	Status        string            `gorm:"size:20;not null" json:"status"`
	Data          datatypes.JSONMap `json:"data,omitempty"`
	Error         string            `gorm:"type:text" json:"error,omitempty"`
	SyncedAt      time.Time         `gorm:"index" json:"synced_at"`
}

func (SyncHistory) TableName() string {
	return "sync_histories"
}
