package alerting

import (
	"time"

	"gorm.io/datatypes"
)

type Alert struct {
	ID           string            `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID     string            `gorm:"index;size:64;not null" json:"tenant_id"`
	Provider     string            `gorm:"size:50" json:"provider,omitempty"`
	Type         string            `gorm:"size:50;not null" json:"type"`
	Severity     string            `gorm:"size:20" json:"severity"`
	Message      string            `gorm:"type:text" json:"message"`
	Payload      datatypes.JSONMap `json:"payload,omitempty"`
	Acknowledged bool              `gorm:"default:false" json:"acknowledged"`
	CreatedAt    time.Time         `gorm:"index" json:"created_at"`
}

func (Alert) TableName() string {
	return "alerts"
}
