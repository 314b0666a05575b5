package metric

import (
	"time"

	"gorm.io/datatypes"
)

// Campaign is one advertising campaign (or store unit) on one platform.
// Adapters upsert against the (tenant_id, platform, external_id) key.
type Campaign struct {
	ID            string     `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID      string     `gorm:"uniqueIndex:idx_campaign_external;size:64;not null" json:"tenant_id"`
	IntegrationID string     `gorm:"index;type:uuid" json:"integration_id"`
	ExternalID    string     `gorm:"uniqueIndex:idx_campaign_external;size:128;not null" json:"external_id"`
	Platform      string     `gorm:"uniqueIndex:idx_campaign_external;size:50;not null" json:"platform"`
	Name          string     `gorm:"size:255" json:"name"`
	Status        string     `gorm:"size:30" json:"status"`
	Budget        float64    `json:"budget"`
	Currency      string     `gorm:"size:8" json:"currency"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (Campaign) TableName() string {
	return "campaigns"
}

// Metric is one daily (optionally hourly) row of performance counters.
// Uniquely identified by (tenant, campaign, platform, source, date, hour);
// adapters upsert on that key so overlapping syncs never duplicate rows.
type Metric struct {
	ID          string            `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID    string            `gorm:"uniqueIndex:idx_metric_daily;size:64;not null" json:"tenant_id"`
	CampaignID  string            `gorm:"uniqueIndex:idx_metric_daily;size:128" json:"campaign_id"`
	Platform    string            `gorm:"uniqueIndex:idx_metric_daily;size:50;not null" json:"platform"`
	Source      string            `gorm:"uniqueIndex:idx_metric_daily;size:50" json:"source"`
	Date        time.Time         `gorm:"uniqueIndex:idx_metric_daily;type:date;not null" json:"date"`
	Hour        int               `gorm:"uniqueIndex:idx_metric_daily;default:-1" json:"hour"`
	Impressions int64             `json:"impressions"`
	Clicks      int64             `json:"clicks"`
	Conversions int64             `json:"conversions"`
	Orders      int64             `json:"orders"`
	Spend       float64           `json:"spend"`
	Revenue     float64           `json:"revenue"`
	Metadata    datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func (Metric) TableName() string {
	return "metrics"
}
