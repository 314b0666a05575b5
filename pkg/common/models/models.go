package models

import (
	"time"
)

// Sync pipeline models
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type SyncOptions struct {
	DateRange *DateRange `json:"date_range,omitempty"`
}

// SyncStats is what a provider adapter reports back after one sync run.
type SyncStats struct {
	Synced    int `json:"synced"`
	Campaigns int `json:"campaigns"`
	Metrics   int `json:"metrics"`
}

const (
	SyncStatusSuccess = "success"
	SyncStatusError   = "error"
	SyncStatusPartial = "partial"
)

// SyncResult is the per-integration outcome of one orchestrated sync attempt.
// Warnings carry non-fatal persistence failures (status update, history write)
// that must not flip an otherwise successful sync to an error.
type SyncResult struct {
	IntegrationID string    `json:"integration_id"`
	TenantID      string    `json:"tenant_id"`
	Provider      string    `json:"provider"`
	Mode          string    `json:"mode"`
	Status        string    `json:"status"`
	Synced        int       `json:"synced"`
	Error         string    `json:"error,omitempty"`
	Warnings      []string  `json:"warnings,omitempty"`
	StartedAt     time.Time `json:"started_at"`
	DurationMS    int64     `json:"duration_ms"`
}

// Event Bus models
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"` // sync.completed, alert.raised
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}

// KPI aggregation models
type Totals struct {
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Conversions int64   `json:"conversions"`
	Orders      int64   `json:"orders"`
	Spend       float64 `json:"spend"`
	Revenue     float64 `json:"revenue"`
}

type Ratios struct {
	CTR  float64 `json:"ctr"`
	CPC  float64 `json:"cpc"`
	CPM  float64 `json:"cpm"`
	ROI  float64 `json:"roi"`
	ROAS float64 `json:"roas"`
}

// Summary distinguishes "no rows at all" (HasData=false) from a period whose
// rows sum to zero, so dashboards can render an empty state instead of a
// chart full of zeros.
type Summary struct {
	Totals  Totals     `json:"totals"`
	Ratios  Ratios     `json:"ratios"`
	HasData bool       `json:"has_data"`
	Range   *DateRange `json:"range,omitempty"`
}

type PeriodComparison struct {
	Current  Summary            `json:"current"`
	Previous Summary            `json:"previous"`
	Deltas   map[string]float64 `json:"deltas"`
}

type PlatformBucket struct {
	Platform string `json:"platform"`
	Totals   Totals `json:"totals"`
	Ratios   Ratios `json:"ratios"`
}

type WeeklyTrendPoint struct {
	WeekEnd time.Time `json:"week_end"`
	LTV     float64   `json:"ltv"`
	CAC     float64   `json:"cac"`
	Totals  Totals    `json:"totals"`
}
