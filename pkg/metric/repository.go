package metric

import (
	"context"
	"errors"
	"time"

	"github.com/adpulse-ai/platform/pkg/common/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrCampaignNotFound = errors.New("campaign not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&Campaign{}, &Metric{})
}

// UpsertCampaign writes a campaign against its external key and returns the
// row's ID, existing or new. Safe to call repeatedly from adapters.
func (r *Repository) UpsertCampaign(ctx context.Context, c *Campaign) (string, error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}, {Name: "platform"}, {Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"integration_id", "name", "status", "budget", "currency", "start_date", "updated_at",
		}),
	}).Create(c).Error
	if err != nil {
		return "", err
	}

	// The conflict path keeps the original primary key, so read it back.
	var existing Campaign
	err = r.db.WithContext(ctx).
		Select("id").
		Where("tenant_id = ? AND platform = ? AND external_id = ?", c.TenantID, c.Platform, c.ExternalID).
		First(&existing).Error
	if err != nil {
		return "", err
	}
	return existing.ID, nil
}

// UpsertMetric writes one row against the metric uniqueness key. Callers set
// Hour to -1 for daily rows.
func (r *Repository) UpsertMetric(ctx context.Context, m *Metric) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "tenant_id"}, {Name: "campaign_id"}, {Name: "platform"},
			{Name: "source"}, {Name: "date"}, {Name: "hour"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"impressions", "clicks", "conversions", "orders", "spend", "revenue", "metadata", "updated_at",
		}),
	}).Create(m).Error
}

func (r *Repository) ListCampaigns(ctx context.Context, tenantID string, platform string) ([]Campaign, error) {
	q := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if platform != "" {
		q = q.Where("platform = ?", platform)
	}
	var campaigns []Campaign
	err := q.Order("created_at DESC").Find(&campaigns).Error
	return campaigns, err
}

// TotalsRow is the summed aggregate for a tenant/date-range/platform slice.
// Rows and MinDate let callers distinguish "no data" from "all-zero data".
type TotalsRow struct {
	Impressions int64
	Clicks      int64
	Conversions int64
	Orders      int64
	Spend       float64
	Revenue     float64
	Rows        int64 `gorm:"column:row_count"`
	MinDate     *time.Time
}

type PlatformTotalsRow struct {
	Platform    string
	Impressions int64
	Clicks      int64
	Conversions int64
	Orders      int64
	Spend       float64
	Revenue     float64
	Rows        int64 `gorm:"column:row_count"`
}

func (r *Repository) rangeQuery(ctx context.Context, tenantID string, dr models.DateRange) *gorm.DB {
	return r.db.WithContext(ctx).Model(&Metric{}).
		Where("tenant_id = ?", tenantID).
		Where("date >= ? AND date <= ?", dr.Start, dr.End)
}

func (r *Repository) AggregateTotals(ctx context.Context, tenantID string, dr models.DateRange, platforms []string) (TotalsRow, error) {
	q := r.rangeQuery(ctx, tenantID, dr)
	if len(platforms) > 0 {
		q = q.Where("platform IN ?", platforms)
	}
	var row TotalsRow
	err := q.Select(
		"COALESCE(SUM(impressions), 0) AS impressions, " +
			"COALESCE(SUM(clicks), 0) AS clicks, " +
			"COALESCE(SUM(conversions), 0) AS conversions, " +
			"COALESCE(SUM(orders), 0) AS orders, " +
			"COALESCE(SUM(spend), 0) AS spend, " +
			"COALESCE(SUM(revenue), 0) AS revenue, " +
			"COUNT(*) AS row_count, " +
			"MIN(date) AS min_date",
	).Scan(&row).Error
	return row, err
}

func (r *Repository) AggregateByPlatform(ctx context.Context, tenantID string, dr models.DateRange) ([]PlatformTotalsRow, error) {
	var rows []PlatformTotalsRow
	err := r.rangeQuery(ctx, tenantID, dr).
		Select(
			"platform, " +
				"COALESCE(SUM(impressions), 0) AS impressions, " +
				"COALESCE(SUM(clicks), 0) AS clicks, " +
				"COALESCE(SUM(conversions), 0) AS conversions, " +
				"COALESCE(SUM(orders), 0) AS orders, " +
				"COALESCE(SUM(spend), 0) AS spend, " +
				"COALESCE(SUM(revenue), 0) AS revenue, " +
				"COUNT(*) AS row_count",
		).
		Group("platform").
		Order("platform ASC").
		Scan(&rows).Error
	return rows, err
}
