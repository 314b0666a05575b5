package alerting

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("alert not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&Alert{})
}

func (r *Repository) Create(ctx context.Context, alert *Alert) error {
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(alert).Error
}

func (r *Repository) ListByTenant(ctx context.Context, tenantID string, unackedOnly bool, limit int) ([]Alert, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if unackedOnly {
		q = q.Where("acknowledged = ?", false)
	}
	var alerts []Alert
	err := q.Order("created_at DESC").Limit(limit).Find(&alerts).Error
	return alerts, err
}

func (r *Repository) Acknowledge(ctx context.Context, tenantID, id string) error {
	result := r.db.WithContext(ctx).Model(&Alert{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Update("acknowledged", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
