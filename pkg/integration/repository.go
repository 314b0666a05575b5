package integration

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("integration not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&Integration{}, &SyncHistory{})
}

func (r *Repository) Create(ctx context.Context, integ *Integration) error {
	integ.CreatedAt = time.Now().UTC()
	integ.UpdatedAt = integ.CreatedAt
	return r.db.WithContext(ctx).Create(integ).Error
}

func (r *Repository) Get(ctx context.Context, tenantID, id string) (*Integration, error) {
	var integ Integration
	result := r.db.WithContext(ctx).First(&integ, "id = ? AND tenant_id = ?", id, tenantID)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &integ, result.Error
}

func (r *Repository) ListByTenant(ctx context.Context, tenantID string) ([]Integration, error) {
	var integrations []Integration
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at ASC").
		Find(&integrations).Error
	return integrations, err
}

// ActiveByTenant returns active integrations ordered oldest-synced-first so
// the stalest connections are serviced before recently-synced ones when the
// pipeline is capacity constrained. Never-synced rows sort first.
func (r *Repository) ActiveByTenant(ctx context.Context, tenantID string) ([]Integration, error) {
	var integrations []Integration
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Order("last_sync_at ASC NULLS FIRST").
		Find(&integrations).Error
	return integrations, err
}

func (r *Repository) Update(ctx context.Context, integ *Integration) error {
	integ.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Save(integ).Error
}

func (r *Repository) Delete(ctx context.Context, tenantID, id string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Delete(&Integration{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkSyncOutcome records the result of a sync attempt on the integration
// row. lastSyncAt is only advanced on success; a nil value leaves it as is.
func (r *Repository) MarkSyncOutcome(ctx context.Context, id, status string, lastSyncAt *time.Time) error {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}
	if lastSyncAt != nil {
		updates["last_sync_at"] = *lastSyncAt
	}
	return r.db.WithContext(ctx).Model(&Integration{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *Repository) AppendHistory(ctx context.Context, h *SyncHistory) error {
	if h.SyncedAt.IsZero() {
		h.SyncedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *Repository) HistoryByIntegration(ctx context.Context, tenantID, integrationID string, limit int) ([]SyncHistory, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var history []SyncHistory
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND integration_id = ?", tenantID, integrationID).
		Order("synced_at DESC").
		Limit(limit).
		Find(&history).Error
	return history, err
}

// DistinctTenants lists tenants with at least one active integration. Used by
// the scheduler to fan the pipeline out across tenants.
func (r *Repository) DistinctTenants(ctx context.Context) ([]string, error) {
	var tenants []string
	err := r.db.WithContext(ctx).Model(&Integration{}).
		Where("is_active = ?", true).
		Distinct("tenant_id").
		Pluck("tenant_id", &tenants).Error
	return tenants, err
}
