package integration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

var ErrValidation = errors.New("invalid integration")

type CreateInput struct {
	Provider             string                 `json:"provider"`
	Name                 string                 `json:"name"`
	SyncFrequencyMinutes *int                   `json:"sync_frequency_minutes,omitempty"`
	Credentials          map[string]interface{} `json:"credentials"`
}

type UpdateInput struct {
	Name                 *string                `json:"name,omitempty"`
	IsActive             *bool                  `json:"is_active,omitempty"`
	SyncFrequencyMinutes *int                   `json:"sync_frequency_minutes,omitempty"`
	Credentials          map[string]interface{} `json:"credentials,omitempty"`
}

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, tenantID string, input CreateInput) (*Integration, error) {
	if strings.TrimSpace(input.Provider) == "" {
		return nil, fmt.Errorf("%w: provider is required", ErrValidation)
	}
	if len(input.Credentials) == 0 {
		return nil, fmt.Errorf("%w: credentials are required", ErrValidation)
	}

	integ := &Integration{
		ID:                   uuid.New().String(),
		TenantID:             tenantID,
		Provider:             strings.TrimSpace(input.Provider),
		Name:                 input.Name,
		IsActive:             true,
		Status:               StatusActive,
		SyncFrequencyMinutes: input.SyncFrequencyMinutes,
		Credentials:          datatypes.JSONMap(input.Credentials),
	}
	if err := s.repo.Create(ctx, integ); err != nil {
		return nil, fmt.Errorf("creating integration: %w", err)
	}
	return integ, nil
}

func (s *Service) Get(ctx context.Context, tenantID, id string) (*Integration, error) {
	return s.repo.Get(ctx, tenantID, id)
}

func (s *Service) List(ctx context.Context, tenantID string) ([]Integration, error) {
	return s.repo.ListByTenant(ctx, tenantID)
}

func (s *Service) Update(ctx context.Context, tenantID, id string, input UpdateInput) (*Integration, error) {
	integ, err := s.repo.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		integ.Name = *input.Name
	}
	if input.IsActive != nil {
		integ.IsActive = *input.IsActive
	}
	if input.SyncFrequencyMinutes != nil {
		integ.SyncFrequencyMinutes = input.SyncFrequencyMinutes
	}
	if len(input.Credentials) > 0 {
		integ.Credentials = datatypes.JSONMap(input.Credentials)
	}
	if err := s.repo.Update(ctx, integ); err != nil {
		return nil, fmt.Errorf("updating integration: %w", err)
	}
	return integ, nil
}

func (s *Service) Delete(ctx context.Context, tenantID, id string) error {
	return s.repo.Delete(ctx, tenantID, id)
}

func (s *Service) History(ctx context.Context, tenantID, id string, limit int) ([]SyncHistory, error) {
	if _, err := s.repo.Get(ctx, tenantID, id); err != nil {
		return nil, err
	}
	return s.repo.HistoryByIntegration(ctx, tenantID, id, limit)
}

// Cleanup prunes sync history older than the retention window. Integrations
// themselves are never deleted here.
func (s *Service) Cleanup(ctx context.Context, retention time.Duration) error {
	if retention <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().Add(-retention)
	return s.repo.db.WithContext(ctx).
		Where("synced_at < ?", cutoff).
		Delete(&SyncHistory{}).Error
}
