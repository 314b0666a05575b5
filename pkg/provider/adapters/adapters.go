package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/adpulse-ai/platform/pkg/common/config"
	"github.com/adpulse-ai/platform/pkg/common/models"
	"github.com/adpulse-ai/platform/pkg/integration"
	"github.com/adpulse-ai/platform/pkg/metric"
	"github.com/adpulse-ai/platform/pkg/provider"
)

var ErrMissingCredentials = errors.New("integration credentials incomplete")

// reportRow is the normalized shape every provider response is mapped into
// before persistence. Campaign-less platforms (GA4, Search Console, Shopee)
// leave ExternalID empty.
type reportRow struct {
	ExternalID     string
	CampaignName   string
	CampaignStatus string
	Date           time.Time
	Impressions    int64
	Clicks         int64
	Conversions    int64
	Orders         int64
	Spend          float64
	Revenue        float64
	Metadata       map[string]interface{}
}

// Adapters owns one sync handler per supported platform, all writing through
// the metric repository's upsert keys so repeated syncs of overlapping date
// ranges stay idempotent.
type Adapters struct {
	repo *metric.Repository
	cfg  *config.Config
}

func New(repo *metric.Repository, cfg *config.Config) *Adapters {
	return &Adapters{repo: repo, cfg: cfg}
}

func (a *Adapters) Register(reg *provider.Registry) {
	reg.Register(provider.ModeReal, provider.GoogleAds, a.SyncGoogleAds)
	reg.Register(provider.ModeReal, provider.Facebook, a.SyncFacebook)
	reg.Register(provider.ModeReal, provider.TikTok, a.SyncTikTok)
	reg.Register(provider.ModeReal, provider.LineAds, a.SyncLineAds)
	reg.Register(provider.ModeReal, provider.GA4, a.SyncGA4)
	reg.Register(provider.ModeReal, provider.GoogleSearchConsole, a.SyncSearchConsole)
	reg.Register(provider.ModeReal, provider.Shopee, a.SyncShopee)
}

func credential(integ *integration.Integration, key string) (string, error) {
	if integ.Credentials == nil {
		return "", fmt.Errorf("%w: no credentials stored", ErrMissingCredentials)
	}
	value, ok := integ.Credentials[key].(string)
	if !ok || value == "" {
		return "", fmt.Errorf("%w: missing %q", ErrMissingCredentials, key)
	}
	return value, nil
}

// resolveRange defaults to the trailing 7 days when the caller did not
// constrain the sync window.
func resolveRange(opts models.SyncOptions) models.DateRange {
	if opts.DateRange != nil {
		return *opts.DateRange
	}
	end := time.Now().UTC().Truncate(24 * time.Hour)
	return models.DateRange{Start: end.AddDate(0, 0, -6), End: end}
}

// upsertRows persists normalized rows: campaigns first (deduped per external
// ID within the batch), then one metric row each, keyed for upsert.
func (a *Adapters) upsertRows(ctx context.Context, integ *integration.Integration, providerKey string, rows []reportRow) (models.SyncStats, error) {
	stats := models.SyncStats{}
	campaignIDs := map[string]string{}

	for _, row := range rows {
		campaignID := ""
		if row.ExternalID != "" {
			cached, ok := campaignIDs[row.ExternalID]
			if !ok {
				id, err := a.repo.UpsertCampaign(ctx, &metric.Campaign{
					TenantID:      integ.TenantID,
					IntegrationID: integ.ID,
					ExternalID:    row.ExternalID,
					Platform:      providerKey,
					Name:          row.CampaignName,
					Status:        row.CampaignStatus,
				})
				if err != nil {
					return stats, fmt.Errorf("upserting campaign %s: %w", row.ExternalID, err)
				}
				campaignIDs[row.ExternalID] = id
				cached = id
				stats.Campaigns++
			}
			campaignID = cached
		}

		err := a.repo.UpsertMetric(ctx, &metric.Metric{
			TenantID:    integ.TenantID,
			CampaignID:  campaignID,
			Platform:    providerKey,
			Source:      providerKey,
			Date:        row.Date,
			Hour:        -1,
			Impressions: row.Impressions,
			Clicks:      row.Clicks,
			Conversions: row.Conversions,
			Orders:      row.Orders,
			Spend:       row.Spend,
			Revenue:     row.Revenue,
			Metadata:    row.Metadata,
		})
		if err != nil {
			return stats, fmt.Errorf("upserting metric row for %s: %w", row.Date.Format("2006-01-02"), err)
		}
		stats.Metrics++
	}

	stats.Synced = stats.Campaigns + stats.Metrics
	return stats, nil
}

func (a *Adapters) client(ctx context.Context, baseURL string, integ *integration.Integration) (*APIClient, error) {
	token, err := credential(integ, "access_token")
	if err != nil {
		return nil, err
	}
	return NewAPIClient(ctx, baseURL, token, a.cfg.ProviderAPITimeout), nil
}
