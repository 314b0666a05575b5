package adapters

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/adpulse-ai/platform/pkg/common/models"
	"github.com/adpulse-ai/platform/pkg/integration"
	"github.com/adpulse-ai/platform/pkg/provider"
)

type googleAdsReport struct {
	Results []struct {
		Campaign struct {
			ID     string `json:"id"`
			Name   string `json:"name"`
			Status string `json:"status"`
		} `json:"campaign"`
		Metrics struct {
			Impressions      int64   `json:"impressions"`
			Clicks           int64   `json:"clicks"`
			Conversions      float64 `json:"conversions"`
			CostMicros       int64   `json:"costMicros"`
			ConversionsValue float64 `json:"conversionsValue"`
		} `json:"metrics"`
		Segments struct {
			Date string `json:"date"`
		} `json:"segments"`
	} `json:"results"`
}

func (a *Adapters) SyncGoogleAds(ctx context.Context, integ *integration.Integration, opts models.SyncOptions) (models.SyncStats, error) {
	customerID, err := credential(integ, "customer_id")
	if err != nil {
		return models.SyncStats{}, err
	}
	client, err := a.client(ctx, a.cfg.GoogleAdsAPIBaseURL, integ)
	if err != nil {
		return models.SyncStats{}, err
	}

	dr := resolveRange(opts)
	query := url.Values{}
	query.Set("startDate", dr.Start.Format("2006-01-02"))
	query.Set("endDate", dr.End.Format("2006-01-02"))

	var report googleAdsReport
	path := fmt.Sprintf("/customers/%s/campaignReport", customerID)
	if err := client.GetJSON(ctx, path, query, &report); err != nil {
		return models.SyncStats{}, fmt.Errorf("google ads report: %w", err)
	}

	rows, err := googleAdsRows(report)
	if err != nil {
		return models.SyncStats{}, err
	}
	return a.upsertRows(ctx, integ, provider.GoogleAds, rows)
}

func googleAdsRows(report googleAdsReport) ([]reportRow, error) {
	rows := make([]reportRow, 0, len(report.Results))
	for _, res := range report.Results {
		date, err := time.Parse("2006-01-02", res.Segments.Date)
		if err != nil {
			return nil, fmt.Errorf("google ads row has bad date %q: %w", res.Segments.Date, err)
		}
		rows = append(rows, reportRow{
			ExternalID:     res.Campaign.ID,
			CampaignName:   res.Campaign.Name,
			CampaignStatus: res.Campaign.Status,
			Date:           date,
			Impressions:    res.Metrics.Impressions,
			Clicks:         res.Metrics.Clicks,
			Conversions:    int64(res.Metrics.Conversions),
			Spend:          float64(res.Metrics.CostMicros) / 1e6,
			Revenue:        res.Metrics.ConversionsValue,
		})
	}
	return rows, nil
}
