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

type tiktokReport struct {
	Data struct {
		List []struct {
			Dimensions struct {
				CampaignID  string `json:"campaign_id"`
				StatTimeDay string `json:"stat_time_day"`
			} `json:"dimensions"`
			Metrics struct {
				CampaignName string  `json:"campaign_name"`
				Impressions  int64   `json:"impressions,string"`
				Clicks       int64   `json:"clicks,string"`
				Conversions  int64   `json:"conversion,string"`
				Spend        float64 `json:"spend,string"`
				OnsiteValue  float64 `json:"total_onsite_shopping_value,string"`
			} `json:"metrics"`
		} `json:"list"`
	} `json:"data"`
}

func (a *Adapters) SyncTikTok(ctx context.Context, integ *integration.Integration, opts models.SyncOptions) (models.SyncStats, error) {
	advertiserID, err := credential(integ, "advertiser_id")
	if err != nil {
		return models.SyncStats{}, err
	}
	client, err := a.client(ctx, a.cfg.TikTokAPIBaseURL, integ)
	if err != nil {
		return models.SyncStats{}, err
	}

	dr := resolveRange(opts)
	query := url.Values{}
	query.Set("advertiser_id", advertiserID)
	query.Set("report_type", "BASIC")
	query.Set("data_level", "AUCTION_CAMPAIGN")
	query.Set("dimensions", `["campaign_id","stat_time_day"]`)
	query.Set("start_date", dr.Start.Format("2006-01-02"))
	query.Set("end_date", dr.End.Format("2006-01-02"))

	var report tiktokReport
	if err := client.GetJSON(ctx, "/report/integrated/get", query, &report); err != nil {
		return models.SyncStats{}, fmt.Errorf("tiktok report: %w", err)
	}

	rows, err := tiktokRows(report)
	if err != nil {
		return models.SyncStats{}, err
	}
	return a.upsertRows(ctx, integ, provider.TikTok, rows)
}

func tiktokRows(report tiktokReport) ([]reportRow, error) {
	rows := make([]reportRow, 0, len(report.Data.List))
	for _, item := range report.Data.List {
		// stat_time_day arrives as "2006-01-02 00:00:00"
		date, err := time.Parse("2006-01-02 15:04:05", item.Dimensions.StatTimeDay)
		if err != nil {
			date, err = time.Parse("2006-01-02", item.Dimensions.StatTimeDay)
			if err != nil {
				return nil, fmt.Errorf("tiktok row has bad date %q: %w", item.Dimensions.StatTimeDay, err)
			}
		}
		rows = append(rows, reportRow{
			ExternalID:   item.Dimensions.CampaignID,
			CampaignName: item.Metrics.CampaignName,
			Date:         date.Truncate(24 * time.Hour),
			Impressions:  item.Metrics.Impressions,
			Clicks:       item.Metrics.Clicks,
			Conversions:  item.Metrics.Conversions,
			Orders:       item.Metrics.Conversions,
			Spend:        item.Metrics.Spend,
			Revenue:      item.Metrics.OnsiteValue,
		})
	}
	return rows, nil
}
