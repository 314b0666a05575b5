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

type lineAdsReport struct {
	Datas []struct {
		Campaign struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"campaign"`
		Date       string `json:"date"`
		Statistics struct {
			Imp        int64   `json:"imp"`
			Click      int64   `json:"click"`
			Conversion int64   `json:"cv"`
			Cost       float64 `json:"cost"`
			Sales      float64 `json:"sales"`
		} `json:"statistics"`
	} `json:"datas"`
}

func (a *Adapters) SyncLineAds(ctx context.Context, integ *integration.Integration, opts models.SyncOptions) (models.SyncStats, error) {
	adAccountID, err := credential(integ, "ad_account_id")
	if err != nil {
		return models.SyncStats{}, err
	}
	client, err := a.client(ctx, a.cfg.LineAdsAPIBaseURL, integ)
	if err != nil {
		return models.SyncStats{}, err
	}

	dr := resolveRange(opts)
	query := url.Values{}
	query.Set("since", dr.Start.Format("2006-01-02"))
	query.Set("until", dr.End.Format("2006-01-02"))

	var report lineAdsReport
	path := fmt.Sprintf("/adaccounts/%s/reports/online/campaign", adAccountID)
	if err := client.GetJSON(ctx, path, query, &report); err != nil {
		return models.SyncStats{}, fmt.Errorf("line ads report: %w", err)
	}

	rows, err := lineAdsRows(report)
	if err != nil {
		return models.SyncStats{}, err
	}
	return a.upsertRows(ctx, integ, provider.LineAds, rows)
}

func lineAdsRows(report lineAdsReport) ([]reportRow, error) {
	rows := make([]reportRow, 0, len(report.Datas))
	for _, d := range report.Datas {
		date, err := time.Parse("2006-01-02", d.Date)
		if err != nil {
			return nil, fmt.Errorf("line ads row has bad date %q: %w", d.Date, err)
		}
		rows = append(rows, reportRow{
			ExternalID:   d.Campaign.ID,
			CampaignName: d.Campaign.Name,
			Date:         date,
			Impressions:  d.Statistics.Imp,
			Clicks:       d.Statistics.Click,
			Conversions:  d.Statistics.Conversion,
			Spend:        d.Statistics.Cost,
			Revenue:      d.Statistics.Sales,
		})
	}
	return rows, nil
}
