package adapters

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/adpulse-ai/platform/pkg/common/models"
	"github.com/adpulse-ai/platform/pkg/integration"
	"github.com/adpulse-ai/platform/pkg/provider"
)

// The Graph API returns every numeric insight as a string.
type facebookInsights struct {
	Data []struct {
		CampaignID   string `json:"campaign_id"`
		CampaignName string `json:"campaign_name"`
		Impressions  string `json:"impressions"`
		Clicks       string `json:"clicks"`
		Spend        string `json:"spend"`
		DateStart    string `json:"date_start"`
		Actions      []struct {
			ActionType string `json:"action_type"`
			Value      string `json:"value"`
		} `json:"actions"`
		ActionValues []struct {
			ActionType string `json:"action_type"`
			Value      string `json:"value"`
		} `json:"action_values"`
	} `json:"data"`
}

func (a *Adapters) SyncFacebook(ctx context.Context, integ *integration.Integration, opts models.SyncOptions) (models.SyncStats, error) {
	accountID, err := credential(integ, "account_id")
	if err != nil {
		return models.SyncStats{}, err
	}
	client, err := a.client(ctx, a.cfg.FacebookAPIBaseURL, integ)
	if err != nil {
		return models.SyncStats{}, err
	}

	dr := resolveRange(opts)
	query := url.Values{}
	query.Set("level", "campaign")
	query.Set("time_increment", "1")
	query.Set("fields", "campaign_id,campaign_name,impressions,clicks,spend,actions,action_values")
	query.Set("time_range", fmt.Sprintf(`{"since":"%s","until":"%s"}`,
		dr.Start.Format("2006-01-02"), dr.End.Format("2006-01-02")))

	var insights facebookInsights
	if err := client.GetJSON(ctx, fmt.Sprintf("/act_%s/insights", accountID), query, &insights); err != nil {
		return models.SyncStats{}, fmt.Errorf("facebook insights: %w", err)
	}

	rows, err := facebookRows(insights)
	if err != nil {
		return models.SyncStats{}, err
	}
	return a.upsertRows(ctx, integ, provider.Facebook, rows)
}

func facebookRows(insights facebookInsights) ([]reportRow, error) {
	rows := make([]reportRow, 0, len(insights.Data))
	for _, d := range insights.Data {
		date, err := time.Parse("2006-01-02", d.DateStart)
		if err != nil {
			return nil, fmt.Errorf("facebook row has bad date %q: %w", d.DateStart, err)
		}
		row := reportRow{
			ExternalID:   d.CampaignID,
			CampaignName: d.CampaignName,
			Date:         date,
			Impressions:  atoi64(d.Impressions),
			Clicks:       atoi64(d.Clicks),
			Spend:        atof(d.Spend),
		}
		for _, action := range d.Actions {
			if action.ActionType == "purchase" {
				row.Orders = atoi64(action.Value)
				row.Conversions = row.Orders
			}
		}
		for _, av := range d.ActionValues {
			if av.ActionType == "purchase" {
				row.Revenue = atof(av.Value)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func atoi64(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}

func atof(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
