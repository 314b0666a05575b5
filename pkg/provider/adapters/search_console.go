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

type searchConsoleResponse struct {
	Rows []struct {
		Keys        []string `json:"keys"`
		Clicks      float64  `json:"clicks"`
		Impressions float64  `json:"impressions"`
		Position    float64  `json:"position"`
	} `json:"rows"`
}

// SyncSearchConsole pulls daily organic click/impression rows. Like GA4 the
// rows are campaign-less; average position rides along in metadata.
func (a *Adapters) SyncSearchConsole(ctx context.Context, integ *integration.Integration, opts models.SyncOptions) (models.SyncStats, error) {
	siteURL, err := credential(integ, "site_url")
	if err != nil {
		return models.SyncStats{}, err
	}
	client, err := a.client(ctx, a.cfg.SearchConsoleAPIBaseURL, integ)
	if err != nil {
		return models.SyncStats{}, err
	}

	dr := resolveRange(opts)
	body := map[string]interface{}{
		"startDate":  dr.Start.Format("2006-01-02"),
		"endDate":    dr.End.Format("2006-01-02"),
		"dimensions": []string{"date"},
	}

	var resp searchConsoleResponse
	path := fmt.Sprintf("/sites/%s/searchAnalytics/query", url.PathEscape(siteURL))
	if err := client.PostJSON(ctx, path, body, &resp); err != nil {
		return models.SyncStats{}, fmt.Errorf("search console query: %w", err)
	}

	rows, err := searchConsoleRows(resp)
	if err != nil {
		return models.SyncStats{}, err
	}
	return a.upsertRows(ctx, integ, provider.GoogleSearchConsole, rows)
}

func searchConsoleRows(resp searchConsoleResponse) ([]reportRow, error) {
	rows := make([]reportRow, 0, len(resp.Rows))
	for _, r := range resp.Rows {
		if len(r.Keys) < 1 {
			continue
		}
		date, err := time.Parse("2006-01-02", r.Keys[0])
		if err != nil {
			return nil, fmt.Errorf("search console row has bad date %q: %w", r.Keys[0], err)
		}
		rows = append(rows, reportRow{
			Date:        date,
			Clicks:      int64(r.Clicks),
			Impressions: int64(r.Impressions),
			Metadata:    map[string]interface{}{"avg_position": r.Position},
		})
	}
	return rows, nil
}
