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

type shopeeOrderStats struct {
	Response struct {
		Days []struct {
			Date     string  `json:"date"`
			Orders   int64   `json:"order_count"`
			GMV      float64 `json:"gmv"`
			Visitors int64   `json:"visitors"`
		} `json:"days"`
	} `json:"response"`
}

// SyncShopee pulls daily shop order counts and GMV. No campaign structure,
// so rows are campaign-less metrics with the shop ID in metadata.
func (a *Adapters) SyncShopee(ctx context.Context, integ *integration.Integration, opts models.SyncOptions) (models.SyncStats, error) {
	shopID, err := credential(integ, "shop_id")
	if err != nil {
		return models.SyncStats{}, err
	}
	client, err := a.client(ctx, a.cfg.ShopeeAPIBaseURL, integ)
	if err != nil {
		return models.SyncStats{}, err
	}

	dr := resolveRange(opts)
	query := url.Values{}
	query.Set("shop_id", shopID)
	query.Set("start_date", dr.Start.Format("2006-01-02"))
	query.Set("end_date", dr.End.Format("2006-01-02"))

	var stats shopeeOrderStats
	if err := client.GetJSON(ctx, "/shop/order_stats", query, &stats); err != nil {
		return models.SyncStats{}, fmt.Errorf("shopee order stats: %w", err)
	}

	rows, err := shopeeRows(stats, shopID)
	if err != nil {
		return models.SyncStats{}, err
	}
	return a.upsertRows(ctx, integ, provider.Shopee, rows)
}

func shopeeRows(stats shopeeOrderStats, shopID string) ([]reportRow, error) {
	rows := make([]reportRow, 0, len(stats.Response.Days))
	for _, day := range stats.Response.Days {
		date, err := time.Parse("2006-01-02", day.Date)
		if err != nil {
			return nil, fmt.Errorf("shopee row has bad date %q: %w", day.Date, err)
		}
		rows = append(rows, reportRow{
			Date:     date,
			Orders:   day.Orders,
			Clicks:   day.Visitors,
			Revenue:  day.GMV,
			Metadata: map[string]interface{}{"shop_id": shopID},
		})
	}
	return rows, nil
}
