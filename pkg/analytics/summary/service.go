package summary

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/adpulse-ai/platform/pkg/analytics/kpi"
	"github.com/adpulse-ai/platform/pkg/common/models"
	"github.com/adpulse-ai/platform/pkg/metric"
)

// MetricSource is the read surface of the metric repository.
type MetricSource interface {
	AggregateTotals(ctx context.Context, tenantID string, dr models.DateRange, platforms []string) (metric.TotalsRow, error)
	AggregateByPlatform(ctx context.Context, tenantID string, dr models.DateRange) ([]metric.PlatformTotalsRow, error)
}

type Service struct {
	source MetricSource
	cache  *Cache
}

func NewService(source MetricSource, cache *Cache) *Service {
	return &Service{source: source, cache: cache}
}

// Aggregate sums all matching rows and derives ratios from the totals.
// HasData is false when the range contains no rows at all, which is a
// different state than rows that sum to zero.
func (s *Service) Aggregate(ctx context.Context, tenantID string, dr models.DateRange, platforms []string) (models.Summary, error) {
	key := cacheKey("summary", tenantID, dr, platforms)
	var cached models.Summary
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	row, err := s.source.AggregateTotals(ctx, tenantID, dr, platforms)
	if err != nil {
		return models.Summary{}, fmt.Errorf("aggregating metrics: %w", err)
	}

	summary := toSummary(row, dr)
	s.cache.Set(ctx, key, summary)
	return summary, nil
}

// CompareToPreviousPeriod aggregates the requested window and the
// immediately preceding window of equal length ending the day before the
// requested start, then reports a percent delta per KPI.
func (s *Service) CompareToPreviousPeriod(ctx context.Context, tenantID string, dr models.DateRange) (models.PeriodComparison, error) {
	prev := PreviousPeriod(dr)

	current, err := s.Aggregate(ctx, tenantID, dr, nil)
	if err != nil {
		return models.PeriodComparison{}, err
	}
	previous, err := s.Aggregate(ctx, tenantID, prev, nil)
	if err != nil {
		return models.PeriodComparison{}, err
	}

	deltas := map[string]float64{
		"impressions": kpi.PercentDelta(float64(current.Totals.Impressions), float64(previous.Totals.Impressions)),
		"clicks":      kpi.PercentDelta(float64(current.Totals.Clicks), float64(previous.Totals.Clicks)),
		"conversions": kpi.PercentDelta(float64(current.Totals.Conversions), float64(previous.Totals.Conversions)),
		"orders":      kpi.PercentDelta(float64(current.Totals.Orders), float64(previous.Totals.Orders)),
		"spend":       kpi.PercentDelta(current.Totals.Spend, previous.Totals.Spend),
		"revenue":     kpi.PercentDelta(current.Totals.Revenue, previous.Totals.Revenue),
		"ctr":         kpi.PercentDelta(current.Ratios.CTR, previous.Ratios.CTR),
		"cpc":         kpi.PercentDelta(current.Ratios.CPC, previous.Ratios.CPC),
		"cpm":         kpi.PercentDelta(current.Ratios.CPM, previous.Ratios.CPM),
		"roi":         kpi.PercentDelta(current.Ratios.ROI, previous.Ratios.ROI),
		"roas":        kpi.PercentDelta(current.Ratios.ROAS, previous.Ratios.ROAS),
	}

	return models.PeriodComparison{Current: current, Previous: previous, Deltas: deltas}, nil
}

// GroupByPlatform partitions the aggregation by platform key, each bucket
// carrying its own derived ratios.
func (s *Service) GroupByPlatform(ctx context.Context, tenantID string, dr models.DateRange) ([]models.PlatformBucket, error) {
	key := cacheKey("platforms", tenantID, dr, nil)
	var cached []models.PlatformBucket
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	rows, err := s.source.AggregateByPlatform(ctx, tenantID, dr)
	if err != nil {
		return nil, fmt.Errorf("aggregating by platform: %w", err)
	}

	buckets := make([]models.PlatformBucket, 0, len(rows))
	for _, row := range rows {
		totals := models.Totals{
			Impressions: row.Impressions,
			Clicks:      row.Clicks,
			Conversions: row.Conversions,
			Orders:      row.Orders,
			Spend:       row.Spend,
			Revenue:     row.Revenue,
		}
		buckets = append(buckets, models.PlatformBucket{
			Platform: row.Platform,
			Totals:   totals,
			Ratios:   kpi.Compute(totals),
		})
	}
	s.cache.Set(ctx, key, buckets)
	return buckets, nil
}

// RollingWeeklyTrend aggregates each of the trailing N 7-day windows ending
// at endDate and reports LTV/CAC per window, oldest week first.
func (s *Service) RollingWeeklyTrend(ctx context.Context, tenantID string, endDate time.Time, weeks int) ([]models.WeeklyTrendPoint, error) {
	if weeks <= 0 {
		weeks = 4
	}

	points := make([]models.WeeklyTrendPoint, 0, weeks)
	for i := weeks - 1; i >= 0; i-- {
		weekEnd := endDate.AddDate(0, 0, -7*i)
		dr := models.DateRange{Start: weekEnd.AddDate(0, 0, -6), End: weekEnd}
		row, err := s.source.AggregateTotals(ctx, tenantID, dr, nil)
		if err != nil {
			return nil, fmt.Errorf("aggregating week ending %s: %w", weekEnd.Format("2006-01-02"), err)
		}
		totals := models.Totals{
			Impressions: row.Impressions,
			Clicks:      row.Clicks,
			Conversions: row.Conversions,
			Orders:      row.Orders,
			Spend:       row.Spend,
			Revenue:     row.Revenue,
		}
		points = append(points, models.WeeklyTrendPoint{
			WeekEnd: weekEnd,
			LTV:     kpi.LTV(totals.Revenue, totals.Orders, totals.Conversions),
			CAC:     kpi.CAC(totals.Spend, totals.Conversions),
			Totals:  totals,
		})
	}
	return points, nil
}

// PreviousPeriod is the window of equal length immediately before dr, ending
// the day before dr.Start.
func PreviousPeriod(dr models.DateRange) models.DateRange {
	length := dr.End.Sub(dr.Start)
	prevEnd := dr.Start.AddDate(0, 0, -1)
	return models.DateRange{Start: prevEnd.Add(-length), End: prevEnd}
}

func toSummary(row metric.TotalsRow, dr models.DateRange) models.Summary {
	totals := models.Totals{
		Impressions: row.Impressions,
		Clicks:      row.Clicks,
		Conversions: row.Conversions,
		Orders:      row.Orders,
		Spend:       row.Spend,
		Revenue:     row.Revenue,
	}
	rng := dr
	return models.Summary{
		Totals:  totals,
		Ratios:  kpi.Compute(totals),
		HasData: row.Rows > 0 && row.MinDate != nil,
		Range:   &rng,
	}
}

func cacheKey(kind, tenantID string, dr models.DateRange, platforms []string) string {
	return fmt.Sprintf("kpi:%s:%s:%s:%s:%s",
		kind,
		tenantID,
		dr.Start.Format("2006-01-02"),
		dr.End.Format("2006-01-02"),
		strings.Join(platforms, ","),
	)
}
