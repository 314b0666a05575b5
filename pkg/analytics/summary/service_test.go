package summary

import (
	"context"
	"math"
	"os"
	"testing"
	"time"

	"github.com/adpulse-ai/platform/pkg/common/logger"
	"github.com/adpulse-ai/platform/pkg/common/models"
	"github.com/adpulse-ai/platform/pkg/metric"
)

func TestMain(m *testing.M) {
	logger.Init("summary-test")
	os.Exit(m.Run())
}

type fakeSource struct {
	totals       map[string]metric.TotalsRow
	platformRows []metric.PlatformTotalsRow
	calls        []models.DateRange
}

func (f *fakeSource) AggregateTotals(ctx context.Context, tenantID string, dr models.DateRange, platforms []string) (metric.TotalsRow, error) {
	f.calls = append(f.calls, dr)
	return f.totals[dr.Start.Format("2006-01-02")], nil
}

func (f *fakeSource) AggregateByPlatform(ctx context.Context, tenantID string, dr models.DateRange) ([]metric.PlatformTotalsRow, error) {
	return f.platformRows, nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAggregateHasData(t *testing.T) {
	start, end := day(2026, 3, 1), day(2026, 3, 7)
	min := start
	source := &fakeSource{totals: map[string]metric.TotalsRow{
		"2026-03-01": {Impressions: 1000, Clicks: 50, Spend: 100, Revenue: 300, Rows: 14, MinDate: &min},
	}}
	svc := NewService(source, nil)

	summary, err := svc.Aggregate(context.Background(), "tenant-1", models.DateRange{Start: start, End: end}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !summary.HasData {
		t.Fatal("expected HasData for a range with rows")
	}
	if !almostEqual(summary.Ratios.CTR, 5) {
		t.Fatalf("expected CTR 5, got %v", summary.Ratios.CTR)
	}
	if !almostEqual(summary.Ratios.ROAS, 3) {
		t.Fatalf("expected ROAS 3, got %v", summary.Ratios.ROAS)
	}
}

func TestAggregateEmptyRangeIsNotZeroData(t *testing.T) {
	start, end := day(2026, 3, 1), day(2026, 3, 7)
	min := start
	source := &fakeSource{totals: map[string]metric.TotalsRow{}}
	svc := NewService(source, nil)

	summary, err := svc.Aggregate(context.Background(), "tenant-1", models.DateRange{Start: start, End: end}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.HasData {
		t.Fatal("a range with no rows must not report HasData")
	}

	// Rows exist but every measure is zero: a real, all-zero dataset.
	source.totals["2026-03-01"] = metric.TotalsRow{Rows: 7, MinDate: &min}
	summary, err = svc.Aggregate(context.Background(), "tenant-1", models.DateRange{Start: start, End: end}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !summary.HasData {
		t.Fatal("all-zero rows are still data")
	}
	if summary.Ratios.CTR != 0 || summary.Ratios.ROAS != 0 {
		t.Fatalf("all-zero rows should yield zero ratios, got %+v", summary.Ratios)
	}
}

func TestPreviousPeriod(t *testing.T) {
	dr := models.DateRange{Start: day(2026, 3, 8), End: day(2026, 3, 14)}
	prev := PreviousPeriod(dr)

	if !prev.End.Equal(day(2026, 3, 7)) {
		t.Fatalf("previous period should end the day before the current start, got %s", prev.End)
	}
	if !prev.Start.Equal(day(2026, 3, 1)) {
		t.Fatalf("previous period should span the same length, got start %s", prev.Start)
	}
}

func TestCompareToPreviousPeriod(t *testing.T) {
	currentStart := day(2026, 3, 8)
	prevStart := day(2026, 3, 1)
	minCur, minPrev := currentStart, prevStart

	source := &fakeSource{totals: map[string]metric.TotalsRow{
		"2026-03-08": {Impressions: 1000, Clicks: 50, Spend: 100, Revenue: 300, Rows: 7, MinDate: &minCur},
		"2026-03-01": {Impressions: 800, Clicks: 40, Spend: 80, Revenue: 200, Rows: 7, MinDate: &minPrev},
	}}
	svc := NewService(source, nil)

	cmp, err := svc.CompareToPreviousPeriod(context.Background(), "tenant-1",
		models.DateRange{Start: currentStart, End: day(2026, 3, 14)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !almostEqual(cmp.Deltas["impressions"], 25) {
		t.Fatalf("expected impressions delta +25, got %v", cmp.Deltas["impressions"])
	}
	if !almostEqual(cmp.Deltas["revenue"], 50) {
		t.Fatalf("expected revenue delta +50, got %v", cmp.Deltas["revenue"])
	}
	if !almostEqual(cmp.Deltas["ctr"], 0) {
		t.Fatalf("both periods have CTR 5, expected delta 0, got %v", cmp.Deltas["ctr"])
	}
	// ROAS moved from 2.5 to 3.0.
	if !almostEqual(cmp.Deltas["roas"], 20) {
		t.Fatalf("expected roas delta +20, got %v", cmp.Deltas["roas"])
	}
	if !cmp.Current.HasData || !cmp.Previous.HasData {
		t.Fatal("both periods carried rows")
	}
}

func TestCompareAgainstEmptyPreviousPeriod(t *testing.T) {
	currentStart := day(2026, 3, 8)
	minCur := currentStart
	source := &fakeSource{totals: map[string]metric.TotalsRow{
		"2026-03-08": {Impressions: 1000, Clicks: 50, Spend: 100, Revenue: 300, Rows: 7, MinDate: &minCur},
	}}
	svc := NewService(source, nil)

	cmp, err := svc.CompareToPreviousPeriod(context.Background(), "tenant-1",
		models.DateRange{Start: currentStart, End: day(2026, 3, 14)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(cmp.Deltas["revenue"], 100) {
		t.Fatalf("growth from an empty previous period reads as +100, got %v", cmp.Deltas["revenue"])
	}
	if cmp.Previous.HasData {
		t.Fatal("empty previous period should not report HasData")
	}
}

func TestGroupByPlatform(t *testing.T) {
	source := &fakeSource{platformRows: []metric.PlatformTotalsRow{
		{Platform: "facebook", Impressions: 500, Clicks: 25, Spend: 50, Revenue: 100, Rows: 7},
		{Platform: "google_ads", Impressions: 1000, Clicks: 20, Spend: 80, Revenue: 400, Rows: 7},
	}}
	svc := NewService(source, nil)

	buckets, err := svc.GroupByPlatform(context.Background(), "tenant-1",
		models.DateRange{Start: day(2026, 3, 1), End: day(2026, 3, 7)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(buckets))
	}
	if !almostEqual(buckets[0].Ratios.CTR, 5) {
		t.Fatalf("facebook CTR should be 5, got %v", buckets[0].Ratios.CTR)
	}
	if !almostEqual(buckets[1].Ratios.ROAS, 5) {
		t.Fatalf("google_ads ROAS should be 5, got %v", buckets[1].Ratios.ROAS)
	}
}

func TestRollingWeeklyTrendWindows(t *testing.T) {
	end := day(2026, 3, 28)
	source := &fakeSource{totals: map[string]metric.TotalsRow{}}
	svc := NewService(source, nil)

	points, err := svc.RollingWeeklyTrend(context.Background(), "tenant-1", end, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 4 {
		t.Fatalf("expected 4 points, got %d", len(points))
	}
	if !points[0].WeekEnd.Equal(day(2026, 3, 7)) {
		t.Fatalf("oldest week should come first, got %s", points[0].WeekEnd)
	}
	if !points[3].WeekEnd.Equal(end) {
		t.Fatalf("newest week should end at the requested date, got %s", points[3].WeekEnd)
	}

	if len(source.calls) != 4 {
		t.Fatalf("expected one aggregation per week, got %d", len(source.calls))
	}
	for _, dr := range source.calls {
		if got := dr.End.Sub(dr.Start); got != 6*24*time.Hour {
			t.Fatalf("each window should span 7 days inclusive, got %s", got)
		}
	}
}

func TestRollingWeeklyTrendValues(t *testing.T) {
	end := day(2026, 3, 7)
	min := day(2026, 3, 1)
	source := &fakeSource{totals: map[string]metric.TotalsRow{
		"2026-03-01": {Conversions: 10, Orders: 5, Spend: 500, Revenue: 1500, Rows: 7, MinDate: &min},
	}}
	svc := NewService(source, nil)

	points, err := svc.RollingWeeklyTrend(context.Background(), "tenant-1", end, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(points))
	}
	if !almostEqual(points[0].LTV, 300) {
		t.Fatalf("expected LTV 300 (revenue per order), got %v", points[0].LTV)
	}
	if !almostEqual(points[0].CAC, 50) {
		t.Fatalf("expected CAC 50, got %v", points[0].CAC)
	}
}
