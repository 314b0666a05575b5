package kpi

import (
	"math"

	"github.com/adpulse-ai/platform/pkg/common/models"
)

// Derived ratios resolve to 0 whenever their denominator is 0. Dashboards
// never see NaN or Inf.

func CTR(clicks, impressions int64) float64 {
	if impressions <= 0 {
		return 0
	}
	return float64(clicks) / float64(impressions) * 100
}

func CPC(spend float64, clicks int64) float64 {
	if clicks <= 0 {
		return 0
	}
	return spend / float64(clicks)
}

func CPM(spend float64, impressions int64) float64 {
	if impressions <= 0 {
		return 0
	}
	return spend / float64(impressions) * 1000
}

func ROI(spend, revenue float64) float64 {
	if spend <= 0 {
		return 0
	}
	return (revenue - spend) / spend * 100
}

func ROAS(spend, revenue float64) float64 {
	if spend <= 0 {
		return 0
	}
	return revenue / spend
}

// Compute derives all ratios from summed totals. Summing first and dividing
// once avoids biasing the ratios toward low-volume rows.
func Compute(t models.Totals) models.Ratios {
	return models.Ratios{
		CTR:  CTR(t.Clicks, t.Impressions),
		CPC:  CPC(t.Spend, t.Clicks),
		CPM:  CPM(t.Spend, t.Impressions),
		ROI:  ROI(t.Spend, t.Revenue),
		ROAS: ROAS(t.Spend, t.Revenue),
	}
}

// PercentDelta reports period-over-period change. A zero baseline with a zero
// current value is "no change"; any positive current value against a zero
// baseline reads as +100% rather than infinity. UI-safety convention, not
// pure math.
func PercentDelta(current, baseline float64) float64 {
	if baseline == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return (current - baseline) / math.Abs(baseline) * 100
}

// LTV prefers revenue per order; with no orders it falls back to revenue per
// conversion with a floor of 1 so the dashboard always gets a finite number.
func LTV(revenue float64, orders, conversions int64) float64 {
	if orders > 0 {
		return revenue / float64(orders)
	}
	den := conversions
	if den < 1 {
		den = 1
	}
	return revenue / float64(den)
}

// CAC divides spend by conversions with the same floor-of-1 guard.
func CAC(spend float64, conversions int64) float64 {
	den := conversions
	if den < 1 {
		den = 1
	}
	return spend / float64(den)
}
