package engine

import (
	"github.com/shopspring/decimal"

	"github.com/yingtu-pmc/analyzer-go/internal/domain"
)

// RunStats are the run-level figures the summary sheet and the dashboard
// report: totals, the completeness distribution and the average numeric ROI
// (sentinel ROIs are excluded from the average, matching how the reports
// have always read).
type RunStats struct {
	OrderCount          int                             `json:"order_count"`
	RecordCount         int                             `json:"record_count"`
	DistinctMaterials   int                             `json:"distinct_materials"`
	TotalOrderAmount    decimal.Decimal                 `json:"total_order_amount_reporting"`
	TotalShortageAmount decimal.Decimal                 `json:"total_shortage_amount_reporting"`
	AverageROI          *decimal.Decimal                `json:"average_roi,omitempty"`
	NoInvestmentOrders  int                             `json:"no_investment_orders"`
	TierCounts          map[domain.CompletenessTier]int `json:"tier_counts"`
}

func computeStats(records []domain.IntegratedRecord, summaries []domain.OrderSummary) RunStats {
	stats := RunStats{
		OrderCount:  len(summaries),
		RecordCount: len(records),
		TierCounts:  make(map[domain.CompletenessTier]int),
	}

	materials := make(map[string]struct{})
	for _, rec := range records {
		stats.TierCounts[rec.Tier]++
		if rec.MaterialID != nil && *rec.MaterialID != "" {
			materials[*rec.MaterialID] = struct{}{}
		}
	}
	stats.DistinctMaterials = len(materials)

	var roiSum decimal.Decimal
	var roiCount int64
	for _, s := range summaries {
		stats.TotalOrderAmount = stats.TotalOrderAmount.Add(s.OrderAmount)
		stats.TotalShortageAmount = stats.TotalShortageAmount.Add(s.TotalShortageAmount)
		switch {
		case s.ROI.NoInvestment:
			stats.NoInvestmentOrders++
		case !s.ROI.IsZero():
			roiSum = roiSum.Add(s.ROI.Ratio)
			roiCount++
		}
	}
	if roiCount > 0 {
		avg := roiSum.DivRound(decimal.NewFromInt(roiCount), roiScale)
		stats.AverageROI = &avg
	}

	return stats
}
