package engine

import (
	"github.com/shopspring/decimal"

	"github.com/yingtu-pmc/analyzer-go/internal/domain"
)

// summarize collapses the line-grain table back to order grain.
//
// The expanded table repeats an order's amount once per shortage line, so
// summing it naively over-counts. The true order amount is recovered by
// taking the first amount per (production order, customer order) group and
// summing those groups: a production order serving several customer orders
// gets the sum of its per-customer-order amounts, the common single-customer
// case just gets its one amount back.
//
// Shortage line amounts are additive as-is: each line is a distinct material
// and appears exactly once in the expanded table.
func summarize(records []domain.IntegratedRecord, cfg Config) []domain.OrderSummary {
	type orderAccumulator struct {
		summary          domain.OrderSummary
		amountByCustomer map[string]decimal.Decimal
	}

	var orderIDs []string
	accumulators := make(map[string]*orderAccumulator)

	for _, rec := range records {
		acc, seen := accumulators[rec.ProductionOrderID]
		if !seen {
			acc = &orderAccumulator{
				summary: domain.OrderSummary{
					ProductionOrderID: rec.ProductionOrderID,
					Month:             rec.Month,
					ProductModel:      rec.ProductModel,
					Tier:              rec.Tier,
				},
				amountByCustomer: make(map[string]decimal.Decimal),
			}
			accumulators[rec.ProductionOrderID] = acc
			orderIDs = append(orderIDs, rec.ProductionOrderID)
		}

		if _, have := acc.amountByCustomer[rec.CustomerOrderID]; !have {
			amount := decimal.Decimal{}
			if rec.OrderAmountReporting != nil {
				amount = *rec.OrderAmountReporting
			}
			acc.amountByCustomer[rec.CustomerOrderID] = amount
			if rec.CustomerOrderID != "" {
				acc.summary.CustomerOrderIDs = append(acc.summary.CustomerOrderIDs, rec.CustomerOrderID)
			}
		}

		if rec.HasShortage {
			acc.summary.TotalShortageAmount = acc.summary.TotalShortageAmount.Add(rec.LineAmount)
			acc.summary.ShortageLineCount++
		}
	}

	summaries := make([]domain.OrderSummary, 0, len(orderIDs))
	for _, orderID := range orderIDs {
		acc := accumulators[orderID]
		for _, amount := range acc.amountByCustomer {
			acc.summary.OrderAmount = acc.summary.OrderAmount.Add(amount)
		}
		acc.summary.ROI = computeROI(acc.summary.OrderAmount, acc.summary.TotalShortageAmount, cfg.Epsilon)
		summaries = append(summaries, acc.summary)
	}

	return summaries
}
