package engine

import (
	"github.com/shopspring/decimal"

	"github.com/yingtu-pmc/analyzer-go/internal/domain"
)

const roiScale = 10

// computeROI derives the investment-return figure for one order.
//
// A shortage total at or below epsilon counts as zero for branch selection,
// so a value that merely rounds to zero can never produce a runaway ratio.
func computeROI(orderAmount, shortageTotal, epsilon decimal.Decimal) domain.ROI {
	if shortageTotal.Cmp(epsilon) > 0 {
		return domain.RatioROI(orderAmount.DivRound(shortageTotal, roiScale))
	}
	if orderAmount.Sign() > 0 {
		return domain.NoInvestmentROI()
	}
	return domain.ROI{}
}
