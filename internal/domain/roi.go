package domain

import "github.com/shopspring/decimal"

// NoInvestmentNeeded is the ROI sentinel for orders that carry revenue but
// have no material shortage: they are immediately producible, so the ratio
// is undefined rather than infinite.
const NoInvestmentNeeded = "NO_INVESTMENT_NEEDED"

// ROI is the investment-return figure of an order: order amount divided by
// shortage amount, or a sentinel when no investment is required.
type ROI struct {
	Ratio        decimal.Decimal `json:"ratio"`
	NoInvestment bool            `json:"no_investment"`
}

// RatioROI builds a numeric ROI value.
func RatioROI(ratio decimal.Decimal) ROI {
	return ROI{Ratio: ratio}
}

// NoInvestmentROI builds the sentinel ROI value.
func NoInvestmentROI() ROI {
	return ROI{NoInvestment: true}
}

// IsZero reports whether this is the zero ROI (no amount, no shortage).
func (r ROI) IsZero() bool {
	return !r.NoInvestment && r.Ratio.IsZero()
}

// String renders the ROI the way reports display it: the sentinel text or
// the ratio with two decimal places.
func (r ROI) String() string {
	if r.NoInvestment {
		return NoInvestmentNeeded
	}
	return r.Ratio.StringFixed(2)
}
