package engine

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yingtu-pmc/analyzer-go/internal/domain"
)

// Converter turns currency-tagged amounts into the reporting currency using
// the run's rate table. Codes are matched case-insensitively; an unknown
// code is a ConfigurationError, never a silent pass-through.
type Converter struct {
	reporting string
	rates     map[string]decimal.Decimal
}

// NewConverter builds a converter from the run configuration.
func NewConverter(cfg Config) *Converter {
	rates := make(map[string]decimal.Decimal, len(cfg.Rates))
	for code, rate := range cfg.Rates {
		rates[strings.ToUpper(strings.TrimSpace(code))] = rate
	}
	return &Converter{
		reporting: strings.ToUpper(strings.TrimSpace(cfg.ReportingCurrency)),
		rates:     rates,
	}
}

// Reporting returns the reporting currency code.
func (c *Converter) Reporting() string {
	return c.reporting
}

func (c *Converter) rateFor(code string) (decimal.Decimal, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" || normalized == c.reporting {
		return decimal.NewFromInt(1), nil
	}
	rate, ok := c.rates[normalized]
	if !ok {
		return decimal.Decimal{}, configErrorf("unknown currency code %q", code)
	}
	return rate, nil
}

// ToReporting converts a tagged amount into the reporting currency.
func (c *Converter) ToReporting(m domain.Money) (decimal.Decimal, error) {
	rate, err := c.rateFor(m.Currency)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return m.Amount.Mul(rate), nil
}

// FromReporting converts a reporting-currency amount back into the given
// currency using the inverse rate.
func (c *Converter) FromReporting(amount decimal.Decimal, code string) (decimal.Decimal, error) {
	rate, err := c.rateFor(code)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return amount.DivRound(rate, 10), nil
}
