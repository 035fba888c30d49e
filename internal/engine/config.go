package engine

import (
	"math"

	"github.com/shopspring/decimal"
)

// SelectorWeights are the scoring weights for supplier selection.
// They must sum to 1.0.
type SelectorWeights struct {
	Recency   float64
	Price     float64
	Stability float64
}

// Config is the full configuration for one analysis run. Each run receives
// its own copy so concurrent runs can never interfere through shared rates
// or thresholds.
type Config struct {
	// ReportingCurrency is the code all monetary output is expressed in.
	ReportingCurrency string

	// Rates maps a currency code to its value in the reporting currency.
	// The reporting currency itself is implicitly 1.0.
	Rates map[string]decimal.Decimal

	Weights SelectorWeights

	// Epsilon guards the ROI branch: shortage totals at or below it are
	// treated as zero so near-zero values never produce absurd ratios.
	Epsilon decimal.Decimal

	// MaxJoinRows bounds the expanded table; joins past it fail fast.
	MaxJoinRows int
}

const weightTolerance = 1e-9

// DefaultConfig returns the configuration the original analysis ran with:
// RMB reporting with fixed USD/HKD/EUR rates.
func DefaultConfig() Config {
	return Config{
		ReportingCurrency: "RMB",
		Rates: map[string]decimal.Decimal{
			"USD": decimal.RequireFromString("7.20"),
			"HKD": decimal.RequireFromString("0.93"),
			"EUR": decimal.RequireFromString("7.85"),
		},
		Weights: SelectorWeights{
			Recency:   0.40,
			Price:     0.35,
			Stability: 0.25,
		},
		Epsilon:     decimal.New(1, -6), // 0.000001
		MaxJoinRows: 500_000,
	}
}

// Validate checks the configuration before a run starts. All failures are
// ConfigurationErrors and abort the run with no partial output.
func (c Config) Validate() error {
	if c.ReportingCurrency == "" {
		return configErrorf("reporting currency must be set")
	}
	sum := c.Weights.Recency + c.Weights.Price + c.Weights.Stability
	if math.Abs(sum-1.0) > weightTolerance {
		return configErrorf("selector weights must sum to 1.0, got %.6f", sum)
	}
	if c.Weights.Recency < 0 || c.Weights.Price < 0 || c.Weights.Stability < 0 {
		return configErrorf("selector weights must be non-negative")
	}
	for code, rate := range c.Rates {
		if rate.Sign() <= 0 {
			return configErrorf("rate for currency %s must be positive, got %s", code, rate)
		}
	}
	if c.Epsilon.Sign() < 0 {
		return configErrorf("epsilon must be non-negative, got %s", c.Epsilon)
	}
	if c.MaxJoinRows <= 0 {
		return configErrorf("max join rows must be positive, got %d", c.MaxJoinRows)
	}
	return nil
}

// Clone deep-copies the configuration so a run can hold it without sharing
// the rate map with anyone else.
func (c Config) Clone() Config {
	out := c
	out.Rates = make(map[string]decimal.Decimal, len(c.Rates))
	for code, rate := range c.Rates {
		out.Rates[code] = rate
	}
	return out
}
