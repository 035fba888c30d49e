package ingest

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// parseDecimal reads a numeric cell the way the exports write them, with
// thousands separators and the occasional currency glyph. Unparseable cells
// count as zero, matching how the analysis has always coerced dirty numbers.
func parseDecimal(raw string) (decimal.Decimal, bool) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimLeft(cleaned, "¥$€ ")
	if cleaned == "" || cleaned == "-" {
		return decimal.Decimal{}, false
	}
	v, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return v, true
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	"2006-1-2",
	"2006/1/2",
	"01-02-06",
	"1/2/06",
	time.RFC3339,
}

// parseDate tries the layouts the exports have been seen to use. A cell
// none of them match is treated as no date.
func parseDate(raw string) *time.Time {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return &t
		}
	}
	return nil
}

// parseFloat reads a unit-interval score cell; out-of-range or unparseable
// values clamp to the interval's edge.
func parseFloat(raw string) float64 {
	v, ok := parseDecimal(raw)
	if !ok {
		return 0
	}
	f, _ := v.Float64()
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
