package engine

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/yingtu-pmc/analyzer-go/internal/domain"
)

func strPtr(s string) *string { return &s }

func decPtr(t *testing.T, s string) *decimal.Decimal {
	t.Helper()
	v := d(t, s)
	return &v
}

func TestClassify(t *testing.T) {
	supplier := &domain.SelectedOffer{SupplierID: "S-1"}

	tests := []struct {
		name     string
		rec      domain.IntegratedRecord
		wantRule domain.ClassificationRule
		wantTier domain.CompletenessTier
	}{
		{
			name: "full match",
			rec: domain.IntegratedRecord{
				ProductionOrderID:    "PO-1",
				HasShortage:          true,
				MaterialID:           strPtr("M-1"),
				InventoryUnitPrice:   decPtr(t, "4.50"),
				Supplier:             supplier,
				OrderAmountReporting: decPtr(t, "1000"),
			},
			wantRule: domain.RuleFullMatch,
			wantTier: domain.TierComplete,
		},
		{
			name: "priced shortage without supplier",
			rec: domain.IntegratedRecord{
				ProductionOrderID:    "PO-1",
				HasShortage:          true,
				MaterialID:           strPtr("M-1"),
				InventoryUnitPrice:   decPtr(t, "4.50"),
				OrderAmountReporting: decPtr(t, "1000"),
			},
			wantRule: domain.RulePartialNoSupplier,
			wantTier: domain.TierPartialNoSupplier,
		},
		{
			name: "order needs no material",
			rec: domain.IntegratedRecord{
				ProductionOrderID:    "PO-1",
				OrderAmountReporting: decPtr(t, "1000"),
			},
			wantRule: domain.RuleOrderWithoutMaterial,
			wantTier: domain.TierComplete,
		},
		{
			name: "no shortage and no amount",
			rec: domain.IntegratedRecord{
				ProductionOrderID: "PO-1",
			},
			wantRule: domain.RuleNoShortageNoAmount,
			wantTier: domain.TierNoShortageNoAmount,
		},
		{
			name: "shortage with no usable price",
			rec: domain.IntegratedRecord{
				ProductionOrderID:    "PO-1",
				HasShortage:          true,
				MaterialID:           strPtr("M-1"),
				OrderAmountReporting: decPtr(t, "1000"),
			},
			wantRule: domain.RuleOrderInfoIncomplete,
			wantTier: domain.TierOrderInfoIncomplete,
		},
		{
			name: "zero price counts as unpriced",
			rec: domain.IntegratedRecord{
				ProductionOrderID:    "PO-1",
				HasShortage:          true,
				MaterialID:           strPtr("M-1"),
				InventoryUnitPrice:   decPtr(t, "0"),
				Supplier:             supplier,
				OrderAmountReporting: decPtr(t, "1000"),
			},
			wantRule: domain.RuleOrderInfoIncomplete,
			wantTier: domain.TierOrderInfoIncomplete,
		},
		{
			name: "blank material id is no shortage",
			rec: domain.IntegratedRecord{
				ProductionOrderID:    "PO-1",
				HasShortage:          true,
				MaterialID:           strPtr(""),
				OrderAmountReporting: decPtr(t, "1000"),
			},
			wantRule: domain.RuleOrderWithoutMaterial,
			wantTier: domain.TierComplete,
		},
		{
			name:     "nothing at all",
			rec:      domain.IntegratedRecord{},
			wantRule: domain.RuleInvalid,
			wantTier: domain.TierInvalidRecord,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tt.rec
			classify(&rec)
			if rec.Rule != tt.wantRule {
				t.Errorf("rule = %s, want %s", rec.Rule, tt.wantRule)
			}
			if rec.Tier != tt.wantTier {
				t.Errorf("tier = %s, want %s", rec.Tier, tt.wantTier)
			}
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	rec := domain.IntegratedRecord{
		ProductionOrderID:    "PO-1",
		HasShortage:          true,
		MaterialID:           strPtr("M-1"),
		InventoryUnitPrice:   decPtr(t, "3"),
		OrderAmountReporting: decPtr(t, "500"),
	}

	classify(&rec)
	first := rec.Rule
	for i := 0; i < 10; i++ {
		again := rec
		classify(&again)
		if again.Rule != first {
			t.Fatalf("classification changed between runs: %s then %s", first, again.Rule)
		}
	}
}
