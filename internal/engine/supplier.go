package engine

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yingtu-pmc/analyzer-go/internal/domain"
)

// ScoredOffer is one supplier candidate for a material with its computed
// ranking. The full candidate list is kept for the multi-supplier audit
// sheet whenever a material had more than one offer.
type ScoredOffer struct {
	MaterialID     string          `json:"material_id"`
	SupplierID     string          `json:"supplier_id"`
	SupplierName   string          `json:"supplier_name,omitempty"`
	UnitPrice      decimal.Decimal `json:"unit_price_reporting"`
	SourcePrice    domain.Money    `json:"source_price"`
	RecencyRank    float64         `json:"recency_rank"`
	PriceRank      float64         `json:"price_rank"`
	StabilityScore float64         `json:"stability_score"`
	Score          float64         `json:"score"`
	Selected       bool            `json:"selected"`

	offer domain.SupplierOffer
}

// selectSuppliers picks exactly one offer per material. The score is a
// weighted sum of per-material ranks; ties fall back to lower price, then
// most recent modification, then lowest supplier id, so the selection is a
// deterministic total order over any candidate set.
func selectSuppliers(offers []domain.SupplierOffer, weights SelectorWeights, conv *Converter) (map[string]*domain.SelectedOffer, []ScoredOffer, error) {
	byMaterial := make(map[string][]domain.SupplierOffer)
	var materials []string
	for _, offer := range offers {
		if offer.MaterialID == "" {
			continue
		}
		if _, seen := byMaterial[offer.MaterialID]; !seen {
			materials = append(materials, offer.MaterialID)
		}
		byMaterial[offer.MaterialID] = append(byMaterial[offer.MaterialID], offer)
	}
	sort.Strings(materials)

	selected := make(map[string]*domain.SelectedOffer, len(materials))
	var audit []ScoredOffer

	for _, materialID := range materials {
		scored, err := scoreOffers(byMaterial[materialID], weights, conv)
		if err != nil {
			return nil, nil, err
		}

		best := &scored[0]
		best.Selected = true
		selected[materialID] = &domain.SelectedOffer{
			SupplierID:     best.offer.SupplierID,
			SupplierName:   best.offer.SupplierName,
			UnitPrice:      best.UnitPrice,
			SourcePrice:    best.offer.UnitPrice,
			MinOrderQty:    best.offer.MinOrderQty,
			LastModifiedAt: best.offer.LastModifiedAt,
			StabilityScore: best.offer.StabilityScore,
		}

		// Single-offer materials need no audit trail.
		if len(scored) > 1 {
			audit = append(audit, scored...)
		}
	}

	return selected, audit, nil
}

// scoreOffers ranks all offers for one material and returns them sorted
// best-first.
func scoreOffers(offers []domain.SupplierOffer, weights SelectorWeights, conv *Converter) ([]ScoredOffer, error) {
	scored := make([]ScoredOffer, 0, len(offers))
	for _, offer := range offers {
		price, err := conv.ToReporting(offer.UnitPrice)
		if err != nil {
			return nil, err
		}
		scored = append(scored, ScoredOffer{
			MaterialID:     offer.MaterialID,
			SupplierID:     offer.SupplierID,
			SupplierName:   offer.SupplierName,
			UnitPrice:      price,
			SourcePrice:    offer.UnitPrice,
			StabilityScore: offer.StabilityScore,
			offer:          offer,
		})
	}

	applyRecencyRanks(scored)
	applyPriceRanks(scored)

	for i := range scored {
		scored[i].Score = weights.Recency*scored[i].RecencyRank +
			weights.Price*scored[i].PriceRank +
			weights.Stability*scored[i].StabilityScore
	}

	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if cmp := a.UnitPrice.Cmp(b.UnitPrice); cmp != 0 {
			return cmp < 0
		}
		if cmp := compareRecency(a.offer.LastModifiedAt, b.offer.LastModifiedAt); cmp != 0 {
			return cmp > 0
		}
		return a.SupplierID < b.SupplierID
	})

	return scored, nil
}

// applyRecencyRanks normalizes modification times to [0,1] across the
// material's offers: the most recent gets 1.0, the oldest 0.0, offers with
// no recorded modification date rank lowest.
func applyRecencyRanks(scored []ScoredOffer) {
	var haveAny bool
	var oldest, newest int64
	for _, s := range scored {
		if s.offer.LastModifiedAt == nil {
			continue
		}
		ts := s.offer.LastModifiedAt.UnixNano()
		if !haveAny {
			oldest, newest = ts, ts
			haveAny = true
			continue
		}
		if ts < oldest {
			oldest = ts
		}
		if ts > newest {
			newest = ts
		}
	}
	if !haveAny {
		return
	}

	span := newest - oldest
	for i := range scored {
		if scored[i].offer.LastModifiedAt == nil {
			continue
		}
		if span == 0 {
			scored[i].RecencyRank = 1.0
			continue
		}
		ts := scored[i].offer.LastModifiedAt.UnixNano()
		scored[i].RecencyRank = float64(ts-oldest) / float64(span)
	}
}

// applyPriceRanks normalizes positive prices to [0,1]: the lowest price gets
// 1.0, the highest 0.0. Offers with no usable price rank lowest.
func applyPriceRanks(scored []ScoredOffer) {
	var haveAny bool
	var lowest, highest decimal.Decimal
	for _, s := range scored {
		if s.UnitPrice.Sign() <= 0 {
			continue
		}
		if !haveAny {
			lowest, highest = s.UnitPrice, s.UnitPrice
			haveAny = true
			continue
		}
		if s.UnitPrice.Cmp(lowest) < 0 {
			lowest = s.UnitPrice
		}
		if s.UnitPrice.Cmp(highest) > 0 {
			highest = s.UnitPrice
		}
	}
	if !haveAny {
		return
	}

	span := highest.Sub(lowest)
	for i := range scored {
		if scored[i].UnitPrice.Sign() <= 0 {
			continue
		}
		if span.IsZero() {
			scored[i].PriceRank = 1.0
			continue
		}
		rank, _ := highest.Sub(scored[i].UnitPrice).DivRound(span, 12).Float64()
		scored[i].PriceRank = rank
	}
}

// compareRecency orders modification times with nil treated as oldest.
func compareRecency(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	case a.After(*b):
		return 1
	case a.Before(*b):
		return -1
	default:
		return 0
	}
}
