package engine

import "github.com/yingtu-pmc/analyzer-go/internal/domain"

// classify assigns a record its completeness rule and tier. The rules form a
// priority-ordered decision list: the first match wins.
//
// Both full_match and order_without_material emit the COMPLETE tier. The
// first is an order whose material needs are fully priced and sourced; the
// second is an order that needs no material at all. The rule stays on the
// record so the two situations remain distinguishable downstream.
func classify(rec *domain.IntegratedRecord) {
	hasShortage := rec.HasShortage && rec.MaterialID != nil && *rec.MaterialID != ""
	hasPrice := rec.InventoryUnitPrice != nil && rec.InventoryUnitPrice.Sign() > 0
	hasSupplier := rec.Supplier != nil
	hasAmount := rec.OrderAmountReporting != nil && rec.OrderAmountReporting.Sign() > 0
	hasOrderID := rec.ProductionOrderID != ""

	switch {
	case hasShortage && hasPrice && hasSupplier && hasAmount:
		rec.Rule = domain.RuleFullMatch
	case hasShortage && hasPrice && hasAmount:
		rec.Rule = domain.RulePartialNoSupplier
	case hasAmount && !hasShortage:
		rec.Rule = domain.RuleOrderWithoutMaterial
	case hasOrderID && !hasShortage && !hasAmount:
		rec.Rule = domain.RuleNoShortageNoAmount
	case hasOrderID:
		rec.Rule = domain.RuleOrderInfoIncomplete
	default:
		rec.Rule = domain.RuleInvalid
	}

	rec.Tier = rec.Rule.Tier()
}
