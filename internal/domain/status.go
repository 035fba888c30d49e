package domain

// CompletenessTier is the externally visible data-quality label of a record.
type CompletenessTier string

const (
	TierComplete            CompletenessTier = "COMPLETE"
	TierPartialNoSupplier   CompletenessTier = "PARTIAL_NO_SUPPLIER"
	TierNoShortageNoAmount  CompletenessTier = "NO_SHORTAGE_NO_AMOUNT"
	TierOrderInfoIncomplete CompletenessTier = "ORDER_INFO_INCOMPLETE"
	TierInvalidRecord       CompletenessTier = "INVALID_RECORD"
)

// ClassificationRule identifies which decision-list rule produced a record's
// tier. Two rules map to the COMPLETE tier: a fully matched
// material-constrained order and an order that needs no material at all.
// The label coincides but the situations differ, so the rule is kept on the
// record for audit.
type ClassificationRule string

const (
	RuleFullMatch            ClassificationRule = "full_match"
	RulePartialNoSupplier    ClassificationRule = "partial_no_supplier"
	RuleOrderWithoutMaterial ClassificationRule = "order_without_material"
	RuleNoShortageNoAmount   ClassificationRule = "no_shortage_no_amount"
	RuleOrderInfoIncomplete  ClassificationRule = "order_info_incomplete"
	RuleInvalid              ClassificationRule = "invalid"
)

// Tier returns the externally visible tier a rule maps to.
func (r ClassificationRule) Tier() CompletenessTier {
	switch r {
	case RuleFullMatch, RuleOrderWithoutMaterial:
		return TierComplete
	case RulePartialNoSupplier:
		return TierPartialNoSupplier
	case RuleNoShortageNoAmount:
		return TierNoShortageNoAmount
	case RuleOrderInfoIncomplete:
		return TierOrderInfoIncomplete
	default:
		return TierInvalidRecord
	}
}
