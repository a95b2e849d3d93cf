package domain

// PurchasabilityCode is one of the fixed eligibility outcomes computed from a
// custody record's full handover history. A verdict can carry several
// rejection codes at once; ValidForPurchase appears only when no rejection
// applies.
type PurchasabilityCode string

const (
	// CodeNotInPharmacy means the item's current holder is not a pharmacy.
	CodeNotInPharmacy PurchasabilityCode = "not_in_pharmacy"
	// CodeTooManyHandovers means the item moved carrier-to-carrier more than
	// the allowed number of times, a proxy for chain-of-custody risk.
	CodeTooManyHandovers PurchasabilityCode = "too_many_handovers"
	// CodeValidForPurchase means the item is eligible for final sale.
	CodeValidForPurchase PurchasabilityCode = "valid_for_purchase"
)

func (c PurchasabilityCode) String() string { return string(c) }
