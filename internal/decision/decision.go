// Package decision evaluates purchase eligibility from a custody record's
// handover history.
//
// The evaluator is stateless and read-only: verdicts are recomputed on every
// query and never persisted. A verdict can carry several rejection codes at
// once; ValidForPurchase appears only when no rejection applies.
package decision

import (
	"custodia/internal/custody/models"
	id "custodia/pkg/domain"
)

// maxCarrierLegs is the number of carrier-to-carrier handovers an item may
// accumulate before it is considered tampering-prone. Frequent re-handover
// between carriers is treated as a chain-of-custody risk regardless of the
// conditions logged. Fixed domain constant, not configurable.
const maxCarrierLegs = 2

// Evaluate computes the eligibility verdict for the record's current log.
// Codes are returned in a fixed order: NotInPharmacy, TooManyHandovers,
// ValidForPurchase. The output is duplicate-free by construction.
func Evaluate(record *models.CustodyRecord) []id.PurchasabilityCode {
	var codes []id.PurchasabilityCode

	if record.LastHandover().ToCategory != id.CategoryPharmacy {
		codes = append(codes, id.CodeNotInPharmacy)
	}
	if carrierLegs(record.Handovers()) > maxCarrierLegs {
		codes = append(codes, id.CodeTooManyHandovers)
	}
	if len(codes) == 0 {
		codes = append(codes, id.CodeValidForPurchase)
	}
	return codes
}

// carrierLegs counts handovers whose outgoing and incoming holders are both
// carriers, cumulatively over the whole log. The outgoing holder's category
// is derived from the log itself: the vendor at genesis, otherwise the
// recipient category of the previous leg. Non-carrier legs do not reset the
// count.
func carrierLegs(log []models.HandoverEvent) int {
	count := 0
	fromCategory := id.CategoryVendor
	for _, e := range log {
		if fromCategory.IsCarrier() && e.ToCategory.IsCarrier() {
			count++
		}
		fromCategory = e.ToCategory
	}
	return count
}
