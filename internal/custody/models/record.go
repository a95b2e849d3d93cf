package models

import (
	"time"

	id "custodia/pkg/domain"
	dErrors "custodia/pkg/domain-errors"
)

// CustodyRecord is the aggregate root for one item's chain of custody.
//
// Invariants:
//   - ItemID is non-empty for the lifetime of the record
//   - the handover log has length >= 1 and never shrinks; index 0 is genesis
//   - handover i is initiated by the holder produced by handover i-1
//   - no handover ever routes the item to a vendor, genesis included
//   - every recipient category is a recognized participant category
//   - only the primary authority may append handovers or transit conditions
//
// The primary authority is fixed at creation; there is no transfer of the
// authority itself, only of physical custody. Mutating operations either
// fully succeed or leave the record untouched.
type CustodyRecord struct {
	itemID           id.ItemID
	vendorID         id.PartyID
	primaryAuthority id.AuthorityID
	events           []HandoverEvent

	// legIndex maps (from, to, timestamp) to the event's position so
	// condition attachment stays O(1) as history grows.
	legIndex map[legKey]int
}

// NewCustodyRecord creates a record with its genesis handover
// (vendor -> first holder) already logged, stamped with now.
func NewCustodyRecord(
	itemID id.ItemID,
	vendorID id.PartyID,
	firstHolderID id.PartyID,
	firstHolderCategory id.Category,
	authority id.AuthorityID,
	now time.Time,
) (*CustodyRecord, error) {
	if itemID == "" {
		return nil, dErrors.New(dErrors.CodeEmptyIdentifier, "item id cannot be empty")
	}
	if err := checkRecipientCategory(firstHolderCategory); err != nil {
		return nil, err
	}

	r := &CustodyRecord{
		itemID:           itemID,
		vendorID:         vendorID,
		primaryAuthority: authority,
		legIndex:         make(map[legKey]int),
	}
	r.append(HandoverEvent{
		FromID:     vendorID,
		ToID:       firstHolderID,
		ToCategory: firstHolderCategory,
		Timestamp:  now,
	})
	return r, nil
}

// LogHandover appends a transfer from the current holder to toID and returns
// the appended event. The log grows by exactly one element; no existing
// element is mutated.
func (r *CustodyRecord) LogHandover(
	caller id.AuthorityID,
	fromID id.PartyID,
	toID id.PartyID,
	toCategory id.Category,
	now time.Time,
) (HandoverEvent, error) {
	if err := r.authorize(caller); err != nil {
		return HandoverEvent{}, err
	}
	if err := checkRecipientCategory(toCategory); err != nil {
		return HandoverEvent{}, err
	}
	if last := r.events[len(r.events)-1]; fromID != last.ToID {
		return HandoverEvent{}, dErrors.Newf(dErrors.CodeBrokenChain,
			"handover must be initiated by current holder %s, got %s", last.ToID, fromID)
	}

	event := HandoverEvent{
		FromID:     fromID,
		ToID:       toID,
		ToCategory: toCategory,
		Timestamp:  now,
	}
	r.append(event)
	return event.clone(), nil
}

// AttachTransitConditions appends an environmental reading to the logged leg
// matching (fromID, toID, when) exactly. Repeated calls append further
// readings; nothing is ever overwritten.
func (r *CustodyRecord) AttachTransitConditions(
	caller id.AuthorityID,
	fromID id.PartyID,
	toID id.PartyID,
	when time.Time,
	temperature float64,
	carrierCategory id.Category,
) error {
	if err := r.authorize(caller); err != nil {
		return err
	}
	// The NotApplicable sentinel is legal here: a leg can carry a reading
	// recorded outside any carrier's custody.
	if !carrierCategory.IsValid() {
		return dErrors.Newf(dErrors.CodeUnknownCategory,
			"unrecognized carrier category %q", carrierCategory)
	}
	pos, ok := r.legIndex[keyOf(fromID, toID, when)]
	if !ok {
		return dErrors.Newf(dErrors.CodeUnknownHandover,
			"no handover %s -> %s at %s", fromID, toID, when.UTC().Format(time.RFC3339Nano))
	}
	r.events[pos].TransitConditions = append(r.events[pos].TransitConditions, TransitConditionEntry{
		Temperature:     temperature,
		CarrierCategory: carrierCategory,
	})
	return nil
}

// LastHandover returns the most recently appended event. Total given the
// length >= 1 invariant.
func (r *CustodyRecord) LastHandover() HandoverEvent {
	return r.events[len(r.events)-1].clone()
}

// HandoverAt returns the event at the given log position.
func (r *CustodyRecord) HandoverAt(index int) (HandoverEvent, error) {
	if index < 0 || index >= len(r.events) {
		return HandoverEvent{}, dErrors.Newf(dErrors.CodeIndexOutOfRange,
			"handover index %d out of range [0,%d)", index, len(r.events))
	}
	return r.events[index].clone(), nil
}

// Handovers returns a deep copy of the full log, genesis first.
func (r *CustodyRecord) Handovers() []HandoverEvent {
	out := make([]HandoverEvent, len(r.events))
	for i, e := range r.events {
		out[i] = e.clone()
	}
	return out
}

// Len returns the number of logged handovers.
func (r *CustodyRecord) Len() int { return len(r.events) }

// ItemID returns the immutable item identifier.
func (r *CustodyRecord) ItemID() id.ItemID { return r.itemID }

// Vendor returns the originating vendor.
func (r *CustodyRecord) Vendor() id.PartyID { return r.vendorID }

// Primary returns the sole identity permitted to mutate this record.
func (r *CustodyRecord) Primary() id.AuthorityID { return r.primaryAuthority }

// Rehydrate rebuilds an aggregate from persisted state. Stores own the
// integrity of what they persisted; Rehydrate only re-derives the leg index
// and re-checks the structural invariants it cannot function without.
func Rehydrate(
	itemID id.ItemID,
	vendorID id.PartyID,
	authority id.AuthorityID,
	events []HandoverEvent,
) (*CustodyRecord, error) {
	if itemID == "" {
		return nil, dErrors.New(dErrors.CodeEmptyIdentifier, "item id cannot be empty")
	}
	if len(events) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "custody record requires a genesis handover")
	}
	r := &CustodyRecord{
		itemID:           itemID,
		vendorID:         vendorID,
		primaryAuthority: authority,
		legIndex:         make(map[legKey]int, len(events)),
	}
	for _, e := range events {
		r.append(e.clone())
	}
	return r, nil
}

// Clone deep-copies the record. In-memory stores hand out clones so callers
// can never mutate committed state.
func (r *CustodyRecord) Clone() *CustodyRecord {
	clone, _ := Rehydrate(r.itemID, r.vendorID, r.primaryAuthority, r.events)
	return clone
}

func (r *CustodyRecord) append(e HandoverEvent) {
	r.events = append(r.events, e)
	r.legIndex[keyOf(e.FromID, e.ToID, e.Timestamp)] = len(r.events) - 1
}

func (r *CustodyRecord) authorize(caller id.AuthorityID) error {
	if caller != r.primaryAuthority {
		return dErrors.Newf(dErrors.CodeUnauthorized,
			"caller %s is not the record's primary authority", caller)
	}
	return nil
}

// checkRecipientCategory enforces the recipient-side category rules shared by
// creation and handover: the category must be a recognized participant
// category (the NotApplicable sentinel is not one), and an item can never be
// routed to a vendor.
func checkRecipientCategory(c id.Category) error {
	if !c.IsValid() || c == id.CategoryNotApplicable {
		return dErrors.Newf(dErrors.CodeUnknownCategory, "unrecognized recipient category %q", c)
	}
	if c == id.CategoryVendor {
		return dErrors.New(dErrors.CodeVendorReturn, "items cannot be routed back to a vendor")
	}
	return nil
}
