package models

import (
	"time"

	id "custodia/pkg/domain"
)

// HandoverEvent is one recorded transfer of physical custody. Events are
// immutable once appended; only their transit-condition list grows, and only
// through the owning record.
type HandoverEvent struct {
	FromID     id.PartyID  `json:"from_id"`
	ToID       id.PartyID  `json:"to_id"`
	ToCategory id.Category `json:"to_category"`
	Timestamp  time.Time   `json:"timestamp"`

	// TransitConditions holds environmental readings attached to this leg,
	// in attachment order. Multiple readings per leg are legal.
	TransitConditions []TransitConditionEntry `json:"transit_conditions,omitempty"`
}

// TransitConditionEntry is one environmental reading recorded for a leg.
type TransitConditionEntry struct {
	Temperature     float64     `json:"temperature"`
	CarrierCategory id.Category `json:"carrier_category"`
}

// LastCondition returns the most recent reading for this leg, or the
// zero reading (temperature 0, carrier NotApplicable) when none was recorded.
func (e HandoverEvent) LastCondition() TransitConditionEntry {
	if len(e.TransitConditions) == 0 {
		return TransitConditionEntry{CarrierCategory: id.CategoryNotApplicable}
	}
	return e.TransitConditions[len(e.TransitConditions)-1]
}

// clone returns a deep copy so callers can never reach the record's
// internal slices through a returned event.
func (e HandoverEvent) clone() HandoverEvent {
	out := e
	if len(e.TransitConditions) > 0 {
		out.TransitConditions = make([]TransitConditionEntry, len(e.TransitConditions))
		copy(out.TransitConditions, e.TransitConditions)
	}
	return out
}

// legKey identifies a logged handover by its (from, to, timestamp) triple.
// Timestamps compare at nanosecond precision; stores must round-trip them
// exactly (the Postgres store persists unix nanos for this reason).
type legKey struct {
	from id.PartyID
	to   id.PartyID
	when int64
}

func keyOf(from, to id.PartyID, when time.Time) legKey {
	return legKey{from: from, to: to, when: when.UnixNano()}
}
