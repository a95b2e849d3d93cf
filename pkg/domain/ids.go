package domain

import (
	"strings"

	dErrors "custodia/pkg/domain-errors"
)

// Typed identifiers keep item, party, and authority IDs from being mixed up
// at compile time. All three are opaque strings owned by external systems
// (serialization identifiers for items, registry identifiers for parties,
// ledger identities for authorities); custodia never inspects their structure
// beyond non-emptiness.
type (
	// ItemID identifies one physical item (e.g. a pharmaceutical unit).
	ItemID string

	// PartyID identifies a supply-chain participant (vendor, carrier, pharmacy).
	PartyID string

	// AuthorityID identifies the entity permitted to mutate a custody record.
	AuthorityID string
)

// ParseItemID validates an item identifier from external input.
//
// Errors: returns CodeEmptyIdentifier when the value is empty or whitespace.
func ParseItemID(s string) (ItemID, error) {
	if strings.TrimSpace(s) == "" {
		return "", dErrors.New(dErrors.CodeEmptyIdentifier, "item id cannot be empty")
	}
	return ItemID(s), nil
}

// ParsePartyID validates a participant identifier from external input.
func ParsePartyID(s string) (PartyID, error) {
	if strings.TrimSpace(s) == "" {
		return "", dErrors.New(dErrors.CodeValidation, "party id cannot be empty")
	}
	return PartyID(s), nil
}

func (id ItemID) String() string      { return string(id) }
func (id PartyID) String() string     { return string(id) }
func (id AuthorityID) String() string { return string(id) }

// IsNil reports whether the authority identity is unset.
func (id AuthorityID) IsNil() bool { return id == "" }
