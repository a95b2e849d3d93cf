package handler

import (
	"strings"
	"time"

	id "custodia/pkg/domain"
	dErrors "custodia/pkg/domain-errors"
)

// CreateRecordRequest is the payload for POST /records.
type CreateRecordRequest struct {
	ItemID        string `json:"item_id"`
	VendorID      string `json:"vendor_id"`
	FirstHolderID string `json:"first_holder_id"`
}

// Normalize trims whitespace from all identifiers.
func (r *CreateRecordRequest) Normalize() {
	r.ItemID = strings.TrimSpace(r.ItemID)
	r.VendorID = strings.TrimSpace(r.VendorID)
	r.FirstHolderID = strings.TrimSpace(r.FirstHolderID)
}

// Validate checks the request and returns the typed identifiers.
func (r *CreateRecordRequest) Validate() (id.ItemID, id.PartyID, id.PartyID, error) {
	itemID, err := id.ParseItemID(r.ItemID)
	if err != nil {
		return "", "", "", err
	}
	vendorID, err := id.ParsePartyID(r.VendorID)
	if err != nil {
		return "", "", "", dErrors.New(dErrors.CodeValidation, "vendor_id cannot be empty")
	}
	firstHolderID, err := id.ParsePartyID(r.FirstHolderID)
	if err != nil {
		return "", "", "", dErrors.New(dErrors.CodeValidation, "first_holder_id cannot be empty")
	}
	return itemID, vendorID, firstHolderID, nil
}

// LogHandoverRequest is the payload for POST /records/{itemID}/handovers.
type LogHandoverRequest struct {
	FromID string `json:"from_id"`
	ToID   string `json:"to_id"`
}

func (r *LogHandoverRequest) Normalize() {
	r.FromID = strings.TrimSpace(r.FromID)
	r.ToID = strings.TrimSpace(r.ToID)
}

func (r *LogHandoverRequest) Validate() (id.PartyID, id.PartyID, error) {
	fromID, err := id.ParsePartyID(r.FromID)
	if err != nil {
		return "", "", dErrors.New(dErrors.CodeValidation, "from_id cannot be empty")
	}
	toID, err := id.ParsePartyID(r.ToID)
	if err != nil {
		return "", "", dErrors.New(dErrors.CodeValidation, "to_id cannot be empty")
	}
	return fromID, toID, nil
}

// RecordConditionsRequest is the payload for POST /records/{itemID}/conditions.
// When must match a logged handover timestamp exactly (RFC3339 with
// nanoseconds, as returned by the handover endpoints).
type RecordConditionsRequest struct {
	FromID          string    `json:"from_id"`
	ToID            string    `json:"to_id"`
	When            time.Time `json:"when"`
	Temperature     float64   `json:"temperature"`
	CarrierCategory string    `json:"carrier_category"`
}

func (r *RecordConditionsRequest) Normalize() {
	r.FromID = strings.TrimSpace(r.FromID)
	r.ToID = strings.TrimSpace(r.ToID)
	r.CarrierCategory = strings.TrimSpace(r.CarrierCategory)
}

func (r *RecordConditionsRequest) Validate() (id.PartyID, id.PartyID, id.Category, error) {
	fromID, err := id.ParsePartyID(r.FromID)
	if err != nil {
		return "", "", "", dErrors.New(dErrors.CodeValidation, "from_id cannot be empty")
	}
	toID, err := id.ParsePartyID(r.ToID)
	if err != nil {
		return "", "", "", dErrors.New(dErrors.CodeValidation, "to_id cannot be empty")
	}
	if r.When.IsZero() {
		return "", "", "", dErrors.New(dErrors.CodeValidation, "when is required")
	}
	// Absent carrier category means "no carrier recorded this reading".
	category := id.CategoryNotApplicable
	if r.CarrierCategory != "" {
		category, err = id.ParseCategory(r.CarrierCategory)
		if err != nil {
			return "", "", "", err
		}
	}
	return fromID, toID, category, nil
}
