package domain

import dErrors "custodia/pkg/domain-errors"

// Category classifies a supply-chain participant for transfer-rule
// enforcement.
// Invariant: the value must be one of the recognized categories below.
//
// Usage: construct via ParseCategory at trust boundaries to enforce the
// closed set; direct casting bypasses validation.
type Category string

// Recognized participant categories. Carriers are split by transport mode;
// all three count as "carrier" for purchasability and transit-condition rules.
const (
	CategoryVendor      Category = "vendor"
	CategoryCarrierAir  Category = "carrier_air"
	CategoryCarrierSea  Category = "carrier_sea"
	CategoryCarrierLand Category = "carrier_land"
	CategoryPharmacy    Category = "pharmacy"

	// CategoryNotApplicable is the sentinel for "no conditions recorded".
	// It is valid only where a transit reading legitimately has no carrier;
	// it is never a valid recipient category.
	CategoryNotApplicable Category = "not_applicable"
)

// validCategories is the single source of truth for the closed set.
var validCategories = map[Category]bool{
	CategoryVendor:        true,
	CategoryCarrierAir:    true,
	CategoryCarrierSea:    true,
	CategoryCarrierLand:   true,
	CategoryPharmacy:      true,
	CategoryNotApplicable: true,
}

// ParseCategory constructs a Category from external input.
//
// Errors: returns CodeUnknownCategory when the value is empty or outside the
// recognized set.
func ParseCategory(s string) (Category, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeUnknownCategory, "category cannot be empty")
	}
	c := Category(s)
	if !c.IsValid() {
		return "", dErrors.Newf(dErrors.CodeUnknownCategory, "unrecognized category %q", s)
	}
	return c, nil
}

// IsValid checks whether the category is in the recognized set.
func (c Category) IsValid() bool {
	return validCategories[c]
}

// IsCarrier reports whether the category is any of the carrier subtypes.
func (c Category) IsCarrier() bool {
	switch c {
	case CategoryCarrierAir, CategoryCarrierSea, CategoryCarrierLand:
		return true
	default:
		return false
	}
}

// String returns the string representation of the category.
func (c Category) String() string {
	return string(c)
}
