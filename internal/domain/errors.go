package domain

import "errors"

var (
	// ErrCostInvariant is returned when total_cost does not equal
	// unit_cost multiplied by quantity.
	ErrCostInvariant = errors.New("total_cost must equal unit_cost * quantity")

	// ErrOrderingViolation is returned when an event is appended with a
	// timestamp earlier than the last event in the ledger.
	ErrOrderingViolation = errors.New("events must be appended in chronological order")

	// ErrInvalidQuantity is returned when a cost calculation is requested
	// for a negative quantity.
	ErrInvalidQuantity = errors.New("quantity cannot be negative")

	// ErrNoPricingTiers is returned when a pricing model declares no tiers.
	ErrNoPricingTiers = errors.New("pricing model has no tiers")

	// ErrUnsupportedQuantity is returned when the declared tiers do not
	// cover the requested quantity.
	ErrUnsupportedQuantity = errors.New("no pricing tier covers the requested quantity")

	// ErrUnknownPricingVersion is returned when an event references a
	// pricing version absent from the catalog.
	ErrUnknownPricingVersion = errors.New("unknown pricing version")

	// ErrCostMismatch is returned when a recorded cost diverges from the
	// cost recomputed against the catalog.
	ErrCostMismatch = errors.New("recorded cost does not match recomputed cost")
)
