package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CostEvent is a single unit of cost attribution. Each event is
// deterministic and fully attributable to a specific action, component,
// and pricing source; no aggregation happens at this level.
//
// Events are treated as immutable once constructed. Use NewCostEvent so
// the cost invariant is checked up front.
type CostEvent struct {
	// ID uniquely identifies this cost event.
	ID uuid.UUID `json:"event_id"`

	// Timestamp is the instant the cost was incurred.
	Timestamp time.Time `json:"timestamp"`

	// ExecutionID ties this event to a specific run or session.
	ExecutionID uuid.UUID `json:"execution_id"`

	// Component is the source of the cost (model, external_api, cache, ...).
	Component string `json:"component"`

	// Action is what was done to trigger the cost.
	Action string `json:"action"`

	UnitCost  float64 `json:"unit_cost"`
	Quantity  float64 `json:"quantity"`
	TotalCost float64 `json:"total_cost"`

	// Currency is an ISO-style code string.
	Currency string `json:"currency"`

	// CostSource identifies the vendor or rate card the pricing came from.
	CostSource string `json:"cost_source"`

	// PricingVersion references a catalog entry, format "<component>:<version>".
	PricingVersion string `json:"pricing_version"`

	// BaseUnit is the unit the pricing is denominated in, e.g. "token".
	BaseUnit string `json:"base_unit"`

	// Metadata carries optional additional context.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// NewCostEvent validates the cost invariant and returns the event.
func NewCostEvent(e CostEvent) (CostEvent, error) {
	if err := e.Validate(); err != nil {
		return CostEvent{}, err
	}
	return e, nil
}

// Validate checks the structural invariant of the event. The cost triple
// must satisfy total_cost == unit_cost * quantity under exact float64
// equality; no tolerance is applied and no other field is validated.
func (e CostEvent) Validate() error {
	if e.TotalCost != e.UnitCost*e.Quantity {
		return fmt.Errorf("%w: got total_cost=%v, unit_cost=%v, quantity=%v",
			ErrCostInvariant, e.TotalCost, e.UnitCost, e.Quantity)
	}
	return nil
}
