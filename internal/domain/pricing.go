package domain

import (
	"fmt"
	"math"
	"slices"

	"github.com/google/uuid"
)

// coverageEpsilon absorbs floating-point error when checking that the
// tiers fully cover a quantity.
const coverageEpsilon = 1e-9

// PricingTier is a quantity range with its own per-unit rate.
// MinQuantity is inclusive; MaxQuantity is exclusive, nil meaning no
// upper bound.
type PricingTier struct {
	MinQuantity float64  `json:"min_quantity"`
	MaxQuantity *float64 `json:"max_quantity,omitempty"`
	UnitCost    float64  `json:"unit_cost"`
}

// PricingModel is a versioned definition of how cost is calculated for
// one component. Catalogs key models by "<component>:<version>".
//
// Models are read-only for the duration of a replay session; pricing
// evolution is simulated by swapping catalogs wholesale.
type PricingModel struct {
	ID          uuid.UUID `json:"id"`
	Version     string    `json:"version"`
	Component   string    `json:"component"`
	PricingType string    `json:"pricing_type"`
	BaseUnit    string    `json:"base_unit"`

	// Tiers need not be pre-sorted; they are ordered by MinQuantity at
	// calculation time.
	Tiers []PricingTier `json:"tiers"`

	// FixedFee is a flat add-on applied once per calculation.
	FixedFee *float64 `json:"fixed_fee,omitempty"`

	Metadata map[string]string `json:"metadata,omitempty"`
}

// CalculateCost computes the cost of quantity units under this model.
//
// Pricing is progressive: quantity crossing a tier boundary pays each
// tier's rate for the portion that falls in it. With tiers
// [0-100 @ 1.00, 100+ @ 0.50] a quantity of 150 costs 100*1.00 + 50*0.50.
//
// A model must declare at least one tier even when only a fixed fee
// applies. Any gap between tiers, or a top tier too low to cover the
// quantity, surfaces as ErrUnsupportedQuantity rather than a partial
// cost.
func (m PricingModel) CalculateCost(quantity float64) (float64, error) {
	if quantity < 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidQuantity, quantity)
	}

	if len(m.Tiers) == 0 {
		return 0, fmt.Errorf("%w: model %s:%s", ErrNoPricingTiers, m.Component, m.Version)
	}

	total := 0.0
	if m.FixedFee != nil {
		total = *m.FixedFee
	}

	tiers := slices.Clone(m.Tiers)
	slices.SortFunc(tiers, func(a, b PricingTier) int {
		switch {
		case a.MinQuantity < b.MinQuantity:
			return -1
		case a.MinQuantity > b.MinQuantity:
			return 1
		default:
			return 0
		}
	})

	if quantity < tiers[0].MinQuantity {
		return 0, fmt.Errorf("%w: quantity %v is below the lowest tier (starts at %v)",
			ErrUnsupportedQuantity, quantity, tiers[0].MinQuantity)
	}

	remaining := quantity
	processed := 0.0

	for _, tier := range tiers {
		if remaining <= 0 {
			break
		}
		if tier.MinQuantity > quantity {
			break
		}

		tierStart := math.Max(tier.MinQuantity, processed)
		tierEnd := math.Inf(1)
		if tier.MaxQuantity != nil {
			tierEnd = *tier.MaxQuantity
		}

		inTier := math.Min(quantity, tierEnd) - tierStart
		if inTier > 0 {
			total += inTier * tier.UnitCost
			processed = math.Min(quantity, tierEnd)
			remaining -= inTier
		}
	}

	if remaining > coverageEpsilon {
		return 0, fmt.Errorf("%w: quantity %v, only %v covered by tiers",
			ErrUnsupportedQuantity, quantity, processed)
	}

	return total, nil
}
