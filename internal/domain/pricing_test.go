package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/davidbz/tally/internal/domain"
)

func floatPtr(v float64) *float64 { return &v }

func tieredModel(tiers []domain.PricingTier, fixedFee *float64) domain.PricingModel {
	return domain.PricingModel{
		ID:          uuid.New(),
		Version:     "v1.0.0",
		Component:   "gpt-4",
		PricingType: "token",
		BaseUnit:    "token",
		Tiers:       tiers,
		FixedFee:    fixedFee,
	}
}

func TestPricingModel_CalculateCost(t *testing.T) {
	twoTier := []domain.PricingTier{
		{MinQuantity: 0, MaxQuantity: floatPtr(1000), UnitCost: 0.01},
		{MinQuantity: 1000, MaxQuantity: nil, UnitCost: 0.005},
	}

	tests := []struct {
		name     string
		model    domain.PricingModel
		quantity float64
		expected float64
		wantErr  error
	}{
		{
			name: "single unbounded tier is flat rate",
			model: tieredModel([]domain.PricingTier{
				{MinQuantity: 0, MaxQuantity: nil, UnitCost: 0.002},
			}, nil),
			quantity: 12345,
			expected: 0.002 * 12345,
		},
		{
			name:     "quantity inside first tier",
			model:    tieredModel(twoTier, nil),
			quantity: 500,
			expected: 5.0,
		},
		{
			name:     "quantity at tier boundary pays first tier in full",
			model:    tieredModel(twoTier, nil),
			quantity: 1000,
			expected: 10.0,
		},
		{
			name:     "quantity crossing boundary pays each tier marginally",
			model:    tieredModel(twoTier, nil),
			quantity: 1500,
			expected: 12.5,
		},
		{
			name:     "zero quantity costs nothing",
			model:    tieredModel(twoTier, nil),
			quantity: 0,
			expected: 0,
		},
		{
			name: "fixed fee added on top of tier cost",
			model: tieredModel([]domain.PricingTier{
				{MinQuantity: 0, MaxQuantity: nil, UnitCost: 0.01},
			}, floatPtr(0.50)),
			quantity: 100,
			expected: 1.50,
		},
		{
			name: "unsorted tiers are ordered before the walk",
			model: tieredModel([]domain.PricingTier{
				{MinQuantity: 1000, MaxQuantity: nil, UnitCost: 0.005},
				{MinQuantity: 0, MaxQuantity: floatPtr(1000), UnitCost: 0.01},
			}, nil),
			quantity: 1500,
			expected: 12.5,
		},
		{
			name:     "negative quantity",
			model:    tieredModel(twoTier, nil),
			quantity: -1,
			wantErr:  domain.ErrInvalidQuantity,
		},
		{
			name:     "no tiers declared",
			model:    tieredModel(nil, nil),
			quantity: 10,
			wantErr:  domain.ErrNoPricingTiers,
		},
		{
			name: "quantity below lowest tier",
			model: tieredModel([]domain.PricingTier{
				{MinQuantity: 100, MaxQuantity: nil, UnitCost: 0.01},
			}, nil),
			quantity: 50,
			wantErr:  domain.ErrUnsupportedQuantity,
		},
		{
			name: "gap between tiers leaves quantity uncovered",
			model: tieredModel([]domain.PricingTier{
				{MinQuantity: 0, MaxQuantity: floatPtr(100), UnitCost: 0.01},
				{MinQuantity: 200, MaxQuantity: nil, UnitCost: 0.005},
			}, nil),
			quantity: 150,
			wantErr:  domain.ErrUnsupportedQuantity,
		},
		{
			name: "bounded top tier too low for quantity",
			model: tieredModel([]domain.PricingTier{
				{MinQuantity: 0, MaxQuantity: floatPtr(100), UnitCost: 0.01},
			}, nil),
			quantity: 500,
			wantErr:  domain.ErrUnsupportedQuantity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cost, err := tt.model.CalculateCost(tt.quantity)

			if tt.wantErr != nil {
				require.Error(t, err)
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.InDelta(t, tt.expected, cost, 1e-9)
		})
	}
}

// A fixed-fee-only model still needs at least one declared tier. This is
// deliberate strictness in the calculation contract; the test pins the
// behavior so any relaxation is a conscious change.
func TestPricingModel_CalculateCost_FixedFeeOnlyRequiresTier(t *testing.T) {
	model := tieredModel(nil, floatPtr(0.50))

	_, err := model.CalculateCost(1)
	require.ErrorIs(t, err, domain.ErrNoPricingTiers)
}
