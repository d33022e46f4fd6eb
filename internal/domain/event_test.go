package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/davidbz/tally/internal/domain"
)

func sampleEvent(unitCost, quantity, totalCost float64) domain.CostEvent {
	return domain.CostEvent{
		ID:             uuid.New(),
		Timestamp:      time.Now().UTC(),
		ExecutionID:    uuid.New(),
		Component:      "model",
		Action:         "invoke",
		UnitCost:       unitCost,
		Quantity:       quantity,
		TotalCost:      totalCost,
		Currency:       "USD",
		CostSource:     "openai",
		PricingVersion: "gpt-4:v1.0.0",
		BaseUnit:       "token",
	}
}

func TestNewCostEvent(t *testing.T) {
	tests := []struct {
		name        string
		unitCost    float64
		quantity    float64
		totalCost   float64
		expectError bool
	}{
		{
			name:      "consistent cost triple",
			unitCost:  0.03,
			quantity:  1500,
			totalCost: 0.03 * 1500,
		},
		{
			name:      "zero quantity with zero total",
			unitCost:  0.5,
			quantity:  0,
			totalCost: 0,
		},
		{
			name:      "free event",
			unitCost:  0,
			quantity:  100,
			totalCost: 0,
		},
		{
			name:        "total off by a cent",
			unitCost:    0.03,
			quantity:    1500,
			totalCost:   45.01,
			expectError: true,
		},
		{
			name:        "rounded total rejected under exact equality",
			unitCost:    0.1,
			quantity:    3,
			totalCost:   0.3, // 0.1*3 != 0.3 in float64
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := domain.NewCostEvent(sampleEvent(tt.unitCost, tt.quantity, tt.totalCost))

			if tt.expectError {
				require.Error(t, err)
				require.ErrorIs(t, err, domain.ErrCostInvariant)
				return
			}

			require.NoError(t, err)
			require.InDelta(t, tt.totalCost, event.TotalCost, 0)
			require.NoError(t, event.Validate())
		})
	}
}

func TestCostEvent_Validate_NoFieldLevelChecks(t *testing.T) {
	// Only the cost triple is validated; empty strings and zero IDs are
	// accepted as given.
	event := domain.CostEvent{
		UnitCost:  2,
		Quantity:  3,
		TotalCost: 6,
	}
	require.NoError(t, event.Validate())
}
