// Package transcript converts execution transcripts into cost events.
// A transcript is the externally supplied record of one execution; the
// adapter is the boundary where arbitrary input becomes validated
// ledger material.
package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/davidbz/tally/internal/domain"
	"github.com/davidbz/tally/internal/observability"
)

// Defaults applied when an invocation record omits attribution fields.
const (
	defaultComponent = "model"
	defaultAction    = "invoke"
	defaultBaseUnit  = "token"
)

// Invocation is one costed action inside a transcript.
type Invocation struct {
	EventID        uuid.UUID      `json:"event_id"`
	Timestamp      time.Time      `json:"timestamp"`
	Component      string         `json:"component,omitempty"`
	Action         string         `json:"action,omitempty"`
	UnitCost       float64        `json:"unit_cost"`
	Quantity       float64        `json:"quantity"`
	TotalCost      float64        `json:"total_cost"`
	Currency       string         `json:"currency"`
	CostSource     string         `json:"cost_source"`
	PricingVersion string         `json:"pricing_version"`
	BaseUnit       string         `json:"base_unit,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// Transcript is the external record of one execution.
type Transcript struct {
	ExecutionID      uuid.UUID    `json:"execution_id"`
	ModelInvocations []Invocation `json:"model_invocations"`
}

// Adapter converts transcripts into cost events. It performs no
// sanitation beyond the cost-event invariants: a malformed invocation
// surfaces its construction error unchanged.
type Adapter struct{}

// NewAdapter creates a transcript adapter.
func NewAdapter() *Adapter {
	return &Adapter{}
}

// ToCostEvents decodes a JSON transcript and converts it.
func (a *Adapter) ToCostEvents(ctx context.Context, data []byte) ([]domain.CostEvent, error) {
	var t Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to decode transcript: %w", err)
	}

	return a.FromTranscript(ctx, t)
}

// FromTranscript converts an already-decoded transcript.
func (a *Adapter) FromTranscript(ctx context.Context, t Transcript) ([]domain.CostEvent, error) {
	logger := observability.FromContext(observability.WithExecutionID(ctx, t.ExecutionID.String()))

	events := make([]domain.CostEvent, 0, len(t.ModelInvocations))
	for i, invocation := range t.ModelInvocations {
		event, err := domain.NewCostEvent(domain.CostEvent{
			ID:             invocation.EventID,
			Timestamp:      invocation.Timestamp,
			ExecutionID:    t.ExecutionID,
			Component:      orDefault(invocation.Component, defaultComponent),
			Action:         orDefault(invocation.Action, defaultAction),
			UnitCost:       invocation.UnitCost,
			Quantity:       invocation.Quantity,
			TotalCost:      invocation.TotalCost,
			Currency:       invocation.Currency,
			CostSource:     invocation.CostSource,
			PricingVersion: invocation.PricingVersion,
			BaseUnit:       orDefault(invocation.BaseUnit, defaultBaseUnit),
			Metadata:       invocation.Metadata,
		})
		if err != nil {
			return nil, fmt.Errorf("invocation %d: %w", i, err)
		}
		events = append(events, event)
	}

	logger.Debug("transcript converted", observability.Int("events", len(events)))
	return events, nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
