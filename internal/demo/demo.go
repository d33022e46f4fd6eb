// Package demo wires the public pieces together for an illustrative
// run: seed a pricing catalog, build a ledger from a sample execution
// transcript, replay it, and verify integrity. Nothing here is part of
// the core contract.
package demo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	openaiadapter "github.com/davidbz/tally/internal/adapter/openai"
	"github.com/davidbz/tally/internal/adapter/transcript"
	"github.com/davidbz/tally/internal/config"
	"github.com/davidbz/tally/internal/domain"
	"github.com/davidbz/tally/internal/ledger"
	"github.com/davidbz/tally/internal/observability"
	"github.com/davidbz/tally/internal/pricing"
	"github.com/davidbz/tally/internal/replay"
)

func floatPtr(v float64) *float64 { return &v }

// SamplePricingModels returns the demo catalog: tiered token pricing
// for gpt-4 and a fixed-fee request model for an external API.
func SamplePricingModels() map[string]domain.PricingModel {
	models := map[string]domain.PricingModel{
		pricing.Key("gpt-4", "v1.0.0"): {
			ID:          uuid.New(),
			Version:     "v1.0.0",
			Component:   "gpt-4",
			PricingType: "token",
			BaseUnit:    "token",
			Tiers: []domain.PricingTier{
				{MinQuantity: 0, MaxQuantity: floatPtr(10000), UnitCost: 0.03},
				{MinQuantity: 10000, MaxQuantity: nil, UnitCost: 0.02},
			},
		},
		pricing.Key("external_api", "v1.0.0"): {
			ID:          uuid.New(),
			Version:     "v1.0.0",
			Component:   "external_api",
			PricingType: "request",
			BaseUnit:    "request",
			// The calculator requires at least one tier even for
			// fixed-fee models, so the variable rate is declared as zero.
			Tiers: []domain.PricingTier{
				{MinQuantity: 0, MaxQuantity: nil, UnitCost: 0},
			},
			FixedFee: floatPtr(0.50),
		},
	}

	// Rate-card entries for events produced by the OpenAI usage adapter.
	for key, model := range openaiadapter.PricingModels() {
		models[key] = model
	}

	return models
}

// SampleTranscript returns the execution transcript the demo attributes:
// one tiered model invocation and one fixed-fee external API call.
func SampleTranscript(executionID uuid.UUID, currency string) transcript.Transcript {
	now := time.Now().UTC()

	return transcript.Transcript{
		ExecutionID: executionID,
		ModelInvocations: []transcript.Invocation{
			{
				EventID:        uuid.New(),
				Timestamp:      now,
				UnitCost:       0.03,
				Quantity:       1500,
				TotalCost:      0.03 * 1500,
				Currency:       currency,
				CostSource:     "openai",
				PricingVersion: pricing.Key("gpt-4", "v1.0.0"),
			},
			{
				EventID:        uuid.New(),
				Timestamp:      now.Add(time.Second),
				Component:      "external_api",
				Action:         "call",
				UnitCost:       0.50,
				Quantity:       1,
				TotalCost:      0.50,
				Currency:       currency,
				CostSource:     "third_party_service",
				PricingVersion: pricing.Key("external_api", "v1.0.0"),
				BaseUnit:       "request",
			},
		},
	}
}

// Run executes the walkthrough against the injected components.
func Run(
	cfg *config.DemoConfig,
	catalog domain.Catalog,
	l *ledger.CostLedger,
	engine *replay.Engine,
	bus *observability.EventBus,
) error {
	executionID := uuid.New()
	ctx := observability.WithExecutionID(context.Background(), executionID.String())
	logger := observability.FromContext(ctx)

	// 1. Populate the pricing catalog.
	for key, model := range SamplePricingModels() {
		if err := catalog.RegisterModel(ctx, key, model); err != nil {
			return fmt.Errorf("failed to register pricing model %s: %w", key, err)
		}
	}

	// 2. Convert the sample transcript into cost events.
	events, err := transcript.NewAdapter().FromTranscript(ctx, SampleTranscript(executionID, cfg.Currency))
	if err != nil {
		return fmt.Errorf("failed to convert transcript: %w", err)
	}

	// 3. Build the ledger.
	for _, event := range events {
		if err := l.AddEvent(ctx, event); err != nil {
			return fmt.Errorf("failed to append event %s: %w", event.ID, err)
		}
		bus.Publish(ctx, "cost_event_appended", map[string]any{
			"event_id":   event.ID.String(),
			"component":  event.Component,
			"total_cost": event.TotalCost,
			"hash":       l.Hash(),
		})
	}

	logger.Info("ledger built",
		observability.Int("events", l.Len()),
		observability.Float64("total_cost", l.TotalCost()),
		observability.String("hash", l.Hash()),
	)

	// 4. Replay with current pricing and compare against recorded cost.
	report := engine.Compare(ctx, executionID, l)
	bus.Publish(ctx, "replay_completed", map[string]any{
		"execution_id":  report.ExecutionID.String(),
		"status":        report.Status,
		"original_cost": report.OriginalCost,
		"replayed_cost": report.ReplayedCost,
		"delta":         report.Delta,
	})
	if report.Status != replay.StatusMatch {
		logger.Warn("replay did not match recorded costs",
			observability.String("status", report.Status),
			observability.String("error", report.Error),
		)
	}

	// 5. Verify integrity against the hash recorded after the last append.
	recorded := l.Hash()
	logger.Info("ledger integrity verified",
		observability.Bool("valid", l.VerifyIntegrity(recorded)),
		observability.String("hash", recorded),
	)

	return nil
}
