// Package openai converts OpenAI SDK chat completions into cost events.
// It is a pure translation layer over the response the SDK already
// returned; no API calls happen here.
package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/openai/openai-go"

	"github.com/davidbz/tally/internal/domain"
	"github.com/davidbz/tally/internal/observability"
	"github.com/davidbz/tally/internal/pricing"
)

const (
	// Rate card version stamped into pricing versions.
	rateCardVersion = "v1.0.0"

	// GPT-4 pricing per 1K tokens
	gpt4InputCostPer1K  = 0.03
	gpt4OutputCostPer1K = 0.06

	// GPT-4 Turbo pricing per 1K tokens
	gpt4TurboInputCostPer1K  = 0.01
	gpt4TurboOutputCostPer1K = 0.03

	// GPT-3.5 Turbo pricing per 1K tokens
	gpt35TurboInputCostPer1K  = 0.0005
	gpt35TurboOutputCostPer1K = 0.0015

	// Token conversion factor (tokens to per-1K)
	tokensToPerK = 1000.0

	costSource = "openai"
	currency   = "USD"
	baseUnit   = "token"
)

// modelRates contains per-1K-token pricing for one model.
type modelRates struct {
	InputCostPer1K  float64
	OutputCostPer1K float64
}

// rateCard maps OpenAI model names to their token rates.
//
//nolint:gochecknoglobals // Static rate card, read-only
var rateCard = map[string]modelRates{
	"gpt-4":         {InputCostPer1K: gpt4InputCostPer1K, OutputCostPer1K: gpt4OutputCostPer1K},
	"gpt-4-turbo":   {InputCostPer1K: gpt4TurboInputCostPer1K, OutputCostPer1K: gpt4TurboOutputCostPer1K},
	"gpt-3.5-turbo": {InputCostPer1K: gpt35TurboInputCostPer1K, OutputCostPer1K: gpt35TurboOutputCostPer1K},
}

// Adapter converts chat completions into prompt and completion cost
// events using the static rate card.
type Adapter struct{}

// NewAdapter creates an OpenAI usage adapter.
func NewAdapter() *Adapter {
	return &Adapter{}
}

// ToCostEvents converts a chat completion into cost events attributed
// to executionID: one event for prompt tokens and one for completion
// tokens, each priced per token under its own pricing version
// ("<model>/prompt:<version>" and "<model>/completion:<version>").
// Directions with zero tokens produce no event.
func (a *Adapter) ToCostEvents(
	ctx context.Context,
	executionID uuid.UUID,
	completion *openai.ChatCompletion,
) ([]domain.CostEvent, error) {
	if completion == nil {
		return nil, fmt.Errorf("completion cannot be nil")
	}

	rates, ok := rateCard[completion.Model]
	if !ok {
		return nil, fmt.Errorf("no rate card entry for model %s", completion.Model)
	}

	timestamp := time.Unix(completion.Created, 0).UTC()
	metadata := map[string]any{
		"completion_id": completion.ID,
		"model":         completion.Model,
	}

	var events []domain.CostEvent

	directions := []struct {
		component string
		perK      float64
		tokens    int64
	}{
		{promptComponent(completion.Model), rates.InputCostPer1K, completion.Usage.PromptTokens},
		{completionComponent(completion.Model), rates.OutputCostPer1K, completion.Usage.CompletionTokens},
	}

	for _, d := range directions {
		if d.tokens == 0 {
			continue
		}

		unitCost := d.perK / tokensToPerK
		quantity := float64(d.tokens)

		event, err := domain.NewCostEvent(domain.CostEvent{
			ID:             uuid.New(),
			Timestamp:      timestamp,
			ExecutionID:    executionID,
			Component:      "model",
			Action:         "invoke",
			UnitCost:       unitCost,
			Quantity:       quantity,
			TotalCost:      unitCost * quantity,
			Currency:       currency,
			CostSource:     costSource,
			PricingVersion: pricing.Key(d.component, rateCardVersion),
			BaseUnit:       baseUnit,
			Metadata:       metadata,
		})
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	observability.FromContext(ctx).Debug("completion converted to cost events",
		observability.String("completion_id", completion.ID),
		observability.String("model", completion.Model),
		observability.Int("events", len(events)),
	)

	return events, nil
}

// PricingModels returns the catalog entries matching the rate card, one
// single-tier per-token model per direction. Registering these with the
// replay catalog lets converted events reconcile exactly.
func PricingModels() map[string]domain.PricingModel {
	models := make(map[string]domain.PricingModel, len(rateCard)*2)

	for model, rates := range rateCard {
		for component, perK := range map[string]float64{
			promptComponent(model):     rates.InputCostPer1K,
			completionComponent(model): rates.OutputCostPer1K,
		} {
			models[pricing.Key(component, rateCardVersion)] = domain.PricingModel{
				ID:          uuid.New(),
				Version:     rateCardVersion,
				Component:   component,
				PricingType: "token",
				BaseUnit:    baseUnit,
				Tiers: []domain.PricingTier{
					{MinQuantity: 0, MaxQuantity: nil, UnitCost: perK / tokensToPerK},
				},
			}
		}
	}

	return models
}

func promptComponent(model string) string     { return model + "/prompt" }
func completionComponent(model string) string { return model + "/completion" }
