// Package replay recomputes historical cost from a versioned pricing
// catalog and reconciles it against ledger-recorded cost, detecting
// drift and tampering.
package replay

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/davidbz/tally/internal/domain"
	"github.com/davidbz/tally/internal/observability"
)

// costTolerance is the maximum absolute difference between a recorded
// and a recomputed cost before reconciliation fails.
const costTolerance = 1e-6

// Report statuses produced by Compare.
const (
	StatusMatch    = "match"
	StatusMismatch = "mismatch"
	StatusError    = "error"
)

// Ledger is the read surface the engine needs from a cost ledger.
type Ledger interface {
	EventsByExecution(executionID uuid.UUID) []domain.CostEvent
}

// Report is the structured outcome of comparing a replay against the
// recorded ledger costs. It is always produced, never an error, which
// makes batch auditing across many executions safe without per-item
// failure handling.
type Report struct {
	ExecutionID  uuid.UUID `json:"execution_id"`
	OriginalCost float64   `json:"original_cost"`
	ReplayedCost float64   `json:"replayed_cost"`
	Delta        float64   `json:"delta"`
	Status       string    `json:"status"`
	Error        string    `json:"error,omitempty"`
}

// Engine recomputes execution cost against a pricing catalog.
type Engine struct {
	catalog domain.Catalog
}

// NewEngine creates a replay engine (DI constructor).
func NewEngine(catalog domain.Catalog) *Engine {
	return &Engine{
		catalog: catalog,
	}
}

// ReplayExecution recomputes the total cost of an execution using the
// engine's catalog.
//
// Every event of the execution must resolve to a known pricing version
// and its recorded total must agree with the recomputed cost within
// costTolerance; the first failure aborts the replay. All-or-nothing,
// not best-effort.
func (e *Engine) ReplayExecution(ctx context.Context, executionID uuid.UUID, l Ledger) (float64, error) {
	events := l.EventsByExecution(executionID)
	total := 0.0

	for _, event := range events {
		model, err := e.catalog.GetModel(ctx, event.PricingVersion)
		if err != nil {
			return 0, err
		}

		calculated, err := model.CalculateCost(event.Quantity)
		if err != nil {
			return 0, fmt.Errorf("event %s: %w", event.ID, err)
		}

		diff := calculated - event.TotalCost
		if diff > costTolerance || diff < -costTolerance {
			return 0, fmt.Errorf("%w: event %s expected %v, got %v",
				domain.ErrCostMismatch, event.ID, calculated, event.TotalCost)
		}

		total += calculated
	}

	return total, nil
}

// Compare replays an execution and reports the outcome against the
// ledger-recorded cost. Compare never fails: any replay error is folded
// into a Report with StatusError.
func (e *Engine) Compare(ctx context.Context, executionID uuid.UUID, l Ledger) Report {
	ctx = observability.WithExecutionID(ctx, executionID.String())
	logger := observability.FromContext(ctx)

	replayed, err := e.ReplayExecution(ctx, executionID, l)
	if err != nil {
		logger.Warn("replay failed", observability.Error(err))
		return Report{
			ExecutionID: executionID,
			Status:      StatusError,
			Error:       err.Error(),
		}
	}

	original := 0.0
	for _, event := range l.EventsByExecution(executionID) {
		original += event.TotalCost
	}

	delta := replayed - original
	status := StatusMatch
	if delta > costTolerance || delta < -costTolerance {
		status = StatusMismatch
	}

	logger.Info("replay compared",
		observability.Float64("original_cost", original),
		observability.Float64("replayed_cost", replayed),
		observability.Float64("delta", delta),
		observability.String("status", status),
	)

	return Report{
		ExecutionID:  executionID,
		OriginalCost: original,
		ReplayedCost: replayed,
		Delta:        delta,
		Status:       status,
	}
}
