// Package ledger provides a tamper-evident, append-only in-memory
// ledger of cost events. Every append re-derives a content hash over
// the full event history, so any later mutation or replacement of the
// event list is detectable against a previously recorded hash.
package ledger

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/davidbz/tally/internal/domain"
	"github.com/davidbz/tally/internal/observability"
)

// CostLedger is an append-only sequence of cost events with a parallel
// sequence of content hashes (hash i covers events[0..i]).
//
// The ledger assumes a single logical writer. The internal lock lets
// reads run concurrently and makes each append appear atomic, but does
// not provide multi-writer ordering semantics.
type CostLedger struct {
	mu     sync.RWMutex
	events []domain.CostEvent
	hashes []string
	sinks  []domain.Sink
}

// Option configures a CostLedger.
type Option func(*CostLedger)

// WithSink attaches a sink notified after every accepted append. Sink
// failures are logged and never affect ledger state.
func WithSink(sink domain.Sink) Option {
	return func(l *CostLedger) {
		if sink != nil {
			l.sinks = append(l.sinks, sink)
		}
	}
}

// New creates an empty cost ledger.
func New(opts ...Option) *CostLedger {
	l := &CostLedger{
		mu:     sync.RWMutex{},
		events: nil,
		hashes: nil,
		sinks:  nil,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// AddEvent appends an event to the ledger.
//
// The event must satisfy the cost invariant and must not be timestamped
// strictly earlier than the last appended event (equal timestamps are
// accepted). A rejected append leaves the ledger untouched.
func (l *CostLedger) AddEvent(ctx context.Context, event domain.CostEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}

	l.mu.Lock()

	if n := len(l.events); n > 0 && event.Timestamp.Before(l.events[n-1].Timestamp) {
		last := l.events[n-1].Timestamp
		l.mu.Unlock()
		return fmt.Errorf("%w: event %s at %s is earlier than last event at %s",
			domain.ErrOrderingViolation, event.ID, event.Timestamp, last)
	}

	l.events = append(l.events, event)
	hash := hashEvents(l.events)
	l.hashes = append(l.hashes, hash)

	l.mu.Unlock()

	l.notifySinks(ctx, event, hash)
	return nil
}

func (l *CostLedger) notifySinks(ctx context.Context, event domain.CostEvent, hash string) {
	for _, sink := range l.sinks {
		if err := sink.Record(ctx, event, hash); err != nil {
			observability.FromContext(ctx).Warn("ledger sink record failed",
				observability.String("event_id", event.ID.String()),
				observability.Error(err),
			)
		}
	}
}

// Events returns a lazy, restartable view of all events in append
// order. The view iterates over a snapshot, so it cannot be used to
// mutate ledger internals and is unaffected by later appends.
func (l *CostLedger) Events() iter.Seq[domain.CostEvent] {
	return func(yield func(domain.CostEvent) bool) {
		l.mu.RLock()
		events := slices.Clone(l.events)
		l.mu.RUnlock()

		for _, event := range events {
			if !yield(event) {
				return
			}
		}
	}
}

// EventsByExecution returns all events for one execution, order preserved.
func (l *CostLedger) EventsByExecution(executionID uuid.UUID) []domain.CostEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var matched []domain.CostEvent
	for _, event := range l.events {
		if event.ExecutionID == executionID {
			matched = append(matched, event)
		}
	}
	return matched
}

// EventsByComponent returns all events for one component, order preserved.
func (l *CostLedger) EventsByComponent(component string) []domain.CostEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var matched []domain.CostEvent
	for _, event := range l.events {
		if event.Component == component {
			matched = append(matched, event)
		}
	}
	return matched
}

// Len returns the number of events in the ledger.
func (l *CostLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}

// TotalCost sums the recorded total cost of all events.
func (l *CostLedger) TotalCost() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	total := 0.0
	for _, event := range l.events {
		total += event.TotalCost
	}
	return total
}

// Hash returns the current ledger hash. An empty ledger has the fixed
// canonical hash of an empty event list.
func (l *CostLedger) Hash() string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.hashes) == 0 {
		return hashEvents(nil)
	}
	return l.hashes[len(l.hashes)-1]
}

// VerifyIntegrity reports whether the current ledger hash equals
// expected. This detects mutation or replacement of the in-memory event
// list relative to a previously recorded hash.
func (l *CostLedger) VerifyIntegrity(expected string) bool {
	return l.Hash() == expected
}

// ReplayCost sums the recorded total cost for one execution. This is
// the ledger-local replay; pricing-aware recomputation lives in the
// replay engine.
func (l *CostLedger) ReplayCost(executionID uuid.UUID) float64 {
	total := 0.0
	for _, event := range l.EventsByExecution(executionID) {
		total += event.TotalCost
	}
	return total
}
