package ledger_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/davidbz/tally/internal/domain"
	"github.com/davidbz/tally/internal/ledger"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func eventAt(t *testing.T, ts time.Time, executionID uuid.UUID, totalCost float64) domain.CostEvent {
	t.Helper()

	event, err := domain.NewCostEvent(domain.CostEvent{
		ID:             uuid.New(),
		Timestamp:      ts,
		ExecutionID:    executionID,
		Component:      "model",
		Action:         "invoke",
		UnitCost:       totalCost, // quantity 1 keeps the invariant trivial
		Quantity:       1,
		TotalCost:      totalCost,
		Currency:       "USD",
		CostSource:     "openai",
		PricingVersion: "gpt-4:v1.0.0",
		BaseUnit:       "token",
	})
	require.NoError(t, err)
	return event
}

func TestCostLedger_AddEvent_Ordering(t *testing.T) {
	ctx := context.Background()
	executionID := uuid.New()

	t.Run("non-decreasing timestamps are accepted", func(t *testing.T) {
		l := ledger.New()

		require.NoError(t, l.AddEvent(ctx, eventAt(t, baseTime, executionID, 1.0)))
		require.NoError(t, l.AddEvent(ctx, eventAt(t, baseTime, executionID, 2.0)))
		require.NoError(t, l.AddEvent(ctx, eventAt(t, baseTime.Add(time.Second), executionID, 3.0)))
		require.Equal(t, 3, l.Len())
	})

	t.Run("earlier timestamp is rejected and ledger is unchanged", func(t *testing.T) {
		l := ledger.New()

		require.NoError(t, l.AddEvent(ctx, eventAt(t, baseTime, executionID, 1.0)))
		hashBefore := l.Hash()

		err := l.AddEvent(ctx, eventAt(t, baseTime.Add(-time.Second), executionID, 2.0))
		require.Error(t, err)
		require.ErrorIs(t, err, domain.ErrOrderingViolation)

		require.Equal(t, 1, l.Len())
		require.Equal(t, hashBefore, l.Hash())
	})

	t.Run("cost invariant is enforced on append", func(t *testing.T) {
		l := ledger.New()

		bad := eventAt(t, baseTime, executionID, 1.0)
		bad.TotalCost = 99.0

		err := l.AddEvent(ctx, bad)
		require.ErrorIs(t, err, domain.ErrCostInvariant)
		require.Equal(t, 0, l.Len())
	})
}

func TestCostLedger_Hash(t *testing.T) {
	ctx := context.Background()
	executionID := uuid.New()

	t.Run("empty ledger has the canonical empty hash", func(t *testing.T) {
		sum := sha256.Sum256([]byte("[]"))
		require.Equal(t, hex.EncodeToString(sum[:]), ledger.New().Hash())
	})

	t.Run("appending changes the hash", func(t *testing.T) {
		l := ledger.New()
		empty := l.Hash()

		require.NoError(t, l.AddEvent(ctx, eventAt(t, baseTime, executionID, 1.0)))
		require.NotEqual(t, empty, l.Hash())
	})

	t.Run("identical event data yields identical hashes across ledgers", func(t *testing.T) {
		first := eventAt(t, baseTime, executionID, 1.0)
		second := eventAt(t, baseTime.Add(time.Minute), executionID, 2.0)

		a := ledger.New()
		b := ledger.New()
		for _, l := range []*ledger.CostLedger{a, b} {
			require.NoError(t, l.AddEvent(ctx, first))
			require.NoError(t, l.AddEvent(ctx, second))
		}

		require.Equal(t, a.Hash(), b.Hash())
	})

	t.Run("verify integrity matches only the current hash", func(t *testing.T) {
		l := ledger.New()
		require.NoError(t, l.AddEvent(ctx, eventAt(t, baseTime, executionID, 1.0)))

		recorded := l.Hash()
		require.True(t, l.VerifyIntegrity(recorded))

		require.NoError(t, l.AddEvent(ctx, eventAt(t, baseTime, executionID, 2.0)))
		require.False(t, l.VerifyIntegrity(recorded))
		require.True(t, l.VerifyIntegrity(l.Hash()))
	})
}

func TestCostLedger_Queries(t *testing.T) {
	ctx := context.Background()
	executionX := uuid.New()
	executionY := uuid.New()

	l := ledger.New()
	require.NoError(t, l.AddEvent(ctx, eventAt(t, baseTime, executionX, 30.0)))
	require.NoError(t, l.AddEvent(ctx, eventAt(t, baseTime.Add(time.Second), executionX, 15.0)))

	other := eventAt(t, baseTime.Add(2*time.Second), executionY, 5.0)
	other.Component = "external_api"
	require.NoError(t, l.AddEvent(ctx, other))

	t.Run("events iterates in append order and restarts", func(t *testing.T) {
		var totals []float64
		for event := range l.Events() {
			totals = append(totals, event.TotalCost)
		}
		require.Equal(t, []float64{30.0, 15.0, 5.0}, totals)

		// Early break, then a fresh full pass over the same sequence.
		count := 0
		for range l.Events() {
			count++
			break
		}
		require.Equal(t, 1, count)

		count = 0
		for range l.Events() {
			count++
		}
		require.Equal(t, 3, count)
	})

	t.Run("filter by execution", func(t *testing.T) {
		events := l.EventsByExecution(executionX)
		require.Len(t, events, 2)
		require.InDelta(t, 30.0, events[0].TotalCost, 0)
		require.InDelta(t, 15.0, events[1].TotalCost, 0)

		require.Empty(t, l.EventsByExecution(uuid.New()))
	})

	t.Run("filter by component", func(t *testing.T) {
		require.Len(t, l.EventsByComponent("model"), 2)
		require.Len(t, l.EventsByComponent("external_api"), 1)
		require.Empty(t, l.EventsByComponent("cache"))
	})

	t.Run("total and per-execution replay cost", func(t *testing.T) {
		require.InDelta(t, 50.0, l.TotalCost(), 1e-9)
		require.InDelta(t, 45.0, l.ReplayCost(executionX), 1e-9)
		require.InDelta(t, 5.0, l.ReplayCost(executionY), 1e-9)
	})
}

type recordingSink struct {
	events []domain.CostEvent
	hashes []string
	err    error
}

func (s *recordingSink) Record(_ context.Context, event domain.CostEvent, hash string) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	s.hashes = append(s.hashes, hash)
	return nil
}

func TestCostLedger_Sinks(t *testing.T) {
	ctx := context.Background()
	executionID := uuid.New()

	t.Run("sink sees every accepted append with its hash", func(t *testing.T) {
		sink := &recordingSink{}
		l := ledger.New(ledger.WithSink(sink))

		require.NoError(t, l.AddEvent(ctx, eventAt(t, baseTime, executionID, 1.0)))
		require.NoError(t, l.AddEvent(ctx, eventAt(t, baseTime, executionID, 2.0)))

		require.Len(t, sink.events, 2)
		require.Equal(t, l.Hash(), sink.hashes[1])
	})

	t.Run("rejected append never reaches the sink", func(t *testing.T) {
		sink := &recordingSink{}
		l := ledger.New(ledger.WithSink(sink))

		require.NoError(t, l.AddEvent(ctx, eventAt(t, baseTime, executionID, 1.0)))
		err := l.AddEvent(ctx, eventAt(t, baseTime.Add(-time.Hour), executionID, 2.0))
		require.Error(t, err)

		require.Len(t, sink.events, 1)
	})

	t.Run("sink failure does not affect ledger state", func(t *testing.T) {
		sink := &recordingSink{err: errors.New("mirror unavailable")}
		l := ledger.New(ledger.WithSink(sink))

		require.NoError(t, l.AddEvent(ctx, eventAt(t, baseTime, executionID, 1.0)))
		require.Equal(t, 1, l.Len())
	})
}

func TestCanonicalRecord_Stability(t *testing.T) {
	event := eventAt(t, baseTime, uuid.New(), 1.0)
	event.Metadata = map[string]any{
		"completion_id": "chatcmpl-123",
		"attempt":       1,
		"latency":       150 * time.Millisecond,
	}

	first := ledger.CanonicalRecord(event)
	second := ledger.CanonicalRecord(event)
	require.Equal(t, first, second)
	require.JSONEq(t, string(first), string(second))

	// Non-primitive metadata values take a fixed string form.
	require.Contains(t, string(first), `"latency":"150ms"`)
}
