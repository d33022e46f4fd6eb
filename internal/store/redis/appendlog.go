// Package redis mirrors accepted ledger appends into Redis, giving the
// in-memory ledger an external integrity anchor. Records use the same
// canonical serialization the ledger hashes, so the mirrored log can be
// re-hashed and checked against a live ledger. The mirror is one-way:
// it is never read back into ledger state.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/davidbz/tally/internal/domain"
	"github.com/davidbz/tally/internal/ledger"
	"github.com/davidbz/tally/internal/observability"
)

// AppendLog implements domain.Sink over a Redis list plus a head-hash key.
type AppendLog struct {
	client    *redis.Client
	keyPrefix string
}

// NewAppendLog creates a Redis append log under keyPrefix.
func NewAppendLog(client *redis.Client, keyPrefix string) *AppendLog {
	return &AppendLog{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Record pushes the canonical event record and updates the head hash in
// a single round trip.
func (a *AppendLog) Record(ctx context.Context, event domain.CostEvent, hash string) error {
	record := ledger.CanonicalRecord(event)

	pipe := a.client.Pipeline()
	pipe.RPush(ctx, a.eventsKey(), record)
	pipe.Set(ctx, a.hashKey(), hash, 0)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to mirror event %s: %w", event.ID, err)
	}

	observability.FromContext(ctx).Debug("event mirrored",
		observability.String("event_id", event.ID.String()),
		observability.String("hash", hash),
	)

	return nil
}

// Head returns the last mirrored ledger hash, or empty when nothing has
// been mirrored yet.
func (a *AppendLog) Head(ctx context.Context) (string, error) {
	hash, err := a.client.Get(ctx, a.hashKey()).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read head hash: %w", err)
	}
	return hash, nil
}

// Len returns the number of mirrored records.
func (a *AppendLog) Len(ctx context.Context) (int64, error) {
	n, err := a.client.LLen(ctx, a.eventsKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read mirror length: %w", err)
	}
	return n, nil
}

func (a *AppendLog) eventsKey() string { return a.keyPrefix + ":events" }
func (a *AppendLog) hashKey() string   { return a.keyPrefix + ":hash" }
