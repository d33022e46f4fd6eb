package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/davidbz/tally/internal/domain"
)

// canonicalTimeFormat is the fixed string form timestamps take in the
// canonical serialization. Always UTC so two events with the same
// instant hash identically regardless of source location.
const canonicalTimeFormat = time.RFC3339Nano

// CanonicalRecord renders one event into the stable JSON form used for
// ledger hashing. Durability sinks use the same bytes as their
// append-log record format, so a persisted log can be re-hashed and
// checked against the in-memory ledger.
func CanonicalRecord(event domain.CostEvent) []byte {
	// encoding/json writes map keys in sorted order, which gives the
	// stable key ordering the hash depends on. All values are JSON
	// primitives after canonicalization, so marshaling cannot fail.
	data, _ := json.Marshal(canonicalFields(event))
	return data
}

func canonicalFields(event domain.CostEvent) map[string]any {
	return map[string]any{
		"event_id":        event.ID.String(),
		"timestamp":       event.Timestamp.UTC().Format(canonicalTimeFormat),
		"execution_id":    event.ExecutionID.String(),
		"component":       event.Component,
		"action":          event.Action,
		"unit_cost":       event.UnitCost,
		"quantity":        event.Quantity,
		"total_cost":      event.TotalCost,
		"currency":        event.Currency,
		"cost_source":     event.CostSource,
		"pricing_version": event.PricingVersion,
		"base_unit":       event.BaseUnit,
		"metadata":        canonicalMetadata(event.Metadata),
	}
}

// canonicalMetadata keeps JSON primitives as-is and converts everything
// else to its string form, so insertion-time representation differences
// never change the hash.
func canonicalMetadata(metadata map[string]any) map[string]any {
	if metadata == nil {
		return nil
	}

	canonical := make(map[string]any, len(metadata))
	for key, value := range metadata {
		switch v := value.(type) {
		case nil, bool, string, float64, float32, int, int8, int16, int32, int64,
			uint, uint8, uint16, uint32, uint64:
			canonical[key] = v
		case time.Time:
			canonical[key] = v.UTC().Format(canonicalTimeFormat)
		case fmt.Stringer:
			canonical[key] = v.String()
		default:
			canonical[key] = fmt.Sprint(v)
		}
	}
	return canonical
}

// hashEvents computes the hex SHA-256 digest over the canonical
// serialization of the full event list. Each append rehashes the whole
// history, so cost grows O(n) per append; an incremental chain
// H(prev_hash || record) is a drop-in replacement as long as the same
// sequence always yields the same hash and any change yields a
// different one.
func hashEvents(events []domain.CostEvent) string {
	records := make([]map[string]any, 0, len(events))
	for _, event := range events {
		records = append(records, canonicalFields(event))
	}

	data, _ := json.Marshal(records)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
