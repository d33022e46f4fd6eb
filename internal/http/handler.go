package http

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/davidbz/tally/internal/ledger"
	"github.com/davidbz/tally/internal/observability"
	"github.com/davidbz/tally/internal/replay"
)

// Handler serves the read-only audit API over a ledger and replay engine.
type Handler struct {
	ledger *ledger.CostLedger
	engine *replay.Engine
}

// NewHandler creates a new HTTP handler (DI constructor).
func NewHandler(l *ledger.CostLedger, engine *replay.Engine) *Handler {
	return &Handler{
		ledger: l,
		engine: engine,
	}
}

// HandleLedgerHash returns the current ledger hash and event count.
func (h *Handler) HandleLedgerHash(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, map[string]any{
		"hash":   h.ledger.Hash(),
		"events": h.ledger.Len(),
	})
}

// HandleLedgerTotal returns the recorded total cost across all events.
func (h *Handler) HandleLedgerTotal(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, map[string]any{
		"total_cost": h.ledger.TotalCost(),
	})
}

// HandleReplay recomputes the cost of one execution against the pricing
// catalog and reports the reconciliation outcome. Replay failures are
// part of the report, not HTTP errors, so batch auditors can walk
// executions without special-casing status codes.
func (h *Handler) HandleReplay(w http.ResponseWriter, r *http.Request) {
	executionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid execution id", http.StatusBadRequest)
		return
	}

	ctx := observability.WithExecutionID(r.Context(), executionID.String())

	report := h.engine.Compare(ctx, executionID, h.ledger)
	writeJSON(w, r.WithContext(ctx), report)
}

// HandleVerify checks the current ledger hash against an expected hash
// supplied by the caller.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Hash string `json:"hash"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	writeJSON(w, r, map[string]any{
		"valid": h.ledger.VerifyIntegrity(body.Hash),
		"hash":  h.ledger.Hash(),
	})
}

// HandleHealth handles health check requests.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, map[string]string{
		"status": "healthy",
	})
}

func writeJSON(w http.ResponseWriter, r *http.Request, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		observability.FromContext(r.Context()).Error("failed to encode response",
			observability.Error(err))
	}
}
