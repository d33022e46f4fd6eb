package domain

import "context"

// Catalog resolves versioned pricing models. Keys use the
// "<component>:<version>" format carried by CostEvent.PricingVersion.
type Catalog interface {
	// GetModel returns the pricing model registered under key.
	GetModel(ctx context.Context, key string) (PricingModel, error)

	// RegisterModel adds a pricing model under key.
	RegisterModel(ctx context.Context, key string, model PricingModel) error

	// Keys returns all registered pricing keys.
	Keys(ctx context.Context) ([]string, error)
}

// Sink receives each event after it has been accepted by a ledger,
// together with the ledger hash that append produced. Sinks provide
// external anchoring (durability, mirroring); they never feed back into
// ledger state.
type Sink interface {
	Record(ctx context.Context, event CostEvent, hash string) error
}

// EventPublisher publishes audit events for observability.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, data map[string]any)
}
