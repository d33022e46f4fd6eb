// Package pricing provides the versioned pricing catalog used to
// recompute historical cost during replay.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/davidbz/tally/internal/domain"
)

// Key builds the catalog key for a component and version.
func Key(component, version string) string {
	return fmt.Sprintf("%s:%s", component, version)
}

// InMemoryCatalog stores pricing models in memory, keyed by
// "<component>:<version>". Models are registered at population time and
// treated as read-only afterwards; pricing evolution is simulated by
// constructing a fresh catalog rather than mutating entries in place.
type InMemoryCatalog struct {
	mu     sync.RWMutex
	models map[string]domain.PricingModel
}

// NewInMemoryCatalog creates a new in-memory pricing catalog.
func NewInMemoryCatalog() *InMemoryCatalog {
	return &InMemoryCatalog{
		mu:     sync.RWMutex{},
		models: make(map[string]domain.PricingModel),
	}
}

// FromModels creates a catalog pre-populated with the given models.
func FromModels(models map[string]domain.PricingModel) *InMemoryCatalog {
	catalog := NewInMemoryCatalog()
	for key, model := range models {
		catalog.models[key] = model
	}
	return catalog
}

// GetModel retrieves the pricing model registered under key.
func (c *InMemoryCatalog) GetModel(_ context.Context, key string) (domain.PricingModel, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	model, exists := c.models[key]
	if !exists {
		return domain.PricingModel{}, fmt.Errorf("%w: %s", domain.ErrUnknownPricingVersion, key)
	}

	return model, nil
}

// RegisterModel adds a pricing model under key. Re-registering a key
// replaces the previous model.
func (c *InMemoryCatalog) RegisterModel(_ context.Context, key string, model domain.PricingModel) error {
	if key == "" {
		return errors.New("pricing key cannot be empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.models[key] = model
	return nil
}

// Keys returns all registered pricing keys.
func (c *InMemoryCatalog) Keys(_ context.Context) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.models))
	for key := range c.models {
		keys = append(keys, key)
	}

	return keys, nil
}
