package main

import (
	"log"

	"go.uber.org/dig"

	redisclient "github.com/redis/go-redis/v9"

	"github.com/davidbz/tally/internal/config"
	"github.com/davidbz/tally/internal/demo"
	"github.com/davidbz/tally/internal/domain"
	"github.com/davidbz/tally/internal/http"
	"github.com/davidbz/tally/internal/http/middleware"
	"github.com/davidbz/tally/internal/ledger"
	"github.com/davidbz/tally/internal/observability"
	"github.com/davidbz/tally/internal/pricing"
	"github.com/davidbz/tally/internal/replay"
	redisstore "github.com/davidbz/tally/internal/store/redis"
)

func main() {
	container := buildContainer()

	// Run the attribution walkthrough: seed the catalog, build the
	// ledger, replay, verify.
	if err := container.Invoke(demo.Run); err != nil {
		log.Fatalf("Walkthrough failed: %v", err)
	}

	// Optionally serve the audit API over the same ledger.
	err := container.Invoke(func(cfg *config.Config, server *http.Server) {
		if !cfg.Server.Enabled {
			return
		}
		if err := server.Start(); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}
}

func buildContainer() *dig.Container {
	container := dig.New()

	// Configuration
	if err := container.Provide(config.Load); err != nil {
		log.Fatalf("Failed to provide config: %v", err)
	}
	if err := container.Provide(config.ParseDependenciesConfig); err != nil {
		log.Fatalf("Failed to provide config dependencies: %v", err)
	}

	// Observability
	if err := container.Provide(observability.InitLogger); err != nil {
		log.Fatalf("Failed to provide logger: %v", err)
	}
	if err := container.Provide(observability.NewEventBus); err != nil {
		log.Fatalf("Failed to provide event bus: %v", err)
	}

	// Pricing Catalog
	if err := container.Provide(func() domain.Catalog {
		return pricing.NewInMemoryCatalog()
	}); err != nil {
		log.Fatalf("Failed to provide pricing catalog: %v", err)
	}

	// Ledger, mirrored to Redis when configured
	if err := container.Provide(func(redisCfg *config.RedisConfig) *ledger.CostLedger {
		if redisCfg.Addr == "" {
			return ledger.New()
		}

		client := redisclient.NewClient(&redisclient.Options{
			Addr: redisCfg.Addr,
		})
		return ledger.New(ledger.WithSink(redisstore.NewAppendLog(client, redisCfg.KeyPrefix)))
	}); err != nil {
		log.Fatalf("Failed to provide ledger: %v", err)
	}

	// Replay Engine
	if err := container.Provide(replay.NewEngine); err != nil {
		log.Fatalf("Failed to provide replay engine: %v", err)
	}

	// HTTP Layer
	if err := container.Provide(middleware.BuildMiddlewareChain); err != nil {
		log.Fatalf("Failed to provide middleware chain: %v", err)
	}
	if err := container.Provide(http.NewHandler); err != nil {
		log.Fatalf("Failed to provide HTTP handler: %v", err)
	}
	if err := container.Provide(http.NewServer); err != nil {
		log.Fatalf("Failed to provide HTTP server: %v", err)
	}

	return container
}
