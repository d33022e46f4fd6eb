package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/dig"
)

// Config represents the application configuration.
type Config struct {
	Server ServerConfig
	CORS   CORSConfig
	Redis  RedisConfig
	Demo   DemoConfig
}

// ServerConfig contains audit HTTP server settings.
type ServerConfig struct {
	Enabled      bool `env:"SERVER_ENABLED"       envDefault:"false"`
	Port         int  `env:"SERVER_PORT"          envDefault:"8080"`
	ReadTimeout  int  `env:"SERVER_READ_TIMEOUT"  envDefault:"30"`
	WriteTimeout int  `env:"SERVER_WRITE_TIMEOUT" envDefault:"30"`
}

// CORSConfig contains CORS policy settings.
type CORSConfig struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS"   envSeparator:"," envDefault:"*"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS"   envSeparator:"," envDefault:"GET,POST,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS"   envSeparator:"," envDefault:"Content-Type,Authorization"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS"                  envDefault:"true"`
	MaxAge           int      `env:"CORS_MAX_AGE"                            envDefault:"86400"`
}

// RedisConfig contains settings for the optional Redis append-log
// mirror. The mirror is disabled when Addr is empty.
type RedisConfig struct {
	Addr      string `env:"REDIS_ADDR"`
	KeyPrefix string `env:"REDIS_KEY_PREFIX" envDefault:"tally:ledger"`
}

// DemoConfig contains settings for the demo walkthrough.
type DemoConfig struct {
	Currency string `env:"DEMO_CURRENCY" envDefault:"USD"`
}

// DepConfig is used for dependency injection with dig.
type DepConfig struct {
	dig.Out
	*ServerConfig
	*CORSConfig
	*RedisConfig
	*DemoConfig
}

// Load loads environment files and parses configuration.
func Load() *Config {
	for _, file := range []string{".env"} {
		_ = godotenv.Load(file)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		panic(err)
	}

	return &cfg
}

// ParseDependenciesConfig returns pointers to sub-configs for dependency injection.
func ParseDependenciesConfig(cfg *Config) DepConfig {
	return DepConfig{
		dig.Out{},
		&cfg.Server,
		&cfg.CORS,
		&cfg.Redis,
		&cfg.Demo,
	}
}
