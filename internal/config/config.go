package config

import (
	"errors"

	"github.com/caarlos0/env/v11"
)

// ServerConfig holds configuration for the GoPlan server. Every field can
// be set from the environment; flags in cmd/server override the result.
type ServerConfig struct {
	Addr      string `env:"GOPLAN_ADDR" envDefault:":8080"`      // Listen address
	LogLevel  string `env:"GOPLAN_LOG_LEVEL" envDefault:"info"`  // debug, info, warn, error
	LogFormat string `env:"GOPLAN_LOG_FORMAT" envDefault:"text"` // text, json
	DBPath    string `env:"GOPLAN_DB" envDefault:""`             // SQLite path (default ~/.goplan/goplan.db, ":memory:" for testing)

	// Workers caps concurrent chromosome evaluations per batch call.
	// Zero means one per available CPU.
	Workers int `env:"GOPLAN_WORKERS" envDefault:"0"`
	// MaxBatchCost bounds chromosomes x works x contractors x worker types
	// per batch call. Zero disables the bound.
	MaxBatchCost int64 `env:"GOPLAN_MAX_BATCH_COST" envDefault:"0"`
}

// Load reads ServerConfig from the environment.
func Load() (ServerConfig, error) {
	var cfg ServerConfig
	if err := env.Parse(&cfg); err != nil {
		aggErr := env.AggregateError{}
		if errors.As(err, &aggErr) && len(aggErr.Errors) > 0 {
			return cfg, aggErr.Errors[0]
		}
		return cfg, err
	}
	return cfg, nil
}

// DefaultServerConfig returns the defaults without consulting the
// environment (useful in tests).
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:      ":8080",
		LogLevel:  "info",
		LogFormat: "text",
	}
}
