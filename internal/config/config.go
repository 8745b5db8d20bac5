// Shopwhy - Product Recommendations with LLM-Generated Explanations
// Copyright 2026 Shopwhy Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shopwhy/shopwhy

// Package config provides layered application configuration via Koanf v2.
//
// Configuration Loading Order (highest priority wins):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: SHOPWHY_* plus a few well-known names
//     (GEMINI_API_KEY)
//
// Config is immutable after Load() and safe for concurrent read access.
package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Data      DataConfig      `koanf:"data"`
	LLM       LLMConfig       `koanf:"llm"`
	Recommend RecommendConfig `koanf:"recommend"`
	API       APIConfig       `koanf:"api"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
//
// Environment Variables:
//   - SHOPWHY_SERVER_HOST: Bind address (default: 0.0.0.0)
//   - SHOPWHY_SERVER_PORT: Listen port (default: 8080)
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"gte=1,lte=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig holds DuckDB settings. An empty Path opens an in-memory
// database, which is the default for local development and tests.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads" validate:"gte=0"` // 0 = runtime.NumCPU()
}

// DataConfig holds the catalog and interaction CSV paths loaded at startup.
// Missing files log a warning and leave the corresponding table empty;
// startup is not aborted.
type DataConfig struct {
	ProductsCSV     string `koanf:"products_csv"`
	InteractionsCSV string `koanf:"interactions_csv"`
}

// LLMConfig holds the Gemini generation client settings.
//
// Environment Variables:
//   - GEMINI_API_KEY: API key; when empty the client is unconfigured and
//     every explanation degrades to a fixed placeholder string
//   - SHOPWHY_LLM_MODEL: Model name (default: gemini-2.5-flash)
type LLMConfig struct {
	APIKey   string        `koanf:"api_key"`
	Model    string        `koanf:"model"`
	Endpoint string        `koanf:"endpoint"`
	Timeout  time.Duration `koanf:"timeout"` // per-attempt request timeout

	// RequestsPerSecond throttles outbound generation calls. 0 disables
	// throttling.
	RequestsPerSecond float64 `koanf:"requests_per_second" validate:"gte=0"`

	// BreakerThreshold is the consecutive-failure count that opens the
	// circuit breaker.
	BreakerThreshold uint32 `koanf:"breaker_threshold" validate:"gte=1"`

	// MaxAttempts is the total number of generation attempts per
	// explanation, including the first.
	MaxAttempts int `koanf:"max_attempts" validate:"gte=1,lte=10"`

	// RetryBaseDelay is the delay before the first retry; each subsequent
	// retry doubles it (1s, 2s, 4s with the defaults).
	RetryBaseDelay time.Duration `koanf:"retry_base_delay"`
}

// RecommendConfig holds candidate generation settings.
type RecommendConfig struct {
	// MaxRecommendations caps the candidate list size per request.
	MaxRecommendations int `koanf:"max_recommendations" validate:"gte=1,lte=50"`
}

// APIConfig holds inbound API settings.
type APIConfig struct {
	CORSAllowedOrigins []string      `koanf:"cors_allowed_origins"`
	RateLimitRequests  int           `koanf:"rate_limit_requests" validate:"gte=1"`
	RateLimitWindow    time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled  bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error fatal panic disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second, // sequential LLM enrichment can be slow
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Path:      "", // in-memory
			MaxMemory: "512MB",
			Threads:   0,
		},
		Data: DataConfig{
			ProductsCSV:     "data/products.csv",
			InteractionsCSV: "data/interactions.csv",
		},
		LLM: LLMConfig{
			APIKey:            "",
			Model:             "gemini-2.5-flash",
			Endpoint:          "https://generativelanguage.googleapis.com/v1beta",
			Timeout:           30 * time.Second,
			RequestsPerSecond: 0,
			BreakerThreshold:  5,
			MaxAttempts:       3,
			RetryBaseDelay:    time.Second,
		},
		Recommend: RecommendConfig{
			MaxRecommendations: 3,
		},
		API: APIConfig{
			CORSAllowedOrigins: []string{},
			RateLimitRequests:  100,
			RateLimitWindow:    time.Minute,
			RateLimitDisabled:  false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}
