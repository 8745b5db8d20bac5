// Shopwhy - Product Recommendations with LLM-Generated Explanations
// Copyright 2026 Shopwhy Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shopwhy/shopwhy

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order
// of priority. The first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/shopwhy/config.yaml",
	"/etc/shopwhy/config.yml",
}

// ConfigPathEnvVar is the environment variable that overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// envPrefix is stripped from SHOPWHY_* environment variables before mapping
// to config keys.
const envPrefix = "SHOPWHY_"

// envOverrides maps environment variable names to config keys. The generic
// transform cannot tell section separators from underscores inside a key
// name, so every multi-word key needs an explicit entry. A handful of
// well-known unprefixed names (GEMINI_API_KEY) are honored for
// compatibility with the common Gemini tooling convention.
var envOverrides = map[string]string{
	"GEMINI_API_KEY":                   "llm.api_key",
	"SHOPWHY_LLM_API_KEY":              "llm.api_key",
	"SHOPWHY_LLM_REQUESTS_PER_SECOND":  "llm.requests_per_second",
	"SHOPWHY_LLM_BREAKER_THRESHOLD":    "llm.breaker_threshold",
	"SHOPWHY_LLM_MAX_ATTEMPTS":         "llm.max_attempts",
	"SHOPWHY_LLM_RETRY_BASE_DELAY":     "llm.retry_base_delay",
	"SHOPWHY_SERVER_READ_TIMEOUT":      "server.read_timeout",
	"SHOPWHY_SERVER_WRITE_TIMEOUT":     "server.write_timeout",
	"SHOPWHY_SERVER_SHUTDOWN_TIMEOUT":  "server.shutdown_timeout",
	"SHOPWHY_DATABASE_MAX_MEMORY":      "database.max_memory",
	"SHOPWHY_DATA_PRODUCTS_CSV":        "data.products_csv",
	"SHOPWHY_DATA_INTERACTIONS_CSV":    "data.interactions_csv",
	"SHOPWHY_RECOMMEND_MAX_RECS":       "recommend.max_recommendations",
	"SHOPWHY_API_CORS_ALLOWED_ORIGINS": "api.cors_allowed_origins",
	"SHOPWHY_API_RATE_LIMIT_REQUESTS":  "api.rate_limit_requests",
	"SHOPWHY_API_RATE_LIMIT_WINDOW":    "api.rate_limit_window",
	"SHOPWHY_API_RATE_LIMIT_DISABLED":  "api.rate_limit_disabled",
}

// Load builds the application configuration: defaults, then an optional YAML
// config file, then environment variables. The result is validated before
// being returned.
func Load() (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Optional config file
	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// 3. Environment variables
	if err := k.Load(env.Provider("", ".", envKeyTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// findConfigFile returns the config file path to load, or empty when none
// exists. CONFIG_PATH takes precedence over the default search paths.
func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		return path
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envKeyTransform maps an environment variable name to a config key.
// Unknown variables (no override entry, no SHOPWHY_ prefix) are ignored by
// returning an empty key.
func envKeyTransform(name string) string {
	if key, ok := envOverrides[name]; ok {
		return key
	}
	if !strings.HasPrefix(name, envPrefix) {
		return ""
	}
	// SHOPWHY_SERVER_PORT -> server.port. Only single-word keys survive
	// this generic mapping; multi-word keys are listed in envOverrides.
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(name, envPrefix)), "_", ".")
}
