// Shopwhy - Product Recommendations with LLM-Generated Explanations
// Copyright 2026 Shopwhy Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shopwhy/shopwhy

package recommend

import "fmt"

// Config contains the engine's operational limits.
type Config struct {
	// MaxRecommendations caps the candidate list size per request. Each
	// generation stage only fills remaining capacity up to this cap.
	MaxRecommendations int `json:"max_recommendations"`
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxRecommendations: 3,
	}
}

// Validate checks configuration bounds.
func (c *Config) Validate() error {
	if c.MaxRecommendations < 1 {
		return fmt.Errorf("max_recommendations must be >= 1, got %d", c.MaxRecommendations)
	}
	if c.MaxRecommendations > 50 {
		return fmt.Errorf("max_recommendations must be <= 50, got %d", c.MaxRecommendations)
	}
	return nil
}
