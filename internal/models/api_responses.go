// Shopwhy - Product Recommendations with LLM-Generated Explanations
// Copyright 2026 Shopwhy Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shopwhy/shopwhy

package models

import "time"

// EnrichedRecommendation is one recommendation as returned to API clients:
// the product surface fields plus the generated explanation and the internal
// reason tag for debugging/transparency.
type EnrichedRecommendation struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`

	// LLMExplanation is the generated justification. On generation failure
	// this carries a fixed placeholder string, never an empty value.
	LLMExplanation string `json:"llm_explanation"`

	// InternalReason is the candidate's reason tag
	// (Content/Affinity, Popularity/Best-Seller, Default/New User).
	InternalReason string `json:"internal_reason"`
}

// RecommendationsResponse is the payload for GET /api/v1/recommendations/{userID}.
type RecommendationsResponse struct {
	UserID               string                   `json:"user_id"`
	Recommendations      []EnrichedRecommendation `json:"recommendations"`
	TotalRecommendations int                      `json:"total_recommendations"`
}

// HealthStatus reports service health for the health endpoint.
type HealthStatus struct {
	// Status is "healthy" or "degraded".
	Status string `json:"status"`

	// DatabaseConnected reports whether the store answers pings.
	DatabaseConnected bool `json:"database_connected"`

	// LLMConfigured reports whether the generation client has credentials.
	// The service still serves recommendations when this is false; every
	// explanation degrades to a fixed placeholder.
	LLMConfigured bool `json:"llm_configured"`

	// Products and Interactions are the current table row counts.
	Products     int64 `json:"products"`
	Interactions int64 `json:"interactions"`

	// Uptime is how long the server has been running.
	Uptime string `json:"uptime"`

	Timestamp time.Time `json:"timestamp"`
}
