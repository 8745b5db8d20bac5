// Shopwhy - Product Recommendations with LLM-Generated Explanations
// Copyright 2026 Shopwhy Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shopwhy/shopwhy

// Package models defines the domain types shared across the application:
// the product catalog, user interaction events, and API response payloads.
package models

import "time"

// Product is one entry in the product catalog. Products are loaded once at
// startup from the catalog CSV and are read-only afterwards.
type Product struct {
	// ProductID is the unique, stable catalog key.
	ProductID string `json:"product_id"`

	// Name is the display name.
	Name string `json:"name"`

	// Category is a low-cardinality grouping used for affinity scoring.
	Category string `json:"category"`

	// Price is the non-negative unit price.
	Price float64 `json:"price"`

	// Description is free text fed to the LLM as generation context.
	Description string `json:"description"`
}

// Interaction type values as they appear in the interactions table.
const (
	InteractionView     = "view"
	InteractionLike     = "like"
	InteractionPurchase = "purchase"
)

// Interaction is a single user-product event. Interactions are append-only;
// this system only ever reads them.
//
// The ProductID should reference an existing Product but referential
// integrity is not enforced by the store: an interaction pointing at an
// unknown product is skipped during affinity scoring, never an error.
type Interaction struct {
	// ID is the unique event identifier.
	ID string `json:"id"`

	// UserID identifies the user who performed the interaction.
	UserID string `json:"user_id"`

	// ProductID identifies the product acted on.
	ProductID string `json:"product_id"`

	// Type is one of view, like, purchase. Unknown values carry zero
	// affinity weight.
	Type string `json:"interaction_type"`

	// Timestamp is when the interaction occurred.
	Timestamp time.Time `json:"timestamp"`
}

// ProductPurchaseCount pairs a product with its global purchase count.
// Rows are ranked by count descending, product ID ascending.
type ProductPurchaseCount struct {
	ProductID string `json:"product_id"`
	Count     int    `json:"count"`
}
