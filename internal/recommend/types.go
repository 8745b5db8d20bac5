// Shopwhy - Product Recommendations with LLM-Generated Explanations
// Copyright 2026 Shopwhy Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shopwhy/shopwhy

package recommend

import (
	"context"

	"github.com/shopwhy/shopwhy/internal/models"
)

// Reason tags why a candidate was surfaced. The value is user-visible as the
// internal_reason field and is fed verbatim into the explanation prompt.
type Reason string

const (
	// ReasonContentAffinity marks candidates from the user's favorite
	// category.
	ReasonContentAffinity Reason = "Content/Affinity"

	// ReasonPopularity marks globally best-selling candidates.
	ReasonPopularity Reason = "Popularity/Best-Seller"

	// ReasonDefault marks fallback candidates for users with no history.
	ReasonDefault Reason = "Default/New User"
)

// Candidate is one product proposed for recommendation, before explanation
// enrichment. Candidates live for a single request and are never persisted.
type Candidate struct {
	// Product is the full catalog entry for the candidate.
	Product models.Product

	// Reason tags the strategy that produced this candidate.
	Reason Reason

	// UserActivity is a human-readable summary of why this candidate
	// surfaced. It becomes LLM prompt context, so it carries specifics
	// (scores, ranks), not just a label.
	UserActivity string
}

// Store defines the read operations the engine needs. This is implemented by
// the database layer; the interface lives here to avoid a circular import and
// to allow substitution with a test double.
type Store interface {
	// GetInteractions returns one user's full interaction history in
	// fetch order.
	GetInteractions(ctx context.Context, userID string) ([]models.Interaction, error)

	// GetProductsByIDs returns the products for the given IDs, ordered by
	// product ID. Unknown IDs are silently absent.
	GetProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error)

	// QueryProductsByCategory returns up to limit products in a category,
	// excluding the given IDs, optionally in random order.
	QueryProductsByCategory(ctx context.Context, category string, excludeIDs []string, limit int, randomOrder bool) ([]models.Product, error)

	// CountPurchasesByProduct returns global purchase counts ranked by
	// count descending, product ID ascending, excluding the given IDs.
	CountPurchasesByProduct(ctx context.Context, excludeIDs []string) ([]models.ProductPurchaseCount, error)

	// ListProductsOrderedByID returns the first limit products by ID.
	ListProductsOrderedByID(ctx context.Context, limit int) ([]models.Product, error)
}
