// Shopwhy - Product Recommendations with LLM-Generated Explanations
// Copyright 2026 Shopwhy Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shopwhy/shopwhy

/*
database_schema.go - Database Schema Management

Tables:
  - products: immutable product catalog, loaded once at startup from CSV
  - interactions: append-only user interaction events (view/like/purchase)

Referential integrity between interactions.product_id and products is
deliberately NOT enforced; an interaction referencing an unknown product is
skipped during affinity scoring.

Index Strategy:
  - interactions(user_id): per-user history fetch on every request
  - interactions(interaction_type, product_id): global purchase count ranking
  - products(category): affinity-stage category filtering
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// createTables creates the core database tables and indexes.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	queries := []string{
		`CREATE TABLE IF NOT EXISTS products (
			product_id  TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			category    TEXT NOT NULL,
			price       DOUBLE NOT NULL CHECK (price >= 0),
			description TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS interactions (
			id               TEXT PRIMARY KEY,
			user_id          TEXT NOT NULL,
			product_id       TEXT NOT NULL,
			interaction_type TEXT NOT NULL,
			timestamp        TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_user ON interactions(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_type_product ON interactions(interaction_type, product_id)`,
		`CREATE INDEX IF NOT EXISTS idx_products_category ON products(category)`,
	}

	for _, query := range queries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return nil
}
