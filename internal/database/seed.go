// Shopwhy - Product Recommendations with LLM-Generated Explanations
// Copyright 2026 Shopwhy Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shopwhy/shopwhy

package database

import (
	"context"
	"fmt"
	"os"

	"github.com/shopwhy/shopwhy/internal/logging"
)

// Seed bulk-loads the product catalog and interaction history from CSV files
// using DuckDB's read_csv, so parsing and type inference happen inside the
// store. Loading is idempotent: a table that already has rows is left alone.
// A missing CSV file logs a warning and leaves that table empty; startup
// continues so the service can still answer fallback recommendations.
func (db *DB) Seed(ctx context.Context, productsCSV, interactionsCSV string) error {
	if err := db.seedProducts(ctx, productsCSV); err != nil {
		return err
	}
	return db.seedInteractions(ctx, interactionsCSV)
}

func (db *DB) seedProducts(ctx context.Context, path string) error {
	count, err := db.CountProducts(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		logging.Info().Int64("products", count).Msg("Products table already populated, skipping load")
		return nil
	}
	if !fileExists(path) {
		logging.Warn().Str("path", path).Msg("Products CSV not found, catalog will be empty")
		return nil
	}

	// The catalog CSV names its description column "description (for LLM)".
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO products (product_id, name, category, price, description)
		SELECT product_id, name, category, price, "description (for LLM)"
		FROM read_csv(?, header = true)`, path)
	if err != nil {
		return fmt.Errorf("failed to load products from %s: %w", path, err)
	}

	count, err = db.CountProducts(ctx)
	if err != nil {
		return err
	}
	logging.Info().Int64("products", count).Str("path", path).Msg("Loaded product catalog")
	return nil
}

func (db *DB) seedInteractions(ctx context.Context, path string) error {
	count, err := db.CountInteractions(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		logging.Info().Int64("interactions", count).Msg("Interactions table already populated, skipping load")
		return nil
	}
	if !fileExists(path) {
		logging.Warn().Str("path", path).Msg("Interactions CSV not found, history will be empty")
		return nil
	}

	// The source CSV carries no event IDs; generate them in-store.
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO interactions (id, user_id, product_id, interaction_type, timestamp)
		SELECT uuid()::VARCHAR, user_id, product_id, interaction_type, timestamp::TIMESTAMP
		FROM read_csv(?, header = true)`, path)
	if err != nil {
		return fmt.Errorf("failed to load interactions from %s: %w", path, err)
	}

	count, err = db.CountInteractions(ctx)
	if err != nil {
		return err
	}
	logging.Info().Int64("interactions", count).Str("path", path).Msg("Loaded interaction history")
	return nil
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
