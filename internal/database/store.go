// Shopwhy - Product Recommendations with LLM-Generated Explanations
// Copyright 2026 Shopwhy Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shopwhy/shopwhy

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopwhy/shopwhy/internal/metrics"
	"github.com/shopwhy/shopwhy/internal/models"
)

// GetInteractions returns the full interaction history for one user in fetch
// order: timestamp ascending, then event ID for a deterministic total order.
func (db *DB) GetInteractions(ctx context.Context, userID string) ([]models.Interaction, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, product_id, interaction_type, timestamp
		 FROM interactions
		 WHERE user_id = ?
		 ORDER BY timestamp, id`, userID)
	metrics.ObserveDBQuery("select", "interactions", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query interactions for user %s: %w", userID, err)
	}
	defer rows.Close()

	var interactions []models.Interaction
	for rows.Next() {
		var i models.Interaction
		if err := rows.Scan(&i.ID, &i.UserID, &i.ProductID, &i.Type, &i.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		interactions = append(interactions, i)
	}
	return interactions, rows.Err()
}

// GetProduct fetches one product by ID. Returns ErrNotFound when the product
// does not exist.
func (db *DB) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	start := time.Now()
	row := db.conn.QueryRowContext(ctx,
		`SELECT product_id, name, category, price, description
		 FROM products WHERE product_id = ?`, productID)

	var p models.Product
	err := row.Scan(&p.ProductID, &p.Name, &p.Category, &p.Price, &p.Description)
	metrics.ObserveDBQuery("select", "products", start, err)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %s: %w", productID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query product %s: %w", productID, err)
	}
	return &p, nil
}

// GetProductsByIDs fetches the products for the given IDs. IDs with no
// matching product are silently absent from the result; order follows the
// store's product ID ordering, not the input order.
func (db *DB) GetProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(
		`SELECT product_id, name, category, price, description
		 FROM products
		 WHERE product_id IN (%s)
		 ORDER BY product_id`, placeholders(len(ids)))

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, toArgs(ids)...)
	metrics.ObserveDBQuery("select", "products", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query products by ids: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// QueryProductsByCategory returns up to limit products in the given category,
// excluding the given product IDs. With randomOrder the sample order is
// shuffled by the store; otherwise rows come back ordered by product ID.
func (db *DB) QueryProductsByCategory(ctx context.Context, category string, excludeIDs []string, limit int, randomOrder bool) ([]models.Product, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT product_id, name, category, price, description
		 FROM products WHERE category = ?`)
	args := []interface{}{category}

	if len(excludeIDs) > 0 {
		sb.WriteString(fmt.Sprintf(" AND product_id NOT IN (%s)", placeholders(len(excludeIDs))))
		args = append(args, toArgs(excludeIDs)...)
	}
	if randomOrder {
		sb.WriteString(" ORDER BY random()")
	} else {
		sb.WriteString(" ORDER BY product_id")
	}
	sb.WriteString(" LIMIT ?")
	args = append(args, limit)

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, sb.String(), args...)
	metrics.ObserveDBQuery("select", "products", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query products in category %s: %w", category, err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// CountPurchasesByProduct returns global purchase counts across all users,
// excluding the given product IDs, ranked by count descending with product ID
// ascending as the tie-break so the ranking is deterministic.
func (db *DB) CountPurchasesByProduct(ctx context.Context, excludeIDs []string) ([]models.ProductPurchaseCount, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT product_id, COUNT(*) AS cnt
		 FROM interactions
		 WHERE interaction_type = ?`)
	args := []interface{}{models.InteractionPurchase}

	if len(excludeIDs) > 0 {
		sb.WriteString(fmt.Sprintf(" AND product_id NOT IN (%s)", placeholders(len(excludeIDs))))
		args = append(args, toArgs(excludeIDs)...)
	}
	sb.WriteString(" GROUP BY product_id ORDER BY cnt DESC, product_id")

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, sb.String(), args...)
	metrics.ObserveDBQuery("select", "interactions", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to count purchases: %w", err)
	}
	defer rows.Close()

	var counts []models.ProductPurchaseCount
	for rows.Next() {
		var c models.ProductPurchaseCount
		if err := rows.Scan(&c.ProductID, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan purchase count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// ListProductsOrderedByID returns the first limit products by product ID
// order. This backs the new-user fallback stage.
func (db *DB) ListProductsOrderedByID(ctx context.Context, limit int) ([]models.Product, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT product_id, name, category, price, description
		 FROM products ORDER BY product_id LIMIT ?`, limit)
	metrics.ObserveDBQuery("select", "products", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// CountProducts returns the number of rows in the products table.
func (db *DB) CountProducts(ctx context.Context) (int64, error) {
	return db.countRows(ctx, "products")
}

// CountInteractions returns the number of rows in the interactions table.
func (db *DB) CountInteractions(ctx context.Context) (int64, error) {
	return db.countRows(ctx, "interactions")
}

func (db *DB) countRows(ctx context.Context, table string) (int64, error) {
	start := time.Now()
	// table is one of two compile-time constants, never user input
	row := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table) //nolint:gosec
	var count int64
	err := row.Scan(&count)
	metrics.ObserveDBQuery("count", table, start, err)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return count, nil
}

// scanProducts drains a product result set.
func scanProducts(rows *sql.Rows) ([]models.Product, error) {
	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ProductID, &p.Name, &p.Category, &p.Price, &p.Description); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// placeholders returns n comma-separated SQL placeholders.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// toArgs converts a string slice to query arguments.
func toArgs(ids []string) []interface{} {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
