// Shopwhy - Product Recommendations with LLM-Generated Explanations
// Copyright 2026 Shopwhy Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shopwhy/shopwhy

package recommend

import "github.com/shopwhy/shopwhy/internal/models"

// InteractionWeights assigns affinity weight per interaction kind. Unknown
// kinds carry zero weight.
var InteractionWeights = map[string]int{
	models.InteractionPurchase: 3,
	models.InteractionLike:     2,
	models.InteractionView:     1,
}

// ScoreCategories accumulates weighted interaction scores per product
// category. categoryByProduct maps product ID to category; an interaction
// whose product is not in the map contributes nothing. Referential integrity
// between interactions and the catalog is not enforced upstream, so missing
// products are expected and never an error.
func ScoreCategories(interactions []models.Interaction, categoryByProduct map[string]string) map[string]int {
	scores := make(map[string]int)
	for _, interaction := range interactions {
		category, ok := categoryByProduct[interaction.ProductID]
		if !ok {
			continue
		}
		scores[category] += InteractionWeights[interaction.Type]
	}
	return scores
}

// TopCategory returns the category with the highest affinity score. Ties
// break to the lexicographically smallest category name so the result is
// deterministic regardless of map iteration order. ok is false when the score
// map is empty.
func TopCategory(scores map[string]int) (category string, score int, ok bool) {
	for c, s := range scores {
		if !ok || s > score || (s == score && c < category) {
			category, score, ok = c, s, true
		}
	}
	return category, score, ok
}
