// Shopwhy - Product Recommendations with LLM-Generated Explanations
// Copyright 2026 Shopwhy Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shopwhy/shopwhy

package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shopwhy/shopwhy/internal/models"
)

func TestScoreCategories(t *testing.T) {
	categories := map[string]string{
		"p1": "electronics",
		"p2": "electronics",
		"p3": "books",
	}
	interactions := []models.Interaction{
		{ProductID: "p1", Type: models.InteractionPurchase}, // electronics +3
		{ProductID: "p2", Type: models.InteractionView},     // electronics +1
		{ProductID: "p3", Type: models.InteractionLike},     // books +2
	}

	scores := ScoreCategories(interactions, categories)

	assert.Equal(t, map[string]int{"electronics": 4, "books": 2}, scores)
}

func TestScoreCategoriesSkipsUnresolvableProducts(t *testing.T) {
	categories := map[string]string{"p1": "books"}
	interactions := []models.Interaction{
		{ProductID: "p1", Type: models.InteractionView},
		{ProductID: "ghost", Type: models.InteractionPurchase},
	}

	scores := ScoreCategories(interactions, categories)

	assert.Equal(t, map[string]int{"books": 1}, scores)
}

func TestScoreCategoriesUnknownKindHasZeroWeight(t *testing.T) {
	categories := map[string]string{"p1": "books"}
	interactions := []models.Interaction{
		{ProductID: "p1", Type: "wishlist"},
	}

	scores := ScoreCategories(interactions, categories)

	assert.Equal(t, map[string]int{"books": 0}, scores)
}

func TestTopCategory(t *testing.T) {
	tests := []struct {
		name         string
		scores       map[string]int
		wantCategory string
		wantScore    int
		wantOK       bool
	}{
		{
			name:         "single category",
			scores:       map[string]int{"books": 5},
			wantCategory: "books",
			wantScore:    5,
			wantOK:       true,
		},
		{
			name:         "strict maximum wins",
			scores:       map[string]int{"books": 2, "electronics": 4},
			wantCategory: "electronics",
			wantScore:    4,
			wantOK:       true,
		},
		{
			name:         "tie breaks lexicographically",
			scores:       map[string]int{"toys": 3, "books": 3, "games": 3},
			wantCategory: "books",
			wantScore:    3,
			wantOK:       true,
		},
		{
			name:   "empty scores",
			scores: map[string]int{},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			category, score, ok := TopCategory(tt.scores)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantCategory, category)
				assert.Equal(t, tt.wantScore, score)
			}
		})
	}
}
