// Shopwhy - Product Recommendations with LLM-Generated Explanations
// Copyright 2026 Shopwhy Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shopwhy/shopwhy

package recommend

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/shopwhy/shopwhy/internal/metrics"
	"github.com/shopwhy/shopwhy/internal/models"
)

// Engine produces hybrid recommendations: category affinity first, global
// best-sellers second, a catalog-order fallback for brand-new users last.
// It is stateless between requests and safe for concurrent use.
type Engine struct {
	config *Config
	store  Store
	logger zerolog.Logger
}

// NewEngine creates a recommendation engine backed by the given store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, store Store, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}

	return &Engine{
		config: cfg,
		store:  store,
		logger: logger.With().Str("component", "recommend").Logger(),
	}, nil
}

// Recommend returns up to MaxRecommendations candidates for the user, each
// for a distinct product. Stages run strictly in order because later stages
// depend on the exclusion set and remaining capacity from earlier ones.
//
// Recommend never returns an error: a data-access failure in one stage is
// logged and degrades that stage to zero contributions, and a failure to read
// the user's history degrades the whole request to an empty list. Callers
// must treat empty as "nothing to recommend".
func (e *Engine) Recommend(ctx context.Context, userID string) []Candidate {
	log := e.logger.With().Str("user_id", userID).Logger()

	interactions, err := e.store.GetInteractions(ctx, userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch interaction history")
		metrics.RecommendationRequestsEmpty.Inc()
		return nil
	}

	purchased := purchasedIDs(interactions)
	candidates := make([]Candidate, 0, e.config.MaxRecommendations)
	selected := make(map[string]struct{})

	// Stage 1: content affinity, only when the history resolves to a
	// favorite category.
	category, score, hasAffinity := e.favoriteCategory(ctx, log, interactions)
	if hasAffinity {
		candidates = e.addAffinityCandidates(ctx, log, candidates, selected, category, score, purchased)
	}

	// Stage 2: global best-sellers fill remaining capacity.
	candidates = e.addPopularityCandidates(ctx, log, candidates, selected, purchased)

	// Stage 3: fallback, only for users with zero history and zero
	// candidates from the personalized stages. Purchase exclusion does
	// not apply here.
	if len(candidates) == 0 && len(interactions) == 0 {
		candidates = e.addDefaultCandidates(ctx, log, candidates, selected)
	}

	if len(candidates) > e.config.MaxRecommendations {
		candidates = candidates[:e.config.MaxRecommendations]
	}

	for _, c := range candidates {
		metrics.RecommendationsGeneratedTotal.WithLabelValues(string(c.Reason)).Inc()
	}
	if len(candidates) == 0 {
		metrics.RecommendationRequestsEmpty.Inc()
	}

	log.Debug().
		Int("interactions", len(interactions)).
		Int("candidates", len(candidates)).
		Msg("Generated recommendation candidates")
	return candidates
}

// favoriteCategory resolves the user's interactions against the catalog and
// scores categories. Interactions referencing unknown products are skipped.
func (e *Engine) favoriteCategory(ctx context.Context, log zerolog.Logger, interactions []models.Interaction) (string, int, bool) {
	if len(interactions) == 0 {
		return "", 0, false
	}

	ids := make([]string, 0, len(interactions))
	seen := make(map[string]struct{}, len(interactions))
	for _, i := range interactions {
		if _, ok := seen[i.ProductID]; ok {
			continue
		}
		seen[i.ProductID] = struct{}{}
		ids = append(ids, i.ProductID)
	}

	products, err := e.store.GetProductsByIDs(ctx, ids)
	if err != nil {
		log.Error().Err(err).Msg("Failed to resolve interaction products, skipping affinity stage")
		return "", 0, false
	}

	categoryByProduct := make(map[string]string, len(products))
	for _, p := range products {
		categoryByProduct[p.ProductID] = p.Category
	}

	return TopCategory(ScoreCategories(interactions, categoryByProduct))
}

func (e *Engine) addAffinityCandidates(ctx context.Context, log zerolog.Logger, candidates []Candidate, selected map[string]struct{}, category string, score int, purchased map[string]struct{}) []Candidate {
	remaining := e.config.MaxRecommendations - len(candidates)
	if remaining <= 0 {
		return candidates
	}

	products, err := e.store.QueryProductsByCategory(ctx, category, sortedIDs(purchased), remaining, true)
	if err != nil {
		log.Error().Err(err).Str("category", category).Msg("Failed to query category products, skipping affinity stage")
		return candidates
	}

	activity := fmt.Sprintf(
		"User has strong affinity (%d score) for the '%s' category based on past interactions.",
		score, category)

	for _, p := range products {
		if len(candidates) >= e.config.MaxRecommendations {
			break
		}
		if _, ok := selected[p.ProductID]; ok {
			continue
		}
		selected[p.ProductID] = struct{}{}
		candidates = append(candidates, Candidate{
			Product:      p,
			Reason:       ReasonContentAffinity,
			UserActivity: activity,
		})
	}
	return candidates
}

func (e *Engine) addPopularityCandidates(ctx context.Context, log zerolog.Logger, candidates []Candidate, selected map[string]struct{}, purchased map[string]struct{}) []Candidate {
	if len(candidates) >= e.config.MaxRecommendations {
		return candidates
	}

	counts, err := e.store.CountPurchasesByProduct(ctx, sortedIDs(purchased))
	if err != nil {
		log.Error().Err(err).Msg("Failed to rank best sellers, skipping popularity stage")
		return candidates
	}
	if len(counts) > e.config.MaxRecommendations {
		counts = counts[:e.config.MaxRecommendations]
	}

	rankedIDs := make([]string, len(counts))
	for i, c := range counts {
		rankedIDs[i] = c.ProductID
	}

	products, err := e.store.GetProductsByIDs(ctx, rankedIDs)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch best sellers, skipping popularity stage")
		return candidates
	}

	// The store returns products in ID order; restore the purchase-count
	// ranking before filling capacity. A ranked ID missing from the
	// catalog is skipped.
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ProductID] = p
	}

	activity := fmt.Sprintf(
		"This item is globally popular, ranking among the top %d purchased products.",
		len(rankedIDs))

	for _, id := range rankedIDs {
		if len(candidates) >= e.config.MaxRecommendations {
			break
		}
		p, ok := byID[id]
		if !ok {
			continue
		}
		if _, ok := selected[id]; ok {
			continue
		}
		selected[id] = struct{}{}
		candidates = append(candidates, Candidate{
			Product:      p,
			Reason:       ReasonPopularity,
			UserActivity: activity,
		})
	}
	return candidates
}

func (e *Engine) addDefaultCandidates(ctx context.Context, log zerolog.Logger, candidates []Candidate, selected map[string]struct{}) []Candidate {
	products, err := e.store.ListProductsOrderedByID(ctx, e.config.MaxRecommendations)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list fallback products, skipping default stage")
		return candidates
	}

	for _, p := range products {
		if len(candidates) >= e.config.MaxRecommendations {
			break
		}
		if _, ok := selected[p.ProductID]; ok {
			continue
		}
		selected[p.ProductID] = struct{}{}
		candidates = append(candidates, Candidate{
			Product:      p,
			Reason:       ReasonDefault,
			UserActivity: "No interaction history found; showing highly-rated introductory items.",
		})
	}
	return candidates
}

// purchasedIDs extracts the set of product IDs the user has purchased.
func purchasedIDs(interactions []models.Interaction) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, i := range interactions {
		if i.Type == models.InteractionPurchase {
			ids[i.ProductID] = struct{}{}
		}
	}
	return ids
}

// sortedIDs flattens an ID set into a sorted slice for stable query
// arguments.
func sortedIDs(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
