// Shopwhy - Product Recommendations with LLM-Generated Explanations
// Copyright 2026 Shopwhy Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shopwhy/shopwhy

package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shopwhy/shopwhy/internal/database"
	"github.com/shopwhy/shopwhy/internal/logging"
	"github.com/shopwhy/shopwhy/internal/models"
	"github.com/shopwhy/shopwhy/internal/recommend"
)

// maxUserIDLength bounds the path parameter before it reaches the store.
const maxUserIDLength = 128

// noRecommendationsMessage is the 404 detail when the generator produced
// nothing for a user.
const noRecommendationsMessage = "No products found or recommendation logic failed to produce results."

// CandidateGenerator produces recommendation candidates for a user. Satisfied
// by recommend.Engine.
type CandidateGenerator interface {
	Recommend(ctx context.Context, userID string) []recommend.Candidate
}

// Explainer produces one explanation string per candidate. Satisfied by
// explain.Enricher.
type Explainer interface {
	Explain(ctx context.Context, c recommend.Candidate) string
}

// LLMStatus reports whether the generation backend holds credentials.
type LLMStatus interface {
	Configured() bool
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	db        *database.DB
	engine    CandidateGenerator
	enricher  Explainer
	llm       LLMStatus
	startTime time.Time
}

// NewHandler creates a handler with the given dependencies.
func NewHandler(db *database.DB, engine CandidateGenerator, enricher Explainer, llm LLMStatus) *Handler {
	return &Handler{
		db:        db,
		engine:    engine,
		enricher:  enricher,
		llm:       llm,
		startTime: time.Now(),
	}
}

// GetRecommendations handles GET /api/v1/recommendations/{userID}.
//
// Orchestration: candidate generation, then sequential explanation enrichment
// per candidate, then response shaping. An empty candidate list maps to 404;
// enrichment never fails the request because the enricher always returns a
// string.
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := strings.TrimSpace(chi.URLParam(r, "userID"))
	if userID == "" {
		WriteBadRequest(w, r, "User ID must not be empty")
		return
	}
	if len(userID) > maxUserIDLength {
		WriteBadRequest(w, r, "User ID is too long")
		return
	}

	logging.Ctx(ctx).Info().Str("user_id", userID).Msg("Processing recommendation request")

	candidates := h.engine.Recommend(ctx, userID)
	if len(candidates) == 0 {
		WriteNotFound(w, r, noRecommendationsMessage)
		return
	}

	enriched := make([]models.EnrichedRecommendation, 0, len(candidates))
	for _, c := range candidates {
		enriched = append(enriched, models.EnrichedRecommendation{
			ProductID:      c.Product.ProductID,
			ProductName:    c.Product.Name,
			Category:       c.Product.Category,
			Price:          c.Product.Price,
			LLMExplanation: h.enricher.Explain(ctx, c),
			InternalReason: string(c.Reason),
		})
	}

	WriteSuccess(w, r, models.RecommendationsResponse{
		UserID:               userID,
		Recommendations:      enriched,
		TotalRecommendations: len(enriched),
	})
}
