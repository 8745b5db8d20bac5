// Shopwhy - Product Recommendations with LLM-Generated Explanations
// Copyright 2026 Shopwhy Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shopwhy/shopwhy

package api

import (
	"net/http"
	"time"

	"github.com/shopwhy/shopwhy/internal/logging"
	"github.com/shopwhy/shopwhy/internal/models"
)

// Health handles GET /api/v1/health.
//
// The service is "healthy" when the store answers pings. A missing LLM
// credential degrades explanations to placeholders but does not degrade
// health; the flag is reported for operators.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := models.HealthStatus{
		Status:            "healthy",
		DatabaseConnected: true,
		LLMConfigured:     h.llm.Configured(),
		Uptime:            time.Since(h.startTime).Round(time.Second).String(),
		Timestamp:         time.Now().UTC(),
	}

	if err := h.db.Ping(ctx); err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Health check database ping failed")
		status.Status = "degraded"
		status.DatabaseConnected = false
	} else {
		if n, err := h.db.CountProducts(ctx); err == nil {
			status.Products = n
		}
		if n, err := h.db.CountInteractions(ctx); err == nil {
			status.Interactions = n
		}
	}

	rw := NewResponseWriter(w, r)
	if status.Status != "healthy" {
		rw.Error(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "database unreachable")
		return
	}
	rw.Success(status)
}
