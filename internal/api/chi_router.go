// Shopwhy - Product Recommendations with LLM-Generated Explanations
// Copyright 2026 Shopwhy Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shopwhy/shopwhy

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shopwhy/shopwhy/internal/config"
)

// Router wires handlers and middleware into the HTTP routing tree.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router from the API configuration.
func NewRouter(handler *Handler, cfg *config.APIConfig) *Router {
	mwConfig := DefaultChiMiddlewareConfig()
	if cfg != nil {
		mwConfig.CORSAllowedOrigins = cfg.CORSAllowedOrigins
		mwConfig.RateLimitRequests = cfg.RateLimitRequests
		mwConfig.RateLimitWindow = cfg.RateLimitWindow
		mwConfig.RateLimitDisabled = cfg.RateLimitDisabled
	}

	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(mwConfig),
	}
}

// Setup configures all HTTP routes using the Chi router.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware stack, applied to all routes in order.
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // Global so OPTIONS preflight is handled

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(PrometheusMetrics())

		r.Get("/health", router.handler.Health)
		r.Get("/recommendations/{userID}", router.handler.GetRecommendations)
	})

	// Prometheus scrape endpoint, outside the rate-limited API tree.
	r.Handle("/metrics", promhttp.Handler())

	return r
}
