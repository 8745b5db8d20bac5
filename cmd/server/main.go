// Shopwhy - Product Recommendations with LLM-Generated Explanations
// Copyright 2026 Shopwhy Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shopwhy/shopwhy

/*
main.go - Application Entry Point

Startup sequence:
 1. Configuration: koanf layered load (defaults, optional YAML, environment)
 2. Logging: zerolog global logger from config
 3. Database: DuckDB open, schema creation, idempotent CSV seed
 4. LLM: Gemini client (degrades to placeholders when GEMINI_API_KEY unset)
 5. Recommendation engine and explanation enricher
 6. HTTP server under a suture supervision tree
 7. SIGINT/SIGTERM triggers graceful shutdown with bounded drain
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopwhy/shopwhy/internal/api"
	"github.com/shopwhy/shopwhy/internal/config"
	"github.com/shopwhy/shopwhy/internal/database"
	"github.com/shopwhy/shopwhy/internal/explain"
	"github.com/shopwhy/shopwhy/internal/llm"
	"github.com/shopwhy/shopwhy/internal/logging"
	"github.com/shopwhy/shopwhy/internal/recommend"
	"github.com/shopwhy/shopwhy/internal/supervisor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Msg("Starting Shopwhy recommendation service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// === DATABASE ===
	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Failed to close database")
		}
	}()

	if err := db.Seed(ctx, cfg.Data.ProductsCSV, cfg.Data.InteractionsCSV); err != nil {
		logging.Fatal().Err(err).Msg("Failed to seed database")
	}

	// === LLM CLIENT ===
	generator := llm.NewGeminiClient(&cfg.LLM, logging.Logger())
	if !generator.Configured() {
		logging.Warn().Msg("GEMINI_API_KEY is not set; explanations will degrade to placeholders")
	}

	// === RECOMMENDATION PIPELINE ===
	engine, err := recommend.NewEngine(&recommend.Config{
		MaxRecommendations: cfg.Recommend.MaxRecommendations,
	}, db, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create recommendation engine")
	}
	enricher := explain.NewEnricher(generator, &cfg.LLM, logging.Logger())

	// === HTTP SERVER ===
	handler := api.NewHandler(db, engine, enricher, generator)
	router := api.NewRouter(handler, &cfg.API)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// === SUPERVISOR TREE ===
	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddAPIService(supervisor.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Application stopped gracefully")
}
