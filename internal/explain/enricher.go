// Shopwhy - Product Recommendations with LLM-Generated Explanations
// Copyright 2026 Shopwhy Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shopwhy/shopwhy

package explain

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/shopwhy/shopwhy/internal/config"
	"github.com/shopwhy/shopwhy/internal/llm"
	"github.com/shopwhy/shopwhy/internal/metrics"
	"github.com/shopwhy/shopwhy/internal/recommend"
)

// unavailableMessage is returned without any network call when the generation
// backend holds no credentials.
const unavailableMessage = "LLM service is unavailable. Please check the API key configuration."

// Enricher generates explanation text for candidates. Explanations are a
// non-critical enhancement: Explain always returns some string, never an
// error, so a fully degraded backend still yields complete recommendations.
//
// Retries are a bounded loop with an explicit attempt count and doubling
// delay schedule rather than retry middleware, with an injectable sleep so
// tests can verify the schedule without waiting on it.
type Enricher struct {
	generator   llm.Generator
	logger      zerolog.Logger
	maxAttempts int
	baseDelay   time.Duration

	// sleep waits for the given duration or until the context is done.
	// Replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewEnricher creates an enricher around the given generation backend.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEnricher(generator llm.Generator, cfg *config.LLMConfig, logger zerolog.Logger) *Enricher {
	return &Enricher{
		generator:   generator,
		logger:      logger.With().Str("component", "explain").Logger(),
		maxAttempts: cfg.MaxAttempts,
		baseDelay:   cfg.RetryBaseDelay,
		sleep:       sleepContext,
	}
}

// Explain produces the explanation string for one candidate.
//
// Transient backend failures are retried up to the attempt budget with
// doubling delays (1s, 2s, 4s with the defaults); exhausting the budget
// degrades to a failure-description string. A permanent failure degrades
// immediately with no retry. An unconfigured backend short-circuits to a
// fixed message without any network call.
func (e *Enricher) Explain(ctx context.Context, c recommend.Candidate) string {
	if !e.generator.Configured() {
		metrics.ExplanationsDegradedTotal.Inc()
		return unavailableMessage
	}

	prompt := buildPrompt(c)
	log := e.logger.With().Str("product_id", c.Product.ProductID).Logger()

	var lastErr error
	for attempt := 0; attempt < e.maxAttempts; attempt++ {
		text, err := e.generator.Generate(ctx, systemInstruction, prompt)
		if err == nil {
			return text
		}
		lastErr = err

		if !llm.IsTransient(err) {
			log.Error().Err(err).Msg("Explanation generation failed permanently")
			metrics.ExplanationsDegradedTotal.Inc()
			return fmt.Sprintf("An unexpected error occurred during LLM generation: %v", err)
		}

		if attempt < e.maxAttempts-1 {
			delay := e.baseDelay << attempt
			log.Warn().Err(err).
				Int("attempt", attempt+1).
				Dur("retry_in", delay).
				Msg("Transient explanation failure, retrying")
			metrics.ExplanationRetriesTotal.Inc()
			if err := e.sleep(ctx, delay); err != nil {
				metrics.ExplanationsDegradedTotal.Inc()
				return fmt.Sprintf("LLM API failed after %d attempts: %v", attempt+1, lastErr)
			}
		}
	}

	log.Error().Err(lastErr).Int("attempts", e.maxAttempts).Msg("Explanation generation exhausted retries")
	metrics.ExplanationsDegradedTotal.Inc()
	return fmt.Sprintf("LLM API failed after %d attempts: %v", e.maxAttempts, lastErr)
}

// sleepContext blocks for d or until ctx is canceled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
