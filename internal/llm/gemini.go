// Shopwhy - Product Recommendations with LLM-Generated Explanations
// Copyright 2026 Shopwhy Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shopwhy/shopwhy

/*
gemini.go - Gemini Text Generation Client

This file provides the HTTP client for Google's Gemini generateContent REST
API, used to produce recommendation explanations.

Resilience Mechanisms:
  - Circuit Breaker: opens after N consecutive failures (60s open period)
  - Rate Limiting: client-side token bucket on outbound calls
  - Per-attempt timeout: each call is bounded by the configured timeout
  - Error taxonomy: HTTP 429/5xx and transport errors map to ErrUnavailable
    (transient, retryable by the enricher); everything else is permanent

Retry policy lives in the explain package, not here: this client makes exactly
one attempt per Generate call so the backoff schedule stays testable.
*/

//nolint:staticcheck // File documentation, not package doc
package llm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/shopwhy/shopwhy/internal/config"
	"github.com/shopwhy/shopwhy/internal/metrics"
)

// maxErrorBodySize limits how much of an error response body is read for
// diagnostics.
const maxErrorBodySize = 64 * 1024 // 64KB

// Generator produces text from a system instruction and a prompt. Implemented
// by GeminiClient in production and by test doubles in the explain package.
type Generator interface {
	// Generate returns the generated text for one prompt. Transient
	// failures satisfy IsTransient; a client with no credentials returns
	// ErrNotConfigured.
	Generate(ctx context.Context, systemInstruction, prompt string) (string, error)

	// Configured reports whether the client holds credentials and can
	// attempt network calls.
	Configured() bool
}

// GeminiClient calls the Gemini generateContent endpoint. Safe for concurrent
// use.
type GeminiClient struct {
	cfg        *config.LLMConfig
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker[string]
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

// NewGeminiClient creates a Gemini client from configuration. A missing API
// key yields a client whose Configured() is false; Generate then fails with
// ErrNotConfigured without any network activity.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewGeminiClient(cfg *config.LLMConfig, logger zerolog.Logger) *GeminiClient {
	log := logger.With().Str("component", "llm").Logger()

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:    "gemini",
		Timeout: 60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerThreshold
		},
		OnStateChange: func(_ string, from, to gobreaker.State) {
			log.Warn().
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Gemini circuit breaker state change")
		},
	})

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &GeminiClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cb:         cb,
		limiter:    limiter,
		logger:     log,
	}
}

// Configured reports whether an API key is present.
func (c *GeminiClient) Configured() bool {
	return c.cfg.APIKey != ""
}

// generateContent request/response shapes, reduced to the fields this client
// uses.
type generateRequest struct {
	SystemInstruction *content  `json:"system_instruction,omitempty"`
	Contents          []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Generate makes a single generateContent call through the rate limiter and
// circuit breaker. The returned text is whitespace-trimmed.
func (c *GeminiClient) Generate(ctx context.Context, systemInstruction, prompt string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter wait: %w", err)
		}
	}

	start := time.Now()
	text, err := c.cb.Execute(func() (string, error) {
		return c.doGenerate(ctx, systemInstruction, prompt)
	})
	metrics.LLMRequestDuration.Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		metrics.LLMRequestsTotal.WithLabelValues("success").Inc()
	case IsTransient(err):
		metrics.LLMRequestsTotal.WithLabelValues("transient_error").Inc()
	default:
		metrics.LLMRequestsTotal.WithLabelValues("permanent_error").Inc()
	}
	return text, err
}

func (c *GeminiClient) doGenerate(ctx context.Context, systemInstruction, prompt string) (string, error) {
	reqCtx := ctx
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	payload := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}
	if systemInstruction != "" {
		payload.SystemInstruction = &content{Parts: []part{{Text: systemInstruction}}}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent",
		strings.TrimSuffix(c.cfg.Endpoint, "/"), c.cfg.Model)
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Transport failures (connection refused, timeout) are
		// transient from the caller's perspective.
		return "", fmt.Errorf("request failed: %v: %w", err, ErrUnavailable)
	}
	defer resp.Body.Close() //nolint:errcheck // Read-only body

	if resp.StatusCode != http.StatusOK {
		errBody := readBodyForError(resp.Body)
		if isTransientStatus(resp.StatusCode) {
			return "", fmt.Errorf("generation failed with status %d: %s: %w",
				resp.StatusCode, string(errBody), ErrUnavailable)
		}
		return "", fmt.Errorf("generation failed with status %d: %s",
			resp.StatusCode, string(errBody))
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("response contained no candidates")
	}

	var sb strings.Builder
	for _, p := range decoded.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return strings.TrimSpace(sb.String()), nil
}

// isTransientStatus reports whether an HTTP status indicates a retryable
// condition: rate limiting or server-side failure.
func isTransientStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// readBodyForError reads at most maxErrorBodySize bytes for diagnostics.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	return body
}
