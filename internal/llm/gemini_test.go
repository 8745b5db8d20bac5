// Shopwhy - Product Recommendations with LLM-Generated Explanations
// Copyright 2026 Shopwhy Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shopwhy/shopwhy

package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopwhy/shopwhy/internal/config"
)

func testLLMConfig(endpoint string) *config.LLMConfig {
	return &config.LLMConfig{
		APIKey:           "test-key",
		Model:            "gemini-2.5-flash",
		Endpoint:         endpoint,
		Timeout:          5 * time.Second,
		BreakerThreshold: 5,
		MaxAttempts:      3,
		RetryBaseDelay:   time.Second,
	}
}

func generateContentResponse(text string) string {
	resp := map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]string{{"text": text}}}},
		},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func TestGenerateSuccess(t *testing.T) {
	var gotPath, gotKey string
	var gotBody generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(generateContentResponse("  A great fit for you.  ")))
	}))
	defer server.Close()

	client := NewGeminiClient(testLLMConfig(server.URL), zerolog.Nop())

	text, err := client.Generate(context.Background(), "be concise", "why this product?")
	require.NoError(t, err)
	assert.Equal(t, "A great fit for you.", text)

	assert.Equal(t, "/models/gemini-2.5-flash:generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)
	require.NotNil(t, gotBody.SystemInstruction)
	assert.Equal(t, "be concise", gotBody.SystemInstruction.Parts[0].Text)
	require.Len(t, gotBody.Contents, 1)
	assert.Equal(t, "why this product?", gotBody.Contents[0].Parts[0].Text)
}

func TestGenerateNotConfigured(t *testing.T) {
	cfg := testLLMConfig("http://127.0.0.1:1")
	cfg.APIKey = ""
	client := NewGeminiClient(cfg, zerolog.Nop())

	assert.False(t, client.Configured())

	_, err := client.Generate(context.Background(), "", "prompt")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.False(t, IsTransient(err))
}

func TestGenerateTransientStatuses(t *testing.T) {
	for _, status := range []int{http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
		}))

		client := NewGeminiClient(testLLMConfig(server.URL), zerolog.Nop())
		_, err := client.Generate(context.Background(), "", "prompt")
		server.Close()

		require.Error(t, err, "status %d", status)
		assert.ErrorIs(t, err, ErrUnavailable, "status %d", status)
		assert.True(t, IsTransient(err), "status %d", status)
	}
}

func TestGeneratePermanentStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": "invalid request"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewGeminiClient(testLLMConfig(server.URL), zerolog.Nop())

	_, err := client.Generate(context.Background(), "", "prompt")
	require.Error(t, err)
	assert.False(t, IsTransient(err))
	assert.Contains(t, err.Error(), "status 400")
}

func TestGenerateTransportErrorIsTransient(t *testing.T) {
	// Nothing listens on this port.
	client := NewGeminiClient(testLLMConfig("http://127.0.0.1:1"), zerolog.Nop())

	_, err := client.Generate(context.Background(), "", "prompt")
	require.Error(t, err)
	assert.True(t, IsTransient(err))
}

func TestGenerateEmptyCandidatesIsPermanent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates": []}`))
	}))
	defer server.Close()

	client := NewGeminiClient(testLLMConfig(server.URL), zerolog.Nop())

	_, err := client.Generate(context.Background(), "", "prompt")
	require.Error(t, err)
	assert.False(t, IsTransient(err))
}

func TestCircuitBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := testLLMConfig(server.URL)
	cfg.BreakerThreshold = 2
	client := NewGeminiClient(cfg, zerolog.Nop())

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := client.Generate(ctx, "", "prompt")
		require.ErrorIs(t, err, ErrUnavailable)
	}

	// Breaker is now open; calls fail fast without hitting the server,
	// and the open-state error still reads as transient.
	_, err := client.Generate(ctx, "", "prompt")
	require.Error(t, err)
	assert.True(t, IsTransient(err))
	assert.NotErrorIs(t, err, ErrUnavailable)
}
