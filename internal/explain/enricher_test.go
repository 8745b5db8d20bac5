// Shopwhy - Product Recommendations with LLM-Generated Explanations
// Copyright 2026 Shopwhy Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shopwhy/shopwhy

package explain

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopwhy/shopwhy/internal/config"
	"github.com/shopwhy/shopwhy/internal/llm"
	"github.com/shopwhy/shopwhy/internal/models"
	"github.com/shopwhy/shopwhy/internal/recommend"
)

// scriptedGenerator returns canned results per call and records prompts.
type scriptedGenerator struct {
	configured bool
	results    []generateResult
	calls      int
	prompts    []string
}

type generateResult struct {
	text string
	err  error
}

func (g *scriptedGenerator) Generate(_ context.Context, _, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	i := g.calls
	g.calls++
	if i >= len(g.results) {
		i = len(g.results) - 1
	}
	return g.results[i].text, g.results[i].err
}

func (g *scriptedGenerator) Configured() bool { return g.configured }

func testCandidate() recommend.Candidate {
	return recommend.Candidate{
		Product: models.Product{
			ProductID:   "p1",
			Name:        "Trail Shoes",
			Category:    "footwear",
			Price:       89.99,
			Description: "Lightweight trail running shoes.",
		},
		Reason:       recommend.ReasonContentAffinity,
		UserActivity: "User has strong affinity (4 score) for the 'footwear' category based on past interactions.",
	}
}

func newTestEnricher(gen llm.Generator) (*Enricher, *[]time.Duration) {
	e := NewEnricher(gen, &config.LLMConfig{
		MaxAttempts:    3,
		RetryBaseDelay: time.Second,
	}, zerolog.Nop())

	var slept []time.Duration
	e.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return e, &slept
}

func TestExplainSuccess(t *testing.T) {
	gen := &scriptedGenerator{
		configured: true,
		results:    []generateResult{{text: "These shoes match your trail habit."}},
	}
	e, slept := newTestEnricher(gen)

	got := e.Explain(context.Background(), testCandidate())

	assert.Equal(t, "These shoes match your trail habit.", got)
	assert.Equal(t, 1, gen.calls)
	assert.Empty(t, *slept)

	// The prompt carries the product context and reason verbatim.
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Name: Trail Shoes")
	assert.Contains(t, gen.prompts[0], "Price: $89.99")
	assert.Contains(t, gen.prompts[0], "Recommendation Reason: Content/Affinity")
	assert.Contains(t, gen.prompts[0], "User Context/Activity: User has strong affinity")
}

func TestExplainRetriesThenSucceeds(t *testing.T) {
	transient := fmt.Errorf("boom: %w", llm.ErrUnavailable)
	gen := &scriptedGenerator{
		configured: true,
		results: []generateResult{
			{err: transient},
			{err: transient},
			{text: "Third time lucky."},
		},
	}
	e, slept := newTestEnricher(gen)

	got := e.Explain(context.Background(), testCandidate())

	assert.Equal(t, "Third time lucky.", got)
	assert.Equal(t, 3, gen.calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *slept)
}

func TestExplainExhaustsRetries(t *testing.T) {
	transient := fmt.Errorf("rate limited: %w", llm.ErrUnavailable)
	gen := &scriptedGenerator{
		configured: true,
		results:    []generateResult{{err: transient}},
	}
	e, slept := newTestEnricher(gen)

	got := e.Explain(context.Background(), testCandidate())

	assert.Equal(t, 3, gen.calls, "exactly the attempt budget, no more")
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *slept)
	assert.Equal(t, fmt.Sprintf("LLM API failed after 3 attempts: %v", transient), got)
}

func TestExplainPermanentErrorFailsFast(t *testing.T) {
	permanent := errors.New("invalid request")
	gen := &scriptedGenerator{
		configured: true,
		results:    []generateResult{{err: permanent}},
	}
	e, slept := newTestEnricher(gen)

	got := e.Explain(context.Background(), testCandidate())

	assert.Equal(t, 1, gen.calls, "no retry on permanent errors")
	assert.Empty(t, *slept)
	assert.Equal(t, fmt.Sprintf("An unexpected error occurred during LLM generation: %v", permanent), got)
}

func TestExplainUnconfiguredShortCircuits(t *testing.T) {
	gen := &scriptedGenerator{configured: false}
	e, _ := newTestEnricher(gen)

	got := e.Explain(context.Background(), testCandidate())

	assert.Equal(t, "LLM service is unavailable. Please check the API key configuration.", got)
	assert.Zero(t, gen.calls, "no generation attempt without credentials")
}

func TestExplainCanceledContextStopsRetrying(t *testing.T) {
	transient := fmt.Errorf("boom: %w", llm.ErrUnavailable)
	gen := &scriptedGenerator{
		configured: true,
		results:    []generateResult{{err: transient}},
	}
	e, _ := newTestEnricher(gen)
	e.sleep = func(ctx context.Context, _ time.Duration) error {
		return context.Canceled
	}

	got := e.Explain(context.Background(), testCandidate())

	assert.Equal(t, 1, gen.calls)
	assert.Contains(t, got, "LLM API failed after 1 attempts")
}
