// Shopwhy - Product Recommendations with LLM-Generated Explanations
// Copyright 2026 Shopwhy Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shopwhy/shopwhy

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopwhy/shopwhy/internal/config"
	"github.com/shopwhy/shopwhy/internal/database"
	"github.com/shopwhy/shopwhy/internal/models"
	"github.com/shopwhy/shopwhy/internal/recommend"
)

// fakeGenerator returns fixed candidates per user ID.
type fakeGenerator struct {
	candidates map[string][]recommend.Candidate
}

func (g *fakeGenerator) Recommend(_ context.Context, userID string) []recommend.Candidate {
	return g.candidates[userID]
}

// fakeExplainer formats a deterministic explanation.
type fakeExplainer struct{}

func (fakeExplainer) Explain(_ context.Context, c recommend.Candidate) string {
	return fmt.Sprintf("Because you will love %s.", c.Product.Name)
}

type fakeLLMStatus struct{ configured bool }

func (s fakeLLMStatus) Configured() bool { return s.configured }

func testServer(t *testing.T, gen CandidateGenerator) (*httptest.Server, *database.DB) {
	t.Helper()
	db, err := database.New(&config.DatabaseConfig{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	handler := NewHandler(db, gen, fakeExplainer{}, fakeLLMStatus{configured: true})
	router := NewRouter(handler, &config.APIConfig{
		RateLimitRequests: 1000,
		RateLimitWindow:   0,
		RateLimitDisabled: true,
	})

	server := httptest.NewServer(router.Setup())
	t.Cleanup(server.Close)
	return server, db
}

func decodeResponse(t *testing.T, resp *http.Response) APIResponse {
	t.Helper()
	defer resp.Body.Close()
	var envelope APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return envelope
}

func TestGetRecommendationsSuccess(t *testing.T) {
	gen := &fakeGenerator{candidates: map[string][]recommend.Candidate{
		"u1": {
			{
				Product: models.Product{
					ProductID: "p1", Name: "Trail Shoes", Category: "footwear", Price: 89.99,
				},
				Reason:       recommend.ReasonContentAffinity,
				UserActivity: "User has strong affinity (4 score) for the 'footwear' category based on past interactions.",
			},
			{
				Product: models.Product{
					ProductID: "p2", Name: "Rain Jacket", Category: "apparel", Price: 129.50,
				},
				Reason:       recommend.ReasonPopularity,
				UserActivity: "This item is globally popular, ranking among the top 2 purchased products.",
			},
		},
	}}
	server, _ := testServer(t, gen)

	resp, err := http.Get(server.URL + "/api/v1/recommendations/u1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	envelope := decodeResponse(t, resp)
	require.True(t, envelope.Success)
	require.NotNil(t, envelope.Meta)
	assert.NotEmpty(t, envelope.Meta.RequestID)

	raw, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var data models.RecommendationsResponse
	require.NoError(t, json.Unmarshal(raw, &data))

	assert.Equal(t, "u1", data.UserID)
	assert.Equal(t, 2, data.TotalRecommendations)
	require.Len(t, data.Recommendations, 2)

	first := data.Recommendations[0]
	assert.Equal(t, "p1", first.ProductID)
	assert.Equal(t, "Trail Shoes", first.ProductName)
	assert.Equal(t, "footwear", first.Category)
	assert.InDelta(t, 89.99, first.Price, 0.001)
	assert.Equal(t, "Because you will love Trail Shoes.", first.LLMExplanation)
	assert.Equal(t, "Content/Affinity", first.InternalReason)
}

func TestGetRecommendationsNotFound(t *testing.T) {
	server, _ := testServer(t, &fakeGenerator{})

	resp, err := http.Get(server.URL + "/api/v1/recommendations/nobody")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	envelope := decodeResponse(t, resp)
	assert.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, ErrCodeNotFound, envelope.Error.Code)
	assert.Equal(t, "No products found or recommendation logic failed to produce results.", envelope.Error.Message)
}

func TestGetRecommendationsBlankUserID(t *testing.T) {
	server, _ := testServer(t, &fakeGenerator{})

	resp, err := http.Get(server.URL + "/api/v1/recommendations/%20")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	envelope := decodeResponse(t, resp)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, ErrCodeBadRequest, envelope.Error.Code)
}

func TestGetRecommendationsUserIDTooLong(t *testing.T) {
	server, _ := testServer(t, &fakeGenerator{})

	long := make([]byte, maxUserIDLength+1)
	for i := range long {
		long[i] = 'u'
	}
	resp, err := http.Get(server.URL + "/api/v1/recommendations/" + string(long))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestHealthHealthy(t *testing.T) {
	server, _ := testServer(t, &fakeGenerator{})

	resp, err := http.Get(server.URL + "/api/v1/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	envelope := decodeResponse(t, resp)
	require.True(t, envelope.Success)

	raw, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var status models.HealthStatus
	require.NoError(t, json.Unmarshal(raw, &status))

	assert.Equal(t, "healthy", status.Status)
	assert.True(t, status.DatabaseConnected)
	assert.True(t, status.LLMConfigured)
}

func TestHealthDegradedWhenDatabaseDown(t *testing.T) {
	server, db := testServer(t, &fakeGenerator{})
	require.NoError(t, db.Close())

	resp, err := http.Get(server.URL + "/api/v1/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	envelope := decodeResponse(t, resp)
	assert.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, ErrCodeServiceUnavailable, envelope.Error.Code)
}

func TestMetricsEndpointExposed(t *testing.T) {
	server, _ := testServer(t, &fakeGenerator{})

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
