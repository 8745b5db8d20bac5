// Shopwhy - Product Recommendations with LLM-Generated Explanations
// Copyright 2026 Shopwhy Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shopwhy/shopwhy

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/recommendations", "200"))

	RecordAPIRequest("GET", "/api/v1/recommendations", 200, 50*time.Millisecond)

	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/recommendations", "200"))
	assert.Equal(t, before+1, after)
}

func TestObserveDBQueryCountsErrors(t *testing.T) {
	before := testutil.ToFloat64(DBQueryErrors.WithLabelValues("select", "products"))

	ObserveDBQuery("select", "products", time.Now(), nil)
	ObserveDBQuery("select", "products", time.Now(), errors.New("boom"))

	after := testutil.ToFloat64(DBQueryErrors.WithLabelValues("select", "products"))
	assert.Equal(t, before+1, after)
}

func TestLLMOutcomeCounters(t *testing.T) {
	before := testutil.ToFloat64(LLMRequestsTotal.WithLabelValues("success"))
	LLMRequestsTotal.WithLabelValues("success").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(LLMRequestsTotal.WithLabelValues("success")))
}
