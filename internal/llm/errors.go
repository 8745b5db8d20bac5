// Shopwhy - Product Recommendations with LLM-Generated Explanations
// Copyright 2026 Shopwhy Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shopwhy/shopwhy

package llm

import (
	"errors"

	gobreaker "github.com/sony/gobreaker/v2"
)

var (
	// ErrNotConfigured indicates the client has no API key and cannot make
	// any network call.
	ErrNotConfigured = errors.New("llm client is not configured")

	// ErrUnavailable indicates a transient failure (rate limit, server
	// error, transport error). Callers may retry.
	ErrUnavailable = errors.New("llm service unavailable")
)

// IsTransient reports whether the error is worth retrying. An open circuit
// breaker counts as transient: the service may recover before the caller's
// retry budget runs out.
func IsTransient(err error) bool {
	return errors.Is(err, ErrUnavailable) ||
		errors.Is(err, gobreaker.ErrOpenState) ||
		errors.Is(err, gobreaker.ErrTooManyRequests)
}
