// Shopwhy - Product Recommendations with LLM-Generated Explanations
// Copyright 2026 Shopwhy Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shopwhy/shopwhy

package database

import "errors"

// ErrNotFound indicates the requested row does not exist.
var ErrNotFound = errors.New("not found")
