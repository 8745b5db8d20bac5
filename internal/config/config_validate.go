// Shopwhy - Product Recommendations with LLM-Generated Explanations
// Copyright 2026 Shopwhy Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shopwhy/shopwhy

package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// validatorInstance returns the shared validator. The instance caches struct
// metadata, so a singleton avoids re-reflection on every Validate call.
func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks field constraints and cross-field rules. It returns an
// error describing every violated constraint, not just the first.
func (c *Config) Validate() error {
	var problems []string

	if err := validatorInstance().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if ok := isValidationErrors(err, &verrs); ok {
			for _, fe := range verrs {
				problems = append(problems, fmt.Sprintf("%s: failed %q constraint", fe.Namespace(), fe.Tag()))
			}
		} else {
			return fmt.Errorf("config validation: %w", err)
		}
	}

	// Cross-field rules the tag language cannot express.
	if c.LLM.APIKey != "" && c.LLM.Model == "" {
		problems = append(problems, "llm.model must be set when llm.api_key is configured")
	}
	if c.LLM.RetryBaseDelay < 0 {
		problems = append(problems, "llm.retry_base_delay must not be negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		problems = append(problems, "server.shutdown_timeout must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(problems, "; "))
	}
	return nil
}

// isValidationErrors unwraps err into validator.ValidationErrors.
func isValidationErrors(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors) //nolint:errorlint // validator returns this type directly
	if ok {
		*target = verrs
	}
	return ok
}
