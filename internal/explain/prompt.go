// Shopwhy - Product Recommendations with LLM-Generated Explanations
// Copyright 2026 Shopwhy Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shopwhy/shopwhy

// Package explain turns recommendation candidates into short natural-language
// justifications via a text-generation backend, degrading to fixed placeholder
// strings when generation fails.
package explain

import (
	"fmt"

	"github.com/shopwhy/shopwhy/internal/recommend"
)

// systemInstruction fixes the generation persona and output constraints for
// every explanation request.
const systemInstruction = `You are a concise, helpful, and highly personalized e-commerce recommendation expert.
Your task is to generate a short, engaging, and professional explanation (max 3 sentences)
for why a specific product is being recommended to the user.

RULES:
1. Always reference the product's details and the user's specific context.
2. Use a positive and encouraging tone.
3. Do not use markdown (e.g., bolding, lists) in the output.
4. Keep the explanation to three sentences or less.`

// buildPrompt renders one candidate into the per-request prompt. The reason
// tag and activity summary go in verbatim so the model sees the same context
// the engine recorded.
func buildPrompt(c recommend.Candidate) string {
	return fmt.Sprintf(`Product Details:
- Name: %s
- Category: %s
- Description: %s
- Price: $%.2f

Recommendation Reason: %s
User Context/Activity: %s

Generate the personalized explanation now based on the system prompt.`,
		c.Product.Name,
		c.Product.Category,
		c.Product.Description,
		c.Product.Price,
		c.Reason,
		c.UserActivity)
}
