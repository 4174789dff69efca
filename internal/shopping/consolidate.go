package shopping

import (
	"context"
	"fmt"
	"time"

	"cookplanner/internal/llm"
	"cookplanner/internal/shared"
)

const consolidatePrompt = `You are helping prepare a practical grocery shopping list.

Below is a raw shopping list aggregated from several recipes. Rewrite it into a list a shopper can take straight to the store:
- Combine duplicate ingredients into single lines
- Round quantities to practical purchase amounts
- Merge obviously similar items (e.g., "egg" and "beaten egg" become "eggs")
- Use store-friendly measurements
- Keep the list grouped by category

Raw shopping list:

%s
Return only the rewritten shopping list, nothing else.`

// Consolidator hands an aggregated shopping list to a text-generation model
// for practical rewriting. The model's answer is opaque text; the raw
// aggregated list stays valid if the call fails.
type Consolidator struct {
	textGen llm.TextGenerator
}

// NewConsolidator creates a new Consolidator.
func NewConsolidator(textGen llm.TextGenerator) *Consolidator {
	return &Consolidator{textGen: textGen}
}

// Consolidate sends the formatted list for rewriting and returns the response
// text. Callers own cancellation and should bound ctx with a timeout.
func (c *Consolidator) Consolidate(ctx context.Context, list *ShoppingList) (string, shared.CallMeta, error) {
	start := time.Now()
	prompt := fmt.Sprintf(consolidatePrompt, list.Format())

	resp, err := c.textGen.GenerateContent(ctx, prompt)
	meta := shared.CallMeta{
		Operation: "Consolidator",
		Usage:     resp.Usage,
		Latency:   time.Since(start),
	}
	if err != nil {
		return "", meta, fmt.Errorf("failed to consolidate shopping list: %w", err)
	}
	return resp.Content, meta, nil
}
