// File path: internal/recommend/rewriter.go
package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/prompts"

	"github.com/nicodishanthj/shopsense/internal/common"
	"github.com/nicodishanthj/shopsense/internal/common/telemetry"
	"github.com/nicodishanthj/shopsense/internal/llm"
)

// ErrGeneration means the text-generation capability returned nothing usable.
// It is the only pipeline failure surfaced to the caller: without a rewritten
// query no recommendation run is attempted.
var ErrGeneration = errors.New("query generation failed")

var rewriteTemplate = prompts.NewPromptTemplate(
	`You are an advanced language model that transforms shopper queries into structured semantic search queries.

Convert the shopper query below into a concise query focused on finding similar product titles. Preserve the shopper's intent and keep it well suited for similarity comparison against product titles.

Shopper query: {{.query}}

Respond with only the rephrased query, nothing else.`,
	[]string{"query"},
)

// Rewriter turns a raw shopper query into a search-optimized phrase via the
// configured text-generation provider. Single attempt, no retries.
type Rewriter struct {
	provider llm.Provider
}

func NewRewriter(provider llm.Provider) *Rewriter {
	return &Rewriter{provider: provider}
}

// Rewrite submits the instruction prompt and returns the trimmed response
// with quote characters stripped. Quotes are removed from the input first so
// they cannot break downstream query construction.
func (r *Rewriter) Rewrite(ctx context.Context, rawQuery string) (string, error) {
	cleaned := stripQuotes(rawQuery)
	if cleaned == "" {
		return "", fmt.Errorf("%w: empty query", ErrGeneration)
	}
	prompt, err := rewriteTemplate.Format(map[string]any{"query": cleaned})
	if err != nil {
		telemetry.RecordRewrite(err)
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	response, err := r.provider.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}})
	telemetry.RecordRewrite(err)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	rewritten := stripQuotes(response)
	if rewritten == "" {
		telemetry.RecordRewrite(errors.New("empty response"))
		return "", fmt.Errorf("%w: empty response", ErrGeneration)
	}
	common.Logger().Debug("recommend: query rewritten", "raw", cleaned, "rewritten", rewritten)
	return rewritten, nil
}

func stripQuotes(s string) string {
	s = strings.ReplaceAll(s, `"`, "")
	s = strings.ReplaceAll(s, "'", "")
	return strings.TrimSpace(s)
}
