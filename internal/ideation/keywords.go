package ideation

import (
	"context"
	"fmt"
	"strings"

	"blogforge/internal/core"
	"blogforge/internal/llm"
	"blogforge/internal/logger"
)

type keywordResponse struct {
	PrimaryKeywords  []string `json:"primaryKeywords"`
	LongTailKeywords []string `json:"longTailKeywords"`
}

// ResearchKeywords expands query into primary and long-tail keyword sets,
// grounded on the project context. Shape violations fail the stage; nothing
// is truncated or padded.
func ResearchKeywords(ctx context.Context, client llm.Client, projectContext, query string) (core.KeywordSet, error) {
	if strings.TrimSpace(projectContext) == "" {
		return core.KeywordSet{}, fmt.Errorf("%w: project context is empty", ErrInvalidInput)
	}
	if strings.TrimSpace(query) == "" {
		logger.Warn("Keyword research called with empty query")
	}

	var resp keywordResponse
	err := client.CompleteStructured(ctx, KeywordResearchPrompt, map[string]string{
		"context": projectContext,
		"query":   query,
	}, KeywordShape, &resp)
	if err != nil {
		return core.KeywordSet{}, fmt.Errorf("keyword research failed: %w", err)
	}

	logger.Debug("Keyword research completed",
		"primary", len(resp.PrimaryKeywords),
		"long_tail", len(resp.LongTailKeywords),
	)
	return core.KeywordSet{
		PrimaryKeywords:  resp.PrimaryKeywords,
		LongTailKeywords: resp.LongTailKeywords,
	}, nil
}
