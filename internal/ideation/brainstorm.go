package ideation

import (
	"context"
	"fmt"

	"blogforge/internal/core"
	"blogforge/internal/llm"
	"blogforge/internal/logger"
)

type contentIdeasResponse struct {
	ContentIdeas []core.ContentIdea `json:"contentIdeas"`
}

// Synthesize produces the final 5-10 content ideas from the project context,
// the two trend corpora and the user's query.
func Synthesize(ctx context.Context, client llm.Client, projectContext, primaryCorpus, longTailCorpus, query string) ([]core.ContentIdea, error) {
	var resp contentIdeasResponse
	err := client.CompleteStructured(ctx, SynthesisPrompt, map[string]string{
		"context":        projectContext,
		"primaryTrends":  primaryCorpus,
		"longTailTrends": longTailCorpus,
		"query":          query,
	}, ContentIdeasShape, &resp)
	if err != nil {
		return nil, fmt.Errorf("content synthesis failed: %w", err)
	}

	logger.Debug("Content synthesis completed", "ideas", len(resp.ContentIdeas))
	return resp.ContentIdeas, nil
}
