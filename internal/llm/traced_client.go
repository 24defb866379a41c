package llm

import (
	"context"
	"time"

	"blogforge/internal/logger"
)

// TracedClient wraps a Client and logs every call with its latency and outcome.
type TracedClient struct {
	client   Client
	provider string
}

// NewTracedClient creates a new traced LLM client.
func NewTracedClient(client Client, provider string) *TracedClient {
	return &TracedClient{client: client, provider: provider}
}

// Complete implements Client.
func (tc *TracedClient) Complete(ctx context.Context, tmpl PromptTemplate, vars map[string]string) (string, error) {
	start := time.Now()
	text, err := tc.client.Complete(ctx, tmpl, vars)
	tc.track(tmpl.Name, "text", start, estimateTokens(vars, text), err)
	return text, err
}

// CompleteStructured implements Client.
func (tc *TracedClient) CompleteStructured(ctx context.Context, tmpl PromptTemplate, vars map[string]string, shape *Shape, out any) error {
	start := time.Now()
	err := tc.client.CompleteStructured(ctx, tmpl, vars, shape, out)
	tc.track(tmpl.Name, "structured", start, estimateTokens(vars, ""), err)
	return err
}

func (tc *TracedClient) track(name, mode string, start time.Time, tokens int, err error) {
	latencyMs := time.Since(start).Milliseconds()
	if err != nil {
		logger.Error("LLM call failed", err,
			"provider", tc.provider,
			"template", name,
			"mode", mode,
			"latency_ms", latencyMs,
			"schema_error", IsSchemaValidation(err),
		)
		return
	}
	logger.Debug("LLM call completed",
		"provider", tc.provider,
		"template", name,
		"mode", mode,
		"latency_ms", latencyMs,
		"estimated_tokens", tokens,
	)
}

// estimateTokens estimates token count for a prompt/completion pair.
// This is a simple approximation: ~4 characters per token for English text
func estimateTokens(vars map[string]string, completion string) int {
	n := len(completion)
	for _, v := range vars {
		n += len(v)
	}
	return n / 4
}
