package llm

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"blogforge/internal/config"
)

const (
	// DefaultGeminiModel is used when ai.gemini.model is empty.
	DefaultGeminiModel = "gemini-2.5-flash"
	// DefaultOpenAIModel is used when ai.openai.model is empty.
	DefaultOpenAIModel = "gpt-4o-mini"

	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Client is the single choke point for language-model calls.
type Client interface {
	// Complete renders tmpl with vars and returns the model's text, trimmed.
	Complete(ctx context.Context, tmpl PromptTemplate, vars map[string]string) (string, error)
	// CompleteStructured renders tmpl with vars, constrains the model to shape
	// and decodes the validated response into out.
	CompleteStructured(ctx context.Context, tmpl PromptTemplate, vars map[string]string, shape *Shape, out any) error
}

// PromptTemplate is a named prompt with {placeholder} variables.
type PromptTemplate struct {
	Name   string
	System string
	User   string
}

var placeholderRe = regexp.MustCompile(`\{([a-zA-Z][a-zA-Z0-9_]*)\}`)

// Render substitutes every {placeholder} in the template. A placeholder
// without a value in vars is an error so half-rendered prompts never reach
// the model.
func (t PromptTemplate) Render(vars map[string]string) (system, user string, err error) {
	var missing []string
	replace := func(s string) string {
		return placeholderRe.ReplaceAllStringFunc(s, func(m string) string {
			key := m[1 : len(m)-1]
			v, ok := vars[key]
			if !ok {
				missing = append(missing, key)
				return m
			}
			return v
		})
	}

	system = replace(t.System)
	user = replace(t.User)
	if len(missing) > 0 {
		return "", "", &GenerationError{
			Template: t.Name,
			Provider: "template",
			Err:      fmt.Errorf("missing variables: %s", strings.Join(missing, ", ")),
		}
	}
	return system, user, nil
}

// NewClient builds the configured provider, wrapped with retry/timeout
// policy and logging.
func NewClient(ctx context.Context, cfg *config.Config) (Client, error) {
	var (
		base Client
		err  error
	)

	switch cfg.AI.Provider {
	case ProviderGemini, "":
		base, err = NewGeminiClient(ctx, GeminiOptions{
			APIKey:      cfg.AI.Gemini.APIKey,
			Model:       cfg.AI.Gemini.Model,
			MaxTokens:   cfg.AI.Gemini.MaxTokens,
			Temperature: cfg.AI.Gemini.Temperature,
		})
	case ProviderOpenAI:
		base, err = NewOpenAIClient(OpenAIOptions{
			APIKey:    cfg.AI.OpenAI.APIKey,
			Model:     cfg.AI.OpenAI.Model,
			BaseURL:   cfg.AI.OpenAI.BaseURL,
			MaxTokens: cfg.AI.OpenAI.MaxTokens,
		})
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", cfg.AI.Provider)
	}
	if err != nil {
		return nil, err
	}

	policy := Policy{
		Timeout:    config.Duration(cfg.Pipeline.LLMTimeout, 60*time.Second),
		MaxRetries: cfg.Pipeline.MaxRetries,
		RetryDelay: config.Duration(cfg.Pipeline.RetryDelay, 2*time.Second),
	}
	return NewTracedClient(WithPolicy(base, policy), cfg.AI.Provider), nil
}
