package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiOptions configures a GeminiClient.
type GeminiOptions struct {
	APIKey      string
	Model       string
	MaxTokens   int32
	Temperature float32
	BaseURL     string // optional, for proxies and tests
}

type generateFunc func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// GeminiClient talks to Google Gemini through the genai SDK. Structured
// calls use Gemini's native response schema.
type GeminiClient struct {
	modelName   string
	maxTokens   int32
	temperature float32
	generate    generateFunc
}

// NewGeminiClient creates a Gemini-backed Client.
func NewGeminiClient(ctx context.Context, opts GeminiOptions) (*GeminiClient, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required. Set GEMINI_API_KEY environment variable or ai.gemini.api_key in config file")
	}

	cc := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	gClient, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := newGeminiClient(opts, gClient.Models.GenerateContent)
	return c, nil
}

func newGeminiClient(opts GeminiOptions, generate generateFunc) *GeminiClient {
	model := opts.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiClient{
		modelName:   model,
		maxTokens:   opts.MaxTokens,
		temperature: opts.Temperature,
		generate:    generate,
	}
}

// ModelName returns the Gemini model in use.
func (c *GeminiClient) ModelName() string { return c.modelName }

// Complete implements Client.
func (c *GeminiClient) Complete(ctx context.Context, tmpl PromptTemplate, vars map[string]string) (string, error) {
	system, user, err := tmpl.Render(vars)
	if err != nil {
		return "", err
	}
	return c.generateText(ctx, tmpl.Name, system, user, nil)
}

// CompleteStructured implements Client.
func (c *GeminiClient) CompleteStructured(ctx context.Context, tmpl PromptTemplate, vars map[string]string, shape *Shape, out any) error {
	system, user, err := tmpl.Render(vars)
	if err != nil {
		return err
	}

	text, err := c.generateText(ctx, tmpl.Name, system, user, shape.GenaiSchema())
	if err != nil {
		return err
	}
	return decodeShaped(tmpl.Name, text, shape, out)
}

func (c *GeminiClient) generateText(ctx context.Context, name, system, user string, schema *genai.Schema) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(user, genai.RoleUser)}

	cfg := &genai.GenerateContentConfig{}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if c.maxTokens > 0 {
		cfg.MaxOutputTokens = c.maxTokens
	}
	if c.temperature > 0 {
		temp := c.temperature
		cfg.Temperature = &temp
	}
	if schema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = schema
	}

	resp, err := c.generate(ctx, c.modelName, contents, cfg)
	if err != nil {
		status := 0
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			status = apiErr.Code
		}
		return "", &GenerationError{
			Template:  name,
			Provider:  ProviderGemini,
			Transient: classifyTransient(err, status),
			Err:       fmt.Errorf("failed to generate text: %w", err),
		}
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", &GenerationError{Template: name, Provider: ProviderGemini, Transient: true, Err: errors.New("empty response from LLM")}
	}
	return text, nil
}

// decodeShaped extracts the JSON document from text and validates it.
func decodeShaped(name, text string, shape *Shape, out any) error {
	err := shape.Decode(extractJSON(text), out)
	var se *SchemaValidationError
	if errors.As(err, &se) {
		se.Template = name
	}
	return err
}
