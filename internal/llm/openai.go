package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

// OpenAIOptions configures an OpenAIClient.
type OpenAIOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	MaxTokens  int64
	HTTPClient *http.Client
}

// OpenAIClient talks to OpenAI-compatible endpoints. Free text goes through
// chat completions; structured output goes through the Responses API with a
// strict json_schema format.
type OpenAIClient struct {
	client    openai.Client
	model     string
	maxTokens int64
}

// NewOpenAIClient creates an OpenAI-backed Client.
func NewOpenAIClient(opts OpenAIOptions) (*OpenAIClient, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required. Set OPENAI_API_KEY environment variable or ai.openai.api_key in config file")
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		// Retries are owned by the Policy wrapper.
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.HTTPClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(opts.HTTPClient))
	}

	model := opts.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	return &OpenAIClient{
		client:    openai.NewClient(reqOpts...),
		model:     model,
		maxTokens: opts.MaxTokens,
	}, nil
}

// ModelName returns the OpenAI model in use.
func (c *OpenAIClient) ModelName() string { return c.model }

// Complete implements Client.
func (c *OpenAIClient) Complete(ctx context.Context, tmpl PromptTemplate, vars map[string]string) (string, error) {
	system, user, err := tmpl.Render(vars)
	if err != nil {
		return "", err
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	messages = append(messages, openai.UserMessage(user))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: messages,
	}
	if c.maxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(c.maxTokens)
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", c.wrapError(tmpl.Name, err)
	}
	if len(resp.Choices) == 0 {
		return "", &GenerationError{Template: tmpl.Name, Provider: ProviderOpenAI, Transient: true, Err: errors.New("no choices in response")}
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", &GenerationError{Template: tmpl.Name, Provider: ProviderOpenAI, Transient: true, Err: errors.New("empty response from LLM")}
	}
	return text, nil
}

// CompleteStructured implements Client.
func (c *OpenAIClient) CompleteStructured(ctx context.Context, tmpl PromptTemplate, vars map[string]string, shape *Shape, out any) error {
	system, user, err := tmpl.Render(vars)
	if err != nil {
		return err
	}

	schema, err := shape.JSONSchemaMap()
	if err != nil {
		return &GenerationError{Template: tmpl.Name, Provider: ProviderOpenAI, Err: err}
	}

	params := responses.ResponseNewParams{
		Model: c.model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(user, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Name:        shape.Name,
					Schema:      schema,
					Strict:      openai.Bool(true),
					Description: openai.String(shape.Description),
					Type:        "json_schema",
				},
			},
		},
	}
	if system != "" {
		params.Instructions = openai.String(system)
	}
	if c.maxTokens > 0 {
		params.MaxOutputTokens = openai.Int(c.maxTokens)
	}

	resp, err := c.client.Responses.New(ctx, params)
	if err != nil {
		return c.wrapError(tmpl.Name, err)
	}

	text := strings.TrimSpace(resp.OutputText())
	if text == "" {
		return &GenerationError{Template: tmpl.Name, Provider: ProviderOpenAI, Transient: true, Err: errors.New("empty response from LLM")}
	}
	return decodeShaped(tmpl.Name, text, shape, out)
}

func (c *OpenAIClient) wrapError(name string, err error) error {
	status := 0
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		status = apiErr.StatusCode
	}
	return &GenerationError{
		Template:  name,
		Provider:  ProviderOpenAI,
		Transient: classifyTransient(err, status),
		Err:       fmt.Errorf("failed to generate text: %w", err),
	}
}
