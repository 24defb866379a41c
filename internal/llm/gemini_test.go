package llm

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/genai"
)

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func TestGeminiCompleteStructured(t *testing.T) {
	var gotCfg *genai.GenerateContentConfig
	var gotModel string
	client := newGeminiClient(GeminiOptions{Temperature: 0.4}, func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		gotModel = model
		gotCfg = cfg
		return textResponse("```json\n{\"primaryKeywords\":[\"a\",\"b\",\"c\",\"d\",\"e\"],\"longTailKeywords\":[\"1\",\"2\",\"3\",\"4\",\"5\"]}\n```"), nil
	})

	var out keywordOut
	err := client.CompleteStructured(context.Background(), PromptTemplate{Name: "keywords", System: "sys", User: "q={query}"}, map[string]string{"query": "x"}, keywordShape, &out)
	if err != nil {
		t.Fatalf("CompleteStructured() error = %v", err)
	}

	if gotModel != DefaultGeminiModel {
		t.Errorf("model = %q, want %q", gotModel, DefaultGeminiModel)
	}
	if gotCfg.ResponseMIMEType != "application/json" || gotCfg.ResponseSchema == nil {
		t.Errorf("structured config not set: %+v", gotCfg)
	}
	if gotCfg.SystemInstruction == nil {
		t.Error("system instruction not set")
	}
	if gotCfg.Temperature == nil || *gotCfg.Temperature != 0.4 {
		t.Errorf("temperature = %v, want 0.4", gotCfg.Temperature)
	}
	if len(out.PrimaryKeywords) != 5 {
		t.Errorf("PrimaryKeywords = %v", out.PrimaryKeywords)
	}
}

func TestGeminiCompleteStructuredSchemaViolation(t *testing.T) {
	client := newGeminiClient(GeminiOptions{}, func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		return textResponse(`{"primaryKeywords":["a","b","c","d","e"]}`), nil
	})

	var out keywordOut
	err := client.CompleteStructured(context.Background(), PromptTemplate{Name: "keywords", User: "x"}, nil, keywordShape, &out)

	var se *SchemaValidationError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want SchemaValidationError", err)
	}
	if se.Template != "keywords" {
		t.Errorf("Template = %q, want keywords", se.Template)
	}
	if out.PrimaryKeywords != nil {
		t.Errorf("partial output returned: %+v", out)
	}
}

func TestGeminiCompleteTrimsAndClassifiesErrors(t *testing.T) {
	client := newGeminiClient(GeminiOptions{Model: "gemini-test"}, func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		return textResponse("  🌱  \n"), nil
	})

	text, err := client.Complete(context.Background(), PromptTemplate{Name: "emoji", User: "x"}, nil)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if text != "🌱" {
		t.Errorf("text = %q, want trimmed emoji", text)
	}

	client.generate = func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		return nil, genai.APIError{Code: 429, Message: "quota"}
	}
	_, err = client.Complete(context.Background(), PromptTemplate{Name: "emoji", User: "x"}, nil)
	if !IsGeneration(err) || !IsTransient(err) {
		t.Errorf("429 error = %v, want transient GenerationError", err)
	}

	client.generate = func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		return nil, genai.APIError{Code: 401, Message: "bad key"}
	}
	_, err = client.Complete(context.Background(), PromptTemplate{Name: "emoji", User: "x"}, nil)
	if !IsGeneration(err) || IsTransient(err) {
		t.Errorf("401 error = %v, want permanent GenerationError", err)
	}
}

func TestGeminiEmptyResponse(t *testing.T) {
	client := newGeminiClient(GeminiOptions{}, func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		return textResponse("   "), nil
	})

	_, err := client.Complete(context.Background(), PromptTemplate{Name: "t", User: "x"}, nil)
	if !IsGeneration(err) {
		t.Errorf("error = %v, want GenerationError", err)
	}
}

func TestNewGeminiClientRequiresKey(t *testing.T) {
	if _, err := NewGeminiClient(context.Background(), GeminiOptions{}); err == nil {
		t.Error("expected error without API key")
	}
}
