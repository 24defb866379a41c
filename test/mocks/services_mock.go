package mocks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"blogforge/internal/core"
	"blogforge/internal/llm"
	"blogforge/internal/persistence"
)

// LLMCall records one invocation of MockLLMClient
type LLMCall struct {
	Template string
	Vars     map[string]string
}

// MockLLMClient provides a mock implementation of llm.Client. Without func
// overrides it answers from Responses, keyed by template name, and runs
// structured answers through the real shape validation.
type MockLLMClient struct {
	CompleteFunc           func(ctx context.Context, tmpl llm.PromptTemplate, vars map[string]string) (string, error)
	CompleteStructuredFunc func(ctx context.Context, tmpl llm.PromptTemplate, vars map[string]string, shape *llm.Shape, out any) error
	Responses              map[string]string

	mu    sync.Mutex
	calls []LLMCall
}

func (m *MockLLMClient) record(tmpl llm.PromptTemplate, vars map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make(map[string]string, len(vars))
	for k, v := range vars {
		copied[k] = v
	}
	m.calls = append(m.calls, LLMCall{Template: tmpl.Name, Vars: copied})
}

// Calls returns the recorded invocations in order
func (m *MockLLMClient) Calls() []LLMCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]LLMCall(nil), m.calls...)
}

func (m *MockLLMClient) Complete(ctx context.Context, tmpl llm.PromptTemplate, vars map[string]string) (string, error) {
	m.record(tmpl, vars)
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, tmpl, vars)
	}
	resp, ok := m.Responses[tmpl.Name]
	if !ok {
		return "", &llm.GenerationError{Template: tmpl.Name, Provider: "mock", Err: errors.New("no canned response")}
	}
	return strings.TrimSpace(resp), nil
}

func (m *MockLLMClient) CompleteStructured(ctx context.Context, tmpl llm.PromptTemplate, vars map[string]string, shape *llm.Shape, out any) error {
	m.record(tmpl, vars)
	if m.CompleteStructuredFunc != nil {
		return m.CompleteStructuredFunc(ctx, tmpl, vars, shape, out)
	}
	resp, ok := m.Responses[tmpl.Name]
	if !ok {
		return &llm.GenerationError{Template: tmpl.Name, Provider: "mock", Err: errors.New("no canned response")}
	}
	if err := shape.Decode([]byte(resp), out); err != nil {
		var se *llm.SchemaValidationError
		if errors.As(err, &se) {
			se.Template = tmpl.Name
		}
		return err
	}
	return nil
}

// MockProjectStore provides a mock implementation of the ideation project store
type MockProjectStore struct {
	GetProjectDescriptionFunc        func(ctx context.Context, projectID string) (string, error)
	ListCategoriesWithPostTitlesFunc func(ctx context.Context, projectID string) ([]core.CategoryPosts, error)
}

func (m *MockProjectStore) GetProjectDescription(ctx context.Context, projectID string) (string, error) {
	if m.GetProjectDescriptionFunc != nil {
		return m.GetProjectDescriptionFunc(ctx, projectID)
	}
	if projectID == "" {
		return "", persistence.ErrNotFound
	}
	return "A blog about sustainable urban gardening for apartment dwellers.", nil
}

func (m *MockProjectStore) ListCategoriesWithPostTitles(ctx context.Context, projectID string) ([]core.CategoryPosts, error) {
	if m.ListCategoriesWithPostTitlesFunc != nil {
		return m.ListCategoriesWithPostTitlesFunc(ctx, projectID)
	}
	return []core.CategoryPosts{
		{Name: "Balcony Gardening", PostTitles: []string{"5 Herbs for Small Spaces"}},
	}, nil
}

// MockTrendFetcher provides a mock implementation of the ideation trend fetcher
type MockTrendFetcher struct {
	FetchPopularitySummaryFunc     func(ctx context.Context, keyword string) core.TrendSummary
	FetchRelatedQueriesSummaryFunc func(ctx context.Context, keyword string) core.TrendSummary
}

func (m *MockTrendFetcher) FetchPopularitySummary(ctx context.Context, keyword string) core.TrendSummary {
	if m.FetchPopularitySummaryFunc != nil {
		return m.FetchPopularitySummaryFunc(ctx, keyword)
	}
	return core.TrendSummary{
		Keyword: keyword,
		Summary: fmt.Sprintf("%s shows moderate search interest (average: 40.0/100).", keyword),
	}
}

func (m *MockTrendFetcher) FetchRelatedQueriesSummary(ctx context.Context, keyword string) core.TrendSummary {
	if m.FetchRelatedQueriesSummaryFunc != nil {
		return m.FetchRelatedQueriesSummaryFunc(ctx, keyword)
	}
	return core.TrendSummary{
		Keyword: keyword,
		Summary: fmt.Sprintf("Search trends for %s: Current relative interest includes %s tips (100).", keyword, keyword),
	}
}

// KeywordsJSON is a schema-valid keyword research response
const KeywordsJSON = `{
  "primaryKeywords": ["composting", "urban gardening", "worm bin", "balcony garden", "bokashi"],
  "longTailKeywords": [
    "how to compost in an apartment",
    "balcony composting for beginners",
    "odor free indoor compost bin",
    "vermicomposting on a small balcony",
    "using compost for container herbs"
  ]
}`

// ContentIdeasJSON builds a schema-valid synthesis response with n ideas
func ContentIdeasJSON(n int) string {
	ideas := make([]core.ContentIdea, n)
	for i := range ideas {
		ideas[i] = core.ContentIdea{
			Title:             fmt.Sprintf("Apartment Composting Guide %d", i+1),
			Keywords:          []string{"composting", "urban gardening", "apartment compost"},
			Description:       "A practical walkthrough of composting kitchen scraps on a balcony.",
			Audience:          "Apartment dwellers new to gardening",
			Tone:              "friendly",
			Length:            "medium",
			SearchIntent:      "informational",
			SuggestedCategory: "Balcony Gardening",
			TrendInsights:     "Interest in composting is trending upward.",
		}
	}
	b, err := json.Marshal(map[string]any{"contentIdeas": ideas})
	if err != nil {
		panic(err)
	}
	return string(b)
}
