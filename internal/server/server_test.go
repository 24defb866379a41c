package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogforge/internal/authoring"
	"blogforge/internal/config"
	"blogforge/internal/core"
	"blogforge/internal/ideation"
	"blogforge/internal/llm"
	"blogforge/internal/persistence"
	"blogforge/test/mocks"
)

const draftJSON = `{
	"title": "Composting on a Balcony",
	"content": "Start small.\n\n## Pick a bin\n\nA sealed bin keeps smells in.",
	"metaDescription": "A short guide to balcony composting.",
	"keywords": ["composting"],
	"thumbnailImagePrompt": "A compost bin on a sunny balcony"
}`

type fixture struct {
	server    *Server
	store     *persistence.MemoryStore
	client    *mocks.MockLLMClient
	projectID string
	otherID   string
}

func newFixture(t *testing.T, apiKeys ...string) *fixture {
	t.Helper()
	ctx := context.Background()

	store := persistence.NewMemoryStore()
	project := &core.Project{UserID: "alice", Name: "Urban Garden", Description: "A blog about urban gardening."}
	require.NoError(t, store.CreateProject(ctx, project))
	require.NoError(t, store.CreateCategory(ctx, &core.Category{ProjectID: project.ID, Name: "Balcony Gardening"}))

	other := &core.Project{UserID: "bob", Name: "Sourdough", Description: "A blog about bread."}
	require.NoError(t, store.CreateProject(ctx, other))

	client := &mocks.MockLLMClient{Responses: map[string]string{
		ideation.KeywordResearchPrompt.Name:     mocks.KeywordsJSON,
		ideation.SynthesisPrompt.Name:           mocks.ContentIdeasJSON(6),
		authoring.EnhanceDescriptionPrompt.Name: "An expanded description.",
		authoring.BlogPostPrompt.Name:           draftJSON,
		authoring.CategoriesPrompt.Name: `{"categories":[
			{"category":"Balcony Gardening","isRequiredNow":true},
			{"category":"Composting","isRequiredNow":true},
			{"category":"Indoor Herbs","isRequiredNow":false},
			{"category":"Tools","isRequiredNow":false}
		]}`,
	}}

	pipeline := ideation.NewPipeline(store, client, &mocks.MockTrendFetcher{}, 4)
	srv := New(store, pipeline, authoring.NewAuthor(client), config.Server{
		Host:    "127.0.0.1",
		Port:    0,
		APIKeys: apiKeys,
	})

	return &fixture{server: srv, store: store, client: client, projectID: project.ID, otherID: other.ID}
}

func (f *fixture) do(t *testing.T, method, path string, body any, headers ...string) (*httptest.ResponseRecorder, Response) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	f.server.Router().ServeHTTP(rec, req)

	var resp Response
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func fullIdea(title string) core.ContentIdea {
	return core.ContentIdea{
		Title:             title,
		Keywords:          []string{"composting", "balcony"},
		Description:       "How to compost in a small space.",
		Audience:          "Apartment gardeners",
		Tone:              "friendly",
		Length:            "1000-1500 words",
		SearchIntent:      "informational",
		SuggestedCategory: "Balcony Gardening",
		TrendInsights:     "Composting interest is rising.",
	}
}

func TestHealth(t *testing.T) {
	f := newFixture(t, "alice:secret")

	rec, _ := f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":"ok"`)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestAuthentication(t *testing.T) {
	f := newFixture(t, "alice:secret")
	path := "/api/projects/" + f.projectID + "/research-content-ideas"

	tests := []struct {
		name    string
		headers []string
		want    int
	}{
		{"missing", nil, http.StatusUnauthorized},
		{"malformed", []string{"Authorization", "Token secret"}, http.StatusUnauthorized},
		{"wrong key", []string{"Authorization", "Bearer nope"}, http.StatusUnauthorized},
		{"bearer", []string{"Authorization", "Bearer secret"}, http.StatusOK},
		{"x-api-key", []string{"X-API-Key", "secret"}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := f.do(t, http.MethodGet, path, nil, tt.headers...)
			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, tt.want == http.StatusOK, resp.Success)
		})
	}
}

func TestUserIDInContext(t *testing.T) {
	f := newFixture(t, "alice:secret")

	var got string
	handler := f.server.requireAPIKey(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = UserID(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-API-Key", "secret")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "alice", got)
}

func TestProjectOwnership(t *testing.T) {
	f := newFixture(t, "alice:secret")

	rec, resp := f.do(t, http.MethodGet, "/api/projects/"+f.otherID+"/research-content-ideas", nil, "X-API-Key", "secret")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, resp.Success)

	rec, _ = f.do(t, http.MethodGet, "/api/projects/missing/research-content-ideas", nil, "X-API-Key", "secret")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContentIdeas(t *testing.T) {
	f := newFixture(t)

	rec, resp := f.do(t, http.MethodPost, "/api/v1/ai/content-ideas", map[string]string{
		"projectId": f.projectID,
		"query":     "composting",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, resp.Success)
	assert.Equal(t, "Content ideas generated successfully", resp.Message)

	data := resp.Data.(map[string]any)
	assert.Len(t, data["contentIdeas"], 6)
	assert.NotEmpty(t, data["requestId"])
}

func TestContentIdeasErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   any
		client func(c *mocks.MockLLMClient)
		want   int
	}{
		{
			name: "missing project",
			body: map[string]string{"query": "composting"},
			want: http.StatusBadRequest,
		},
		{
			name: "missing query",
			body: map[string]string{"projectId": "p1"},
			want: http.StatusBadRequest,
		},
		{
			name: "blank query",
			body: map[string]string{"projectId": "p1", "query": "   "},
			want: http.StatusBadRequest,
		},
		{
			name: "unknown project",
			body: map[string]string{"projectId": "missing", "query": "composting"},
			want: http.StatusNotFound,
		},
		{
			name: "malformed model output",
			body: nil,
			client: func(c *mocks.MockLLMClient) {
				c.Responses[ideation.KeywordResearchPrompt.Name] = `{"primaryKeywords":[]}`
			},
			want: http.StatusBadGateway,
		},
		{
			name: "provider failure",
			body: nil,
			client: func(c *mocks.MockLLMClient) {
				c.CompleteStructuredFunc = func(ctx context.Context, tmpl llm.PromptTemplate, vars map[string]string, shape *llm.Shape, out any) error {
					return &llm.GenerationError{Template: tmpl.Name, Provider: "mock", Err: errors.New("503")}
				}
			},
			want: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.client != nil {
				tt.client(f.client)
			}
			body := tt.body
			if body == nil {
				body = map[string]string{"projectId": f.projectID, "query": "composting"}
			}

			rec, resp := f.do(t, http.MethodPost, "/api/v1/ai/content-ideas", body)
			assert.Equal(t, tt.want, rec.Code)
			assert.False(t, resp.Success)
			assert.Nil(t, resp.Data)
			if tt.want == http.StatusBadRequest {
				assert.Equal(t, "query and projectId are required", resp.Message)
				assert.Empty(t, f.client.Calls())
			}
		})
	}
}

func TestInvalidJSON(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ai/content-ideas", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	f.server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid JSON body")
}

func TestEnhanceAndCategories(t *testing.T) {
	f := newFixture(t)
	long := strings.Repeat("gardening ", authoring.MinDescriptionWords)

	rec, resp := f.do(t, http.MethodPost, "/api/v1/ai/enhance-project-description", map[string]string{"description": long})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "An expanded description.", resp.Data.(map[string]any)["enhancedDescription"])

	rec, resp = f.do(t, http.MethodPost, "/api/v1/ai/category-suggestions", map[string]string{"description": long})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, resp.Data.(map[string]any)["categories"], 4)

	rec, resp = f.do(t, http.MethodPost, "/api/v1/ai/category-suggestions", map[string]string{"description": "too short"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp.Message, "at least 30 words")
}

func TestResearchContentIdeasCRUD(t *testing.T) {
	f := newFixture(t)
	base := "/api/projects/" + f.projectID + "/research-content-ideas"

	rec, resp := f.do(t, http.MethodPost, base, fullIdea("Composting on a Balcony"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := resp.Data.(map[string]any)["id"].(string)
	require.NotEmpty(t, id)

	rec, resp = f.do(t, http.MethodPost, base, fullIdea("Composting on a Balcony"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, persistence.ErrDuplicateTitle.Error(), resp.Message)

	incomplete := fullIdea("Worm Bins 101")
	incomplete.TrendInsights = ""
	rec, _ = f.do(t, http.MethodPost, base, incomplete)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	updated := fullIdea("Composting on a Small Balcony")
	rec, resp = f.do(t, http.MethodPut, base+"/"+id, updated)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Composting on a Small Balcony", resp.Data.(map[string]any)["title"])

	rec, resp = f.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, resp.Data, 1)

	rec, _ = f.do(t, http.MethodDelete, base+"/"+id, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = f.do(t, http.MethodDelete, base+"/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGenerateContent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	saved := &core.SavedIdea{ProjectID: f.projectID, ContentIdea: fullIdea("Composting on a Balcony")}
	require.NoError(t, f.store.Ideas().Create(ctx, saved))

	body := map[string]any{
		"title":         saved.Title,
		"description":   saved.Description,
		"keywords":      saved.Keywords,
		"audience":      saved.Audience,
		"tone":          saved.Tone,
		"length":        saved.Length,
		"id":            saved.ID,
		"projectId":     f.projectID,
		"category":      "Urban Composting",
		"isNewCategory": true,
	}
	rec, resp := f.do(t, http.MethodPost, "/api/v1/ai/generate-content", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]any)
	assert.Contains(t, data["html"], "<h2")
	assert.EqualValues(t, 11, data["wordCount"])

	categories, err := f.store.ListCategoriesWithPostTitles(ctx, f.projectID)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Urban Composting", categories[1].Name)
	assert.Equal(t, []string{"Composting on a Balcony"}, categories[1].PostTitles)

	_, err = f.store.Ideas().Get(ctx, f.projectID, saved.ID)
	assert.ErrorIs(t, err, persistence.ErrNotFound)
}

func TestGenerateContentUnknownCategory(t *testing.T) {
	f := newFixture(t)

	body := fullIdea("Composting on a Balcony")
	req := generateContentRequest{ContentIdea: body, ProjectID: f.projectID, Category: "Nope"}
	rec, _ := f.do(t, http.MethodPost, "/api/v1/ai/generate-content", req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, f.client.Calls(), "no draft should be written for an unknown category")
}

func TestRateLimit(t *testing.T) {
	f := newFixture(t)
	f.server = New(f.store, nil, nil, config.Server{RateLimit: 2})
	path := "/api/projects/" + f.projectID + "/research-content-ideas"

	for i := 0; i < 2; i++ {
		rec, _ := f.do(t, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec, resp := f.do(t, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.False(t, resp.Success)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ideation.ErrInvalidInput, http.StatusBadRequest},
		{authoring.ErrInvalidInput, http.StatusBadRequest},
		{persistence.ErrInvalidIdea, http.StatusBadRequest},
		{ideation.ErrProjectNotFound, http.StatusNotFound},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{&llm.SchemaValidationError{Template: "x"}, http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), "statusFor(%v)", tt.err)
	}
}
