package server

import (
	"fmt"
	"net/http"
	"strings"

	"blogforge/internal/core"
)

type contentIdeasRequest struct {
	ProjectID string `json:"projectId"`
	Query     string `json:"query"`
}

type contentIdeasResponse struct {
	RequestID    string             `json:"requestId"`
	ContentIdeas []core.ContentIdea `json:"contentIdeas"`
	Keywords     core.KeywordSet    `json:"keywords"`
}

type descriptionRequest struct {
	Description string `json:"description"`
}

// generateContentRequest is a content idea plus where to publish the draft.
// ID names the saved idea the draft consumes, if any.
type generateContentRequest struct {
	core.ContentIdea
	ID            string `json:"id"`
	ProjectID     string `json:"projectId"`
	Category      string `json:"category"`
	IsNewCategory bool   `json:"isNewCategory"`
}

type generatedContent struct {
	Post                 *core.Post `json:"post"`
	HTML                 string     `json:"html"`
	WordCount            int        `json:"wordCount"`
	ReadingMinutes       int        `json:"readingMinutes"`
	ThumbnailImagePrompt string     `json:"thumbnailImagePrompt"`
}

// handleContentIdeas handles POST /api/v1/ai/content-ideas
func (s *Server) handleContentIdeas(w http.ResponseWriter, r *http.Request) {
	var req contentIdeasRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondFailure(w, r, err)
		return
	}
	if strings.TrimSpace(req.ProjectID) == "" || strings.TrimSpace(req.Query) == "" {
		s.respondError(w, http.StatusBadRequest, "query and projectId are required")
		return
	}
	if err := s.ownedProject(r, req.ProjectID); err != nil {
		s.respondFailure(w, r, err)
		return
	}

	result, err := s.pipeline.Run(r.Context(), req.ProjectID, req.Query)
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}

	s.respondOK(w, http.StatusOK, "Content ideas generated successfully", contentIdeasResponse{
		RequestID:    result.RequestID,
		ContentIdeas: result.Ideas,
		Keywords:     result.Keywords,
	})
}

// handleEnhanceDescription handles POST /api/v1/ai/enhance-project-description
func (s *Server) handleEnhanceDescription(w http.ResponseWriter, r *http.Request) {
	var req descriptionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondFailure(w, r, err)
		return
	}

	enhanced, err := s.author.EnhanceDescription(r.Context(), req.Description)
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}

	s.respondOK(w, http.StatusOK, "Project description enhanced successfully", map[string]string{
		"enhancedDescription": enhanced,
	})
}

// handleCategorySuggestions handles POST /api/v1/ai/category-suggestions
func (s *Server) handleCategorySuggestions(w http.ResponseWriter, r *http.Request) {
	var req descriptionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondFailure(w, r, err)
		return
	}

	categories, err := s.author.SuggestCategories(r.Context(), req.Description)
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}

	s.respondOK(w, http.StatusOK, "Categories generated successfully", map[string]any{
		"categories": categories,
	})
}

// handleGenerateContent handles POST /api/v1/ai/generate-content. It drafts a
// post for the idea, publishes it under the requested category and removes
// the saved idea it came from.
func (s *Server) handleGenerateContent(w http.ResponseWriter, r *http.Request) {
	var req generateContentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondFailure(w, r, err)
		return
	}
	if strings.TrimSpace(req.ProjectID) == "" {
		s.respondError(w, http.StatusBadRequest, "projectId is required")
		return
	}

	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = strings.TrimSpace(req.SuggestedCategory)
	}
	if category == "" {
		s.respondError(w, http.StatusBadRequest, "category is required")
		return
	}

	ctx := r.Context()
	if err := s.ownedProject(r, req.ProjectID); err != nil {
		s.respondFailure(w, r, err)
		return
	}
	if !req.IsNewCategory {
		if _, err := s.store.FindCategoryByName(ctx, req.ProjectID, category); err != nil {
			s.respondFailure(w, r, fmt.Errorf("category %q: %w", category, err))
			return
		}
	}

	draft, err := s.author.DraftPost(ctx, req.ContentIdea)
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}

	post := &core.Post{
		ProjectID:       req.ProjectID,
		Title:           req.Title,
		Content:         draft.Content,
		MetaDescription: draft.MetaDescription,
		Keywords:        req.Keywords,
	}
	if err := s.store.PublishPost(ctx, post, category, req.ID); err != nil {
		s.respondFailure(w, r, err)
		return
	}

	s.log.Info("Post published",
		"project_id", req.ProjectID,
		"post_id", post.ID,
		"category", category,
		"consumed_idea", req.ID,
		"words", draft.WordCount,
	)

	s.respondOK(w, http.StatusCreated, "Content generated successfully", generatedContent{
		Post:                 post,
		HTML:                 draft.HTML,
		WordCount:            draft.WordCount,
		ReadingMinutes:       draft.ReadingMinutes,
		ThumbnailImagePrompt: draft.ThumbnailImagePrompt,
	})
}
