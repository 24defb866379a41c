package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"blogforge/internal/core"
)

// handleListIdeas handles GET /api/projects/{projectId}/research-content-ideas
func (s *Server) handleListIdeas(w http.ResponseWriter, r *http.Request) {
	ideas, err := s.store.Ideas().List(r.Context(), chi.URLParam(r, "projectId"))
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}
	s.respondOK(w, http.StatusOK, "", ideas)
}

// handleCreateIdea handles POST /api/projects/{projectId}/research-content-ideas
func (s *Server) handleCreateIdea(w http.ResponseWriter, r *http.Request) {
	var idea core.ContentIdea
	if err := decodeJSON(w, r, &idea); err != nil {
		s.respondFailure(w, r, err)
		return
	}

	saved := &core.SavedIdea{ContentIdea: idea, ProjectID: chi.URLParam(r, "projectId")}
	if err := s.store.Ideas().Create(r.Context(), saved); err != nil {
		s.respondFailure(w, r, err)
		return
	}
	s.respondOK(w, http.StatusCreated, "Research content idea added successfully", saved)
}

// handleUpdateIdea handles PUT /api/projects/{projectId}/research-content-ideas/{ideaId}
func (s *Server) handleUpdateIdea(w http.ResponseWriter, r *http.Request) {
	var idea core.ContentIdea
	if err := decodeJSON(w, r, &idea); err != nil {
		s.respondFailure(w, r, err)
		return
	}

	saved := &core.SavedIdea{
		ContentIdea: idea,
		ID:          chi.URLParam(r, "ideaId"),
		ProjectID:   chi.URLParam(r, "projectId"),
	}
	if err := s.store.Ideas().Update(r.Context(), saved); err != nil {
		s.respondFailure(w, r, err)
		return
	}
	s.respondOK(w, http.StatusOK, "Research content idea updated successfully", saved)
}

// handleDeleteIdea handles DELETE /api/projects/{projectId}/research-content-ideas/{ideaId}
func (s *Server) handleDeleteIdea(w http.ResponseWriter, r *http.Request) {
	ideaID := chi.URLParam(r, "ideaId")
	if err := s.store.Ideas().Delete(r.Context(), chi.URLParam(r, "projectId"), ideaID); err != nil {
		s.respondFailure(w, r, err)
		return
	}
	s.respondOK(w, http.StatusOK, "Research content idea deleted successfully", map[string]string{"id": ideaID})
}
