package server

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"blogforge/internal/persistence"
)

type contextKey string

const userIDKey contextKey = "user_id"

// UserID returns the authenticated user id stored on the request context.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// requireAPIKey resolves the caller from an "Authorization: Bearer <key>" or
// "X-API-Key" header. With no keys configured every request passes through
// anonymously.
func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(s.apiKeys) == 0 {
			next.ServeHTTP(w, r)
			return
		}

		key := apiKeyFromRequest(r)
		if key == "" {
			s.respondError(w, http.StatusUnauthorized, "Authorization header missing or malformed")
			return
		}

		userID, ok := s.lookupKey(key)
		if !ok {
			s.log.Warn("Invalid API key attempt", "remote_addr", r.RemoteAddr)
			s.respondError(w, http.StatusUnauthorized, "Invalid API key")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) lookupKey(key string) (string, bool) {
	for candidate, userID := range s.apiKeys {
		if subtle.ConstantTimeCompare([]byte(candidate), []byte(key)) == 1 {
			return userID, true
		}
	}
	return "", false
}

func apiKeyFromRequest(r *http.Request) string {
	if key := strings.TrimSpace(r.Header.Get("X-API-Key")); key != "" {
		return key
	}
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

// rateLimitKey buckets authenticated callers by user and everyone else by IP.
func rateLimitKey(r *http.Request) (string, error) {
	if userID := UserID(r.Context()); userID != "" {
		return "user:" + userID, nil
	}
	return httprate.KeyByIP(r)
}

// requireProject rejects requests for projects that do not exist or belong to
// another user.
func (s *Server) requireProject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := s.ownedProject(r, chi.URLParam(r, "projectId")); err != nil {
			s.respondFailure(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ownedProject loads a project, hiding projects of other users behind
// persistence.ErrNotFound.
func (s *Server) ownedProject(r *http.Request, projectID string) error {
	project, err := s.store.GetProject(r.Context(), projectID)
	if err != nil {
		return err
	}
	if userID := UserID(r.Context()); userID != "" && project.UserID != "" && project.UserID != userID {
		return persistence.ErrNotFound
	}
	return nil
}

// requestLogger logs one line per request through the application logger
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.log.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// securityHeaders adds security headers to all responses
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Prevent MIME type sniffing
		w.Header().Set("X-Content-Type-Options", "nosniff")

		// Prevent clickjacking
		w.Header().Set("X-Frame-Options", "DENY")

		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cache-Control", "no-store")

		next.ServeHTTP(w, r)
	})
}
