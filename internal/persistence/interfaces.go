// Package persistence stores projects, their categories and posts, and the
// content ideas users save for later.
package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"blogforge/internal/core"
)

var (
	// ErrNotFound is returned when a project, category or idea does not exist.
	ErrNotFound = core.ErrNotFound

	// ErrDuplicateTitle is returned when a project already has a saved idea with the same title.
	ErrDuplicateTitle = errors.New("research content idea with this title already exists")

	// ErrInvalidIdea is returned when a saved idea is missing a required field.
	ErrInvalidIdea = errors.New("invalid content idea")
)

// ProjectRepository handles project persistence operations
type ProjectRepository interface {
	// CreateProject inserts a new project
	CreateProject(ctx context.Context, project *core.Project) error

	// GetProject retrieves a project by ID
	GetProject(ctx context.Context, id string) (*core.Project, error)

	// ListProjects retrieves the projects owned by a user, newest first
	ListProjects(ctx context.Context, userID string) ([]core.Project, error)

	// GetProjectDescription returns the free-text description of a project
	GetProjectDescription(ctx context.Context, projectID string) (string, error)

	// ListCategoriesWithPostTitles returns the project's categories ordered by
	// name, each with its post titles in creation order
	ListCategoriesWithPostTitles(ctx context.Context, projectID string) ([]core.CategoryPosts, error)
}

// ContentRepository handles category and post persistence operations
type ContentRepository interface {
	// CreateCategory inserts a new category
	CreateCategory(ctx context.Context, category *core.Category) error

	// FindCategoryByName retrieves a category of a project by name
	FindCategoryByName(ctx context.Context, projectID, name string) (*core.Category, error)

	// CreatePost inserts a new post
	CreatePost(ctx context.Context, post *core.Post) error

	// PublishPost stores a drafted post under categoryName, creating the
	// category when it does not exist yet, and removes the saved idea it was
	// drafted from when consumedIdeaID is set
	PublishPost(ctx context.Context, post *core.Post, categoryName, consumedIdeaID string) error
}

// IdeaRepository handles saved research content idea operations
type IdeaRepository interface {
	// List retrieves the saved ideas of a project, newest first
	List(ctx context.Context, projectID string) ([]core.SavedIdea, error)

	// Get retrieves a saved idea by project and ID
	Get(ctx context.Context, projectID, id string) (*core.SavedIdea, error)

	// Create inserts a new saved idea, rejecting duplicate titles within a project
	Create(ctx context.Context, idea *core.SavedIdea) error

	// Update replaces the fields of an existing saved idea
	Update(ctx context.Context, idea *core.SavedIdea) error

	// Delete removes a saved idea
	Delete(ctx context.Context, projectID, id string) error
}

// Store aggregates every repository behind one handle.
type Store interface {
	ProjectRepository
	ContentRepository

	// Ideas returns the saved idea repository
	Ideas() IdeaRepository

	// Migrate brings the schema up to date
	Migrate(ctx context.Context) error

	// Ping verifies the connection
	Ping(ctx context.Context) error

	// Close releases the connection
	Close() error
}

// ValidateIdea checks that every field of a content idea is present.
func ValidateIdea(idea core.ContentIdea) error {
	var missing []string
	check := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	check("title", idea.Title)
	check("description", idea.Description)
	check("audience", idea.Audience)
	check("tone", idea.Tone)
	check("length", idea.Length)
	check("searchIntent", idea.SearchIntent)
	check("suggestedCategory", idea.SuggestedCategory)
	check("trendInsights", idea.TrendInsights)
	if len(idea.Keywords) == 0 {
		missing = append(missing, "keywords")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidIdea, strings.Join(missing, ", "))
	}
	return nil
}
