// Package ideation turns a project snapshot and a user query into
// trend-grounded blog content ideas.
//
// A run moves through four stages:
//
//  1. BuildContext renders the project description and existing posts.
//  2. ResearchKeywords expands the query into primary and long-tail keywords.
//  3. Enricher.Enrich fetches a trend summary per keyword, concurrently.
//  4. Synthesize turns the context and trend corpora into content ideas.
//
// Keyword research and synthesis failures abort the run. Trend failures
// never do; they are folded into the corpora as error markers.
package ideation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"blogforge/internal/core"
	"blogforge/internal/llm"
	"blogforge/internal/logger"
)

// ProjectStore is the read side of project storage the pipeline needs.
// Unknown projects are reported by wrapping core.ErrNotFound.
type ProjectStore interface {
	GetProjectDescription(ctx context.Context, projectID string) (string, error)
	ListCategoriesWithPostTitles(ctx context.Context, projectID string) ([]core.CategoryPosts, error)
}

// Pipeline orchestrates a full ideation run.
type Pipeline struct {
	store    ProjectStore
	client   llm.Client
	enricher *Enricher
}

// NewPipeline wires a pipeline from its collaborators. concurrency bounds
// the number of in-flight trend lookups.
func NewPipeline(store ProjectStore, client llm.Client, fetcher TrendFetcher, concurrency int) *Pipeline {
	return &Pipeline{
		store:    store,
		client:   client,
		enricher: NewEnricher(fetcher, concurrency),
	}
}

// GenerateContentIdeas runs the pipeline and returns only the ideas. On any
// fatal error the returned slice is nil.
func (p *Pipeline) GenerateContentIdeas(ctx context.Context, projectID, query string) ([]core.ContentIdea, error) {
	result, err := p.Run(ctx, projectID, query)
	if err != nil {
		return nil, err
	}
	return result.Ideas, nil
}

// Run executes the pipeline and returns the ideas together with the
// intermediate artifacts of the run.
func (p *Pipeline) Run(ctx context.Context, projectID, query string) (*core.IdeationResult, error) {
	start := time.Now()
	requestID := uuid.NewString()
	log := logger.Get().With("request_id", requestID, "project_id", projectID)

	if strings.TrimSpace(projectID) == "" {
		return nil, fmt.Errorf("%w: project id is required", ErrInvalidInput)
	}

	projectCtx, err := p.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	contextText := BuildContext(projectCtx.Description, projectCtx.Categories)
	log.Debug("Project context built",
		"categories", len(projectCtx.Categories),
		"posts", projectCtx.PostCount(),
	)

	keywords, err := ResearchKeywords(ctx, p.client, contextText, query)
	if err != nil {
		log.Error("Ideation aborted at keyword research", "error", err)
		return nil, err
	}

	corpora, err := p.enricher.Enrich(ctx, keywords)
	if err != nil {
		log.Error("Ideation aborted during trend enrichment", "error", err)
		return nil, fmt.Errorf("trend enrichment cancelled: %w", err)
	}
	if corpora.UnavailableCount > 0 {
		log.Warn("Continuing with degraded trend context", "unavailable", corpora.UnavailableCount)
	}

	ideas, err := Synthesize(ctx, p.client, contextText, corpora.Primary, corpora.LongTail, query)
	if err != nil {
		log.Error("Ideation aborted at synthesis", "error", err)
		return nil, err
	}

	result := &core.IdeationResult{
		RequestID:      requestID,
		Ideas:          ideas,
		Keywords:       keywords,
		PrimaryCorpus:  corpora.Primary,
		LongTailCorpus: corpora.LongTail,
		DegradedTrends: corpora.UnavailableCount,
		Duration:       time.Since(start),
		PostCount:      projectCtx.PostCount(),
		CategoryCount:  len(projectCtx.Categories),
	}
	log.Info("Content ideas generated",
		"ideas", len(ideas),
		"degraded_trends", result.DegradedTrends,
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

func (p *Pipeline) loadProject(ctx context.Context, projectID string) (core.ProjectContext, error) {
	description, err := p.store.GetProjectDescription(ctx, projectID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.ProjectContext{}, fmt.Errorf("%w: %s", ErrProjectNotFound, projectID)
		}
		return core.ProjectContext{}, fmt.Errorf("failed to load project: %w", err)
	}
	if strings.TrimSpace(description) == "" {
		return core.ProjectContext{}, fmt.Errorf("%w: project %s has no description", ErrInvalidInput, projectID)
	}

	categories, err := p.store.ListCategoriesWithPostTitles(ctx, projectID)
	if err != nil {
		return core.ProjectContext{}, fmt.Errorf("failed to load categories: %w", err)
	}
	return core.ProjectContext{Description: description, Categories: categories}, nil
}
