package ideation

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"blogforge/internal/core"
	"blogforge/internal/logger"
)

// CorpusSeparator joins per-keyword trend summaries into a corpus.
const CorpusSeparator = ", "

// TrendFetcher produces one trend summary per keyword and never fails;
// provider problems come back as error-marker summaries.
type TrendFetcher interface {
	FetchPopularitySummary(ctx context.Context, keyword string) core.TrendSummary
	FetchRelatedQueriesSummary(ctx context.Context, keyword string) core.TrendSummary
}

// TrendCorpora is the output of trend enrichment.
type TrendCorpora struct {
	Primary          string
	LongTail         string
	PrimaryDetails   []core.TrendSummary
	LongTailDetails  []core.TrendSummary
	UnavailableCount int
}

// Enricher fans keyword sets out to a TrendFetcher.
type Enricher struct {
	fetcher     TrendFetcher
	concurrency int
}

// NewEnricher creates an Enricher running at most concurrency lookups at once.
func NewEnricher(fetcher TrendFetcher, concurrency int) *Enricher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Enricher{fetcher: fetcher, concurrency: concurrency}
}

// Enrich looks up popularity for every primary keyword and related queries
// for every long-tail keyword, all concurrently. It waits for every lookup
// to settle and joins the results in keyword order. Only cancellation of ctx
// makes it fail.
func (e *Enricher) Enrich(ctx context.Context, keywords core.KeywordSet) (TrendCorpora, error) {
	start := time.Now()
	primary := make([]core.TrendSummary, len(keywords.PrimaryKeywords))
	longTail := make([]core.TrendSummary, len(keywords.LongTailKeywords))

	// Tasks never return errors, so gctx is only cancelled with ctx.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i, kw := range keywords.PrimaryKeywords {
		g.Go(func() error {
			primary[i] = e.fetcher.FetchPopularitySummary(gctx, kw)
			return nil
		})
	}
	for i, kw := range keywords.LongTailKeywords {
		g.Go(func() error {
			longTail[i] = e.fetcher.FetchRelatedQueriesSummary(gctx, kw)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return TrendCorpora{}, err
	}

	corpora := TrendCorpora{
		Primary:         joinSummaries(primary),
		LongTail:        joinSummaries(longTail),
		PrimaryDetails:  primary,
		LongTailDetails: longTail,
	}
	for _, s := range append(append([]core.TrendSummary(nil), primary...), longTail...) {
		if s.Error {
			corpora.UnavailableCount++
		}
	}

	logger.Debug("Trend enrichment completed",
		"primary", len(primary),
		"long_tail", len(longTail),
		"unavailable", corpora.UnavailableCount,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return corpora, nil
}

func joinSummaries(summaries []core.TrendSummary) string {
	parts := make([]string, len(summaries))
	for i, s := range summaries {
		parts[i] = s.String()
	}
	return strings.Join(parts, CorpusSeparator)
}
