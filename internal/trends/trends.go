package trends

import (
	"context"
	"fmt"
	"time"

	"blogforge/internal/config"
	"blogforge/internal/core"
	"blogforge/internal/logger"
)

// TimelinePoint is one sample of an interest-over-time series (scale 0-100).
type TimelinePoint struct {
	Time          time.Time `json:"time"`           // Start of the sampled period
	FormattedTime string    `json:"formatted_time"` // Provider label, e.g. "Jan 1 – 7, 2023"
	Value         int       `json:"value"`          // Relative interest, 0-100
}

// RankedKeyword is one related query with its score.
type RankedKeyword struct {
	Query          string `json:"query"`
	Value          int    `json:"value"`
	FormattedValue string `json:"formatted_value"` // e.g. "100", "+250%", "Breakout"
}

// RankedList is one ranking of related queries. Providers return the "top"
// list first and the "rising" list second.
type RankedList struct {
	Keywords []RankedKeyword `json:"keywords"`
}

// Window is the historical range used for interest-over-time lookups.
type Window struct {
	Start time.Time
	End   time.Time
}

// String renders the window in the "YYYY-MM-DD YYYY-MM-DD" form trend APIs accept.
func (w Window) String() string {
	return w.Start.Format(time.DateOnly) + " " + w.End.Format(time.DateOnly)
}

// DefaultWindow is the fixed one-year window used when none is configured.
var DefaultWindow = Window{
	Start: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
	End:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
}

// Provider is an external search-trends source.
type Provider interface {
	Name() string
	InterestOverTime(ctx context.Context, keyword string, window Window) ([]TimelinePoint, error)
	RelatedQueries(ctx context.Context, keyword string) ([]RankedList, error)
}

// ProviderType names a Provider implementation.
type ProviderType string

const (
	ProviderGoogleTrends ProviderType = "googletrends"
	ProviderSerpAPI      ProviderType = "serpapi"
	ProviderMock         ProviderType = "mock"
)

// NewProvider builds the provider named by cfg.Provider.
func NewProvider(cfg config.Trends) (Provider, error) {
	switch ProviderType(cfg.Provider) {
	case ProviderGoogleTrends, "":
		return NewGoogleTrendsProvider(cfg.Geo, cfg.Language), nil
	case ProviderSerpAPI:
		if cfg.SerpAPI.APIKey == "" {
			return nil, fmt.Errorf("serpapi: %w", ErrMissingAPIKey)
		}
		return NewSerpAPIProvider(cfg.SerpAPI.APIKey, cfg.Geo, cfg.Language), nil
	case ProviderMock:
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, cfg.Provider)
	}
}

// Fetcher turns single keywords into trend sentences. It never returns an
// error: provider failures and timeouts become error-marker summaries.
type Fetcher struct {
	provider Provider
	window   Window
	timeout  time.Duration
}

// NewFetcher creates a Fetcher. A zero timeout disables the per-call deadline.
func NewFetcher(provider Provider, window Window, timeout time.Duration) *Fetcher {
	if window.Start.IsZero() || window.End.IsZero() {
		window = DefaultWindow
	}
	return &Fetcher{provider: provider, window: window, timeout: timeout}
}

// NewFetcherFromConfig wires a Fetcher from trends and pipeline configuration.
func NewFetcherFromConfig(cfg *config.Config) (*Fetcher, error) {
	provider, err := NewProvider(cfg.Trends)
	if err != nil {
		return nil, err
	}
	start, end := cfg.Trends.Window()
	return NewFetcher(provider, Window{Start: start, End: end}, config.Duration(cfg.Pipeline.TrendsTimeout, 20*time.Second)), nil
}

// ProviderName returns the name of the underlying provider.
func (f *Fetcher) ProviderName() string { return f.provider.Name() }

// FetchPopularitySummary summarizes a keyword's interest over the fixed window.
func (f *Fetcher) FetchPopularitySummary(ctx context.Context, keyword string) core.TrendSummary {
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()

	points, err := f.provider.InterestOverTime(ctx, keyword, f.window)
	if err != nil {
		logger.Warn("Trend popularity lookup failed", "provider", f.provider.Name(), "keyword", keyword, "error", err.Error())
		return core.NewTrendError(keyword, PopularityUnavailableMessage)
	}
	return core.TrendSummary{Keyword: keyword, Summary: SummarizeKeywordTrends(keyword, points)}
}

// FetchRelatedQueriesSummary summarizes the related and rising queries for a keyword.
func (f *Fetcher) FetchRelatedQueriesSummary(ctx context.Context, keyword string) core.TrendSummary {
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()

	lists, err := f.provider.RelatedQueries(ctx, keyword)
	if err != nil {
		logger.Warn("Related queries lookup failed", "provider", f.provider.Name(), "keyword", keyword, "error", err.Error())
		return core.NewTrendError(keyword, RelatedQueriesUnavailableMessage)
	}
	return core.TrendSummary{Keyword: keyword, Summary: SummarizeRelatedQueries(keyword, lists)}
}

func (f *Fetcher) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if f.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, f.timeout)
}
