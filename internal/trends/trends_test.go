package trends

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"blogforge/internal/config"
)

func TestFetchPopularitySummary(t *testing.T) {
	mock := NewMockProvider()
	mock.SetTimeline("composting", 60, 60, 60, 80)
	fetcher := NewFetcher(mock, DefaultWindow, time.Second)

	got := fetcher.FetchPopularitySummary(context.Background(), "composting")
	if got.Error {
		t.Fatalf("unexpected error marker: %+v", got)
	}
	if !strings.HasPrefix(got.String(), "composting shows high search interest") {
		t.Errorf("summary = %q", got.String())
	}
	if got.Keyword != "composting" {
		t.Errorf("Keyword = %q", got.Keyword)
	}
}

func TestFetchSummariesSoftFail(t *testing.T) {
	mock := NewMockProvider()
	mock.SetUnavailable(ErrProviderUnavailable)
	fetcher := NewFetcher(mock, DefaultWindow, time.Second)

	pop := fetcher.FetchPopularitySummary(context.Background(), "composting")
	if !pop.Error || pop.Message != PopularityUnavailableMessage {
		t.Errorf("popularity = %+v, want error marker", pop)
	}
	if pop.String() != `{"error":true,"message":"Google Trends tool is currently unavailable"}` {
		t.Errorf("popularity marker renders as %q", pop.String())
	}

	rel := fetcher.FetchRelatedQueriesSummary(context.Background(), "worm bin for apartments")
	if !rel.Error || rel.Message != RelatedQueriesUnavailableMessage {
		t.Errorf("related = %+v, want error marker", rel)
	}
}

type blockingProvider struct{}

func (blockingProvider) Name() string { return "blocking" }

func (blockingProvider) InterestOverTime(ctx context.Context, keyword string, window Window) ([]TimelinePoint, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingProvider) RelatedQueries(ctx context.Context, keyword string) ([]RankedList, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestFetchTimeoutBecomesMarker(t *testing.T) {
	fetcher := NewFetcher(blockingProvider{}, DefaultWindow, 20*time.Millisecond)

	start := time.Now()
	got := fetcher.FetchRelatedQueriesSummary(context.Background(), "compost")
	if !got.Error {
		t.Errorf("got %+v, want error marker on timeout", got)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("timeout not enforced, took %v", elapsed)
	}
}

func TestFetcherUsesWindow(t *testing.T) {
	var seen Window
	p := &windowRecorder{seen: &seen}
	window := Window{Start: time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), End: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)}

	NewFetcher(p, window, 0).FetchPopularitySummary(context.Background(), "x")
	if seen.String() != "2022-01-01 2023-01-01" {
		t.Errorf("window = %q", seen.String())
	}

	NewFetcher(p, Window{}, 0).FetchPopularitySummary(context.Background(), "x")
	if seen.String() != "2023-01-01 2024-01-01" {
		t.Errorf("default window = %q", seen.String())
	}
}

type windowRecorder struct{ seen *Window }

func (w *windowRecorder) Name() string { return "recorder" }

func (w *windowRecorder) InterestOverTime(ctx context.Context, keyword string, window Window) ([]TimelinePoint, error) {
	*w.seen = window
	return nil, nil
}

func (w *windowRecorder) RelatedQueries(ctx context.Context, keyword string) ([]RankedList, error) {
	return nil, nil
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		cfg      config.Trends
		wantName string
		wantErr  error
	}{
		{cfg: config.Trends{Provider: "googletrends"}, wantName: "GoogleTrends"},
		{cfg: config.Trends{Provider: "serpapi", SerpAPI: config.SerpAPIConfig{APIKey: "k"}}, wantName: "SerpAPI"},
		{cfg: config.Trends{Provider: "mock"}, wantName: "Mock"},
		{cfg: config.Trends{Provider: "serpapi"}, wantErr: ErrMissingAPIKey},
		{cfg: config.Trends{Provider: "bing"}, wantErr: ErrUnsupportedProvider},
	}

	for _, tt := range tests {
		p, err := NewProvider(tt.cfg)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewProvider(%q) error = %v, want %v", tt.cfg.Provider, err, tt.wantErr)
			}
			continue
		}
		if err != nil {
			t.Fatalf("NewProvider(%q) error = %v", tt.cfg.Provider, err)
		}
		if p.Name() != tt.wantName {
			t.Errorf("NewProvider(%q).Name() = %q, want %q", tt.cfg.Provider, p.Name(), tt.wantName)
		}
	}
}
