package ideation

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"blogforge/internal/core"
	"blogforge/test/mocks"
)

func TestEnrichPreservesKeywordOrder(t *testing.T) {
	// Earlier keywords finish last, so completion order is the reverse of input order
	delays := map[string]time.Duration{"a": 30 * time.Millisecond, "b": 15 * time.Millisecond, "c": 0}
	fetcher := &mocks.MockTrendFetcher{
		FetchPopularitySummaryFunc: func(ctx context.Context, kw string) core.TrendSummary {
			time.Sleep(delays[kw])
			return core.TrendSummary{Keyword: kw, Summary: "pop-" + kw}
		},
		FetchRelatedQueriesSummaryFunc: func(ctx context.Context, kw string) core.TrendSummary {
			time.Sleep(delays[kw])
			return core.TrendSummary{Keyword: kw, Summary: "rel-" + kw}
		},
	}

	corpora, err := NewEnricher(fetcher, 8).Enrich(context.Background(), core.KeywordSet{
		PrimaryKeywords:  []string{"a", "b", "c"},
		LongTailKeywords: []string{"c", "a"},
	})
	if err != nil {
		t.Fatalf("Enrich() error = %v", err)
	}
	if corpora.Primary != "pop-a, pop-b, pop-c" {
		t.Errorf("Primary = %q", corpora.Primary)
	}
	if corpora.LongTail != "rel-c, rel-a" {
		t.Errorf("LongTail = %q", corpora.LongTail)
	}
	if corpora.UnavailableCount != 0 {
		t.Errorf("UnavailableCount = %d", corpora.UnavailableCount)
	}
}

func TestEnrichFoldsErrorMarkers(t *testing.T) {
	fetcher := &mocks.MockTrendFetcher{
		FetchPopularitySummaryFunc: func(ctx context.Context, kw string) core.TrendSummary {
			if kw == "broken" {
				return core.NewTrendError(kw, "Google Trends tool is currently unavailable")
			}
			return core.TrendSummary{Keyword: kw, Summary: "ok-" + kw}
		},
	}

	corpora, err := NewEnricher(fetcher, 2).Enrich(context.Background(), core.KeywordSet{
		PrimaryKeywords: []string{"first", "broken", "last"},
	})
	if err != nil {
		t.Fatalf("Enrich() error = %v", err)
	}
	want := `ok-first, {"error":true,"message":"Google Trends tool is currently unavailable"}, ok-last`
	if corpora.Primary != want {
		t.Errorf("Primary = %q, want %q", corpora.Primary, want)
	}
	if corpora.UnavailableCount != 1 {
		t.Errorf("UnavailableCount = %d, want 1", corpora.UnavailableCount)
	}
	if corpora.LongTail != "" {
		t.Errorf("LongTail = %q, want empty", corpora.LongTail)
	}
}

func TestEnrichRespectsConcurrencyLimit(t *testing.T) {
	var inFlight, peak int32
	track := func() {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
	}
	fetcher := &mocks.MockTrendFetcher{
		FetchPopularitySummaryFunc: func(ctx context.Context, kw string) core.TrendSummary {
			track()
			return core.TrendSummary{Summary: kw}
		},
		FetchRelatedQueriesSummaryFunc: func(ctx context.Context, kw string) core.TrendSummary {
			track()
			return core.TrendSummary{Summary: kw}
		},
	}

	keywords := core.KeywordSet{
		PrimaryKeywords:  []string{"1", "2", "3", "4", "5", "6"},
		LongTailKeywords: []string{"7", "8", "9", "10", "11"},
	}
	if _, err := NewEnricher(fetcher, 3).Enrich(context.Background(), keywords); err != nil {
		t.Fatalf("Enrich() error = %v", err)
	}
	if peak > 3 {
		t.Errorf("peak concurrency = %d, want <= 3", peak)
	}
}

func TestEnrichCancelledParent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fetcher := &mocks.MockTrendFetcher{
		FetchPopularitySummaryFunc: func(ctx context.Context, kw string) core.TrendSummary {
			cancel()
			<-ctx.Done()
			return core.NewTrendError(kw, "cancelled")
		},
	}

	_, err := NewEnricher(fetcher, 1).Enrich(ctx, core.KeywordSet{PrimaryKeywords: []string{"a", "b"}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestEnrichAllUnavailable(t *testing.T) {
	fetcher := &mocks.MockTrendFetcher{
		FetchPopularitySummaryFunc: func(ctx context.Context, kw string) core.TrendSummary {
			return core.NewTrendError(kw, "Google Trends tool is currently unavailable")
		},
		FetchRelatedQueriesSummaryFunc: func(ctx context.Context, kw string) core.TrendSummary {
			return core.NewTrendError(kw, "Related queries tool is currently unavailable")
		},
	}

	corpora, err := NewEnricher(fetcher, 4).Enrich(context.Background(), core.KeywordSet{
		PrimaryKeywords:  []string{"a", "b"},
		LongTailKeywords: []string{"c d e"},
	})
	if err != nil {
		t.Fatalf("Enrich() error = %v", err)
	}
	if corpora.UnavailableCount != 3 {
		t.Errorf("UnavailableCount = %d, want 3", corpora.UnavailableCount)
	}
	if strings.Count(corpora.Primary, `"error":true`) != 2 {
		t.Errorf("Primary = %q", corpora.Primary)
	}
}
