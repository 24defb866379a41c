package trends

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"blogforge/internal/logger"
)

const serpAPIBaseURL = "https://serpapi.com/search"

// SerpAPIProvider implements Provider using SerpAPI's google_trends engine
type SerpAPIProvider struct {
	apiKey    string
	baseURL   string
	geo       string
	hl        string
	client    *http.Client
	rateLimit time.Duration

	mu       sync.Mutex
	lastCall time.Time
}

// NewSerpAPIProvider creates a new SerpAPI trends provider
func NewSerpAPIProvider(apiKey, geo, hl string) *SerpAPIProvider {
	if hl == "" {
		hl = "en-US"
	}
	return &SerpAPIProvider{
		apiKey:  apiKey,
		baseURL: serpAPIBaseURL,
		geo:     geo,
		hl:      hl,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		rateLimit: 200 * time.Millisecond,
	}
}

// Name returns the name of this provider
func (s *SerpAPIProvider) Name() string {
	return "SerpAPI"
}

// InterestOverTime fetches the TIMESERIES data type for keyword.
func (s *SerpAPIProvider) InterestOverTime(ctx context.Context, keyword string, window Window) ([]TimelinePoint, error) {
	params := url.Values{}
	params.Set("data_type", "TIMESERIES")
	params.Set("date", window.String())

	var apiResponse struct {
		InterestOverTime struct {
			TimelineData []struct {
				Date      string `json:"date"`
				Timestamp string `json:"timestamp"`
				Values    []struct {
					Query          string `json:"query"`
					ExtractedValue int    `json:"extracted_value"`
				} `json:"values"`
			} `json:"timeline_data"`
		} `json:"interest_over_time"`
	}
	if err := s.call(ctx, keyword, params, &apiResponse); err != nil {
		return nil, err
	}

	points := make([]TimelinePoint, 0, len(apiResponse.InterestOverTime.TimelineData))
	for _, item := range apiResponse.InterestOverTime.TimelineData {
		if len(item.Values) == 0 {
			continue
		}
		point := TimelinePoint{FormattedTime: item.Date, Value: item.Values[0].ExtractedValue}
		if secs, err := strconv.ParseInt(item.Timestamp, 10, 64); err == nil {
			point.Time = time.Unix(secs, 0).UTC()
		}
		points = append(points, point)
	}

	logger.Info("SerpAPI trends completed", "keyword", keyword, "data_type", "TIMESERIES", "points", len(points))
	return points, nil
}

// RelatedQueries fetches the RELATED_QUERIES data type for keyword. The
// "top" list comes first and the "rising" list second.
func (s *SerpAPIProvider) RelatedQueries(ctx context.Context, keyword string) ([]RankedList, error) {
	params := url.Values{}
	params.Set("data_type", "RELATED_QUERIES")

	type query struct {
		Query          string `json:"query"`
		Value          string `json:"value"`
		ExtractedValue int    `json:"extracted_value"`
	}
	var apiResponse struct {
		RelatedQueries struct {
			Top    []query `json:"top"`
			Rising []query `json:"rising"`
		} `json:"related_queries"`
	}
	if err := s.call(ctx, keyword, params, &apiResponse); err != nil {
		return nil, err
	}

	convert := func(qs []query) RankedList {
		list := RankedList{Keywords: make([]RankedKeyword, 0, len(qs))}
		for _, q := range qs {
			list.Keywords = append(list.Keywords, RankedKeyword{Query: q.Query, Value: q.ExtractedValue, FormattedValue: q.Value})
		}
		return list
	}

	var lists []RankedList
	if len(apiResponse.RelatedQueries.Top) > 0 || len(apiResponse.RelatedQueries.Rising) > 0 {
		lists = append(lists, convert(apiResponse.RelatedQueries.Top), convert(apiResponse.RelatedQueries.Rising))
	}

	logger.Info("SerpAPI trends completed", "keyword", keyword, "data_type", "RELATED_QUERIES", "lists", len(lists))
	return lists, nil
}

func (s *SerpAPIProvider) call(ctx context.Context, keyword string, params url.Values, out any) error {
	if err := s.wait(ctx); err != nil {
		return err
	}

	params.Set("engine", "google_trends")
	params.Set("q", keyword)
	params.Set("hl", s.hl)
	params.Set("api_key", s.apiKey)
	if s.geo != "" {
		params.Set("geo", s.geo)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create SerpAPI request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute SerpAPI request: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: SerpAPI request failed with status: %d", ErrProviderUnavailable, resp.StatusCode)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return fmt.Errorf("failed to parse SerpAPI response: %w", err)
	}

	var apiErr struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Error != "" {
		return fmt.Errorf("%w: SerpAPI error: %s", ErrProviderUnavailable, apiErr.Error)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	return nil
}

// wait spaces out calls so concurrent fan-out does not trip SerpAPI throttling.
func (s *SerpAPIProvider) wait(ctx context.Context) error {
	s.mu.Lock()
	next := s.lastCall.Add(s.rateLimit)
	now := time.Now()
	if next.Before(now) {
		next = now
	}
	s.lastCall = next
	s.mu.Unlock()

	delay := time.Until(next)
	if delay <= 0 {
		return nil
	}
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
