package trends

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"blogforge/internal/logger"
)

const (
	googleTrendsBaseURL = "https://trends.google.com"
	relatedQueriesTime  = "today 12-m"
)

// GoogleTrendsProvider implements Provider against the public Google Trends
// web endpoints: an explore call yields widget tokens, and a widgetdata call
// per widget returns the series or ranked lists.
type GoogleTrendsProvider struct {
	baseURL string
	geo     string
	hl      string
	client  *http.Client
}

// NewGoogleTrendsProvider creates a new Google Trends provider
func NewGoogleTrendsProvider(geo, hl string) *GoogleTrendsProvider {
	if hl == "" {
		hl = "en-US"
	}
	jar, _ := cookiejar.New(nil)
	return &GoogleTrendsProvider{
		baseURL: googleTrendsBaseURL,
		geo:     geo,
		hl:      hl,
		client: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
	}
}

// Name returns the name of this provider
func (g *GoogleTrendsProvider) Name() string {
	return "GoogleTrends"
}

type exploreWidget struct {
	ID      string          `json:"id"`
	Token   string          `json:"token"`
	Request json.RawMessage `json:"request"`
}

// InterestOverTime fetches the TIMESERIES widget for keyword over window.
func (g *GoogleTrendsProvider) InterestOverTime(ctx context.Context, keyword string, window Window) ([]TimelinePoint, error) {
	widget, err := g.explore(ctx, keyword, window.String(), "TIMESERIES")
	if err != nil {
		return nil, err
	}

	var payload struct {
		Default struct {
			TimelineData []struct {
				Time          string `json:"time"`
				FormattedTime string `json:"formattedTime"`
				Value         []int  `json:"value"`
			} `json:"timelineData"`
		} `json:"default"`
	}
	if err := g.widgetData(ctx, "multiline", widget, &payload); err != nil {
		return nil, err
	}

	points := make([]TimelinePoint, 0, len(payload.Default.TimelineData))
	for _, item := range payload.Default.TimelineData {
		if len(item.Value) == 0 {
			continue
		}
		point := TimelinePoint{FormattedTime: item.FormattedTime, Value: item.Value[0]}
		if secs, err := strconv.ParseInt(item.Time, 10, 64); err == nil {
			point.Time = time.Unix(secs, 0).UTC()
		}
		points = append(points, point)
	}

	logger.Debug("Google Trends interest fetched", "keyword", keyword, "points", len(points))
	return points, nil
}

// RelatedQueries fetches the RELATED_QUERIES widget for keyword.
func (g *GoogleTrendsProvider) RelatedQueries(ctx context.Context, keyword string) ([]RankedList, error) {
	widget, err := g.explore(ctx, keyword, relatedQueriesTime, "RELATED_QUERIES")
	if err != nil {
		return nil, err
	}

	var payload struct {
		Default struct {
			RankedList []struct {
				RankedKeyword []struct {
					Query          string `json:"query"`
					Value          int    `json:"value"`
					FormattedValue string `json:"formattedValue"`
				} `json:"rankedKeyword"`
			} `json:"rankedList"`
		} `json:"default"`
	}
	if err := g.widgetData(ctx, "relatedsearches", widget, &payload); err != nil {
		return nil, err
	}

	lists := make([]RankedList, 0, len(payload.Default.RankedList))
	for _, rl := range payload.Default.RankedList {
		list := RankedList{Keywords: make([]RankedKeyword, 0, len(rl.RankedKeyword))}
		for _, k := range rl.RankedKeyword {
			list.Keywords = append(list.Keywords, RankedKeyword{Query: k.Query, Value: k.Value, FormattedValue: k.FormattedValue})
		}
		lists = append(lists, list)
	}

	logger.Debug("Google Trends related queries fetched", "keyword", keyword, "lists", len(lists))
	return lists, nil
}

func (g *GoogleTrendsProvider) explore(ctx context.Context, keyword, timeRange, widgetID string) (*exploreWidget, error) {
	req := map[string]any{
		"comparisonItem": []map[string]string{{"keyword": keyword, "geo": g.geo, "time": timeRange}},
		"category":       0,
		"property":       "",
	}
	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode explore request: %w", err)
	}

	params := url.Values{}
	params.Set("hl", g.hl)
	params.Set("tz", "0")
	params.Set("req", string(reqJSON))

	body, err := g.get(ctx, "/trends/api/explore", params)
	if err != nil {
		return nil, err
	}

	var explore struct {
		Widgets []exploreWidget `json:"widgets"`
	}
	if err := json.Unmarshal(body, &explore); err != nil {
		return nil, fmt.Errorf("%w: explore: %v", ErrUnexpectedResponse, err)
	}
	for i := range explore.Widgets {
		if strings.HasPrefix(explore.Widgets[i].ID, widgetID) {
			return &explore.Widgets[i], nil
		}
	}
	return nil, fmt.Errorf("%w: no %s widget for %q", ErrUnexpectedResponse, widgetID, keyword)
}

func (g *GoogleTrendsProvider) widgetData(ctx context.Context, kind string, widget *exploreWidget, out any) error {
	params := url.Values{}
	params.Set("hl", g.hl)
	params.Set("tz", "0")
	params.Set("req", string(widget.Request))
	params.Set("token", widget.Token)

	body, err := g.get(ctx, "/trends/api/widgetdata/"+kind, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnexpectedResponse, kind, err)
	}
	return nil
}

// get performs a GET and strips the anti-JSON-hijacking prefix. A 429 is
// retried once after collecting session cookies from the landing page.
func (g *GoogleTrendsProvider) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	fullURL := g.baseURL + path + "?" + params.Encode()

	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create Google Trends request: %w", err)
		}

		resp, err := g.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
		}
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("failed to read Google Trends response: %w", readErr)
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests && attempt == 0:
			g.refreshCookies(ctx)
			continue
		case resp.StatusCode == http.StatusTooManyRequests:
			return nil, ErrRateLimited
		case resp.StatusCode != http.StatusOK:
			return nil, fmt.Errorf("%w: Google Trends request failed with status: %d", ErrProviderUnavailable, resp.StatusCode)
		}

		return stripJSONPrefix(body)
	}
}

func (g *GoogleTrendsProvider) refreshCookies(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/trends/?geo=US", nil)
	if err != nil {
		return
	}
	resp, err := g.client.Do(req)
	if err != nil {
		logger.Warn("Google Trends cookie refresh failed", "error", err.Error())
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

// stripJSONPrefix drops the ")]}'" guard Google prepends to API responses.
func stripJSONPrefix(body []byte) ([]byte, error) {
	i := bytes.IndexByte(body, '{')
	if i < 0 {
		return nil, fmt.Errorf("%w: no JSON object in response", ErrUnexpectedResponse)
	}
	return body[i:], nil
}
