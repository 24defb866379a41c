package trends

import (
	"context"
	"strings"
	"sync"
)

// MockProvider is a deterministic Provider for tests and offline development.
type MockProvider struct {
	mu        sync.Mutex
	timelines map[string][]TimelinePoint
	related   map[string][]RankedList
	errs      map[string]error
	allErr    error
	calls     []string
}

// NewMockProvider creates a new mock trends provider
func NewMockProvider() *MockProvider {
	return &MockProvider{
		timelines: make(map[string][]TimelinePoint),
		related:   make(map[string][]RankedList),
		errs:      make(map[string]error),
	}
}

// Name returns the name of this provider
func (m *MockProvider) Name() string {
	return "Mock"
}

// SetTimeline sets the interest-over-time series returned for keyword.
func (m *MockProvider) SetTimeline(keyword string, values ...int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	points := make([]TimelinePoint, len(values))
	for i, v := range values {
		points[i] = TimelinePoint{Time: DefaultWindow.Start.AddDate(0, 0, 7*i), Value: v}
	}
	m.timelines[strings.ToLower(keyword)] = points
}

// SetRelated sets the ranked lists returned for keyword.
func (m *MockProvider) SetRelated(keyword string, lists ...RankedList) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.related[strings.ToLower(keyword)] = lists
}

// SetError makes every call for keyword fail with err.
func (m *MockProvider) SetError(keyword string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[strings.ToLower(keyword)] = err
}

// SetUnavailable makes every call fail with err.
func (m *MockProvider) SetUnavailable(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allErr = err
}

// Calls returns the keywords looked up so far, prefixed with the operation.
func (m *MockProvider) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *MockProvider) lookup(op, keyword string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, op+":"+keyword)
	if m.allErr != nil {
		return m.allErr
	}
	return m.errs[strings.ToLower(keyword)]
}

// InterestOverTime returns the configured series, or a flat moderate series.
func (m *MockProvider) InterestOverTime(ctx context.Context, keyword string, window Window) ([]TimelinePoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := m.lookup("interest", keyword); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if points, ok := m.timelines[strings.ToLower(keyword)]; ok {
		return points, nil
	}
	points := make([]TimelinePoint, 8)
	for i := range points {
		points[i] = TimelinePoint{Time: window.Start.AddDate(0, 0, 7*i), Value: 40}
	}
	return points, nil
}

// RelatedQueries returns the configured lists, or a single synthetic top list.
func (m *MockProvider) RelatedQueries(ctx context.Context, keyword string) ([]RankedList, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := m.lookup("related", keyword); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if lists, ok := m.related[strings.ToLower(keyword)]; ok {
		return lists, nil
	}
	return []RankedList{{Keywords: []RankedKeyword{
		{Query: keyword + " guide", Value: 100, FormattedValue: "100"},
		{Query: keyword + " tips", Value: 60, FormattedValue: "60"},
	}}}, nil
}
