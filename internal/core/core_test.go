package core

import (
	"encoding/json"
	"testing"
)

func TestProjectContextPostCount(t *testing.T) {
	pc := ProjectContext{
		Description: "urban gardening",
		Categories: []CategoryPosts{
			{Name: "Balcony Gardening", PostTitles: []string{"5 Herbs for Small Spaces", "Vertical Planters"}},
			{Name: "Composting"},
		},
	}

	if got := pc.PostCount(); got != 2 {
		t.Errorf("PostCount() = %d, want 2", got)
	}
}

func TestTrendSummaryString(t *testing.T) {
	ok := TrendSummary{Keyword: "compost", Summary: "compost shows high search interest (average: 61.0/100). "}
	if got := ok.String(); got != ok.Summary {
		t.Errorf("String() = %q, want %q", got, ok.Summary)
	}

	marker := NewTrendError("compost", "Google Trends tool is currently unavailable")
	want := `{"error":true,"message":"Google Trends tool is currently unavailable"}`
	if got := marker.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestContentIdeaJSONFieldNames(t *testing.T) {
	idea := ContentIdea{
		Title:             "Composting on a Balcony",
		Keywords:          []string{"balcony composting"},
		SearchIntent:      "informational",
		SuggestedCategory: "Composting",
		TrendInsights:     "rising",
	}

	b, err := json.Marshal(idea)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(b, &fields); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	for _, name := range []string{"title", "keywords", "description", "audience", "tone", "length", "searchIntent", "suggestedCategory", "trendInsights"} {
		if _, ok := fields[name]; !ok {
			t.Errorf("JSON output missing field %q", name)
		}
	}
}

func TestSavedIdeaEmbedsContentIdea(t *testing.T) {
	saved := SavedIdea{ID: "idea-1", ProjectID: "p1", ContentIdea: ContentIdea{Title: "Worm Bins 101"}}

	b, err := json.Marshal(saved)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(b, &fields); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if fields["title"] != "Worm Bins 101" {
		t.Errorf("title = %v, want flattened embedded title", fields["title"])
	}
	if fields["projectId"] != "p1" {
		t.Errorf("projectId = %v, want p1", fields["projectId"])
	}
}
