package trends

import "testing"

func pointsOf(values ...int) []TimelinePoint {
	points := make([]TimelinePoint, len(values))
	for i, v := range values {
		points[i] = TimelinePoint{Value: v}
	}
	return points
}

func TestSummarizeKeywordTrends(t *testing.T) {
	tests := []struct {
		name   string
		values []int
		want   string
	}{
		{
			name:   "empty",
			values: nil,
			want:   `No search interest data found for "compost".`,
		},
		{
			name:   "low flat",
			values: []int{10, 10, 10, 10, 10, 10, 10, 10},
			want:   "compost shows low search interest (average: 10.0/100).",
		},
		{
			name:   "exactly 25 is low",
			values: []int{25, 25, 25, 25},
			want:   "compost shows low search interest (average: 25.0/100).",
		},
		{
			name:   "moderate",
			values: []int{30, 30, 30, 30, 30, 30},
			want:   "compost shows moderate search interest (average: 30.0/100).",
		},
		{
			name:   "high with peak",
			values: []int{60, 60, 60, 80},
			want:   "compost shows high search interest (average: 65.0/100). Has reached peak popularity.",
		},
		{
			name:   "trending upward",
			values: []int{10, 10, 10, 10, 10, 10, 40, 40, 40, 40},
			want:   "compost shows low search interest (average: 22.0/100). Interest is currently trending upward.",
		},
		{
			name:   "trending and peaked",
			values: []int{20, 20, 20, 20, 20, 20, 20, 20, 90, 90, 90, 90},
			want:   "compost shows moderate search interest (average: 43.3/100). Interest is currently trending upward. Has reached peak popularity.",
		},
		{
			name:   "short series never trends against itself",
			values: []int{5, 95},
			want:   "compost shows moderate search interest (average: 50.0/100). Has reached peak popularity.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SummarizeKeywordTrends("compost", pointsOf(tt.values...)); got != tt.want {
				t.Errorf("SummarizeKeywordTrends() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSummarizeRelatedQueries(t *testing.T) {
	top := RankedList{Keywords: []RankedKeyword{
		{Query: "worm composting", Value: 100, FormattedValue: "100"},
		{Query: "bokashi", Value: 45},
	}}
	rising := RankedList{Keywords: []RankedKeyword{
		{Query: "balcony compost bin", Value: 5000, FormattedValue: "Breakout"},
	}}

	tests := []struct {
		name  string
		lists []RankedList
		want  string
	}{
		{
			name: "no lists",
			want: `No related queries found for "apartment composting tips".`,
		},
		{
			name:  "top and rising",
			lists: []RankedList{top, rising},
			want:  "Search trends for apartment composting tips: Current relative interest includes worm composting (100), bokashi (45). Breakout/rising interest includes balcony compost bin (Breakout).",
		},
		{
			name:  "empty top list keeps rising label",
			lists: []RankedList{{}, rising},
			want:  "Search trends for apartment composting tips: Breakout/rising interest includes balcony compost bin (Breakout).",
		},
		{
			name:  "all lists empty",
			lists: []RankedList{{}, {}},
			want:  "Search trends for apartment composting tips:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SummarizeRelatedQueries("apartment composting tips", tt.lists); got != tt.want {
				t.Errorf("SummarizeRelatedQueries() = %q, want %q", got, tt.want)
			}
		})
	}
}
