package trends

import (
	"fmt"
	"strings"
)

const (
	highInterestThreshold     = 50.0
	moderateInterestThreshold = 25.0
	trendingFactor            = 1.2
	peakThreshold             = 70
	recentWindow              = 4
)

// SummarizeKeywordTrends reduces an interest-over-time series to one
// sentence: interest level, whether it is trending upward over the last
// few points, and whether it ever peaked.
func SummarizeKeywordTrends(keyword string, points []TimelinePoint) string {
	if len(points) == 0 {
		return fmt.Sprintf("No search interest data found for \"%s\".", keyword)
	}

	maxValue := points[0].Value
	total := 0
	for _, p := range points {
		total += p.Value
		if p.Value > maxValue {
			maxValue = p.Value
		}
	}
	avg := float64(total) / float64(len(points))

	level := "low"
	switch {
	case avg > highInterestThreshold:
		level = "high"
	case avg > moderateInterestThreshold:
		level = "moderate"
	}

	recent := points
	if len(recent) > recentWindow {
		recent = recent[len(recent)-recentWindow:]
	}
	recentTotal := 0
	for _, p := range recent {
		recentTotal += p.Value
	}
	recentAvg := float64(recentTotal) / float64(len(recent))

	var b strings.Builder
	fmt.Fprintf(&b, "%s shows %s search interest (average: %.1f/100). ", keyword, level, avg)
	if recentAvg > avg*trendingFactor {
		b.WriteString("Interest is currently trending upward. ")
	}
	if maxValue > peakThreshold {
		b.WriteString("Has reached peak popularity. ")
	}
	return strings.TrimSpace(b.String())
}

// SummarizeRelatedQueries lists related searches for a keyword. The first
// ranked list is the provider's "top" queries, later lists are rising ones.
func SummarizeRelatedQueries(keyword string, lists []RankedList) string {
	if len(lists) == 0 {
		return fmt.Sprintf("No related queries found for \"%s\".", keyword)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Search trends for %s: ", keyword)
	for i, list := range lists {
		if len(list.Keywords) == 0 {
			continue
		}
		if i == 0 {
			b.WriteString("Current relative interest includes ")
		} else {
			b.WriteString("Breakout/rising interest includes ")
		}

		terms := make([]string, 0, len(list.Keywords))
		for _, k := range list.Keywords {
			score := k.FormattedValue
			if score == "" {
				score = fmt.Sprintf("%d", k.Value)
			}
			terms = append(terms, fmt.Sprintf("%s (%s)", k.Query, score))
		}
		b.WriteString(strings.Join(terms, ", "))
		b.WriteString(". ")
	}
	return strings.TrimSpace(b.String())
}
