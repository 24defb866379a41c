package ideation

import "blogforge/internal/llm"

// Cardinality bounds enforced by the output shapes.
const (
	MinPrimaryKeywords  = 5
	MaxPrimaryKeywords  = 10
	MinLongTailKeywords = 5
	MaxLongTailKeywords = 8
	MinContentIdeas     = 5
	MaxContentIdeas     = 10
)

// KeywordShape is the output of keyword research.
var KeywordShape = &llm.Shape{
	Name:        "keyword_research",
	Description: "Primary and long-tail keywords for a blog content query",
	Fields: []llm.Field{
		llm.UniqueStringList("primaryKeywords", "1-2 word primary keywords, used for Google Trends", MinPrimaryKeywords, MaxPrimaryKeywords),
		llm.UniqueStringList("longTailKeywords", "3-6 word long-tail keywords for content ideas", MinLongTailKeywords, MaxLongTailKeywords),
	},
}

// ContentIdeasShape is the output of the synthesis stage. Every per-idea
// field is required and must be non-empty.
var ContentIdeasShape = &llm.Shape{
	Name:        "content_ideas",
	Description: "Structured blog content ideas",
	Fields: []llm.Field{
		llm.ObjectList("contentIdeas", "5-10 content ideas total", MinContentIdeas, MaxContentIdeas,
			llm.RequiredString("title", "Engaging and SEO-optimized blog post title"),
			llm.StringList("keywords", "5-10 relevant keywords for this post", 1, 0),
			llm.RequiredString("description", "2-3 sentence summary explaining the post's value"),
			llm.RequiredString("audience", "Target audience for this post"),
			llm.RequiredString("tone", "Tone/style: formal, casual, friendly, educational, etc."),
			llm.RequiredString("length", "Post length: short, medium, long"),
			llm.RequiredString("searchIntent", "Primary search intent: informational, navigational, commercial, transactional"),
			llm.RequiredString("suggestedCategory", "Existing or new category for the post"),
			llm.RequiredString("trendInsights", "Trend insights that influenced this post idea"),
		),
	},
}
