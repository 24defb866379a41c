package core

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is the sentinel every store wraps when a record does not exist.
var ErrNotFound = errors.New("not found")

// Project is a blog owned by a user.
type Project struct {
	ID          string    `json:"id"`          // Unique identifier for the project
	UserID      string    `json:"userId"`      // Owner of the project
	Name        string    `json:"name"`        // Display name of the blog
	Description string    `json:"description"` // Free-text description used as LLM grounding
	CreatedAt   time.Time `json:"createdAt"`   // Timestamp when the project was created
}

// Category groups the posts of a project.
type Category struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Post is a published blog post.
type Post struct {
	ID              string    `json:"id"`
	ProjectID       string    `json:"projectId"`
	CategoryID      string    `json:"categoryId"`
	Title           string    `json:"title"`
	Content         string    `json:"content"` // Markdown body
	MetaDescription string    `json:"metaDescription"`
	Keywords        []string  `json:"keywords"`
	CreatedAt       time.Time `json:"createdAt"`
}

// CategoryPosts is one category of a project together with its post titles,
// ordered by post creation time.
type CategoryPosts struct {
	Name       string   `json:"name"`       // Category name
	PostTitles []string `json:"postTitles"` // Titles of posts published in the category (may be empty)
}

// ProjectContext is the request-scoped project snapshot used to ground every LLM stage.
type ProjectContext struct {
	Description string          `json:"description"`
	Categories  []CategoryPosts `json:"categories"`
}

// PostCount returns the total number of posts across all categories.
func (p ProjectContext) PostCount() int {
	n := 0
	for _, c := range p.Categories {
		n += len(c.PostTitles)
	}
	return n
}

// KeywordSet holds the two keyword lists produced by keyword research.
type KeywordSet struct {
	PrimaryKeywords  []string `json:"primaryKeywords"`  // Short 1-2 word terms, 5-10 items
	LongTailKeywords []string `json:"longTailKeywords"` // Specific 3-6 word phrases, 5-8 items
}

// TrendSummary is either a one-sentence description of a keyword's search
// trend or an error marker when the trends provider could not answer.
type TrendSummary struct {
	Keyword string `json:"keyword,omitempty"`
	Summary string `json:"summary,omitempty"`
	Error   bool   `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// NewTrendError builds the error-marker variant of a TrendSummary.
func NewTrendError(keyword, message string) TrendSummary {
	return TrendSummary{Keyword: keyword, Error: true, Message: message}
}

// String renders the summary for inclusion in a trend corpus. Error markers
// render as {"error":true,"message":"..."} so they flow into the corpus as-is.
func (t TrendSummary) String() string {
	if !t.Error {
		return t.Summary
	}
	b, err := json.Marshal(struct {
		Error   bool   `json:"error"`
		Message string `json:"message"`
	}{true, t.Message})
	if err != nil {
		return t.Message
	}
	return string(b)
}

// ContentIdea is one structured recommendation for a future post.
type ContentIdea struct {
	Title             string   `json:"title"`             // Catchy, SEO-friendly post title
	Keywords          []string `json:"keywords"`          // Target keywords for the post
	Description       string   `json:"description"`       // What the post covers
	Audience          string   `json:"audience"`          // Intended reader
	Tone              string   `json:"tone"`              // Writing tone
	Length            string   `json:"length"`            // Recommended length, e.g. "1500-2000 words"
	SearchIntent      string   `json:"searchIntent"`      // informational, commercial, navigational, transactional
	SuggestedCategory string   `json:"suggestedCategory"` // Existing or new category for the post
	TrendInsights     string   `json:"trendInsights"`     // How trend data supports the idea
}

// SavedIdea is a ContentIdea a user chose to keep for a project.
type SavedIdea struct {
	ContentIdea
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IdeationResult carries the ideas plus the intermediate artifacts of a pipeline run.
type IdeationResult struct {
	RequestID      string        `json:"requestId"`
	Ideas          []ContentIdea `json:"ideas"`
	Keywords       KeywordSet    `json:"keywords"`
	PrimaryCorpus  string        `json:"primaryCorpus"`
	LongTailCorpus string        `json:"longTailCorpus"`
	DegradedTrends int           `json:"degradedTrends"` // Keywords whose trend lookup fell back to an error marker
	Duration       time.Duration `json:"duration"`
	PostCount      int           `json:"postCount"`
	CategoryCount  int           `json:"categoryCount"`
}

// CategorySuggestion is a recommended blog category.
type CategorySuggestion struct {
	Category      string `json:"category"`      // Category name, 1-50 characters
	IsRequiredNow bool   `json:"isRequiredNow"` // Whether the blog needs the category immediately
}

// BlogPost is a drafted post generated from a content idea.
type BlogPost struct {
	Title                string   `json:"title"`
	Content              string   `json:"content"` // Markdown body
	HTML                 string   `json:"html"`    // Rendered body
	MetaDescription      string   `json:"metaDescription"`
	Keywords             []string `json:"keywords"`
	ThumbnailImagePrompt string   `json:"thumbnailImagePrompt"`
	WordCount            int      `json:"wordCount"`
	ReadingMinutes       int      `json:"readingMinutes"`
}
