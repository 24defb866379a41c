// Package authoring holds the writing helpers around ideation: description
// enhancement, category suggestions, emoji picking and full post drafts.
package authoring

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"blogforge/internal/core"
	"blogforge/internal/llm"
	"blogforge/internal/logger"
)

// MinDescriptionWords is the shortest description EnhanceDescription and
// SuggestCategories accept.
const MinDescriptionWords = 30

// ErrInvalidInput is returned when a request fails a precondition.
var ErrInvalidInput = errors.New("invalid input")

var categoriesShape = &llm.Shape{
	Name:        "category_suggestions",
	Description: "Recommended blog categories",
	Fields: []llm.Field{
		llm.ObjectList("categories", "4-5 categories for the blog", 4, 5,
			llm.Field{
				Name:        "category",
				Kind:        llm.KindString,
				Description: "Category name, short and concise, ideally 1-4 words",
				Required:    true,
				NonEmpty:    true,
				MinLength:   1,
				MaxLength:   50,
			},
			llm.RequiredBool("isRequiredNow", "Whether this category is essential to start the blog immediately"),
		),
	},
}

var blogPostShape = &llm.Shape{
	Name:        "blog_post",
	Description: "A drafted blog post",
	Fields: []llm.Field{
		llm.RequiredString("title", "SEO-optimized blog post title"),
		llm.RequiredString("content", "Full blog post body in Markdown"),
		llm.RequiredString("metaDescription", "Meta description for search results"),
		llm.StringList("keywords", "Relevant tags/keywords", 1, 0),
		llm.RequiredString("thumbnailImagePrompt", "Prompt for generating a thumbnail image"),
	},
}

// Author runs the authoring prompts against an LLM client.
type Author struct {
	client llm.Client
}

// NewAuthor creates an Author.
func NewAuthor(client llm.Client) *Author {
	return &Author{client: client}
}

// EnhanceDescription rewrites a short project description into a fuller one.
func (a *Author) EnhanceDescription(ctx context.Context, description string) (string, error) {
	if err := checkDescription(description); err != nil {
		return "", err
	}
	enhanced, err := a.client.Complete(ctx, EnhanceDescriptionPrompt, map[string]string{"input": description})
	if err != nil {
		return "", fmt.Errorf("description enhancement failed: %w", err)
	}
	return enhanced, nil
}

// SuggestCategories recommends 4-5 categories for a blog description.
func (a *Author) SuggestCategories(ctx context.Context, description string) ([]core.CategorySuggestion, error) {
	if err := checkDescription(description); err != nil {
		return nil, err
	}

	var resp struct {
		Categories []core.CategorySuggestion `json:"categories"`
	}
	if err := a.client.CompleteStructured(ctx, CategoriesPrompt, map[string]string{"input": description}, categoriesShape, &resp); err != nil {
		return nil, fmt.Errorf("category suggestion failed: %w", err)
	}
	return resp.Categories, nil
}

// SuggestEmoji returns a single emoji for text.
func (a *Author) SuggestEmoji(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: text is required", ErrInvalidInput)
	}
	emoji, err := a.client.Complete(ctx, EmojiPrompt, map[string]string{"input": text})
	if err != nil {
		return "", fmt.Errorf("emoji suggestion failed: %w", err)
	}
	emoji = strings.Trim(emoji, "\"' \n")
	if emoji == "" || utf8.RuneCountInString(emoji) > 8 {
		logger.Warn("Model returned more than an emoji", "response", emoji)
	}
	return emoji, nil
}

// DraftPost writes a full post for a content idea and renders it to HTML.
func (a *Author) DraftPost(ctx context.Context, idea core.ContentIdea) (*core.BlogPost, error) {
	if err := checkBrief(idea); err != nil {
		return nil, err
	}

	var resp struct {
		Title                string   `json:"title"`
		Content              string   `json:"content"`
		MetaDescription      string   `json:"metaDescription"`
		Keywords             []string `json:"keywords"`
		ThumbnailImagePrompt string   `json:"thumbnailImagePrompt"`
	}
	if err := a.client.CompleteStructured(ctx, BlogPostPrompt, map[string]string{"brief": Brief(idea)}, blogPostShape, &resp); err != nil {
		return nil, fmt.Errorf("post drafting failed: %w", err)
	}

	html := RenderMarkdown(resp.Content)
	words := CountWords(html)
	post := &core.BlogPost{
		Title:                resp.Title,
		Content:              resp.Content,
		HTML:                 html,
		MetaDescription:      resp.MetaDescription,
		Keywords:             resp.Keywords,
		ThumbnailImagePrompt: resp.ThumbnailImagePrompt,
		WordCount:            words,
		ReadingMinutes:       ReadingMinutes(words),
	}
	logger.Debug("Post drafted", "title", post.Title, "words", words)
	return post, nil
}

// Brief renders the writing brief for a content idea. Search intent and
// trend insights are included only when present.
func Brief(idea core.ContentIdea) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", idea.Title)
	fmt.Fprintf(&b, "Description: %s\n", idea.Description)
	fmt.Fprintf(&b, "Keywords: %s\n", strings.Join(idea.Keywords, ", "))
	fmt.Fprintf(&b, "Audience: %s\n", idea.Audience)
	fmt.Fprintf(&b, "Tone: %s\n", idea.Tone)
	fmt.Fprintf(&b, "Length: %s\n", idea.Length)
	if idea.SearchIntent != "" {
		fmt.Fprintf(&b, "Search Intent: %s\n", idea.SearchIntent)
	}
	if idea.TrendInsights != "" {
		fmt.Fprintf(&b, "Trend Insights: %s\n", idea.TrendInsights)
	}
	return b.String()
}

func checkDescription(description string) error {
	trimmed := strings.TrimSpace(description)
	if trimmed == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidInput)
	}
	if n := len(strings.Fields(trimmed)); n < MinDescriptionWords {
		return fmt.Errorf("%w: description must be at least %d words, got %d", ErrInvalidInput, MinDescriptionWords, n)
	}
	return nil
}

func checkBrief(idea core.ContentIdea) error {
	fields := map[string]string{
		"title":       idea.Title,
		"description": idea.Description,
		"audience":    idea.Audience,
		"tone":        idea.Tone,
		"length":      idea.Length,
	}
	var missing []string
	for _, name := range []string{"title", "description", "audience", "tone", "length"} {
		if strings.TrimSpace(fields[name]) == "" {
			missing = append(missing, name)
		}
	}
	if len(idea.Keywords) == 0 {
		missing = append(missing, "keywords")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidInput, strings.Join(missing, ", "))
	}
	return nil
}
