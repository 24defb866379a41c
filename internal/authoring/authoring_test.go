package authoring

import (
	"context"
	"errors"
	"strings"
	"testing"

	"blogforge/internal/core"
	"blogforge/internal/llm"
	"blogforge/test/mocks"
)

var longDescription = strings.Repeat("gardening ", MinDescriptionWords)

func TestEnhanceDescription(t *testing.T) {
	client := &mocks.MockLLMClient{Responses: map[string]string{
		EnhanceDescriptionPrompt.Name: "  An expanded description.  ",
	}}
	got, err := NewAuthor(client).EnhanceDescription(context.Background(), longDescription)
	if err != nil {
		t.Fatalf("EnhanceDescription() error = %v", err)
	}
	if got != "An expanded description." {
		t.Errorf("EnhanceDescription() = %q", got)
	}
}

func TestDescriptionValidation(t *testing.T) {
	tests := []struct {
		name        string
		description string
	}{
		{"empty", ""},
		{"whitespace", "   \n"},
		{"too short", "A blog about gardening on balconies."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mocks.MockLLMClient{}
			author := NewAuthor(client)

			if _, err := author.EnhanceDescription(context.Background(), tt.description); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("EnhanceDescription() error = %v, want ErrInvalidInput", err)
			}
			if _, err := author.SuggestCategories(context.Background(), tt.description); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("SuggestCategories() error = %v, want ErrInvalidInput", err)
			}
			if len(client.Calls()) != 0 {
				t.Error("LLM should not be called for invalid descriptions")
			}
		})
	}
}

func TestSuggestCategories(t *testing.T) {
	client := &mocks.MockLLMClient{Responses: map[string]string{
		CategoriesPrompt.Name: `{"categories":[
			{"category":"Balcony Gardening","isRequiredNow":true},
			{"category":"Composting","isRequiredNow":true},
			{"category":"Indoor Herbs","isRequiredNow":false},
			{"category":"Tools & Gear","isRequiredNow":false}
		]}`,
	}}
	got, err := NewAuthor(client).SuggestCategories(context.Background(), longDescription)
	if err != nil {
		t.Fatalf("SuggestCategories() error = %v", err)
	}
	if len(got) != 4 || got[0].Category != "Balcony Gardening" || !got[0].IsRequiredNow || got[2].IsRequiredNow {
		t.Errorf("SuggestCategories() = %+v", got)
	}
}

func TestSuggestCategoriesShapeViolations(t *testing.T) {
	tests := map[string]string{
		"too few":       `{"categories":[{"category":"A","isRequiredNow":true}]}`,
		"name too long": `{"categories":[{"category":"` + strings.Repeat("x", 51) + `","isRequiredNow":true},{"category":"B","isRequiredNow":true},{"category":"C","isRequiredNow":true},{"category":"D","isRequiredNow":true}]}`,
		"missing flag":  `{"categories":[{"category":"A"},{"category":"B","isRequiredNow":true},{"category":"C","isRequiredNow":true},{"category":"D","isRequiredNow":true}]}`,
	}
	for name, resp := range tests {
		t.Run(name, func(t *testing.T) {
			client := &mocks.MockLLMClient{Responses: map[string]string{CategoriesPrompt.Name: resp}}
			if _, err := NewAuthor(client).SuggestCategories(context.Background(), longDescription); !llm.IsSchemaValidation(err) {
				t.Errorf("expected schema validation error, got %v", err)
			}
		})
	}
}

func TestSuggestEmoji(t *testing.T) {
	client := &mocks.MockLLMClient{Responses: map[string]string{EmojiPrompt.Name: "\"🌱\"\n"}}
	author := NewAuthor(client)

	got, err := author.SuggestEmoji(context.Background(), "Balcony Gardening")
	if err != nil {
		t.Fatalf("SuggestEmoji() error = %v", err)
	}
	if got != "🌱" {
		t.Errorf("SuggestEmoji() = %q", got)
	}

	if _, err := author.SuggestEmoji(context.Background(), " "); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("SuggestEmoji(empty) error = %v, want ErrInvalidInput", err)
	}
}

func testIdea() core.ContentIdea {
	return core.ContentIdea{
		Title:       "Composting on a Balcony",
		Keywords:    []string{"composting", "balcony"},
		Description: "How to compost in a small space.",
		Audience:    "Apartment gardeners",
		Tone:        "friendly",
		Length:      "short",
	}
}

func TestDraftPost(t *testing.T) {
	client := &mocks.MockLLMClient{Responses: map[string]string{
		BlogPostPrompt.Name: `{
			"title": "Composting on a Balcony",
			"content": "Start small.\n\n## Pick a bin\n\nA sealed bin keeps smells in.",
			"metaDescription": "A short guide to balcony composting.",
			"keywords": ["composting", "balcony"],
			"thumbnailImagePrompt": "A compost bin on a sunny balcony"
		}`,
	}}

	post, err := NewAuthor(client).DraftPost(context.Background(), testIdea())
	if err != nil {
		t.Fatalf("DraftPost() error = %v", err)
	}
	if !strings.Contains(post.HTML, `<h2 id="pick-a-bin">Pick a bin</h2>`) {
		t.Errorf("HTML not rendered: %s", post.HTML)
	}
	if post.WordCount != 11 {
		t.Errorf("WordCount = %d, want 11", post.WordCount)
	}
	if post.ReadingMinutes != 1 {
		t.Errorf("ReadingMinutes = %d, want 1", post.ReadingMinutes)
	}

	brief := client.Calls()[0].Vars["brief"]
	if !strings.Contains(brief, "Keywords: composting, balcony\n") {
		t.Errorf("brief missing keywords:\n%s", brief)
	}
	if strings.Contains(brief, "Search Intent") || strings.Contains(brief, "Trend Insights") {
		t.Errorf("brief should omit empty optional fields:\n%s", brief)
	}
}

func TestDraftPostRequiresBrief(t *testing.T) {
	idea := testIdea()
	idea.Keywords = nil
	idea.Tone = ""

	_, err := NewAuthor(&mocks.MockLLMClient{}).DraftPost(context.Background(), idea)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if !strings.Contains(err.Error(), "tone, keywords") {
		t.Errorf("error should name missing fields: %v", err)
	}
}

func TestBriefOptionalFields(t *testing.T) {
	idea := testIdea()
	idea.SearchIntent = "informational"
	idea.TrendInsights = "Rising interest"

	brief := Brief(idea)
	if !strings.HasSuffix(brief, "Search Intent: informational\nTrend Insights: Rising interest\n") {
		t.Errorf("unexpected brief:\n%s", brief)
	}
}

func TestReadingMinutes(t *testing.T) {
	tests := []struct {
		words int
		want  int
	}{
		{0, 0},
		{1, 1},
		{200, 1},
		{201, 2},
		{1000, 5},
	}
	for _, tt := range tests {
		if got := ReadingMinutes(tt.words); got != tt.want {
			t.Errorf("ReadingMinutes(%d) = %d, want %d", tt.words, got, tt.want)
		}
	}
}

func TestCountWordsIgnoresMarkup(t *testing.T) {
	got := CountWords(`<p>Hello <strong>brave</strong> world</p><script>var x = 1;</script>`)
	if got != 3 {
		t.Errorf("CountWords() = %d, want 3", got)
	}
}
