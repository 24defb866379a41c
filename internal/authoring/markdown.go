package authoring

import (
	"math"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// WordsPerMinute is the reading speed used for reading-time estimates.
const WordsPerMinute = 200

// RenderMarkdown converts a markdown post body to HTML.
// External links open in a new tab.
func RenderMarkdown(text string) string {
	if text == "" {
		return ""
	}

	extensions := parser.CommonExtensions | parser.AutoHeadingIDs
	mdParser := parser.NewWithExtensions(extensions)

	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.HrefTargetBlank,
	})

	return string(markdown.ToHTML([]byte(text), mdParser, renderer))
}

// CountWords counts the words of visible text in an HTML fragment.
func CountWords(htmlContent string) int {
	if strings.TrimSpace(htmlContent) == "" {
		return 0
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return len(strings.Fields(htmlContent))
	}
	doc.Find("script, style").Remove()
	return len(strings.Fields(doc.Text()))
}

// ReadingMinutes estimates reading time, rounding up, with a one minute floor.
func ReadingMinutes(words int) int {
	if words <= 0 {
		return 0
	}
	return int(math.Max(1, math.Ceil(float64(words)/WordsPerMinute)))
}
