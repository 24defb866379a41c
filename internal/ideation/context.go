package ideation

import (
	"fmt"
	"strings"

	"blogforge/internal/core"
)

// NoPostsMarker is rendered under a category that has no posts.
const NoPostsMarker = "No posts yet"

// BuildContext renders the project snapshot that grounds every LLM stage.
// It is pure: identical input always yields byte-identical output.
func BuildContext(description string, categories []core.CategoryPosts) string {
	totalPosts := 0
	for _, c := range categories {
		totalPosts += len(c.PostTitles)
	}

	var b strings.Builder
	b.WriteString("BLOG OVERVIEW:\n")
	b.WriteString(description)
	b.WriteString("\n\nCURRENT CONTENT STATUS:\n")
	fmt.Fprintf(&b, "This blog has %d categories with a total of %d posts published.", len(categories), totalPosts)
	b.WriteString("\n\nCATEGORIES AND POSTS:")

	for _, c := range categories {
		fmt.Fprintf(&b, "\n\n• %s (%d posts):", c.Name, len(c.PostTitles))
		if len(c.PostTitles) == 0 {
			b.WriteString("\n  - " + NoPostsMarker)
			continue
		}
		for _, title := range c.PostTitles {
			b.WriteString("\n  - " + title)
		}
	}

	return b.String()
}
