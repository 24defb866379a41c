package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"blogforge/internal/authoring"
	"blogforge/internal/config"
	"blogforge/internal/core"
	"blogforge/internal/visual"

	"github.com/spf13/cobra"
)

// NewEnhanceCmd creates the enhance command for project descriptions
func NewEnhanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enhance <description>",
		Short: "Expand a short project description",
		Long: `Rewrite a project description of at least 30 words into a fuller one that
names the niche, audience, purpose, content types and tone.

Example:
  blogforge enhance "A blog about growing food in small apartments ..."`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			author, err := newAuthor(cmd.Context())
			if err != nil {
				return err
			}
			enhanced, err := author.EnhanceDescription(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Println(enhanced)
			return nil
		},
	}
}

// NewCategoriesCmd creates the categories command
func NewCategoriesCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "categories <description>",
		Short: "Suggest starter categories for a blog",
		Long: `Recommend 4-5 categories for a blog description of at least 30 words, each
marked as needed now or later.

Example:
  blogforge categories "A blog about growing food in small apartments ..."`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			author, err := newAuthor(cmd.Context())
			if err != nil {
				return err
			}
			categories, err := author.SuggestCategories(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(categories)
			}

			printHeader("🗂  Suggested categories")
			for _, c := range categories {
				emoji, err := author.SuggestEmoji(cmd.Context(), c.Category)
				if err != nil {
					emoji = "•"
				}
				line := fmt.Sprintf("%s %s", emoji, c.Category)
				if c.IsRequiredNow {
					line += successStyle.Render("  (start now)")
				} else {
					line += mutedStyle.Render("  (later)")
				}
				fmt.Println(line)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print categories as JSON")

	return cmd
}

// NewDraftCmd creates the draft command that writes a full post for an idea
func NewDraftCmd() *cobra.Command {
	var (
		ideaFile  string
		html      bool
		thumbnail string
	)

	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Draft a blog post from a content idea",
		Long: `Write a full post for a content idea read from a JSON file (or "-" for
stdin), as produced by 'blogforge ideas --json'.

Examples:
  blogforge draft --idea idea.json
  jq '.ideas[0]' result.json | blogforge draft --idea - --html

  # Also render the suggested thumbnail (needs an OpenAI API key)
  blogforge draft --idea idea.json --thumbnail out/thumb.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDraft(cmd.Context(), ideaFile, html, thumbnail)
		},
	}

	cmd.Flags().StringVar(&ideaFile, "idea", "", `Content idea JSON file, or "-" for stdin (required)`)
	cmd.Flags().BoolVar(&html, "html", false, "Print rendered HTML instead of markdown")
	cmd.Flags().StringVar(&thumbnail, "thumbnail", "", "Generate the suggested thumbnail image at this path")
	_ = cmd.MarkFlagRequired("idea")

	return cmd
}

func runDraft(ctx context.Context, ideaFile string, html bool, thumbnail string) error {
	idea, err := readIdea(ideaFile)
	if err != nil {
		return err
	}

	author, err := newAuthor(ctx)
	if err != nil {
		return err
	}
	post, err := author.DraftPost(ctx, idea)
	if err != nil {
		return err
	}

	if html {
		fmt.Println(post.HTML)
	} else {
		fmt.Printf("# %s\n\n%s\n", post.Title, post.Content)
	}
	fmt.Fprintln(os.Stderr, mutedStyle.Render(fmt.Sprintf("%d words · %d min read · %s",
		post.WordCount, post.ReadingMinutes, post.MetaDescription)))

	if thumbnail == "" {
		return nil
	}
	cfg := config.Get()
	gen, err := visual.NewGenerator(visual.Options{
		APIKey:  cfg.AI.OpenAI.APIKey,
		BaseURL: cfg.AI.OpenAI.BaseURL,
	})
	if err != nil {
		return err
	}
	thumb, err := gen.Generate(ctx, post.ThumbnailImagePrompt, thumbnail, 1536, 1024)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, successStyle.Render("🖼  Thumbnail saved to "+thumb.Path))
	return nil
}

func readIdea(path string) (core.ContentIdea, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return core.ContentIdea{}, fmt.Errorf("failed to open idea file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var idea core.ContentIdea
	if err := json.NewDecoder(r).Decode(&idea); err != nil {
		return core.ContentIdea{}, fmt.Errorf("failed to parse idea: %w", err)
	}
	return idea, nil
}

func newAuthor(ctx context.Context) (*authoring.Author, error) {
	client, err := newLLMClient(ctx)
	if err != nil {
		return nil, err
	}
	return authoring.NewAuthor(client), nil
}
