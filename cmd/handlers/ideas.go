package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"blogforge/internal/core"
	"blogforge/internal/persistence"
	"blogforge/internal/tui"

	"github.com/spf13/cobra"
)

// NewIdeasCmd creates the ideas command that runs the full ideation pipeline
func NewIdeasCmd() *cobra.Command {
	var (
		projectID   string
		description string
		categories  []string
		jsonOutput  bool
		browse      bool
		save        bool
	)

	cmd := &cobra.Command{
		Use:   "ideas [query]",
		Short: "Generate trend-grounded content ideas for a project",
		Long: `Generate 5-10 content ideas for a blog.

The project is read from the configured database with --project, or built on
the fly from --description and --category flags. The query narrows the topic;
it may be empty.

Examples:
  # Ideas for a stored project
  blogforge ideas composting --project 4f1c...

  # Ideas for an ad-hoc project
  blogforge ideas composting \
    --description "A blog about urban gardening for apartment dwellers" \
    --category "Balcony Gardening=5 Herbs for Small Spaces;Winter Care"

  # Browse results and save the good ones
  blogforge ideas composting --project 4f1c... --browse --save`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			return runIdeas(cmd.Context(), ideasOptions{
				projectID:   projectID,
				description: description,
				categories:  categories,
				query:       query,
				jsonOutput:  jsonOutput,
				browse:      browse,
				save:        save,
			})
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "ID of a stored project")
	cmd.Flags().StringVar(&description, "description", "", "Project description for an ad-hoc project")
	cmd.Flags().StringArrayVar(&categories, "category", nil, `Existing category for an ad-hoc project, as "Name=Post title;Post title"`)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the full result as JSON")
	cmd.Flags().BoolVar(&browse, "browse", false, "Browse the ideas in a terminal UI")
	cmd.Flags().BoolVar(&save, "save", false, "Save ideas to the project (all of them, or the ones picked with --browse)")

	return cmd
}

type ideasOptions struct {
	projectID   string
	description string
	categories  []string
	query       string
	jsonOutput  bool
	browse      bool
	save        bool
}

func runIdeas(ctx context.Context, opts ideasOptions) error {
	if (opts.projectID == "") == (opts.description == "") {
		return fmt.Errorf("exactly one of --project or --description is required")
	}

	var (
		store persistence.Store
		err   error
	)
	projectID := opts.projectID
	if projectID != "" {
		store, err = openStore(ctx)
	} else {
		store, projectID, err = adhocProject(ctx, opts.description, opts.categories)
	}
	if err != nil {
		return err
	}
	defer store.Close()

	pipeline, _, err := newPipeline(ctx, store)
	if err != nil {
		return err
	}

	result, err := pipeline.Run(ctx, projectID, opts.query)
	if err != nil {
		return fmt.Errorf("ideation failed: %w", err)
	}

	saveIdea := func(idea core.ContentIdea) error {
		return store.Ideas().Create(ctx, &core.SavedIdea{ProjectID: projectID, ContentIdea: idea})
	}

	switch {
	case opts.browse:
		var saver tui.SaveFunc
		if opts.save {
			saver = saveIdea
		}
		return tui.Run(result.Ideas, saver)
	case opts.jsonOutput:
		if err := printJSON(result); err != nil {
			return err
		}
	default:
		printIdeationResult(result)
	}

	if opts.save {
		saveAll(result.Ideas, saveIdea)
	}
	return nil
}

// adhocProject seeds an in-memory store with a project built from flags
func adhocProject(ctx context.Context, description string, categories []string) (persistence.Store, string, error) {
	store := persistence.NewMemoryStore()
	project := &core.Project{Name: "ad-hoc", Description: description}
	if err := store.CreateProject(ctx, project); err != nil {
		return nil, "", err
	}

	for _, spec := range categories {
		name, titles, _ := strings.Cut(spec, "=")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, "", fmt.Errorf("invalid --category %q: name is required", spec)
		}
		category := &core.Category{ProjectID: project.ID, Name: name}
		if err := store.CreateCategory(ctx, category); err != nil {
			return nil, "", err
		}
		for _, title := range strings.Split(titles, ";") {
			if title = strings.TrimSpace(title); title == "" {
				continue
			}
			post := &core.Post{ProjectID: project.ID, CategoryID: category.ID, Title: title}
			if err := store.CreatePost(ctx, post); err != nil {
				return nil, "", err
			}
		}
	}
	return store, project.ID, nil
}

func saveAll(ideas []core.ContentIdea, save tui.SaveFunc) {
	saved := 0
	for _, idea := range ideas {
		err := save(idea)
		switch {
		case errors.Is(err, persistence.ErrDuplicateTitle):
			fmt.Println(warnStyle.Render("  skipped duplicate: " + idea.Title))
		case err != nil:
			fmt.Println(warnStyle.Render(fmt.Sprintf("  failed to save %q: %v", idea.Title, err)))
		default:
			saved++
		}
	}
	fmt.Println(successStyle.Render(fmt.Sprintf("✅ Saved %d of %d ideas", saved, len(ideas))))
}

func printIdeationResult(result *core.IdeationResult) {
	printHeader(fmt.Sprintf("💡 %d content ideas", len(result.Ideas)))
	fmt.Println(labelStyle.Render("Primary keywords: ") + strings.Join(result.Keywords.PrimaryKeywords, ", "))
	fmt.Println(labelStyle.Render("Long-tail keywords: ") + strings.Join(result.Keywords.LongTailKeywords, ", "))
	if result.DegradedTrends > 0 {
		fmt.Println(warnStyle.Render(fmt.Sprintf("⚠️  Trend data unavailable for %d lookups", result.DegradedTrends)))
	}
	fmt.Println()

	for i, idea := range result.Ideas {
		fmt.Printf("%d. %s\n", i+1, tui.RenderIdea(idea))
		fmt.Println()
	}
	fmt.Println(mutedStyle.Render(fmt.Sprintf("request %s · %s", result.RequestID, result.Duration.Round(time.Millisecond))))
}
