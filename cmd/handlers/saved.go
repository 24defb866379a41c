package handlers

import (
	"fmt"

	"github.com/spf13/cobra"

	"blogforge/internal/core"
	"blogforge/internal/tui"
)

// NewSavedCmd creates the saved command for a project's saved content ideas
func NewSavedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "saved",
		Short: "Manage saved content ideas",
		Long: `List, browse and delete the content ideas saved for a project.

Examples:
  blogforge saved list <project-id>
  blogforge saved list <project-id> --browse
  blogforge saved delete <project-id> <idea-id>`,
	}

	cmd.AddCommand(newSavedListCmd())
	cmd.AddCommand(newSavedDeleteCmd())

	return cmd
}

func newSavedListCmd() *cobra.Command {
	var (
		jsonOutput bool
		browse     bool
	)

	cmd := &cobra.Command{
		Use:   "list <project-id>",
		Short: "List saved ideas, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			saved, err := store.Ideas().List(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to list saved ideas: %w", err)
			}

			switch {
			case jsonOutput:
				return printJSON(saved)
			case browse:
				ideas := make([]core.ContentIdea, len(saved))
				for i, s := range saved {
					ideas[i] = s.ContentIdea
				}
				return tui.Run(ideas, nil)
			}

			if len(saved) == 0 {
				fmt.Println("No saved ideas")
				return nil
			}
			printHeader(fmt.Sprintf("🔖 %d saved ideas", len(saved)))
			for _, s := range saved {
				fmt.Printf("%s  %s\n", mutedStyle.Render(s.ID), s.Title)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print saved ideas as JSON")
	cmd.Flags().BoolVar(&browse, "browse", false, "Browse saved ideas in a terminal UI")

	return cmd
}

func newSavedDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <project-id> <idea-id>",
		Short: "Delete a saved idea",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Ideas().Delete(ctx, args[0], args[1]); err != nil {
				return fmt.Errorf("failed to delete saved idea: %w", err)
			}
			fmt.Println(successStyle.Render("✅ Saved idea deleted"))
			return nil
		},
	}
}
