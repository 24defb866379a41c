package handlers

import (
	"context"
	"fmt"

	"blogforge/internal/core"

	"github.com/spf13/cobra"
)

// NewProjectCmd creates the project command for managing stored projects
func NewProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage blog projects",
		Long: `Create and inspect the blog projects ideation runs against.

Examples:
  blogforge project create --user alice --name "Urban Garden" --description "..."
  blogforge project list --user alice
  blogforge project show <id>`,
	}

	cmd.AddCommand(newProjectCreateCmd())
	cmd.AddCommand(newProjectListCmd())
	cmd.AddCommand(newProjectShowCmd())

	return cmd
}

func newProjectCreateCmd() *cobra.Command {
	var project core.Project

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.CreateProject(ctx, &project); err != nil {
				return fmt.Errorf("failed to create project: %w", err)
			}
			fmt.Println(successStyle.Render("✅ Project created: ") + project.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&project.UserID, "user", "", "Owner user ID")
	cmd.Flags().StringVar(&project.Name, "name", "", "Project name (required)")
	cmd.Flags().StringVar(&project.Description, "description", "", "Project description (required)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("description")

	return cmd
}

func newProjectListCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			projects, err := store.ListProjects(ctx, userID)
			if err != nil {
				return fmt.Errorf("failed to list projects: %w", err)
			}
			if len(projects) == 0 {
				fmt.Println("No projects found")
				return nil
			}

			printHeader("📚 Projects")
			for _, p := range projects {
				fmt.Printf("%-36s  %s  %s\n", p.ID, p.Name, mutedStyle.Render(p.CreatedAt.Format("2006-01-02")))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "Owner user ID")

	return cmd
}

func newProjectShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <project-id>",
		Short: "Show a project with its categories and posts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProjectShow(cmd.Context(), args[0])
		},
	}
}

func runProjectShow(ctx context.Context, projectID string) error {
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	project, err := store.GetProject(ctx, projectID)
	if err != nil {
		return fmt.Errorf("failed to load project: %w", err)
	}
	categories, err := store.ListCategoriesWithPostTitles(ctx, projectID)
	if err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}

	printHeader("📖 " + project.Name)
	fmt.Println(project.Description)
	fmt.Println()
	for _, c := range categories {
		fmt.Println(labelStyle.Render(c.Name))
		if len(c.PostTitles) == 0 {
			fmt.Println(mutedStyle.Render("  no posts yet"))
		}
		for _, title := range c.PostTitles {
			fmt.Printf("  • %s\n", title)
		}
	}
	return nil
}
