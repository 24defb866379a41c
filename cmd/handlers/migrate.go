package handlers

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"blogforge/internal/logger"
	"blogforge/internal/persistence"
)

// NewMigrateCmd creates the migrate command for the SQL schema
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
		Long: `Apply and inspect the embedded schema migrations for projects, categories,
posts and saved research content ideas. Applied versions are recorded in
schema_migrations. Needs database.driver set to postgres or sqlite3.

Examples:
  blogforge migrate up
  blogforge migrate status
  blogforge migrate rollback --force`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd.Context(), runMigrateUp)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List migrations and whether they are applied",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd.Context(), runMigrateStatus)
		},
	})
	cmd.AddCommand(newMigrateRollbackCmd())

	return cmd
}

func newMigrateRollbackCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "rollback",
		Short: "Forget the last applied migration",
		Long: `Remove the newest record from schema_migrations so 'migrate up' applies it
again. Tables are left in place; drop them by hand if that is the intent.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force && !confirm("Forget the last applied migration?") {
				fmt.Println("Rollback cancelled")
				return nil
			}
			return withMigrator(cmd.Context(), runMigrateRollback)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip the confirmation prompt")

	return cmd
}

func runMigrateUp(ctx context.Context, migrator *persistence.MigrationManager) error {
	logger.Info("Applying database migrations")
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	fmt.Println(successStyle.Render("✅ Schema is up to date"))
	return nil
}

func runMigrateStatus(ctx context.Context, migrator *persistence.MigrationManager) error {
	status, err := migrator.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}
	if len(status) == 0 {
		fmt.Println("No migrations found")
		return nil
	}

	printHeader("📊 Migrations")
	pending := 0
	for _, m := range status {
		state := successStyle.Render("applied")
		if !m.Applied {
			state = warnStyle.Render("pending")
			pending++
		}
		fmt.Printf("%03d  %-18s %s\n", m.Version, state, m.Description)
	}

	if pending > 0 {
		fmt.Println(mutedStyle.Render(fmt.Sprintf("\n%d pending. Run 'blogforge migrate up' to apply.", pending)))
	}
	return nil
}

func runMigrateRollback(ctx context.Context, migrator *persistence.MigrationManager) error {
	if err := migrator.Rollback(ctx); err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}
	fmt.Println(warnStyle.Render("⚠️  Migration record removed. Tables were not dropped."))
	return nil
}

// withMigrator opens the configured SQL database for the duration of fn
func withMigrator(ctx context.Context, fn func(context.Context, *persistence.MigrationManager) error) error {
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	sqlStore, ok := store.(*persistence.SQLStore)
	if !ok {
		return fmt.Errorf("migrations need a SQL database; set database.driver to postgres or sqlite3")
	}
	return fn(ctx, persistence.NewMigrationManager(sqlStore))
}

func confirm(question string) bool {
	fmt.Printf("%s (yes/no): ", question)
	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(answer), "yes")
}
