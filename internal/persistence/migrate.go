package persistence

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"

	"blogforge/internal/logger"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migration is one numbered schema file, e.g. 001_initial_schema.sql.
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// MigrationStatus reports whether a migration has been applied.
type MigrationStatus struct {
	Version     int
	Description string
	Applied     bool
}

// MigrationManager applies the embedded schema migrations to a SQLStore
// and records applied versions in schema_migrations.
type MigrationManager struct {
	db  *SQLStore
	log *slog.Logger
}

// NewMigrationManager creates a MigrationManager for db.
func NewMigrationManager(db *SQLStore) *MigrationManager {
	return &MigrationManager{db: db, log: logger.Get().With("component", "migrations")}
}

// Migrate applies every pending migration in version order, each in its
// own transaction.
func (m *MigrationManager) Migrate(ctx context.Context) error {
	status, migrations, err := m.plan(ctx)
	if err != nil {
		return err
	}

	applied := 0
	for i, st := range status {
		if st.Applied {
			continue
		}
		if err := m.apply(ctx, migrations[i]); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", st.Version, err)
		}
		applied++
	}

	if applied == 0 {
		m.log.Debug("Schema already up to date")
		return nil
	}
	m.log.Info("Migrations applied", "count", applied)
	return nil
}

// Status lists every embedded migration with its applied flag.
func (m *MigrationManager) Status(ctx context.Context) ([]MigrationStatus, error) {
	status, _, err := m.plan(ctx)
	return status, err
}

// Rollback forgets the last applied migration. Schema changes are not reverted.
func (m *MigrationManager) Rollback(ctx context.Context) error {
	if err := m.ensureTable(ctx); err != nil {
		return err
	}
	versions, err := m.appliedVersions(ctx)
	if err != nil {
		return err
	}
	if len(versions) == 0 {
		return fmt.Errorf("no migrations to rollback")
	}

	last := versions[len(versions)-1]
	if _, err := m.db.exec(ctx, m.db.db, `DELETE FROM schema_migrations WHERE version = $1`, last); err != nil {
		return fmt.Errorf("failed to remove migration record: %w", err)
	}
	m.log.Warn("Migration record removed, tables left in place", "version", last)
	return nil
}

// plan pairs the embedded migrations with their applied state. Both slices
// share indexes.
func (m *MigrationManager) plan(ctx context.Context) ([]MigrationStatus, []Migration, error) {
	if err := m.ensureTable(ctx); err != nil {
		return nil, nil, err
	}
	versions, err := m.appliedVersions(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read applied migrations: %w", err)
	}
	migrations, err := loadMigrations(migrationFiles)
	if err != nil {
		return nil, nil, err
	}

	done := make(map[int]bool, len(versions))
	for _, v := range versions {
		done[v] = true
	}
	status := make([]MigrationStatus, len(migrations))
	for i, mig := range migrations {
		status[i] = MigrationStatus{Version: mig.Version, Description: mig.Description, Applied: done[mig.Version]}
	}
	return status, migrations, nil
}

func (m *MigrationManager) ensureTable(ctx context.Context) error {
	_, err := m.db.exec(ctx, m.db.db, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INT PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}
	return nil
}

func (m *MigrationManager) appliedVersions(ctx context.Context) ([]int, error) {
	rows, err := m.db.queryRows(ctx, m.db.db, `SELECT version FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

func (m *MigrationManager) apply(ctx context.Context, mig Migration) error {
	m.log.Info("Applying migration", "version", mig.Version, "description", mig.Description)

	tx, err := m.db.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, mig.SQL); err != nil {
		return fmt.Errorf("failed to execute migration SQL: %w", err)
	}
	if _, err := m.db.exec(ctx, tx,
		`INSERT INTO schema_migrations (version, description) VALUES ($1, $2) ON CONFLICT (version) DO NOTHING`,
		mig.Version, mig.Description,
	); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}
	return tx.Commit()
}

// loadMigrations reads NNN_description.sql files from fsys, sorted by version.
func loadMigrations(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	var migrations []Migration
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		prefix, rest, ok := strings.Cut(strings.TrimSuffix(name, ".sql"), "_")
		version, err := strconv.Atoi(prefix)
		if !ok || err != nil {
			logger.Warn("Skipping migration with malformed name", "file", name)
			continue
		}

		content, err := fs.ReadFile(fsys, path.Join("migrations", name))
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		migrations = append(migrations, Migration{
			Version:     version,
			Description: strings.ReplaceAll(rest, "_", " "),
			SQL:         string(content),
		})
	}

	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })
	return migrations, nil
}
