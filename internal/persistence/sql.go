package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"           // Postgres driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"blogforge/internal/config"
	"blogforge/internal/core"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
	DriverMemory   = "memory"
)

// Open creates the store selected by cfg.Driver.
func Open(cfg config.Database) (Store, error) {
	switch cfg.Driver {
	case DriverMemory, "":
		return NewMemoryStore(), nil
	case DriverPostgres, DriverSQLite:
		return NewSQLStore(cfg.Driver, cfg.ConnectionString, cfg.MaxOpenConns, cfg.MaxIdleConns)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

// SQLStore implements Store over database/sql for PostgreSQL and SQLite.
type SQLStore struct {
	db     *sql.DB
	driver string
	ideas  *sqlIdeaRepo
}

// NewSQLStore opens and pings a database connection
func NewSQLStore(driver, connectionString string, maxOpen, maxIdle int) (*SQLStore, error) {
	db, err := sql.Open(driver, connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite in-memory databases are per connection
	if driver == DriverSQLite {
		maxOpen, maxIdle = 1, 1
	}
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}
	if maxIdle > 0 {
		db.SetMaxIdleConns(maxIdle)
	}
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLStore{db: db, driver: driver}
	s.ideas = &sqlIdeaRepo{store: s}
	return s, nil
}

func (s *SQLStore) Ideas() IdeaRepository { return s.ideas }

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate applies the embedded schema migrations.
func (s *SQLStore) Migrate(ctx context.Context) error {
	return NewMigrationManager(s).Migrate(ctx)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

var placeholderPattern = regexp.MustCompile(`\$\d+`)

// rebind rewrites $N placeholders for drivers that only accept "?".
// Queries must use each placeholder once, in ascending order.
func (s *SQLStore) rebind(query string) string {
	if s.driver != DriverSQLite {
		return query
	}
	return placeholderPattern.ReplaceAllString(query, "?")
}

func (s *SQLStore) exec(ctx context.Context, q querier, query string, args ...interface{}) (sql.Result, error) {
	return q.ExecContext(ctx, s.rebind(query), args...)
}

func (s *SQLStore) queryRow(ctx context.Context, q querier, query string, args ...interface{}) *sql.Row {
	return q.QueryRowContext(ctx, s.rebind(query), args...)
}

func (s *SQLStore) queryRows(ctx context.Context, q querier, query string, args ...interface{}) (*sql.Rows, error) {
	return q.QueryContext(ctx, s.rebind(query), args...)
}

// Projects

func (s *SQLStore) CreateProject(ctx context.Context, project *core.Project) error {
	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	if project.CreatedAt.IsZero() {
		project.CreatedAt = time.Now().UTC()
	}
	_, err := s.exec(ctx, s.db, `
		INSERT INTO projects (id, user_id, name, description, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, project.ID, project.UserID, project.Name, project.Description, project.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}
	return nil
}

func (s *SQLStore) GetProject(ctx context.Context, id string) (*core.Project, error) {
	row := s.queryRow(ctx, s.db, `
		SELECT id, user_id, name, description, created_at
		FROM projects WHERE id = $1
	`, id)

	var p core.Project
	if err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return &p, nil
}

func (s *SQLStore) ListProjects(ctx context.Context, userID string) ([]core.Project, error) {
	rows, err := s.queryRows(ctx, s.db, `
		SELECT id, user_id, name, description, created_at
		FROM projects WHERE user_id = $1
		ORDER BY created_at DESC, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []core.Project
	for rows.Next() {
		var p core.Project
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (s *SQLStore) GetProjectDescription(ctx context.Context, projectID string) (string, error) {
	var description string
	err := s.queryRow(ctx, s.db, `SELECT description FROM projects WHERE id = $1`, projectID).Scan(&description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("project %s: %w", projectID, ErrNotFound)
		}
		return "", fmt.Errorf("failed to get project description: %w", err)
	}
	return description, nil
}

func (s *SQLStore) ListCategoriesWithPostTitles(ctx context.Context, projectID string) ([]core.CategoryPosts, error) {
	rows, err := s.queryRows(ctx, s.db, `
		SELECT c.id, c.name, p.title
		FROM categories c
		LEFT JOIN posts p ON p.category_id = c.id
		WHERE c.project_id = $1
		ORDER BY c.name, c.id, p.created_at, p.id
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []core.CategoryPosts{}
	lastID := ""
	for rows.Next() {
		var id, name string
		var title sql.NullString
		if err := rows.Scan(&id, &name, &title); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		if id != lastID {
			categories = append(categories, core.CategoryPosts{Name: name, PostTitles: []string{}})
			lastID = id
		}
		if title.Valid {
			last := &categories[len(categories)-1]
			last.PostTitles = append(last.PostTitles, title.String)
		}
	}
	return categories, rows.Err()
}

// Categories and posts

func (s *SQLStore) CreateCategory(ctx context.Context, category *core.Category) error {
	return s.createCategory(ctx, s.db, category)
}

func (s *SQLStore) createCategory(ctx context.Context, q querier, category *core.Category) error {
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	if category.CreatedAt.IsZero() {
		category.CreatedAt = time.Now().UTC()
	}
	_, err := s.exec(ctx, q, `
		INSERT INTO categories (id, project_id, name, created_at)
		VALUES ($1, $2, $3, $4)
	`, category.ID, category.ProjectID, category.Name, category.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}
	return nil
}

func (s *SQLStore) FindCategoryByName(ctx context.Context, projectID, name string) (*core.Category, error) {
	return s.findCategoryByName(ctx, s.db, projectID, name)
}

func (s *SQLStore) findCategoryByName(ctx context.Context, q querier, projectID, name string) (*core.Category, error) {
	var c core.Category
	err := s.queryRow(ctx, q, `
		SELECT id, project_id, name, created_at
		FROM categories WHERE project_id = $1 AND name = $2
	`, projectID, name).Scan(&c.ID, &c.ProjectID, &c.Name, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("category %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &c, nil
}

func (s *SQLStore) CreatePost(ctx context.Context, post *core.Post) error {
	return s.createPost(ctx, s.db, post)
}

func (s *SQLStore) createPost(ctx context.Context, q querier, post *core.Post) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	keywordsJSON, err := json.Marshal(nonNil(post.Keywords))
	if err != nil {
		return fmt.Errorf("failed to marshal keywords: %w", err)
	}
	_, err = s.exec(ctx, q, `
		INSERT INTO posts (id, project_id, category_id, title, content, meta_description, keywords, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, post.ID, post.ProjectID, post.CategoryID, post.Title, post.Content, post.MetaDescription, string(keywordsJSON), post.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}

func (s *SQLStore) PublishPost(ctx context.Context, post *core.Post, categoryName, consumedIdeaID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	category, err := s.findCategoryByName(ctx, tx, post.ProjectID, categoryName)
	if errors.Is(err, ErrNotFound) {
		category = &core.Category{ProjectID: post.ProjectID, Name: categoryName}
		err = s.createCategory(ctx, tx, category)
	}
	if err != nil {
		return err
	}

	post.CategoryID = category.ID
	if err := s.createPost(ctx, tx, post); err != nil {
		return err
	}

	if consumedIdeaID != "" {
		if err := s.ideas.delete(ctx, tx, post.ProjectID, consumedIdeaID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit post: %w", err)
	}
	return nil
}

// sqlIdeaRepo implements IdeaRepository on top of SQLStore
type sqlIdeaRepo struct {
	store *SQLStore
}

const ideaColumns = `id, project_id, title, keywords, description, audience, tone, length,
	search_intent, suggested_category, trend_insights, created_at, updated_at`

func (r *sqlIdeaRepo) List(ctx context.Context, projectID string) ([]core.SavedIdea, error) {
	rows, err := r.store.queryRows(ctx, r.store.db, `
		SELECT `+ideaColumns+`
		FROM research_content_ideas WHERE project_id = $1
		ORDER BY created_at DESC, id
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ideas: %w", err)
	}
	defer rows.Close()

	ideas := []core.SavedIdea{}
	for rows.Next() {
		idea, err := scanIdea(rows)
		if err != nil {
			return nil, err
		}
		ideas = append(ideas, *idea)
	}
	return ideas, rows.Err()
}

func (r *sqlIdeaRepo) Get(ctx context.Context, projectID, id string) (*core.SavedIdea, error) {
	row := r.store.queryRow(ctx, r.store.db, `
		SELECT `+ideaColumns+`
		FROM research_content_ideas WHERE project_id = $1 AND id = $2
	`, projectID, id)
	idea, err := scanIdea(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("idea %s: %w", id, ErrNotFound)
	}
	return idea, err
}

func (r *sqlIdeaRepo) Create(ctx context.Context, idea *core.SavedIdea) error {
	if err := ValidateIdea(idea.ContentIdea); err != nil {
		return err
	}
	if err := r.checkTitle(ctx, idea.ProjectID, idea.Title, ""); err != nil {
		return err
	}

	if idea.ID == "" {
		idea.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	idea.CreatedAt, idea.UpdatedAt = now, now

	keywordsJSON, err := json.Marshal(idea.Keywords)
	if err != nil {
		return fmt.Errorf("failed to marshal keywords: %w", err)
	}
	_, err = r.store.exec(ctx, r.store.db, `
		INSERT INTO research_content_ideas (`+ideaColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, idea.ID, idea.ProjectID, idea.Title, string(keywordsJSON), idea.Description, idea.Audience,
		idea.Tone, idea.Length, idea.SearchIntent, idea.SuggestedCategory, idea.TrendInsights,
		idea.CreatedAt, idea.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert idea: %w", err)
	}
	return nil
}

func (r *sqlIdeaRepo) Update(ctx context.Context, idea *core.SavedIdea) error {
	if err := ValidateIdea(idea.ContentIdea); err != nil {
		return err
	}
	if err := r.checkTitle(ctx, idea.ProjectID, idea.Title, idea.ID); err != nil {
		return err
	}

	idea.UpdatedAt = time.Now().UTC()
	keywordsJSON, err := json.Marshal(idea.Keywords)
	if err != nil {
		return fmt.Errorf("failed to marshal keywords: %w", err)
	}
	res, err := r.store.exec(ctx, r.store.db, `
		UPDATE research_content_ideas SET
			title = $1, keywords = $2, description = $3, audience = $4, tone = $5, length = $6,
			search_intent = $7, suggested_category = $8, trend_insights = $9, updated_at = $10
		WHERE project_id = $11 AND id = $12
	`, idea.Title, string(keywordsJSON), idea.Description, idea.Audience, idea.Tone, idea.Length,
		idea.SearchIntent, idea.SuggestedCategory, idea.TrendInsights, idea.UpdatedAt,
		idea.ProjectID, idea.ID)
	if err != nil {
		return fmt.Errorf("failed to update idea: %w", err)
	}
	if err := requireAffected(res, idea.ID); err != nil {
		return err
	}

	// Reload to pick up the stored creation time
	stored, err := r.Get(ctx, idea.ProjectID, idea.ID)
	if err != nil {
		return err
	}
	*idea = *stored
	return nil
}

func (r *sqlIdeaRepo) Delete(ctx context.Context, projectID, id string) error {
	return r.delete(ctx, r.store.db, projectID, id)
}

func (r *sqlIdeaRepo) delete(ctx context.Context, q querier, projectID, id string) error {
	res, err := r.store.exec(ctx, q, `DELETE FROM research_content_ideas WHERE project_id = $1 AND id = $2`, projectID, id)
	if err != nil {
		return fmt.Errorf("failed to delete idea: %w", err)
	}
	return requireAffected(res, id)
}

// checkTitle rejects title when another idea of the project already uses it.
func (r *sqlIdeaRepo) checkTitle(ctx context.Context, projectID, title, excludeID string) error {
	var count int
	err := r.store.queryRow(ctx, r.store.db, `
		SELECT COUNT(*) FROM research_content_ideas
		WHERE project_id = $1 AND title = $2 AND id <> $3
	`, projectID, title, excludeID).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check idea title: %w", err)
	}
	if count > 0 {
		return ErrDuplicateTitle
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanIdea(row scanner) (*core.SavedIdea, error) {
	var idea core.SavedIdea
	var keywordsJSON string
	err := row.Scan(&idea.ID, &idea.ProjectID, &idea.Title, &keywordsJSON, &idea.Description,
		&idea.Audience, &idea.Tone, &idea.Length, &idea.SearchIntent, &idea.SuggestedCategory,
		&idea.TrendInsights, &idea.CreatedAt, &idea.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan idea: %w", err)
	}
	if err := json.Unmarshal([]byte(keywordsJSON), &idea.Keywords); err != nil {
		return nil, fmt.Errorf("failed to unmarshal keywords: %w", err)
	}
	return &idea, nil
}

func requireAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("idea %s: %w", id, ErrNotFound)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
