package persistence

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"blogforge/internal/core"
)

// MemoryStore is an in-process Store for development and tests. Data is
// lost when the process exits.
type MemoryStore struct {
	mu         sync.RWMutex
	projects   map[string]core.Project
	categories map[string]core.Category
	posts      []core.Post
	ideas      map[string]core.SavedIdea
	seq        int64
	now        func() time.Time
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		projects:   make(map[string]core.Project),
		categories: make(map[string]core.Category),
		ideas:      make(map[string]core.SavedIdea),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// tick returns a strictly increasing timestamp so insertion order survives
// sorting even on coarse clocks.
func (m *MemoryStore) tick() time.Time {
	m.seq++
	return m.now().Add(time.Duration(m.seq))
}

func (m *MemoryStore) Ideas() IdeaRepository             { return (*memoryIdeaRepo)(m) }
func (m *MemoryStore) Migrate(ctx context.Context) error { return nil }
func (m *MemoryStore) Ping(ctx context.Context) error    { return nil }
func (m *MemoryStore) Close() error                      { return nil }

func (m *MemoryStore) CreateProject(ctx context.Context, project *core.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	if _, ok := m.projects[project.ID]; ok {
		return fmt.Errorf("project %s already exists", project.ID)
	}
	if project.CreatedAt.IsZero() {
		project.CreatedAt = m.tick()
	}
	m.projects[project.ID] = *project
	return nil
}

func (m *MemoryStore) GetProject(ctx context.Context, id string) (*core.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.projects[id]
	if !ok {
		return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	return &p, nil
}

func (m *MemoryStore) ListProjects(ctx context.Context, userID string) ([]core.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var projects []core.Project
	for _, p := range m.projects {
		if p.UserID == userID {
			projects = append(projects, p)
		}
	}
	sort.Slice(projects, func(i, j int) bool {
		return projects[i].CreatedAt.After(projects[j].CreatedAt)
	})
	return projects, nil
}

func (m *MemoryStore) GetProjectDescription(ctx context.Context, projectID string) (string, error) {
	p, err := m.GetProject(ctx, projectID)
	if err != nil {
		return "", err
	}
	return p.Description, nil
}

func (m *MemoryStore) ListCategoriesWithPostTitles(ctx context.Context, projectID string) ([]core.CategoryPosts, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var cats []core.Category
	for _, c := range m.categories {
		if c.ProjectID == projectID {
			cats = append(cats, c)
		}
	}
	sort.Slice(cats, func(i, j int) bool {
		if cats[i].Name != cats[j].Name {
			return cats[i].Name < cats[j].Name
		}
		return cats[i].ID < cats[j].ID
	})

	// posts is append-only, so it is already in creation order
	result := make([]core.CategoryPosts, 0, len(cats))
	for _, c := range cats {
		entry := core.CategoryPosts{Name: c.Name, PostTitles: []string{}}
		for _, p := range m.posts {
			if p.CategoryID == c.ID {
				entry.PostTitles = append(entry.PostTitles, p.Title)
			}
		}
		result = append(result, entry)
	}
	return result, nil
}

func (m *MemoryStore) CreateCategory(ctx context.Context, category *core.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createCategory(category)
}

func (m *MemoryStore) createCategory(category *core.Category) error {
	if _, ok := m.findCategory(category.ProjectID, category.Name); ok {
		return fmt.Errorf("category %q already exists", category.Name)
	}
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	if category.CreatedAt.IsZero() {
		category.CreatedAt = m.tick()
	}
	m.categories[category.ID] = *category
	return nil
}

func (m *MemoryStore) findCategory(projectID, name string) (core.Category, bool) {
	for _, c := range m.categories {
		if c.ProjectID == projectID && c.Name == name {
			return c, true
		}
	}
	return core.Category{}, false
}

func (m *MemoryStore) FindCategoryByName(ctx context.Context, projectID, name string) (*core.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.findCategory(projectID, name)
	if !ok {
		return nil, fmt.Errorf("category %q: %w", name, ErrNotFound)
	}
	return &c, nil
}

func (m *MemoryStore) CreatePost(ctx context.Context, post *core.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createPost(post)
}

func (m *MemoryStore) createPost(post *core.Post) error {
	if _, ok := m.categories[post.CategoryID]; !ok {
		return fmt.Errorf("category %s: %w", post.CategoryID, ErrNotFound)
	}
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = m.tick()
	}
	post.Keywords = nonNil(post.Keywords)
	m.posts = append(m.posts, *post)
	return nil
}

func (m *MemoryStore) PublishPost(ctx context.Context, post *core.Post, categoryName, consumedIdeaID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if consumedIdeaID != "" {
		idea, ok := m.ideas[consumedIdeaID]
		if !ok || idea.ProjectID != post.ProjectID {
			return fmt.Errorf("idea %s: %w", consumedIdeaID, ErrNotFound)
		}
	}

	category, ok := m.findCategory(post.ProjectID, categoryName)
	if !ok {
		category = core.Category{ProjectID: post.ProjectID, Name: categoryName}
		if err := m.createCategory(&category); err != nil {
			return err
		}
	}
	post.CategoryID = category.ID
	if err := m.createPost(post); err != nil {
		return err
	}
	if consumedIdeaID != "" {
		delete(m.ideas, consumedIdeaID)
	}
	return nil
}

// memoryIdeaRepo implements IdeaRepository over the MemoryStore's maps
type memoryIdeaRepo MemoryStore

func (r *memoryIdeaRepo) List(ctx context.Context, projectID string) ([]core.SavedIdea, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ideas := []core.SavedIdea{}
	for _, idea := range r.ideas {
		if idea.ProjectID == projectID {
			ideas = append(ideas, idea)
		}
	}
	sort.Slice(ideas, func(i, j int) bool {
		return ideas[i].CreatedAt.After(ideas[j].CreatedAt)
	})
	return ideas, nil
}

func (r *memoryIdeaRepo) Get(ctx context.Context, projectID, id string) (*core.SavedIdea, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idea, ok := r.ideas[id]
	if !ok || idea.ProjectID != projectID {
		return nil, fmt.Errorf("idea %s: %w", id, ErrNotFound)
	}
	return &idea, nil
}

func (r *memoryIdeaRepo) Create(ctx context.Context, idea *core.SavedIdea) error {
	if err := ValidateIdea(idea.ContentIdea); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.titleTaken(idea.ProjectID, idea.Title, "") {
		return ErrDuplicateTitle
	}
	if idea.ID == "" {
		idea.ID = uuid.NewString()
	}
	now := (*MemoryStore)(r).tick()
	idea.CreatedAt, idea.UpdatedAt = now, now
	r.ideas[idea.ID] = *idea
	return nil
}

func (r *memoryIdeaRepo) Update(ctx context.Context, idea *core.SavedIdea) error {
	if err := ValidateIdea(idea.ContentIdea); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.ideas[idea.ID]
	if !ok || existing.ProjectID != idea.ProjectID {
		return fmt.Errorf("idea %s: %w", idea.ID, ErrNotFound)
	}
	if r.titleTaken(idea.ProjectID, idea.Title, idea.ID) {
		return ErrDuplicateTitle
	}
	idea.CreatedAt = existing.CreatedAt
	idea.UpdatedAt = (*MemoryStore)(r).tick()
	r.ideas[idea.ID] = *idea
	return nil
}

func (r *memoryIdeaRepo) Delete(ctx context.Context, projectID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idea, ok := r.ideas[id]
	if !ok || idea.ProjectID != projectID {
		return fmt.Errorf("idea %s: %w", id, ErrNotFound)
	}
	delete(r.ideas, id)
	return nil
}

func (r *memoryIdeaRepo) titleTaken(projectID, title, excludeID string) bool {
	for id, idea := range r.ideas {
		if id != excludeID && idea.ProjectID == projectID && idea.Title == title {
			return true
		}
	}
	return false
}
