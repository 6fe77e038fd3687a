package blog

import (
	"context"
	"sort"
	"sync"

	"github.com/notlelouch/chaincheck/internal/models"
)

// MemoryRepo keeps posts in process memory; used when no database is configured
type MemoryRepo struct {
	mu    sync.RWMutex
	posts map[string]models.Blog
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{posts: make(map[string]models.Blog)}
}

func (m *MemoryRepo) List(_ context.Context) ([]models.Blog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Blog, 0, len(m.posts))
	for _, b := range m.posts {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryRepo) Create(_ context.Context, b models.Blog) (models.Blog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.posts[b.ID]; exists {
		return models.Blog{}, ErrDuplicate
	}
	m.posts[b.ID] = b
	return b, nil
}
