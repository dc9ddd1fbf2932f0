package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shashiranjanraj/sweetshop/app/models"
	"github.com/shashiranjanraj/sweetshop/pkg/metrics"
)

// MemorySweetRepository keeps sweets in insertion order behind a mutex.
type MemorySweetRepository struct {
	mu    sync.RWMutex
	order []string
	items map[string]models.Sweet
}

func NewMemorySweetRepository() *MemorySweetRepository {
	return &MemorySweetRepository{items: make(map[string]models.Sweet)}
}

func (r *MemorySweetRepository) Create(_ context.Context, sweet *models.Sweet) error {
	defer metrics.ObserveDBQuery("memory", "sweets.create", time.Now())
	now := time.Now().UTC()
	sweet.ID = uuid.NewString()
	sweet.CreatedAt, sweet.UpdatedAt = now, now

	r.mu.Lock()
	r.items[sweet.ID] = *sweet
	r.order = append(r.order, sweet.ID)
	r.mu.Unlock()
	return nil
}

func (r *MemorySweetRepository) FindByID(_ context.Context, id string) (models.Sweet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.items[id]
	if !ok {
		return models.Sweet{}, ErrNotFound
	}
	return s, nil
}

func (r *MemorySweetRepository) List(_ context.Context, f SweetFilter, page Page) ([]models.Sweet, int64, error) {
	defer metrics.ObserveDBQuery("memory", "sweets.list", time.Now())
	r.mu.RLock()
	matched := make([]models.Sweet, 0, len(r.order))
	for _, id := range r.order {
		if s := r.items[id]; f.matches(s) {
			matched = append(matched, s)
		}
	}
	r.mu.RUnlock()

	total := int64(len(matched))
	if !page.enabled() {
		return matched, total, nil
	}
	start := min(page.offset(), len(matched))
	end := min(start+page.Size, len(matched))
	return matched[start:end], total, nil
}

func (r *MemorySweetRepository) Update(_ context.Context, id string, c SweetChanges) (models.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[id]
	if !ok {
		return models.Sweet{}, ErrNotFound
	}
	if c.Empty() {
		return s, nil
	}
	c.apply(&s)
	s.UpdatedAt = time.Now().UTC()
	r.items[id] = s
	return s, nil
}

func (r *MemorySweetRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	delete(r.items, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *MemorySweetRepository) Decrement(_ context.Context, id string, n int) (models.Sweet, error) {
	return r.adjust(id, -n)
}

func (r *MemorySweetRepository) Increment(_ context.Context, id string, n int) (models.Sweet, error) {
	return r.adjust(id, n)
}

func (r *MemorySweetRepository) adjust(id string, delta int) (models.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[id]
	if !ok {
		return models.Sweet{}, ErrNotFound
	}
	if s.Quantity+delta < 0 {
		return models.Sweet{}, ErrInsufficientStock
	}
	s.Quantity += delta
	s.UpdatedAt = time.Now().UTC()
	r.items[id] = s
	return s, nil
}

func (r *MemorySweetRepository) Count(context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.items)), nil
}

// MemoryUserRepository keeps users indexed by id and email.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	byID    map[string]models.User
	byEmail map[string]string
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{byID: make(map[string]models.User), byEmail: make(map[string]string)}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byEmail[user.Email]; taken {
		return ErrDuplicate
	}
	now := time.Now().UTC()
	user.ID = uuid.NewString()
	user.CreatedAt, user.UpdatedAt = now, now
	r.byID[user.ID] = *user
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return r.byID[id], nil
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return u, nil
}

func (r *MemoryUserRepository) SetRole(_ context.Context, id, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	u.Role = role
	u.UpdatedAt = time.Now().UTC()
	r.byID[id] = u
	return nil
}
