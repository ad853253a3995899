package company

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wichananm65/storefront-backend/internal/apperr"
)

var ErrNotFound = fmt.Errorf("company info %w", apperr.ErrNotFound)

type Repository interface {
	List(ctx context.Context) ([]Company, error)
	GetByID(ctx context.Context, id int) (Company, error)
	Create(ctx context.Context, c Company) (Company, error)
	Update(ctx context.Context, c Company) (Company, error)
	Delete(ctx context.Context, id int) error
}

type InMemoryRepository struct {
	mu      sync.RWMutex
	storage []Company
	nextID  int
	now     func() time.Time
}

func NewInMemoryRepository(seed []Company) *InMemoryRepository {
	r := &InMemoryRepository{nextID: 1, now: func() time.Time { return time.Now().UTC() }}
	for _, c := range seed {
		if c.ID >= r.nextID {
			r.nextID = c.ID + 1
		}
		r.storage = append(r.storage, c)
	}
	return r
}

func (r *InMemoryRepository) List(_ context.Context) ([]Company, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Company{}, r.storage...), nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id int) (Company, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.storage {
		if c.ID == id {
			return c, nil
		}
	}
	return Company{}, ErrNotFound
}

func (r *InMemoryRepository) Create(_ context.Context, c Company) (Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = r.nextID
	r.nextID++
	c.CreatedAt = r.now()
	c.UpdatedAt = c.CreatedAt
	r.storage = append(r.storage, c)
	return c, nil
}

func (r *InMemoryRepository) Update(_ context.Context, c Company) (Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == c.ID {
			c.CreatedAt = r.storage[i].CreatedAt
			c.UpdatedAt = r.now()
			r.storage[i] = c
			return c, nil
		}
	}
	return Company{}, ErrNotFound
}

func (r *InMemoryRepository) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == id {
			r.storage = append(r.storage[:i], r.storage[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
