package address

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wichananm65/storefront-backend/internal/apperr"
)

var ErrNotFound = fmt.Errorf("address %w", apperr.ErrNotFound)

// Repository scopes every lookup to the owning user.
type Repository interface {
	List(ctx context.Context, userID int) ([]Address, error)
	Get(ctx context.Context, userID, id int) (Address, error)
	Create(ctx context.Context, a Address) (Address, error)
	Update(ctx context.Context, a Address) (Address, error)
	Delete(ctx context.Context, userID, id int) error
}

// InMemoryRepository for tests
type InMemoryRepository struct {
	mu     sync.RWMutex
	data   []Address
	nextID int
}

func NewInMemoryRepository(seed []Address) *InMemoryRepository {
	r := &InMemoryRepository{nextID: 1}
	for _, a := range seed {
		if a.ID >= r.nextID {
			r.nextID = a.ID + 1
		}
		r.data = append(r.data, a)
	}
	return r
}

func (r *InMemoryRepository) List(_ context.Context, userID int) ([]Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Address, 0)
	for _, a := range r.data {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) Get(_ context.Context, userID, id int) (Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.data {
		if a.ID == id && a.UserID == userID {
			return a, nil
		}
	}
	return Address{}, ErrNotFound
}

func (r *InMemoryRepository) Create(_ context.Context, a Address) (Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = r.nextID
	r.nextID++
	a.CreatedAt = time.Now().UTC()
	a.UpdatedAt = a.CreatedAt
	r.data = append(r.data, a)
	return a, nil
}

func (r *InMemoryRepository) Update(_ context.Context, a Address) (Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, cur := range r.data {
		if cur.ID == a.ID && cur.UserID == a.UserID {
			a.CreatedAt = cur.CreatedAt
			a.UpdatedAt = time.Now().UTC()
			r.data[i] = a
			return a, nil
		}
	}
	return Address{}, ErrNotFound
}

func (r *InMemoryRepository) Delete(_ context.Context, userID, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, a := range r.data {
		if a.ID == id && a.UserID == userID {
			r.data = append(r.data[:i], r.data[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
