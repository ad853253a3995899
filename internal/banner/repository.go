package banner

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/wichananm65/storefront-backend/internal/apperr"
)

var ErrNotFound = fmt.Errorf("banner %w", apperr.ErrNotFound)

type Repository interface {
	// ListBySlot returns the banners of a slot, newest first.
	ListBySlot(ctx context.Context, slot Slot) ([]Banner, error)
	GetByID(ctx context.Context, id int) (Banner, error)
	Create(ctx context.Context, b Banner) (Banner, error)
	Update(ctx context.Context, b Banner) (Banner, error)
	Delete(ctx context.Context, id int) error
}

type InMemoryRepository struct {
	mu      sync.RWMutex
	storage []Banner
	nextID  int
	now     func() time.Time
}

func NewInMemoryRepository(seed []Banner) *InMemoryRepository {
	r := &InMemoryRepository{nextID: 1, now: func() time.Time { return time.Now().UTC() }}
	for _, b := range seed {
		if b.ID >= r.nextID {
			r.nextID = b.ID + 1
		}
		r.storage = append(r.storage, b)
	}
	return r
}

func (r *InMemoryRepository) ListBySlot(_ context.Context, slot Slot) ([]Banner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Banner, 0)
	for _, b := range r.storage {
		if b.Slot == slot {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id int) (Banner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.storage {
		if b.ID == id {
			return b, nil
		}
	}
	return Banner{}, ErrNotFound
}

func (r *InMemoryRepository) Create(_ context.Context, b Banner) (Banner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.ID = r.nextID
	r.nextID++
	b.CreatedAt = r.now()
	b.UpdatedAt = b.CreatedAt
	r.storage = append(r.storage, b)
	return b, nil
}

func (r *InMemoryRepository) Update(_ context.Context, b Banner) (Banner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == b.ID {
			b.Slot = r.storage[i].Slot
			b.CreatedAt = r.storage[i].CreatedAt
			b.UpdatedAt = r.now()
			r.storage[i] = b
			return b, nil
		}
	}
	return Banner{}, ErrNotFound
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
