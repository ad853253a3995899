package coupon

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/wichananm65/storefront-backend/internal/apperr"
)

var (
	ErrNotFound   = fmt.Errorf("coupon %w", apperr.ErrNotFound)
	ErrCodeExists = fmt.Errorf("coupon code already exists: %w", apperr.ErrConflict)
)

type Repository interface {
	List(ctx context.Context) ([]Coupon, error)
	GetByID(ctx context.Context, id int) (Coupon, error)
	GetByCode(ctx context.Context, code string) (Coupon, error)
	Create(ctx context.Context, c Coupon) (Coupon, error)
	Update(ctx context.Context, id int, c Coupon) (Coupon, error)
	Delete(ctx context.Context, id int) error
}

type InMemoryRepository struct {
	mu     sync.RWMutex
	items  []Coupon
	nextID int
}

func NewInMemoryRepository(seed []Coupon) *InMemoryRepository {
	r := &InMemoryRepository{items: append([]Coupon(nil), seed...), nextID: 1}
	for _, c := range seed {
		if c.ID >= r.nextID {
			r.nextID = c.ID + 1
		}
	}
	return r
}

func (r *InMemoryRepository) List(_ context.Context) ([]Coupon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := append([]Coupon{}, r.items...)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id int) (Coupon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.items {
		if c.ID == id {
			return c, nil
		}
	}
	return Coupon{}, ErrNotFound
}

func (r *InMemoryRepository) GetByCode(_ context.Context, code string) (Coupon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.items {
		if c.Code == code {
			return c, nil
		}
	}
	return Coupon{}, ErrNotFound
}

func (r *InMemoryRepository) codeTaken(code string, except int) bool {
	for _, c := range r.items {
		if c.Code == code && c.ID != except {
			return true
		}
	}
	return false
}

func (r *InMemoryRepository) Create(_ context.Context, c Coupon) (Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.codeTaken(c.Code, 0) {
		return Coupon{}, ErrCodeExists
	}
	c.ID = r.nextID
	r.nextID++
	c.CreatedAt = time.Now().UTC()
	r.items = append(r.items, c)
	return c, nil
}

func (r *InMemoryRepository) Update(_ context.Context, id int, c Coupon) (Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.codeTaken(c.Code, id) {
		return Coupon{}, ErrCodeExists
	}
	for i := range r.items {
		if r.items[i].ID == id {
			c.ID = id
			c.CreatedAt = r.items[i].CreatedAt
			r.items[i] = c
			return c, nil
		}
	}
	return Coupon{}, ErrNotFound
}

func (r *InMemoryRepository) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
