package review

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wichananm65/storefront-backend/internal/apperr"
)

var ErrNotFound = fmt.Errorf("review %w", apperr.ErrNotFound)

type Repository interface {
	Create(ctx context.Context, r Review) (Review, error)
	ListByProduct(ctx context.Context, productID int) ([]Review, error)
	Delete(ctx context.Context, productID, reviewID int) error
	// Average is the mean rating of a product, 0 without reviews.
	Average(ctx context.Context, productID int) (float64, error)
}

type InMemoryRepository struct {
	mu     sync.RWMutex
	items  []Review
	nextID int
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{nextID: 1}
}

func (r *InMemoryRepository) Create(_ context.Context, rv Review) (Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rv.ID = r.nextID
	r.nextID++
	rv.CreatedAt = time.Now().UTC()
	r.items = append(r.items, rv)
	return rv, nil
}

func (r *InMemoryRepository) ListByProduct(_ context.Context, productID int) ([]Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Review, 0)
	for _, rv := range r.items {
		if rv.ProductID == productID {
			out = append(out, rv)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) Delete(_ context.Context, productID, reviewID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, rv := range r.items {
		if rv.ID == reviewID && rv.ProductID == productID {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *InMemoryRepository) Average(_ context.Context, productID int) (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sum, n := 0, 0
	for _, rv := range r.items {
		if rv.ProductID == productID {
			sum += rv.Rating
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return float64(sum) / float64(n), nil
}
