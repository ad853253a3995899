package order

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/wichananm65/storefront-backend/internal/apperr"
	"github.com/wichananm65/storefront-backend/internal/product"
)

var (
	ErrNotFound      = fmt.Errorf("order %w", apperr.ErrNotFound)
	ErrStatusChanged = apperr.Conflict("order status changed concurrently")
	ErrNotReviewable = apperr.Validation("you can only review products from delivered orders you have not reviewed yet")
)

type Repository interface {
	// Place takes the order's quantities from stock and stores the order
	// in one step. Nothing is written when stock is short.
	Place(ctx context.Context, o Order) (Order, error)
	// Cancel returns the order's quantities to stock and deletes it.
	Cancel(ctx context.Context, id int) (Order, error)
	GetByID(ctx context.Context, id int) (Order, error)
	ListByUser(ctx context.Context, userID int) ([]Order, error)
	// List returns orders newest first; limit <= 0 means all.
	List(ctx context.Context, limit int) ([]Order, error)
	// UpdateStatus moves id from one status to another and fails with
	// ErrStatusChanged when it is no longer in from.
	UpdateStatus(ctx context.Context, id int, from, to Status) (Order, error)
	MarkPaid(ctx context.Context, id int, at time.Time) (Order, error)
	// ClaimReview flags the productID lines of one delivered order of userID
	// as reviewed and returns that order. Concurrent claims never share a line.
	ClaimReview(ctx context.Context, userID, productID int) (Order, error)
	// ReleaseReview undoes a claim whose review could not be stored.
	ReleaseReview(ctx context.Context, orderID, productID int) error
}

// Stock is the inventory the in-memory repository reserves against.
type Stock interface {
	Reserve(ctx context.Context, lines []product.StockLine) error
	Release(ctx context.Context, lines []product.StockLine) error
}

// InMemoryRepository is used by tests and local runs without Postgres.
type InMemoryRepository struct {
	mu     sync.RWMutex
	orders []Order
	stock  Stock
	nextID int
	now    func() time.Time
}

func NewInMemoryRepository(stock Stock, seed []Order) *InMemoryRepository {
	r := &InMemoryRepository{stock: stock, nextID: 1, now: func() time.Time { return time.Now().UTC() }}
	for _, o := range seed {
		r.orders = append(r.orders, cloneOrder(o))
		if o.ID >= r.nextID {
			r.nextID = o.ID + 1
		}
	}
	return r
}

func cloneOrder(o Order) Order {
	o.Items = append(Lines(nil), o.Items...)
	return o
}

func (r *InMemoryRepository) Place(ctx context.Context, o Order) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.stock.Reserve(ctx, o.Items.StockLines()); err != nil {
		return Order{}, err
	}
	o.ID = r.nextID
	r.nextID++
	now := r.now()
	o.CreatedAt, o.UpdatedAt = now, now
	r.orders = append(r.orders, cloneOrder(o))
	return o, nil
}

func (r *InMemoryRepository) Cancel(ctx context.Context, id int) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(id)
	if i < 0 {
		return Order{}, ErrNotFound
	}
	o := r.orders[i]
	if err := r.stock.Release(ctx, o.Items.StockLines()); err != nil {
		return Order{}, err
	}
	r.orders = append(r.orders[:i], r.orders[i+1:]...)
	return o, nil
}

func (r *InMemoryRepository) index(id int) int {
	for i := range r.orders {
		if r.orders[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *InMemoryRepository) GetByID(_ context.Context, id int) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.index(id); i >= 0 {
		return cloneOrder(r.orders[i]), nil
	}
	return Order{}, ErrNotFound
}

func (r *InMemoryRepository) newestFirst(keep func(Order) bool) []Order {
	out := make([]Order, 0)
	for _, o := range r.orders {
		if keep(o) {
			out = append(out, cloneOrder(o))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *InMemoryRepository) ListByUser(_ context.Context, userID int) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.newestFirst(func(o Order) bool { return o.UserID == userID }), nil
}

func (r *InMemoryRepository) List(_ context.Context, limit int) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := r.newestFirst(func(Order) bool { return true })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *InMemoryRepository) UpdateStatus(_ context.Context, id int, from, to Status) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(id)
	if i < 0 {
		return Order{}, ErrNotFound
	}
	if r.orders[i].Status != from {
		return Order{}, ErrStatusChanged
	}
	r.orders[i].Status = to
	r.orders[i].UpdatedAt = r.now()
	return cloneOrder(r.orders[i]), nil
}

func (r *InMemoryRepository) MarkPaid(_ context.Context, id int, at time.Time) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(id)
	if i < 0 {
		return Order{}, ErrNotFound
	}
	r.orders[i].PaymentStatus = PaymentPaid
	r.orders[i].PaidAt = &at
	r.orders[i].UpdatedAt = r.now()
	return cloneOrder(r.orders[i]), nil
}

func (r *InMemoryRepository) ClaimReview(_ context.Context, userID, productID int) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, o := range r.orders {
		if o.UserID != userID || o.Status != StatusDelivered || !hasUnreviewed(o.Items, productID) {
			continue
		}
		r.orders[i].Items = setReviewed(o.Items, productID, true)
		return cloneOrder(r.orders[i]), nil
	}
	return Order{}, ErrNotReviewable
}

func (r *InMemoryRepository) ReleaseReview(_ context.Context, orderID, productID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(orderID)
	if i < 0 {
		return ErrNotFound
	}
	r.orders[i].Items = setReviewed(r.orders[i].Items, productID, false)
	return nil
}

func hasUnreviewed(lines Lines, productID int) bool {
	for _, l := range lines {
		if l.ProductID == productID && !l.Reviewed {
			return true
		}
	}
	return false
}

func setReviewed(lines Lines, productID int, reviewed bool) Lines {
	out := append(Lines(nil), lines...)
	for j := range out {
		if out[j].ProductID == productID {
			out[j].Reviewed = reviewed
		}
	}
	return out
}
