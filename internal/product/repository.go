package product

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wichananm65/storefront-backend/internal/apperr"
)

var (
	ErrNotFound = fmt.Errorf("product %w", apperr.ErrNotFound)
)

type Repository interface {
	List(ctx context.Context, f Filter) (Page, error)
	GetByID(ctx context.Context, id int) (Product, error)
	// GetMany skips ids that do not exist.
	GetMany(ctx context.Context, ids []int) (map[int]Product, error)
	Create(ctx context.Context, p Product) (Product, error)
	Update(ctx context.Context, id int, p Product) (Product, error)
	Delete(ctx context.Context, id int) error
	Similar(ctx context.Context, id int, limit int) ([]Product, error)
	LowStock(ctx context.Context, threshold int) ([]Product, error)
	SetRating(ctx context.Context, id int, avg float64) error
	// Reserve takes every line from stock or none of them.
	Reserve(ctx context.Context, lines []StockLine) error
	Release(ctx context.Context, lines []StockLine) error
}

// InMemoryRepository is used by tests and local runs without Postgres.
type InMemoryRepository struct {
	mu      sync.RWMutex
	storage []Product
	nextID  int
	now     func() time.Time
}

func NewInMemoryRepository(seed []Product) *InMemoryRepository {
	r := &InMemoryRepository{
		storage: make([]Product, 0, len(seed)),
		nextID:  1,
		now:     func() time.Time { return time.Now().UTC() },
	}
	maxID := 0
	for _, p := range seed {
		r.storage = append(r.storage, clone(p))
		if p.ID > maxID {
			maxID = p.ID
		}
	}
	r.nextID = maxID + 1
	return r
}

func clone(p Product) Product {
	colors := make([]Variant, len(p.Colors))
	copy(colors, p.Colors)
	p.Colors = colors
	return p
}

func (r *InMemoryRepository) List(_ context.Context, f Filter) (Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]Product, 0)
	for _, p := range r.storage {
		if matches(p, f) {
			matched = append(matched, clone(p))
		}
	}
	sortProducts(matched, f.Sort)
	total := len(matched)
	if f.Offset > 0 {
		if f.Offset >= len(matched) {
			matched = matched[:0]
		} else {
			matched = matched[f.Offset:]
		}
	}
	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}
	return Page{Products: matched, Total: total}, nil
}

func matches(p Product, f Filter) bool {
	if kw := strings.TrimSpace(f.Keyword); kw != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(kw)) {
		return false
	}
	if len(f.CategoryIDs) > 0 {
		ok := false
		for _, id := range f.CategoryIDs {
			if p.CategoryID != nil && *p.CategoryID == id {
				ok = true
			}
		}
		if !ok {
			return false
		}
	}
	if len(f.Colors) > 0 {
		ok := false
		for _, c := range f.Colors {
			if _, found := p.Variant(c); found {
				ok = true
			}
		}
		if !ok {
			return false
		}
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	return true
}

func sortProducts(ps []Product, mode string) {
	sort.SliceStable(ps, func(i, j int) bool {
		switch mode {
		case SortPriceAsc:
			return ps[i].Price.LessThan(ps[j].Price)
		case SortPriceDesc:
			return ps[i].Price.GreaterThan(ps[j].Price)
		case SortRating:
			return ps[i].AverageRating > ps[j].AverageRating
		default:
			if ps[i].CreatedAt.Equal(ps[j].CreatedAt) {
				return ps[i].ID > ps[j].ID
			}
			return ps[i].CreatedAt.After(ps[j].CreatedAt)
		}
	})
}

func (r *InMemoryRepository) GetByID(_ context.Context, id int) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.storage {
		if p.ID == id {
			return clone(p), nil
		}
	}
	return Product{}, ErrNotFound
}

func (r *InMemoryRepository) GetMany(_ context.Context, ids []int) (map[int]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	want := make(map[int]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := make(map[int]Product, len(ids))
	for _, p := range r.storage {
		if want[p.ID] {
			out[p.ID] = clone(p)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) Create(_ context.Context, p Product) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == 0 {
		p.ID = r.nextID
		r.nextID++
	}
	now := r.now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	r.storage = append(r.storage, clone(p))
	return clone(p), nil
}

func (r *InMemoryRepository) Update(_ context.Context, id int, p Product) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == id {
			p.ID = id
			p.CreatedAt = r.storage[i].CreatedAt
			p.AverageRating = r.storage[i].AverageRating
			p.UpdatedAt = r.now()
			r.storage[i] = clone(p)
			return clone(p), nil
		}
	}
	return Product{}, ErrNotFound
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

func (r *InMemoryRepository) Similar(_ context.Context, id int, limit int) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var base *Product
	for i := range r.storage {
		if r.storage[i].ID == id {
			base = &r.storage[i]
		}
	}
	if base == nil {
		return nil, ErrNotFound
	}
	out := make([]Product, 0, limit)
	if base.CategoryID == nil {
		return out, nil
	}
	for _, p := range r.storage {
		if p.ID != id && p.CategoryID != nil && *p.CategoryID == *base.CategoryID {
			out = append(out, clone(p))
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *InMemoryRepository) LowStock(_ context.Context, threshold int) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Product, 0)
	for _, p := range r.storage {
		if p.TotalStock() <= threshold {
			out = append(out, clone(p))
		}
	}
	return out, nil
}

func (r *InMemoryRepository) SetRating(_ context.Context, id int, avg float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == id {
			r.storage[i].AverageRating = avg
			return nil
		}
	}
	return ErrNotFound
}

func (r *InMemoryRepository) Reserve(_ context.Context, lines []StockLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	merged := mergeLines(lines)
	type slot struct{ p, v int }
	slots := make([]slot, 0, len(merged))
	for _, l := range merged {
		pi, vi, err := r.locate(l)
		if err != nil {
			return err
		}
		v := r.storage[pi].Colors[vi]
		if v.Stock < l.Quantity {
			return &apperr.InsufficientStockError{ProductName: r.storage[pi].Name, Available: v.Stock, Requested: l.Quantity}
		}
		slots = append(slots, slot{pi, vi})
	}
	for i, l := range merged {
		r.storage[slots[i].p].Colors[slots[i].v].Stock -= l.Quantity
	}
	return nil
}

func (r *InMemoryRepository) Release(_ context.Context, lines []StockLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range mergeLines(lines) {
		pi, vi, err := r.locate(l)
		if err != nil {
			// product or variant removed since the order was placed
			continue
		}
		r.storage[pi].Colors[vi].Stock += l.Quantity
	}
	return nil
}

func (r *InMemoryRepository) locate(l StockLine) (int, int, error) {
	for pi := range r.storage {
		if r.storage[pi].ID != l.ProductID {
			continue
		}
		for vi := range r.storage[pi].Colors {
			if r.storage[pi].Colors[vi].ColorName == l.ColorName {
				return pi, vi, nil
			}
		}
		return 0, 0, apperr.NotFound("color %q not found for product %d", l.ColorName, l.ProductID)
	}
	return 0, 0, apperr.NotFound("product not found: %d", l.ProductID)
}
