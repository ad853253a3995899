package category

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/wichananm65/storefront-backend/internal/apperr"
)

var (
	ErrNotFound    = fmt.Errorf("category %w", apperr.ErrNotFound)
	ErrSlugExists  = fmt.Errorf("category slug already exists: %w", apperr.ErrConflict)
	ErrSubNotFound = fmt.Errorf("subcategory %w", apperr.ErrNotFound)
)

type Repository interface {
	List(ctx context.Context) ([]Category, error)
	GetByID(ctx context.Context, id int) (Category, error)
	Create(ctx context.Context, c Category) (Category, error)
	Update(ctx context.Context, id int, c Category) (Category, error)
	Delete(ctx context.Context, id int) error
	AddSubcategory(ctx context.Context, sub Subcategory) (Subcategory, error)
	// UpdateSubcategory rewrites the subcategory subID of categoryID; sub.CategoryID may name another category.
	UpdateSubcategory(ctx context.Context, categoryID, subID int, sub Subcategory) (Subcategory, error)
	DeleteSubcategory(ctx context.Context, categoryID, subID int) error
}

type InMemoryRepository struct {
	mu        sync.RWMutex
	items     []Category
	nextID    int
	nextSubID int
}

func NewInMemoryRepository(seed []Category) *InMemoryRepository {
	r := &InMemoryRepository{nextID: 1, nextSubID: 1}
	for _, c := range seed {
		r.items = append(r.items, c)
		if c.ID >= r.nextID {
			r.nextID = c.ID + 1
		}
		for _, s := range c.Subcategories {
			if s.ID >= r.nextSubID {
				r.nextSubID = s.ID + 1
			}
		}
	}
	return r
}

func (r *InMemoryRepository) List(_ context.Context) ([]Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Category, len(r.items))
	copy(out, r.items)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id int) (Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.items {
		if c.ID == id {
			return c, nil
		}
	}
	return Category{}, ErrNotFound
}

func (r *InMemoryRepository) slugTaken(slug string, except int) bool {
	for _, c := range r.items {
		if c.Slug == slug && c.ID != except {
			return true
		}
	}
	return false
}

func (r *InMemoryRepository) Create(_ context.Context, c Category) (Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.slugTaken(c.Slug, 0) {
		return Category{}, ErrSlugExists
	}
	c.ID = r.nextID
	r.nextID++
	c.CreatedAt = time.Now().UTC()
	if c.Subcategories == nil {
		c.Subcategories = []Subcategory{}
	}
	r.items = append(r.items, c)
	return c, nil
}

func (r *InMemoryRepository) Update(_ context.Context, id int, c Category) (Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.slugTaken(c.Slug, id) {
		return Category{}, ErrSlugExists
	}
	for i := range r.items {
		if r.items[i].ID == id {
			r.items[i].Name = c.Name
			r.items[i].Slug = c.Slug
			r.items[i].Photos = c.Photos
			return r.items[i], nil
		}
	}
	return Category{}, ErrNotFound
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

func (r *InMemoryRepository) AddSubcategory(_ context.Context, sub Subcategory) (Subcategory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == sub.CategoryID {
			sub.ID = r.nextSubID
			r.nextSubID++
			r.items[i].Subcategories = append(r.items[i].Subcategories, sub)
			return sub, nil
		}
	}
	return Subcategory{}, ErrNotFound
}

func (r *InMemoryRepository) UpdateSubcategory(_ context.Context, categoryID, subID int, sub Subcategory) (Subcategory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	from, to := -1, -1
	for i := range r.items {
		if r.items[i].ID == categoryID {
			from = i
		}
		if r.items[i].ID == sub.CategoryID {
			to = i
		}
	}
	if from < 0 || to < 0 {
		return Subcategory{}, ErrNotFound
	}
	subs := r.items[from].Subcategories
	for j := range subs {
		if subs[j].ID != subID {
			continue
		}
		sub.ID = subID
		if from == to {
			subs[j] = sub
			return sub, nil
		}
		r.items[from].Subcategories = append(subs[:j:j], subs[j+1:]...)
		r.items[to].Subcategories = append(r.items[to].Subcategories, sub)
		return sub, nil
	}
	return Subcategory{}, ErrSubNotFound
}

func (r *InMemoryRepository) DeleteSubcategory(_ context.Context, categoryID, subID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID != categoryID {
			continue
		}
		subs := r.items[i].Subcategories
		for j := range subs {
			if subs[j].ID == subID {
				r.items[i].Subcategories = append(subs[:j], subs[j+1:]...)
				return nil
			}
		}
		return ErrSubNotFound
	}
	return ErrNotFound
}
