package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/storefront-backend/internal/apperr"
	"github.com/wichananm65/storefront-backend/internal/product"
)

const maxAttempts = 3

// ErrConflict is returned when a container kept changing under every retry.
var ErrConflict = fmt.Errorf("cart is being updated by another request: %w", apperr.ErrConflict)

// Catalog is the product lookup line items are validated and joined against.
type Catalog interface {
	GetByID(ctx context.Context, id int) (product.Product, error)
	GetMany(ctx context.Context, ids []int) (map[int]product.Product, error)
}

// Retry runs fn until it stops failing with ErrStale.
func Retry(ctx context.Context, fn func() error) error {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err := fn()
		if !errors.Is(err, ErrStale) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return ErrConflict
}

// Mutate loads one container, applies fn and saves the result. fn may run
// more than once.
func Mutate(ctx context.Context, store Store, userID int, kind Kind, fn func(*Container) error) (Container, error) {
	var saved Container
	err := Retry(ctx, func() error {
		c, err := store.Load(ctx, userID, kind)
		if err != nil {
			return err
		}
		if err := fn(&c); err != nil {
			return err
		}
		saved, err = store.Save(ctx, c)
		return err
	})
	return saved, err
}

// View is a line item joined with the current catalog state.
type View struct {
	ProductID         int             `json:"productId"`
	Name              string          `json:"name"`
	ImageURL          *string         `json:"imageUrl"`
	Price             decimal.Decimal `json:"price"`
	ColorOptions      []string        `json:"colorOptions"`
	SizeOptions       []string        `json:"sizeOptions"`
	SeamSizeOptions   []string        `json:"seamSizeOptions"`
	SelectedSize      *string         `json:"selectedSize"`
	SelectedSeamSize  *string         `json:"selectedSeamSize"`
	SelectedColorName string          `json:"selectedColorName"`
	Quantity          int             `json:"quantity,omitempty"`
	Stock             *int            `json:"stock"`
}

// Populate joins items with products. Size options and stock come from the
// selected color variant. Items whose product or color no longer exists are
// left out of both results.
func Populate(items Items, products map[int]product.Product) (Items, []View) {
	kept := make(Items, 0, len(items))
	views := make([]View, 0, len(items))
	for _, it := range items {
		p, ok := products[it.ProductID]
		if !ok {
			continue
		}
		v, ok := p.Variant(it.ColorName)
		if !ok {
			continue
		}
		kept = append(kept, it)

		img := v.Photos.FirstURL()
		if img == nil {
			img = p.PrimaryPhoto()
		}
		stock := v.Stock
		views = append(views, View{
			ProductID:         p.ID,
			Name:              p.Name,
			ImageURL:          img,
			Price:             p.Price,
			ColorOptions:      p.ColorNames(),
			SizeOptions:       options(v.Sizes),
			SeamSizeOptions:   options(v.SeamSizes),
			SelectedSize:      optional(it.Size),
			SelectedSeamSize:  optional(it.SeamSize),
			SelectedColorName: v.ColorName,
			Quantity:          it.Quantity,
			Stock:             &stock,
		})
	}
	return kept, views
}

// options lists the selected variant's choices, never null in JSON.
func options(vals []string) []string {
	return append([]string{}, vals...)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ResolveVariant checks that the product exists and offers colorName.
func ResolveVariant(ctx context.Context, catalog Catalog, productID int, colorName string) (product.Product, error) {
	p, err := catalog.GetByID(ctx, productID)
	if err != nil {
		return product.Product{}, err
	}
	if _, ok := p.Variant(colorName); !ok {
		return product.Product{}, apperr.Validation("color %q is not available for %s", colorName, p.Name)
	}
	return p, nil
}
