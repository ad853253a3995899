package cart

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/wichananm65/storefront-backend/internal/apperr"
)

var ErrItemNotFound = apperr.NotFound("item not found in cart")

// AddInput is one variant selection with the quantity to add.
type AddInput struct {
	ProductID int
	Quantity  int
	Size      Selector
	SeamSize  Selector
	ColorName string
}

// Service implements cart operations on top of the shared container store.
type Service struct {
	store   Store
	catalog Catalog
	log     zerolog.Logger
	now     func() time.Time
}

func NewService(store Store, catalog Catalog, log zerolog.Logger) *Service {
	return &Service{store: store, catalog: catalog, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// Add merges quantities into an existing line with the same key or
// appends a new line.
func (s *Service) Add(ctx context.Context, userID int, in AddInput) (Container, error) {
	if userID <= 0 || in.ProductID <= 0 {
		return Container{}, apperr.Validation("user and product are required")
	}
	if in.Quantity <= 0 {
		return Container{}, apperr.Validation("quantity must be positive")
	}
	if strings.TrimSpace(in.ColorName) == "" {
		return Container{}, apperr.Validation("colorName is required")
	}
	if _, err := ResolveVariant(ctx, s.catalog, in.ProductID, in.ColorName); err != nil {
		return Container{}, err
	}

	key := NewKey(in.ProductID, in.Size, in.SeamSize, in.ColorName)
	return Mutate(ctx, s.store, userID, KindCart, func(c *Container) error {
		if i := c.Find(key); i >= 0 {
			c.Items[i].Quantity += in.Quantity
			return nil
		}
		c.Items = append(c.Items, LineItem{
			ProductID: key.ProductID,
			Quantity:  in.Quantity,
			Size:      key.Size,
			SeamSize:  key.SeamSize,
			ColorName: key.ColorName,
			AddedAt:   s.now(),
		})
		return nil
	})
}

// UpdateQuantity overwrites the quantity of an existing line.
func (s *Service) UpdateQuantity(ctx context.Context, userID int, key Key, quantity int) (Container, error) {
	if quantity <= 0 {
		return Container{}, apperr.Validation("quantity must be positive")
	}
	return Mutate(ctx, s.store, userID, KindCart, func(c *Container) error {
		i := c.Find(key)
		if i < 0 {
			return ErrItemNotFound
		}
		c.Items[i].Quantity = quantity
		return nil
	})
}

func (s *Service) Remove(ctx context.Context, userID int, key Key) (Container, error) {
	return Mutate(ctx, s.store, userID, KindCart, func(c *Container) error {
		i := c.Find(key)
		if i < 0 {
			return ErrItemNotFound
		}
		c.RemoveAt(i)
		return nil
	})
}

// ClearByProductIDs drops every variant of the given products, e.g. after
// they were ordered.
func (s *Service) ClearByProductIDs(ctx context.Context, userID int, productIDs []int) (Container, error) {
	set := make(map[int]bool, len(productIDs))
	for _, id := range productIDs {
		set[id] = true
	}
	return Mutate(ctx, s.store, userID, KindCart, func(c *Container) error {
		c.RemoveProducts(set)
		return nil
	})
}

// Fetch joins the cart with the catalog and prunes lines whose product or
// color disappeared.
func (s *Service) Fetch(ctx context.Context, userID int) ([]View, error) {
	c, err := s.store.Load(ctx, userID, KindCart)
	if err != nil {
		return nil, err
	}
	products, err := s.catalog.GetMany(ctx, c.ProductIDs())
	if err != nil {
		return nil, err
	}
	kept, views := Populate(c.Items, products)
	if len(kept) != len(c.Items) {
		s.prune(ctx, c, kept)
	}
	return views, nil
}

// prune is best effort; a concurrent writer wins and the next read retries.
func (s *Service) prune(ctx context.Context, c Container, kept Items) {
	c.Items = kept
	if _, err := s.store.Save(ctx, c); err != nil {
		ev := s.log.Warn()
		if !errors.Is(err, ErrStale) {
			ev = s.log.Error()
		}
		ev.Err(err).Int("user_id", c.UserID).Str("kind", string(c.Kind)).Msg("prune orphaned line items")
	}
}
