package wishlist

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/wichananm65/storefront-backend/internal/apperr"
	"github.com/wichananm65/storefront-backend/internal/cart"
)

var (
	ErrAlreadyInWishlist = apperr.Conflict("product already in wishlist")
	ErrNotInWishlist     = apperr.NotFound("item not found in wishlist")
)

// Service manages saved variants. Wishlist lines carry no quantity.
type Service struct {
	store   cart.Store
	catalog cart.Catalog
	log     zerolog.Logger
	now     func() time.Time
}

func NewService(store cart.Store, catalog cart.Catalog, log zerolog.Logger) *Service {
	return &Service{store: store, catalog: catalog, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// Add rejects a second save of the same variant instead of merging it.
func (s *Service) Add(ctx context.Context, userID int, key cart.Key) (cart.Container, error) {
	if userID <= 0 || key.ProductID <= 0 {
		return cart.Container{}, apperr.Validation("user and product are required")
	}
	if strings.TrimSpace(key.ColorName) == "" {
		return cart.Container{}, apperr.Validation("colorName is required")
	}
	if _, err := cart.ResolveVariant(ctx, s.catalog, key.ProductID, key.ColorName); err != nil {
		return cart.Container{}, err
	}
	return cart.Mutate(ctx, s.store, userID, cart.KindWishlist, func(c *cart.Container) error {
		if c.Find(key) >= 0 {
			return ErrAlreadyInWishlist
		}
		c.Items = append(c.Items, cart.LineItem{
			ProductID: key.ProductID,
			Size:      key.Size,
			SeamSize:  key.SeamSize,
			ColorName: key.ColorName,
			AddedAt:   s.now(),
		})
		return nil
	})
}

func (s *Service) Remove(ctx context.Context, userID int, key cart.Key) (cart.Container, error) {
	return cart.Mutate(ctx, s.store, userID, cart.KindWishlist, func(c *cart.Container) error {
		i := c.Find(key)
		if i < 0 {
			return ErrNotInWishlist
		}
		c.RemoveAt(i)
		return nil
	})
}

// MoveToCart takes a saved variant out of the wishlist and adds one unit of
// it to the cart. Both containers are written together.
func (s *Service) MoveToCart(ctx context.Context, userID int, key cart.Key) error {
	return cart.Retry(ctx, func() error {
		wl, err := s.store.Load(ctx, userID, cart.KindWishlist)
		if err != nil {
			return err
		}
		i := wl.Find(key)
		if i < 0 {
			return ErrNotInWishlist
		}
		item := wl.Items[i]
		wl.RemoveAt(i)

		cr, err := s.store.Load(ctx, userID, cart.KindCart)
		if err != nil {
			return err
		}
		if j := cr.Find(key); j >= 0 {
			cr.Items[j].Quantity++
		} else {
			item.Quantity = 1
			item.AddedAt = s.now()
			cr.Items = append(cr.Items, item)
		}
		_, err = s.store.SaveAll(ctx, cr, wl)
		return err
	})
}

// Fetch joins the wishlist with the catalog, echoing variant stock, and
// prunes lines whose product or color disappeared.
func (s *Service) Fetch(ctx context.Context, userID int) ([]cart.View, error) {
	c, err := s.store.Load(ctx, userID, cart.KindWishlist)
	if err != nil {
		return nil, err
	}
	products, err := s.catalog.GetMany(ctx, c.ProductIDs())
	if err != nil {
		return nil, err
	}
	kept, views := cart.Populate(c.Items, products)
	if len(kept) != len(c.Items) {
		c.Items = kept
		if _, err := s.store.Save(ctx, c); err != nil && !errors.Is(err, cart.ErrStale) {
			s.log.Error().Err(err).Int("user_id", userID).Msg("prune orphaned wishlist items")
		}
	}
	return views, nil
}
