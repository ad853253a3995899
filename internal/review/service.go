package review

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/wichananm65/storefront-backend/internal/apperr"
	"github.com/wichananm65/storefront-backend/internal/auth"
	"github.com/wichananm65/storefront-backend/internal/order"
	"github.com/wichananm65/storefront-backend/internal/product"
)

type Catalog interface {
	GetByID(ctx context.Context, id int) (product.Product, error)
	SetRating(ctx context.Context, id int, avg float64) error
}

// Orders gates reviews on delivered purchases.
type Orders interface {
	ClaimReview(ctx context.Context, userID, productID int) (order.Order, error)
	ReleaseReview(ctx context.Context, orderID, productID int) error
}

type Names interface {
	DisplayName(ctx context.Context, userID int) (string, error)
}

type Service struct {
	repo    Repository
	catalog Catalog
	orders  Orders
	names   Names
	log     zerolog.Logger
}

func NewService(repo Repository, catalog Catalog, orders Orders, names Names, log zerolog.Logger) *Service {
	return &Service{repo: repo, catalog: catalog, orders: orders, names: names, log: log}
}

// Submit stores a review for a product the caller received and has not
// reviewed yet, then refreshes the product's average rating.
func (s *Service) Submit(ctx context.Context, caller auth.Identity, productID, rating int, comment string) (Review, error) {
	comment = strings.TrimSpace(comment)
	if productID <= 0 || comment == "" {
		return Review{}, apperr.Validation("product, rating and comment are all required")
	}
	if rating < 1 || rating > 5 {
		return Review{}, apperr.Validation("rating must be between 1 and 5")
	}
	if _, err := s.catalog.GetByID(ctx, productID); err != nil {
		return Review{}, err
	}
	name, err := s.names.DisplayName(ctx, caller.UserID)
	if err != nil {
		return Review{}, err
	}

	// the line is flagged before the insert so two submits cannot both pass
	o, err := s.orders.ClaimReview(ctx, caller.UserID, productID)
	if err != nil {
		return Review{}, err
	}
	rv, err := s.repo.Create(ctx, Review{ProductID: productID, UserID: caller.UserID, UserName: name, Rating: rating, Comment: comment})
	if err != nil {
		if rerr := s.orders.ReleaseReview(ctx, o.ID, productID); rerr != nil {
			s.log.Error().Err(rerr).Int("order_id", o.ID).Int("product_id", productID).Msg("release review claim")
		}
		return Review{}, err
	}
	if err := s.refreshRating(ctx, productID); err != nil {
		return Review{}, err
	}
	return rv, nil
}

func (s *Service) List(ctx context.Context, productID int) ([]Review, error) {
	if _, err := s.catalog.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	return s.repo.ListByProduct(ctx, productID)
}

func (s *Service) Delete(ctx context.Context, productID, reviewID int) error {
	if err := s.repo.Delete(ctx, productID, reviewID); err != nil {
		return err
	}
	return s.refreshRating(ctx, productID)
}

func (s *Service) refreshRating(ctx context.Context, productID int) error {
	avg, err := s.repo.Average(ctx, productID)
	if err != nil {
		return err
	}
	return s.catalog.SetRating(ctx, productID, avg)
}
