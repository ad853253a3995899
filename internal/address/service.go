package address

import (
	"context"
	"strings"

	"github.com/wichananm65/storefront-backend/internal/apperr"
	"github.com/wichananm65/storefront-backend/internal/order"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type Input struct {
	Name    string         `json:"addressName"`
	Details order.Shipping `json:"details"`
}

func (in Input) validate() error {
	if missing := in.Details.Missing(); len(missing) > 0 {
		return apperr.Validation("missing address details: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (s *Service) List(ctx context.Context, userID int) ([]Address, error) {
	return s.repo.List(ctx, userID)
}

func (s *Service) Add(ctx context.Context, userID int, in Input) (Address, error) {
	if err := in.validate(); err != nil {
		return Address{}, err
	}
	return s.repo.Create(ctx, Address{UserID: userID, Name: strings.TrimSpace(in.Name), Details: in.Details})
}

func (s *Service) Update(ctx context.Context, userID, id int, in Input) (Address, error) {
	if err := in.validate(); err != nil {
		return Address{}, err
	}
	return s.repo.Update(ctx, Address{ID: id, UserID: userID, Name: strings.TrimSpace(in.Name), Details: in.Details})
}

func (s *Service) Delete(ctx context.Context, userID, id int) error {
	return s.repo.Delete(ctx, userID, id)
}

// Shipping returns the saved details for checkout.
func (s *Service) Shipping(ctx context.Context, userID, id int) (order.Shipping, error) {
	a, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return order.Shipping{}, err
	}
	return a.Details, nil
}
