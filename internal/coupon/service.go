package coupon

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/storefront-backend/internal/apperr"
)

// Input carries the admin editable fields. A nil IsActive defaults to true.
type Input struct {
	Code       string          `json:"code"`
	Discount   decimal.Decimal `json:"discount"`
	ExpiryDate time.Time       `json:"expiryDate"`
	IsActive   *bool           `json:"isActive"`
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(r Repository) *Service {
	return &Service{repo: r, now: time.Now}
}

func (s *Service) List(ctx context.Context) ([]Coupon, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int) (Coupon, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, in Input) (Coupon, error) {
	c, err := build(in)
	if err != nil {
		return Coupon{}, err
	}
	return s.repo.Create(ctx, c)
}

func (s *Service) Update(ctx context.Context, id int, in Input) (Coupon, error) {
	c, err := build(in)
	if err != nil {
		return Coupon{}, err
	}
	return s.repo.Update(ctx, id, c)
}

func (s *Service) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

func build(in Input) (Coupon, error) {
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	if code == "" {
		return Coupon{}, apperr.Validation("code is required")
	}
	if in.Discount.LessThan(decimal.NewFromInt(1)) || in.Discount.GreaterThan(hundred) {
		return Coupon{}, apperr.Validation("discount must be between 1 and 100")
	}
	if in.ExpiryDate.IsZero() {
		return Coupon{}, apperr.Validation("expiryDate is required")
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	return Coupon{Code: code, Discount: in.Discount, ExpiryDate: in.ExpiryDate.UTC(), IsActive: active}, nil
}

// Discount returns the percentage of a redeemable coupon.
func (s *Service) Discount(ctx context.Context, code string) (decimal.Decimal, error) {
	c, err := s.repo.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return decimal.Zero, err
	}
	if !c.IsActive {
		return decimal.Zero, apperr.Validation("coupon %s is not active", c.Code)
	}
	if !c.Redeemable(s.now()) {
		return decimal.Zero, apperr.Validation("coupon %s has expired", c.Code)
	}
	return c.Discount, nil
}

func (s *Service) Validate(ctx context.Context, code string, total decimal.Decimal) (Quote, error) {
	if total.IsNegative() {
		return Quote{}, apperr.Validation("totalAmount must not be negative")
	}
	pct, err := s.Discount(ctx, code)
	if err != nil {
		return Quote{}, err
	}
	amount, final := Apply(total, pct)
	return Quote{
		Code:           strings.ToUpper(strings.TrimSpace(code)),
		Discount:       pct,
		DiscountAmount: amount,
		FinalAmount:    final,
	}, nil
}
