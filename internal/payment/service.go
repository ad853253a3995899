package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/wichananm65/storefront-backend/internal/apperr"
	"github.com/wichananm65/storefront-backend/internal/auth"
	"github.com/wichananm65/storefront-backend/internal/order"
)

const currency = "USD"

// Orders is the part of the order service payments depend on.
type Orders interface {
	Get(ctx context.Context, caller auth.Identity, id int) (order.Order, error)
	MarkPaid(ctx context.Context, id int) (order.Order, error)
}

type Service struct {
	gateway   Gateway
	orders    Orders
	repo      Repository
	clientURL string
	log       zerolog.Logger
}

func NewService(g Gateway, orders Orders, repo Repository, clientURL string, log zerolog.Logger) *Service {
	return &Service{gateway: g, orders: orders, repo: repo, clientURL: strings.TrimRight(clientURL, "/"), log: log}
}

// Create starts a payment for the order total and returns the URL the
// buyer approves it at.
func (s *Service) Create(ctx context.Context, caller auth.Identity, orderID int) (Approval, error) {
	o, err := s.orders.Get(ctx, caller, orderID)
	if err != nil {
		return Approval{}, err
	}
	if o.PaymentStatus == order.PaymentPaid {
		return Approval{}, apperr.Conflict("order %d is already paid", o.ID)
	}
	a, err := s.gateway.CreatePayment(ctx, CreateRequest{
		Reference:   fmt.Sprint(o.ID),
		Amount:      o.Total,
		Currency:    currency,
		Description: fmt.Sprintf("Payment for order %d", o.ID),
		ReturnURL:   s.clientURL + "/payment-success",
		CancelURL:   s.clientURL + "/payment-cancel",
	})
	if err != nil {
		return Approval{}, apperr.External("paypal", err)
	}
	return a, nil
}

// Execute captures an approved payment, marks the order paid and records
// the ledger entry. A gateway failure changes nothing.
func (s *Service) Execute(ctx context.Context, caller auth.Identity, orderID int, paymentID, payerID string) (Payment, error) {
	if strings.TrimSpace(paymentID) == "" || strings.TrimSpace(payerID) == "" {
		return Payment{}, apperr.Validation("paymentId and payerId are required")
	}
	o, err := s.orders.Get(ctx, caller, orderID)
	if err != nil {
		return Payment{}, err
	}
	if o.PaymentStatus == order.PaymentPaid {
		return Payment{}, apperr.Conflict("order %d is already paid", o.ID)
	}

	capture, err := s.gateway.ExecutePayment(ctx, paymentID, payerID)
	if err != nil {
		return Payment{}, apperr.External("paypal", err)
	}
	if err := matches(o, capture); err != nil {
		s.log.Error().Err(err).Int("order_id", o.ID).Str("payment_id", paymentID).
			Str("captured", capture.Amount.String()+" "+capture.Currency).Msg("capture does not match order")
		return Payment{}, err
	}
	if _, err := s.orders.MarkPaid(ctx, o.ID); err != nil {
		return Payment{}, err
	}
	p, err := s.repo.Create(ctx, Payment{
		OrderID:   o.ID,
		PaymentID: paymentID,
		PayerID:   payerID,
		Status:    StatusCompleted,
		Amount:    capture.Amount,
		Currency:  capture.Currency,
	})
	if err != nil {
		s.log.Error().Err(err).Int("order_id", o.ID).Str("payment_id", paymentID).Msg("record captured payment")
		return Payment{}, err
	}
	return p, nil
}

// matches binds a capture to the order it was created for.
func matches(o order.Order, c Capture) error {
	if c.Reference != fmt.Sprint(o.ID) {
		return apperr.Conflict("payment %s does not belong to order %d", c.PaymentID, o.ID)
	}
	if c.Currency != currency || !c.Amount.Equal(o.Total) {
		return apperr.Conflict("captured %s %s does not match order total %s %s", c.Amount, c.Currency, o.Total, currency)
	}
	return nil
}

func (s *Service) List(ctx context.Context) ([]Payment, error) {
	return s.repo.List(ctx)
}
