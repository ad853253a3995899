package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/storefront-backend/internal/apperr"
	"github.com/wichananm65/storefront-backend/internal/auth"
	"github.com/wichananm65/storefront-backend/internal/broker"
	"github.com/wichananm65/storefront-backend/internal/cart"
	"github.com/wichananm65/storefront-backend/internal/notify"
	"github.com/wichananm65/storefront-backend/internal/product"
)

// Catalog resolves live product state at placement time.
type Catalog interface {
	GetMany(ctx context.Context, ids []int) (map[int]product.Product, error)
}

// Coupons returns the discount percentage of a redeemable code.
type Coupons interface {
	Discount(ctx context.Context, code string) (decimal.Decimal, error)
}

// CartClearer drops ordered products from the buyer's cart.
type CartClearer interface {
	ClearByProductIDs(ctx context.Context, userID int, productIDs []int) (cart.Container, error)
}

// AddressBook resolves a saved shipping address of the buyer.
type AddressBook interface {
	Shipping(ctx context.Context, userID, addressID int) (Shipping, error)
}

// LineInput is one requested variant.
type LineInput struct {
	ProductID        int    `json:"productId"`
	Quantity         int    `json:"quantity"`
	SelectedSize     string `json:"selectedSize"`
	SelectedSeamSize string `json:"selectedSeamSize"`
	ColorName        string `json:"selectedColorName"`
}

type PlaceInput struct {
	Items         []LineInput `json:"cartItems"`
	Shipping      Shipping    `json:"shippingDetails"`
	AddressID     int         `json:"addressId,omitempty"`
	PaymentMethod string      `json:"paymentMethod"`
	CouponCode    string      `json:"couponCode"`
}

// Service provides business logic for orders.
type Service struct {
	repo    Repository
	catalog Catalog
	coupons Coupons
	carts   CartClearer
	book    AddressBook
	events  broker.Publisher
	mailer  notify.Mailer
	taxRate decimal.Decimal
	log     zerolog.Logger
}

type Options struct {
	Coupons   Coupons
	Carts     CartClearer
	Addresses AddressBook
	Events    broker.Publisher
	Mailer    notify.Mailer
	TaxRate   decimal.Decimal
}

func NewService(r Repository, catalog Catalog, log zerolog.Logger, opts Options) *Service {
	s := &Service{
		repo:    r,
		catalog: catalog,
		coupons: opts.Coupons,
		carts:   opts.Carts,
		book:    opts.Addresses,
		events:  opts.Events,
		mailer:  opts.Mailer,
		taxRate: opts.TaxRate,
		log:     log,
	}
	if s.events == nil {
		s.events = broker.Noop{}
	}
	if s.mailer == nil {
		s.mailer = notify.Noop{}
	}
	return s
}

// Place validates the request, checks live stock for every line before
// touching anything, prices the order and stores it while taking stock.
func (s *Service) Place(ctx context.Context, userID int, in PlaceInput) (Order, error) {
	if len(in.Items) == 0 {
		return Order{}, apperr.Validation("order must contain at least one item")
	}
	// a saved address stands in for inline shipping details
	if in.AddressID > 0 {
		if s.book == nil {
			return Order{}, apperr.Validation("saved addresses are not available")
		}
		saved, err := s.book.Shipping(ctx, userID, in.AddressID)
		if err != nil {
			return Order{}, err
		}
		in.Shipping = saved
	}
	if missing := in.Shipping.Missing(); len(missing) > 0 {
		return Order{}, apperr.Validation("missing shipping details: %s", strings.Join(missing, ", "))
	}
	for _, it := range in.Items {
		if it.ProductID <= 0 || it.Quantity <= 0 || strings.TrimSpace(it.ColorName) == "" {
			return Order{}, apperr.Validation("each item needs a product, a positive quantity and a color")
		}
	}

	lines, err := s.snapshot(ctx, in.Items)
	if err != nil {
		return Order{}, err
	}
	if in.PaymentMethod != PaymentMethodPaypal {
		return Order{}, fmt.Errorf("%w: %q", apperr.ErrUnsupportedPaymentMethod, in.PaymentMethod)
	}

	discount := decimal.Zero
	code := strings.ToUpper(strings.TrimSpace(in.CouponCode))
	if code != "" {
		if s.coupons == nil {
			return Order{}, apperr.Validation("coupons are not available")
		}
		if discount, err = s.coupons.Discount(ctx, code); err != nil {
			return Order{}, err
		}
	}

	o := Order{
		UserID:        userID,
		Items:         lines,
		Shipping:      in.Shipping,
		CouponCode:    code,
		PaymentMethod: PaymentMethodPaypal,
		Status:        StatusPending,
		PaymentStatus: PaymentPending,
	}
	o.price(discount, s.taxRate)

	placed, err := s.repo.Place(ctx, o)
	if err != nil {
		return Order{}, err
	}
	s.publish(ctx, broker.OrderPlaced, placed)
	s.sendConfirmation(ctx, placed)
	if s.carts != nil {
		if _, err := s.carts.ClearByProductIDs(ctx, userID, placed.Items.ProductIDs()); err != nil {
			s.log.Warn().Err(err).Int("order_id", placed.ID).Msg("clear ordered items from cart")
		}
	}
	return placed, nil
}

// snapshot freezes name, price and image from the catalog and fails with
// an InsufficientStockError if any variant cannot cover its quantity.
func (s *Service) snapshot(ctx context.Context, items []LineInput) (Lines, error) {
	ids := make([]int, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.catalog.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	requested := map[product.StockLine]int{}
	lines := make(Lines, 0, len(items))
	for _, it := range items {
		p, ok := products[it.ProductID]
		if !ok {
			return nil, apperr.NotFound("product not found: %d", it.ProductID)
		}
		v, ok := p.Variant(it.ColorName)
		if !ok {
			return nil, apperr.NotFound("color %q not found for %s", it.ColorName, p.Name)
		}
		k := product.StockLine{ProductID: p.ID, ColorName: v.ColorName}
		requested[k] += it.Quantity
		if v.Stock < requested[k] {
			return nil, &apperr.InsufficientStockError{ProductName: p.Name, Available: v.Stock, Requested: requested[k]}
		}

		img := v.Photos.FirstURL()
		if img == nil {
			img = p.PrimaryPhoto()
		}
		lines = append(lines, Line{
			ProductID:        p.ID,
			Name:             p.Name,
			Quantity:         it.Quantity,
			Price:            p.Price,
			ImageURL:         img,
			SelectedSize:     strings.TrimSpace(it.SelectedSize),
			SelectedSeamSize: strings.TrimSpace(it.SelectedSeamSize),
			ColorName:        v.ColorName,
		})
	}
	return lines, nil
}

// Cancel restores stock and removes the order.
func (s *Service) Cancel(ctx context.Context, id int) (Order, error) {
	o, err := s.repo.Cancel(ctx, id)
	if err != nil {
		return Order{}, err
	}
	s.publish(ctx, broker.OrderCancelled, o)
	return o, nil
}

// Advance moves the order one status forward; Delivered orders are
// returned unchanged.
func (s *Service) Advance(ctx context.Context, id int) (Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Order{}, err
	}
	next := o.Status.Next()
	if next == o.Status {
		return o, nil
	}
	updated, err := s.repo.UpdateStatus(ctx, id, o.Status, next)
	if err != nil {
		return Order{}, err
	}
	s.publish(ctx, broker.OrderAdvanced, updated)
	return updated, nil
}

// Get returns the order to its owner or to an admin.
func (s *Service) Get(ctx context.Context, caller auth.Identity, id int) (Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if o.UserID != caller.UserID && !caller.IsAdmin() {
		return Order{}, apperr.Forbidden("not allowed to view this order")
	}
	return o, nil
}

func (s *Service) Mine(ctx context.Context, caller auth.Identity) ([]Order, error) {
	return s.repo.ListByUser(ctx, caller.UserID)
}

func (s *Service) All(ctx context.Context) ([]Order, error) {
	return s.repo.List(ctx, 0)
}

func (s *Service) Latest(ctx context.Context, n int) ([]Order, error) {
	return s.repo.List(ctx, n)
}

// MarkPaid records a captured payment.
func (s *Service) MarkPaid(ctx context.Context, id int) (Order, error) {
	o, err := s.repo.MarkPaid(ctx, id, time.Now().UTC())
	if err != nil {
		return Order{}, err
	}
	s.publish(ctx, broker.OrderPaid, o)
	return o, nil
}

func (s *Service) GetByID(ctx context.Context, id int) (Order, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) publish(ctx context.Context, typ string, o Order) {
	ev := broker.OrderEvent{
		Type:       typ,
		OrderID:    o.ID,
		UserID:     o.UserID,
		Status:     string(o.Status),
		Total:      o.Total.StringFixed(2),
		OccurredAt: time.Now().UTC(),
	}
	if err := s.events.PublishOrder(ctx, ev); err != nil {
		s.log.Warn().Err(err).Int("order_id", o.ID).Str("event", typ).Msg("publish order event")
	}
}

func (s *Service) sendConfirmation(ctx context.Context, o Order) {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\nThanks for your order #%d.\n\n", o.Shipping.FullName, o.ID)
	for _, l := range o.Items {
		fmt.Fprintf(&b, "%d x %s (%s) %s\n", l.Quantity, l.Name, l.ColorName, l.Price.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nTotal: %s\n", o.Total.StringFixed(2))

	msg := notify.Message{
		To:        o.Shipping.Email,
		ToName:    o.Shipping.FullName,
		Subject:   fmt.Sprintf("Order #%d confirmed", o.ID),
		PlainText: b.String(),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.log.Warn().Err(err).Int("order_id", o.ID).Msg("send order confirmation")
	}
}

// ClaimReview reserves one unreviewed delivered line of productID for a
// review by userID.
func (s *Service) ClaimReview(ctx context.Context, userID, productID int) (Order, error) {
	return s.repo.ClaimReview(ctx, userID, productID)
}

func (s *Service) ReleaseReview(ctx context.Context, orderID, productID int) error {
	return s.repo.ReleaseReview(ctx, orderID, productID)
}
