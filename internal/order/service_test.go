package order

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/storefront-backend/internal/apperr"
	"github.com/wichananm65/storefront-backend/internal/auth"
	"github.com/wichananm65/storefront-backend/internal/broker"
	"github.com/wichananm65/storefront-backend/internal/cart"
	"github.com/wichananm65/storefront-backend/internal/notify"
	"github.com/wichananm65/storefront-backend/internal/product"
)

type recordingPublisher struct{ types []string }

func (p *recordingPublisher) PublishOrder(_ context.Context, ev broker.OrderEvent) error {
	p.types = append(p.types, ev.Type)
	return nil
}

type recordingMailer struct{ sent []notify.Message }

func (m *recordingMailer) Send(_ context.Context, msg notify.Message) error {
	m.sent = append(m.sent, msg)
	return errors.New("smtp down")
}

type fixedCoupons map[string]decimal.Decimal

func (f fixedCoupons) Discount(_ context.Context, code string) (decimal.Decimal, error) {
	if d, ok := f[code]; ok {
		return d, nil
	}
	return decimal.Zero, apperr.NotFound("coupon not found")
}

type fixture struct {
	svc     *Service
	catalog *product.InMemoryRepository
	events  *recordingPublisher
	mailer  *recordingMailer
}

func newFixture(taxRate string) fixture {
	catalog := product.NewInMemoryRepository([]product.Product{
		{ID: 1, Name: "Oxford Shirt", Price: decimal.RequireFromString("40.00"), Colors: []product.Variant{{ColorName: "White", Stock: 5}}},
		{ID: 2, Name: "Wool Scarf", Price: decimal.RequireFromString("25.50"), Colors: []product.Variant{{ColorName: "Grey", Stock: 2}}},
	})
	events := &recordingPublisher{}
	mailer := &recordingMailer{}
	svc := NewService(NewInMemoryRepository(catalog, nil), catalog, zerolog.Nop(), Options{
		Coupons: fixedCoupons{"TEN": decimal.NewFromInt(10)},
		Events:  events,
		Mailer:  mailer,
		TaxRate: decimal.RequireFromString(taxRate),
	})
	return fixture{svc: svc, catalog: catalog, events: events, mailer: mailer}
}

func shipping() Shipping {
	return Shipping{FullName: "Ann Lee", Address: "1 Main St", City: "Springfield", State: "IL", ZipCode: "62701", PhoneNumber: "555-0100", Email: "ann@example.com"}
}

func stockOf(t *testing.T, repo *product.InMemoryRepository, id int) int {
	t.Helper()
	p, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	return p.Colors[0].Stock
}

func TestStatusNext_SaturatesAtDelivered(t *testing.T) {
	assert.Equal(t, StatusProcessing, StatusPending.Next())
	assert.Equal(t, StatusShipped, StatusProcessing.Next())
	assert.Equal(t, StatusDelivered, StatusShipped.Next())
	assert.Equal(t, StatusDelivered, StatusDelivered.Next())
}

func TestPlace_InsufficientStockLeavesEverythingUntouched(t *testing.T) {
	f := newFixture("0")
	ctx := context.Background()

	_, err := f.svc.Place(ctx, 3, PlaceInput{
		Items:         []LineInput{{ProductID: 2, Quantity: 3, ColorName: "Grey"}},
		Shipping:      shipping(),
		PaymentMethod: PaymentMethodPaypal,
	})
	var stockErr *apperr.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Not enough stock for Wool Scarf! Available: 2, Requested: 3", stockErr.Error())

	assert.Equal(t, 2, stockOf(t, f.catalog, 2))
	all, _ := f.svc.All(ctx)
	assert.Empty(t, all)
	assert.Empty(t, f.events.types)
}

func TestPlaceThenCancel_RestoresStock(t *testing.T) {
	f := newFixture("0")
	ctx := context.Background()

	o, err := f.svc.Place(ctx, 3, PlaceInput{
		Items:         []LineInput{{ProductID: 1, Quantity: 2, ColorName: "White"}},
		Shipping:      shipping(),
		PaymentMethod: PaymentMethodPaypal,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, PaymentPending, o.PaymentStatus)
	assert.Equal(t, 3, stockOf(t, f.catalog, 1))
	all, _ := f.svc.All(ctx)
	assert.Len(t, all, 1)

	_, err = f.svc.Cancel(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stockOf(t, f.catalog, 1))
	_, err = f.svc.GetByID(ctx, o.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	assert.Equal(t, []string{broker.OrderPlaced, broker.OrderCancelled}, f.events.types)
	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "ann@example.com", f.mailer.sent[0].To)
}

func TestPlace_PricesFromCatalogWithCouponAndTax(t *testing.T) {
	f := newFixture("0.07")

	o, err := f.svc.Place(context.Background(), 3, PlaceInput{
		Items: []LineInput{
			{ProductID: 1, Quantity: 2, ColorName: "White"},
			{ProductID: 2, Quantity: 1, ColorName: "Grey"},
		},
		Shipping:      shipping(),
		PaymentMethod: PaymentMethodPaypal,
		CouponCode:    "ten",
	})
	require.NoError(t, err)

	// 2*40 + 25.50 = 105.50; 10% off = 10.55; tax 7% of 94.95 = 6.65
	assert.Equal(t, "105.50", o.Subtotal.StringFixed(2))
	assert.Equal(t, "10.55", o.DiscountAmount.StringFixed(2))
	assert.Equal(t, "6.65", o.Tax.StringFixed(2))
	assert.Equal(t, "101.60", o.Total.StringFixed(2))
	assert.Equal(t, "TEN", o.CouponCode)
	assert.Equal(t, "Oxford Shirt", o.Items[0].Name)
}

func TestPlace_Validation(t *testing.T) {
	f := newFixture("0")
	ctx := context.Background()
	line := []LineInput{{ProductID: 1, Quantity: 1, ColorName: "White"}}

	_, err := f.svc.Place(ctx, 3, PlaceInput{Shipping: shipping(), PaymentMethod: PaymentMethodPaypal})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	noEmail := shipping()
	noEmail.Email = " "
	_, err = f.svc.Place(ctx, 3, PlaceInput{Items: line, Shipping: noEmail, PaymentMethod: PaymentMethodPaypal})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.Place(ctx, 3, PlaceInput{Items: line, Shipping: shipping(), PaymentMethod: "Stripe"})
	assert.ErrorIs(t, err, apperr.ErrUnsupportedPaymentMethod)
	assert.Equal(t, 5, stockOf(t, f.catalog, 1))

	_, err = f.svc.Place(ctx, 3, PlaceInput{Items: line, Shipping: shipping(), PaymentMethod: PaymentMethodPaypal, CouponCode: "BOGUS"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestPlace_ClearsOrderedProductsFromCart(t *testing.T) {
	catalog := product.NewInMemoryRepository([]product.Product{
		{ID: 1, Name: "Oxford Shirt", Price: decimal.NewFromInt(40), Colors: []product.Variant{{ColorName: "White", Stock: 5}}},
		{ID: 2, Name: "Wool Scarf", Price: decimal.NewFromInt(25), Colors: []product.Variant{{ColorName: "Grey", Stock: 2}}},
	})
	carts := cart.NewService(cart.NewInMemoryStore(), catalog, zerolog.Nop())
	ctx := context.Background()
	_, err := carts.Add(ctx, 3, cart.AddInput{ProductID: 1, Quantity: 1, ColorName: "White"})
	require.NoError(t, err)
	_, err = carts.Add(ctx, 3, cart.AddInput{ProductID: 2, Quantity: 1, ColorName: "Grey"})
	require.NoError(t, err)

	svc := NewService(NewInMemoryRepository(catalog, nil), catalog, zerolog.Nop(), Options{Carts: carts})
	_, err = svc.Place(ctx, 3, PlaceInput{
		Items:         []LineInput{{ProductID: 1, Quantity: 1, ColorName: "White"}},
		Shipping:      shipping(),
		PaymentMethod: PaymentMethodPaypal,
	})
	require.NoError(t, err)

	views, err := carts.Fetch(ctx, 3)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, 2, views[0].ProductID)
}

type savedAddresses map[int]Shipping

func (b savedAddresses) Shipping(_ context.Context, userID, addressID int) (Shipping, error) {
	if s, ok := b[addressID]; ok && userID == 3 {
		return s, nil
	}
	return Shipping{}, apperr.NotFound("address not found")
}

func TestPlace_UsesSavedAddress(t *testing.T) {
	catalog := product.NewInMemoryRepository([]product.Product{
		{ID: 1, Name: "Oxford Shirt", Price: decimal.NewFromInt(40), Colors: []product.Variant{{ColorName: "White", Stock: 5}}},
	})
	svc := NewService(NewInMemoryRepository(catalog, nil), catalog, zerolog.Nop(), Options{Addresses: savedAddresses{8: shipping()}})
	ctx := context.Background()
	line := []LineInput{{ProductID: 1, Quantity: 1, ColorName: "White"}}

	o, err := svc.Place(ctx, 3, PlaceInput{Items: line, AddressID: 8, PaymentMethod: PaymentMethodPaypal})
	require.NoError(t, err)
	assert.Equal(t, "Springfield", o.Shipping.City)

	_, err = svc.Place(ctx, 4, PlaceInput{Items: line, AddressID: 8, PaymentMethod: PaymentMethodPaypal})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, 4, stockOf(t, catalog, 1))
}

func TestAdvanceAndAccess(t *testing.T) {
	f := newFixture("0")
	ctx := context.Background()

	o, err := f.svc.Place(ctx, 3, PlaceInput{
		Items:         []LineInput{{ProductID: 1, Quantity: 1, ColorName: "White"}},
		Shipping:      shipping(),
		PaymentMethod: PaymentMethodPaypal,
	})
	require.NoError(t, err)

	for _, want := range []Status{StatusProcessing, StatusShipped, StatusDelivered, StatusDelivered} {
		o, err = f.svc.Advance(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, want, o.Status)
	}

	_, err = f.svc.Get(ctx, auth.Identity{UserID: 4, Role: auth.RoleUser}, o.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	_, err = f.svc.Get(ctx, auth.Identity{UserID: 4, Role: auth.RoleAdmin}, o.ID)
	assert.NoError(t, err)

	mine, err := f.svc.Mine(ctx, auth.Identity{UserID: 3})
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestInMemoryClaimReview(t *testing.T) {
	repo := NewInMemoryRepository(nil, []Order{
		{ID: 1, UserID: 3, Status: StatusShipped, Items: Lines{{ProductID: 7}}},
		{ID: 2, UserID: 3, Status: StatusDelivered, Items: Lines{{ProductID: 7}, {ProductID: 8}}},
	})
	ctx := context.Background()

	o, err := repo.ClaimReview(ctx, 3, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, o.ID)
	assert.True(t, o.Items[0].Reviewed)
	assert.False(t, o.Items[1].Reviewed)

	_, err = repo.ClaimReview(ctx, 3, 7)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	require.NoError(t, repo.ReleaseReview(ctx, 2, 7))
	o, err = repo.ClaimReview(ctx, 3, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, o.ID)

	_, err = repo.ClaimReview(ctx, 3, 8)
	assert.NoError(t, err)
}
