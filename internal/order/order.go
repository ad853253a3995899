package order

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/storefront-backend/internal/product"
)

// Status is the shipping progress of an order.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
)

var statusFlow = []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered}

// Next is the status one step forward. Delivered stays Delivered.
func (s Status) Next() Status {
	for i, st := range statusFlow {
		if st == s && i+1 < len(statusFlow) {
			return statusFlow[i+1]
		}
	}
	return StatusDelivered
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "Pending"
	PaymentPaid    PaymentStatus = "Paid"
)

// PaymentMethodPaypal is the only method orders can be placed with.
const PaymentMethodPaypal = "Paypal"

// Line is a frozen copy of one purchased variant.
type Line struct {
	ProductID        int             `json:"productId"`
	Name             string          `json:"name"`
	Quantity         int             `json:"quantity"`
	Price            decimal.Decimal `json:"price"`
	ImageURL         *string         `json:"imageUrl"`
	SelectedSize     string          `json:"selectedSize,omitempty"`
	SelectedSeamSize string          `json:"selectedSeamSize,omitempty"`
	ColorName        string          `json:"selectedColorName"`
	Reviewed         bool            `json:"reviewed"`
}

type Lines []Line

func (ls Lines) Value() (driver.Value, error) {
	if ls == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(ls)
}

func (ls *Lines) Scan(src any) error {
	*ls = Lines{}
	return scanJSON(src, ls)
}

func (ls Lines) StockLines() []product.StockLine {
	out := make([]product.StockLine, 0, len(ls))
	for _, l := range ls {
		out = append(out, product.StockLine{ProductID: l.ProductID, ColorName: l.ColorName, Quantity: l.Quantity})
	}
	return out
}

func (ls Lines) ProductIDs() []int {
	seen := map[int]bool{}
	out := make([]int, 0, len(ls))
	for _, l := range ls {
		if !seen[l.ProductID] {
			seen[l.ProductID] = true
			out = append(out, l.ProductID)
		}
	}
	return out
}

type Shipping struct {
	FullName    string `json:"fullName"`
	Address     string `json:"address"`
	City        string `json:"city"`
	State       string `json:"state"`
	ZipCode     string `json:"zipCode"`
	PhoneNumber string `json:"phoneNumber"`
	Email       string `json:"email"`
}

// Missing names the blank fields.
func (s Shipping) Missing() []string {
	var out []string
	for _, f := range []struct{ name, value string }{
		{"fullName", s.FullName},
		{"address", s.Address},
		{"city", s.City},
		{"state", s.State},
		{"zipCode", s.ZipCode},
		{"phoneNumber", s.PhoneNumber},
		{"email", s.Email},
	} {
		if strings.TrimSpace(f.value) == "" {
			out = append(out, f.name)
		}
	}
	return out
}

func (s Shipping) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *Shipping) Scan(src any) error {
	*s = Shipping{}
	return scanJSON(src, s)
}

type Order struct {
	ID             int             `json:"orderId"`
	UserID         int             `json:"userId"`
	Items          Lines           `json:"cartItems"`
	Shipping       Shipping        `json:"shippingDetails"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Tax            decimal.Decimal `json:"tax"`
	Discount       decimal.Decimal `json:"discount"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	Total          decimal.Decimal `json:"total"`
	CouponCode     string          `json:"couponCode,omitempty"`
	PaymentMethod  string          `json:"paymentMethod"`
	Status         Status          `json:"status"`
	PaymentStatus  PaymentStatus   `json:"paymentStatus"`
	PaidAt         *time.Time      `json:"paidAt,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

var hundred = decimal.NewFromInt(100)

// price fills the amounts from the line prices, a discount percentage and
// a tax rate applied after the discount.
func (o *Order) price(discount, taxRate decimal.Decimal) {
	subtotal := decimal.Zero
	for _, l := range o.Items {
		subtotal = subtotal.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	o.Subtotal = subtotal.Round(2)
	o.Discount = discount
	o.DiscountAmount = o.Subtotal.Mul(discount).Div(hundred).Round(2)
	taxable := o.Subtotal.Sub(o.DiscountAmount)
	o.Tax = taxable.Mul(taxRate).Round(2)
	o.Total = taxable.Add(o.Tax)
}

// Summary is the compact view used by dashboards.
type Summary struct {
	ID        int             `json:"orderId"`
	Discount  decimal.Decimal `json:"discount"`
	Amount    decimal.Decimal `json:"amount"`
	ItemCount int             `json:"quantity"`
	Status    Status          `json:"status"`
}

func (o Order) Summary() Summary {
	return Summary{ID: o.ID, Discount: o.DiscountAmount, Amount: o.Total, ItemCount: len(o.Items), Status: o.Status}
}

func scanJSON(src any, dst any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("order: cannot scan %T", src)
	}
}
