package coupon

import (
	"time"

	"github.com/shopspring/decimal"
)

type Coupon struct {
	ID         int             `json:"couponId"`
	Code       string          `json:"code"`
	Discount   decimal.Decimal `json:"discount"`
	ExpiryDate time.Time       `json:"expiryDate"`
	IsActive   bool            `json:"isActive"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// Redeemable reports whether the coupon can be applied at now.
func (c Coupon) Redeemable(now time.Time) bool {
	return c.IsActive && now.Before(c.ExpiryDate)
}

// Quote is the result of applying a coupon to an amount.
type Quote struct {
	Code           string          `json:"code"`
	Discount       decimal.Decimal `json:"discount"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	FinalAmount    decimal.Decimal `json:"finalAmount"`
}

var hundred = decimal.NewFromInt(100)

// Apply takes discount percent off total, rounded to cents.
func Apply(total, discount decimal.Decimal) (amount, final decimal.Decimal) {
	amount = total.Mul(discount).Div(hundred).Round(2)
	return amount, total.Sub(amount)
}
