package address

import (
	"time"

	"github.com/wichananm65/storefront-backend/internal/order"
)

// Address is a shipping destination a user saved for reuse at checkout.
type Address struct {
	ID        int            `json:"addressId"`
	UserID    int            `json:"userId"`
	Name      string         `json:"addressName"`
	Details   order.Shipping `json:"details"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}
