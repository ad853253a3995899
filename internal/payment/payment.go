package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

const StatusCompleted = "Completed"

// Payment is one ledger row for a captured order payment.
type Payment struct {
	ID        int             `json:"paymentRecordId"`
	OrderID   int             `json:"orderId"`
	PaymentID string          `json:"paymentId"`
	PayerID   string          `json:"payerId"`
	Status    string          `json:"status"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	CreatedAt time.Time       `json:"createdAt"`
}
