package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

func (s PaymentStatus) String() string {
	return string(s)
}

// Возможные значения статусов оплаты
const (
	PaymentPending   PaymentStatus = "Pending"
	PaymentPaid      PaymentStatus = "Paid"
	PaymentCancelled PaymentStatus = "Cancelled"
	PaymentRefunded  PaymentStatus = "Refunded"
)

var ErrOrderNotFound = errors.New("order not found")

type Order struct {
	ID                         string          `json:"id"`
	OrderGUID                  string          `json:"order_guid"`
	Total                      decimal.Decimal `json:"total"`
	PaymentStatus              PaymentStatus   `json:"payment_status"`
	AuthorizationTransactionID string          `json:"authorization_transaction_id,omitempty"`
	PaidAt                     *time.Time      `json:"paid_at,omitempty"`
	CreatedAt                  time.Time       `json:"created_at"`
}

// CanMarkAsPaid reports whether the paid transition is still legal for the order.
// Paid and cancelled orders are terminal.
func (o *Order) CanMarkAsPaid() bool {
	return o.PaymentStatus != PaymentPaid && o.PaymentStatus != PaymentCancelled
}
