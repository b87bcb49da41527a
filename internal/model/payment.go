package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "CASH"
	PaymentCard     PaymentMethod = "CARD"
	PaymentTransfer PaymentMethod = "TRANSFER"
	PaymentOther    PaymentMethod = "OTHER"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer, PaymentOther:
		return true
	}
	return false
}

type Payment struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"orderId"`
	Amount    decimal.Decimal `json:"amount"`
	Method    PaymentMethod   `json:"method"`
	Notes     *string         `json:"notes,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// StatusHistory is one audit row on an order's timeline. FromStatus is nil for
// the row written when the order is created.
type StatusHistory struct {
	ID         string       `json:"id"`
	OrderID    string       `json:"orderId"`
	FromStatus *OrderStatus `json:"fromStatus,omitempty"`
	ToStatus   OrderStatus  `json:"toStatus"`
	Notes      *string      `json:"notes,omitempty"`
	CreatedAt  time.Time    `json:"createdAt"`
}
