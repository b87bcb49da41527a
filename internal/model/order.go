package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPickup           OrderStatus = "PICKUP"
	StatusInProgress       OrderStatus = "IN_PROGRESS"
	StatusAtWorkshop       OrderStatus = "AT_WORKSHOP"
	StatusWorkshopReturned OrderStatus = "WORKSHOP_RETURNED"
	StatusReady            OrderStatus = "READY"
	StatusOutForDelivery   OrderStatus = "OUT_FOR_DELIVERY"
	StatusCompleted        OrderStatus = "COMPLETED"
	StatusCancelled        OrderStatus = "CANCELLED"
)

// OrderStatuses lists every order state in workflow order.
var OrderStatuses = []OrderStatus{
	StatusPickup,
	StatusInProgress,
	StatusAtWorkshop,
	StatusWorkshopReturned,
	StatusReady,
	StatusOutForDelivery,
	StatusCompleted,
	StatusCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type OrderType string

const (
	OrderTypeWalkIn   OrderType = "WALK_IN"
	OrderTypePickup   OrderType = "PICKUP"
	OrderTypeDelivery OrderType = "DELIVERY"
)

func (t OrderType) Valid() bool {
	switch t {
	case OrderTypeWalkIn, OrderTypePickup, OrderTypeDelivery:
		return true
	}
	return false
}

type ItemStatus string

const (
	ItemReceived         ItemStatus = "RECEIVED"
	ItemInProgress       ItemStatus = "IN_PROGRESS"
	ItemAtWorkshop       ItemStatus = "AT_WORKSHOP"
	ItemWorkshopReturned ItemStatus = "WORKSHOP_RETURNED"
	ItemReady            ItemStatus = "READY"
	ItemCompleted        ItemStatus = "COMPLETED"
)

func (s ItemStatus) Valid() bool {
	switch s {
	case ItemReceived, ItemInProgress, ItemAtWorkshop, ItemWorkshopReturned, ItemReady, ItemCompleted:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "UNPAID"
	PaymentPartial PaymentStatus = "PARTIAL"
	PaymentPaid    PaymentStatus = "PAID"
)

type Order struct {
	ID                  string          `json:"id"`
	StoreID             string          `json:"storeId"`
	CustomerID          string          `json:"customerId"`
	DriverID            *string         `json:"driverId,omitempty"`
	OrderNumber         string          `json:"orderNumber"`
	OrderType           OrderType       `json:"orderType"`
	Status              OrderStatus     `json:"status"`
	Subtotal            decimal.Decimal `json:"subtotal"`
	Discount            decimal.Decimal `json:"discount"`
	Tax                 decimal.Decimal `json:"tax"`
	TotalAmount         decimal.Decimal `json:"totalAmount"`
	PaidAmount          decimal.Decimal `json:"paidAmount"`
	WorkshopPartnerName *string         `json:"workshopPartnerName,omitempty"`
	WorkshopNotes       *string         `json:"workshopNotes,omitempty"`
	IsRework            bool            `json:"isRework"`
	ReworkCount         int             `json:"reworkCount"`
	Notes               *string         `json:"notes,omitempty"`
	PickupAddress       *string         `json:"pickupAddress,omitempty"`
	DeliveryAddress     *string         `json:"deliveryAddress,omitempty"`
	DueDate             *time.Time      `json:"dueDate,omitempty"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`

	Customer *Customer   `json:"customer,omitempty"`
	Items    []OrderItem `json:"items"`
}

// PaymentStatus derives the settlement state from paid and total amounts.
func (o *Order) PaymentStatus() PaymentStatus {
	switch {
	case o.PaidAmount.GreaterThanOrEqual(o.TotalAmount):
		return PaymentPaid
	case o.PaidAmount.IsPositive():
		return PaymentPartial
	default:
		return PaymentUnpaid
	}
}

// Balance is what the customer still owes, never negative.
func (o *Order) Balance() decimal.Decimal {
	b := o.TotalAmount.Sub(o.PaidAmount)
	if b.IsNegative() {
		return decimal.Zero
	}
	return b
}

type OrderItem struct {
	ID                  string          `json:"id"`
	OrderID             string          `json:"orderId"`
	Name                string          `json:"name"`
	Service             string          `json:"service"`
	Quantity            int             `json:"quantity"`
	UnitPrice           decimal.Decimal `json:"unitPrice"`
	Status              ItemStatus      `json:"status"`
	SentToWorkshop      bool            `json:"sentToWorkshop"`
	WorkshopPartnerName *string         `json:"workshopPartnerName,omitempty"`
	Notes               *string         `json:"notes,omitempty"`
	CreatedAt           time.Time       `json:"createdAt"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
