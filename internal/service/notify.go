package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/laundry-service/internal/apperr"
	"github.com/laundry-service/internal/model"
	"github.com/laundry-service/internal/repo"
)

// NotifyService builds click-to-chat WhatsApp links. Nothing is sent from
// the server.
type NotifyService struct {
	orders repo.OrderRepository
	stores repo.StoreRepository
}

func NewNotifyService(orders repo.OrderRepository, stores repo.StoreRepository) *NotifyService {
	return &NotifyService{orders: orders, stores: stores}
}

type WhatsAppLink struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
	URL     string `json:"url"`
}

// WhatsAppPhone keeps digits only and drops an international 00 prefix.
func WhatsAppPhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return strings.TrimPrefix(b.String(), "00")
}

// BuildWhatsAppURL returns a wa.me link with the message pre-filled.
func BuildWhatsAppURL(phone, message string) (string, error) {
	digits := WhatsAppPhone(phone)
	if len(digits) < 7 {
		return "", apperr.Invalid("phone", "customer has no usable phone number")
	}
	return "https://wa.me/" + digits + "?text=" + url.QueryEscape(message), nil
}

func statusMessage(store *model.Store, o *model.Order) string {
	name := "there"
	if o.Customer != nil && o.Customer.Name != "" {
		name = o.Customer.Name
	}
	var body string
	switch o.Status {
	case model.StatusPickup:
		body = "we have scheduled a pickup for your order %s."
	case model.StatusReady:
		body = "your order %s is ready for collection."
	case model.StatusOutForDelivery:
		body = "your order %s is out for delivery."
	case model.StatusCompleted:
		body = "your order %s is complete. Thank you!"
	case model.StatusCancelled:
		body = "your order %s has been cancelled."
	default:
		body = "your order %s is being processed."
	}
	msg := fmt.Sprintf("Hi %s, "+body, name, o.OrderNumber)
	if bal := o.Balance(); bal.IsPositive() {
		msg += fmt.Sprintf(" Balance due: %s %s.", store.Currency, bal.StringFixed(2))
	}
	return msg + " - " + store.Name
}

func (s *NotifyService) OrderLink(ctx context.Context, storeID, orderID string) (*WhatsAppLink, error) {
	order, err := s.orders.GetByID(ctx, storeID, orderID)
	if err != nil {
		return nil, err
	}
	store, err := s.stores.GetByID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if order.Customer == nil {
		return nil, apperr.Invalid("customer", "order has no customer")
	}

	msg := statusMessage(store, order)
	link, err := BuildWhatsAppURL(order.Customer.Phone, msg)
	if err != nil {
		return nil, err
	}
	return &WhatsAppLink{Phone: WhatsAppPhone(order.Customer.Phone), Message: msg, URL: link}, nil
}
