package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/laundry-service/internal/apperr"
	"github.com/laundry-service/internal/model"
	"github.com/laundry-service/internal/repo"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
)

const qrSize = 256

type QRGenerator interface {
	Generate(orderID string) ([]byte, error)
}

// DefaultQRGenerator encodes a link to the order under the public base URL.
type DefaultQRGenerator struct {
	BaseURL string
}

func (g DefaultQRGenerator) URL(orderID string) string {
	return fmt.Sprintf("%s/orders/%s", strings.TrimRight(g.BaseURL, "/"), orderID)
}

func (g DefaultQRGenerator) Generate(orderID string) ([]byte, error) {
	return qrcode.Encode(g.URL(orderID), qrcode.Medium, qrSize)
}

type PrintService struct {
	orders repo.OrderRepository
	stores repo.StoreRepository
	qr     QRGenerator
}

func NewPrintService(orders repo.OrderRepository, stores repo.StoreRepository, qr QRGenerator) *PrintService {
	return &PrintService{orders: orders, stores: stores, qr: qr}
}

type InvoiceLine struct {
	Name      string           `json:"name"`
	Service   string           `json:"service"`
	Quantity  int              `json:"quantity"`
	UnitPrice decimal.Decimal  `json:"unitPrice"`
	LineTotal decimal.Decimal  `json:"lineTotal"`
	Status    model.ItemStatus `json:"status"`
}

type Invoice struct {
	StoreName     string              `json:"storeName"`
	StorePhone    string              `json:"storePhone"`
	StoreAddress  string              `json:"storeAddress"`
	Currency      string              `json:"currency"`
	OrderNumber   string              `json:"orderNumber"`
	OrderType     model.OrderType     `json:"orderType"`
	Status        model.OrderStatus   `json:"status"`
	CustomerName  string              `json:"customerName"`
	CustomerPhone string              `json:"customerPhone"`
	Lines         []InvoiceLine       `json:"lines"`
	Subtotal      decimal.Decimal     `json:"subtotal"`
	Discount      decimal.Decimal     `json:"discount"`
	Tax           decimal.Decimal     `json:"tax"`
	Total         decimal.Decimal     `json:"total"`
	Paid          decimal.Decimal     `json:"paid"`
	Balance       decimal.Decimal     `json:"balance"`
	PaymentStatus model.PaymentStatus `json:"paymentStatus"`
	DueDate       *time.Time          `json:"dueDate,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
}

type Tag struct {
	OrderNumber  string `json:"orderNumber"`
	CustomerName string `json:"customerName"`
	ItemID       string `json:"itemId"`
	ItemName     string `json:"itemName"`
	Service      string `json:"service"`
	Index        string `json:"index"`
	QRCode       string `json:"qrCode"`
}

func (s *PrintService) load(ctx context.Context, storeID, orderID string) (*model.Order, *model.Store, error) {
	order, err := s.orders.GetByID(ctx, storeID, orderID)
	if err != nil {
		return nil, nil, err
	}
	store, err := s.stores.GetByID(ctx, storeID)
	if err != nil {
		return nil, nil, err
	}
	return order, store, nil
}

func (s *PrintService) Invoice(ctx context.Context, storeID, orderID string) (*Invoice, error) {
	order, store, err := s.load(ctx, storeID, orderID)
	if err != nil {
		return nil, err
	}
	return buildInvoice(store, order), nil
}

func buildInvoice(store *model.Store, o *model.Order) *Invoice {
	inv := &Invoice{
		StoreName:     store.Name,
		StorePhone:    store.Phone,
		StoreAddress:  store.Address,
		Currency:      store.Currency,
		OrderNumber:   o.OrderNumber,
		OrderType:     o.OrderType,
		Status:        o.Status,
		Lines:         make([]InvoiceLine, 0, len(o.Items)),
		Subtotal:      o.Subtotal,
		Discount:      o.Discount,
		Tax:           o.Tax,
		Total:         o.TotalAmount,
		Paid:          o.PaidAmount,
		Balance:       o.Balance(),
		PaymentStatus: o.PaymentStatus(),
		DueDate:       o.DueDate,
		CreatedAt:     o.CreatedAt,
	}
	if o.Customer != nil {
		inv.CustomerName = o.Customer.Name
		inv.CustomerPhone = o.Customer.Phone
	}
	for _, it := range o.Items {
		inv.Lines = append(inv.Lines, InvoiceLine{
			Name:      it.Name,
			Service:   it.Service,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			LineTotal: it.LineTotal(),
			Status:    it.Status,
		})
	}
	return inv
}

// Tags returns one garment tag per unit of every item. All tags of an order
// share one QR code.
func (s *PrintService) Tags(ctx context.Context, storeID, orderID string) ([]Tag, error) {
	order, _, err := s.load(ctx, storeID, orderID)
	if err != nil {
		return nil, err
	}
	png, err := s.qr.Generate(order.ID)
	if err != nil {
		return nil, fmt.Errorf("generate qr code: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(png)

	customer := ""
	if order.Customer != nil {
		customer = order.Customer.Name
	}
	var tags []Tag
	for _, it := range order.Items {
		for i := 1; i <= it.Quantity; i++ {
			tags = append(tags, Tag{
				OrderNumber:  order.OrderNumber,
				CustomerName: customer,
				ItemID:       it.ID,
				ItemName:     it.Name,
				Service:      it.Service,
				Index:        fmt.Sprintf("%d/%d", i, it.Quantity),
				QRCode:       encoded,
			})
		}
	}
	return tags, nil
}

// ItemQRCode returns the PNG for one item's tag.
func (s *PrintService) ItemQRCode(ctx context.Context, storeID, orderID, itemID string) ([]byte, error) {
	order, err := s.orders.GetByID(ctx, storeID, orderID)
	if err != nil {
		return nil, err
	}
	if findItem(order, itemID) == nil {
		return nil, apperr.ErrNotFound
	}
	return s.qr.Generate(order.ID)
}
