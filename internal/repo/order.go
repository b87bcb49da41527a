package repo

import (
	"context"
	"time"

	"github.com/laundry-service/internal/model"
	"github.com/shopspring/decimal"
)

type OrderFilter struct {
	StoreID    string
	Statuses   []model.OrderStatus
	CustomerID string
	Search     string
	From       *time.Time
	To         *time.Time
	Limit      uint64
	Offset     uint64
}

type OrderRepository interface {
	// WithinTx runs fn against a repository bound to a single transaction.
	WithinTx(ctx context.Context, fn func(OrderRepository) error) error

	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, storeID, id string) (*model.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]model.Order, int, error)
	Update(ctx context.Context, order *model.Order) error
	NextOrderNumber(ctx context.Context, storeID string, day time.Time) (string, error)

	AddItems(ctx context.Context, items []model.OrderItem) error
	UpdateItem(ctx context.Context, item *model.OrderItem) error

	AppendHistory(ctx context.Context, h *model.StatusHistory) error
	ListHistory(ctx context.Context, orderID string) ([]model.StatusHistory, error)

	AddPayment(ctx context.Context, p *model.Payment) error
	ListPayments(ctx context.Context, orderID string) ([]model.Payment, error)
}

type CustomerFilter struct {
	StoreID string
	Search  string
	Limit   uint64
	Offset  uint64
}

type CustomerRepository interface {
	Create(ctx context.Context, c *model.Customer) error
	Update(ctx context.Context, c *model.Customer) error
	GetByID(ctx context.Context, storeID, id string) (*model.Customer, error)
	List(ctx context.Context, filter CustomerFilter) ([]model.Customer, int, error)
}

type DriverRepository interface {
	Create(ctx context.Context, d *model.Driver) error
	GetByID(ctx context.Context, storeID, id string) (*model.Driver, error)
	List(ctx context.Context, storeID string) ([]model.Driver, error)
}

type StoreRepository interface {
	GetByID(ctx context.Context, id string) (*model.Store, error)
	UpdateFeatures(ctx context.Context, id string, f model.Features) error
}

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

type StatusCount struct {
	Status model.OrderStatus `json:"status"`
	Count  int               `json:"count"`
}

type DashboardRepository interface {
	CountByStatus(ctx context.Context, storeID string) ([]StatusCount, error)
	CountCreatedSince(ctx context.Context, storeID string, since time.Time) (int, error)
	RevenueSince(ctx context.Context, storeID string, since time.Time) (decimal.Decimal, error)
	OutstandingBalance(ctx context.Context, storeID string) (decimal.Decimal, error)
	RecentOrders(ctx context.Context, storeID string, limit uint64) ([]model.Order, error)
}
