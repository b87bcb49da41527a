package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/laundry-service/internal/apperr"
	"github.com/laundry-service/internal/events"
	"github.com/laundry-service/internal/model"
	"github.com/laundry-service/internal/repo"
	"github.com/shopspring/decimal"
)

// mockRepo keeps orders in memory. Reads return copies and WithinTx restores
// the previous state when fn fails, the way a rolled back transaction would.
type mockRepo struct {
	orders   map[string]*model.Order
	history  map[string][]model.StatusHistory
	payments map[string][]model.Payment
	numbers  map[string]int
	calls    int
	conflict int
	updErr   error
	mu       sync.RWMutex
	txMu     sync.Mutex
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		orders:   make(map[string]*model.Order),
		history:  make(map[string][]model.StatusHistory),
		payments: make(map[string][]model.Payment),
		numbers:  make(map[string]int),
	}
}

func cloneOrder(o *model.Order) *model.Order {
	c := *o
	c.Items = append([]model.OrderItem(nil), o.Items...)
	return &c
}

func (m *mockRepo) touch() {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
}

func (m *mockRepo) callCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}

func (m *mockRepo) WithinTx(ctx context.Context, fn func(repo.OrderRepository) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	snapshot := make(map[string]*model.Order, len(m.orders))
	for id, o := range m.orders {
		snapshot[id] = cloneOrder(o)
	}
	history := make(map[string][]model.StatusHistory, len(m.history))
	for id, h := range m.history {
		history[id] = append([]model.StatusHistory(nil), h...)
	}
	payments := make(map[string][]model.Payment, len(m.payments))
	for id, p := range m.payments {
		payments[id] = append([]model.Payment(nil), p...)
	}
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.orders = snapshot
		m.history = history
		m.payments = payments
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *mockRepo) Create(ctx context.Context, order *model.Order) error {
	m.touch()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conflict > 0 {
		m.conflict--
		return apperr.ErrConflict
	}
	m.orders[order.ID] = cloneOrder(order)
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, storeID, id string) (*model.Order, error) {
	m.touch()
	m.mu.RLock()
	defer m.mu.RUnlock()
	order, ok := m.orders[id]
	if !ok || order.StoreID != storeID {
		return nil, apperr.ErrNotFound
	}
	return cloneOrder(order), nil
}

func (m *mockRepo) List(ctx context.Context, filter repo.OrderFilter) ([]model.Order, int, error) {
	m.touch()
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []model.Order
	for _, o := range m.orders {
		if o.StoreID == filter.StoreID {
			result = append(result, *cloneOrder(o))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].OrderNumber < result[j].OrderNumber })
	total := len(result)
	if filter.Limit > 0 && uint64(len(result)) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, total, nil
}

func (m *mockRepo) Update(ctx context.Context, order *model.Order) error {
	m.touch()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updErr != nil {
		return m.updErr
	}
	existing, ok := m.orders[order.ID]
	if !ok {
		return apperr.ErrNotFound
	}
	c := cloneOrder(order)
	c.Items = existing.Items
	m.orders[order.ID] = c
	return nil
}

func (m *mockRepo) NextOrderNumber(ctx context.Context, storeID string, day time.Time) (string, error) {
	m.touch()
	m.mu.Lock()
	defer m.mu.Unlock()
	key := storeID + day.Format("20060102")
	m.numbers[key]++
	return fmt.Sprintf("ORD-%s-%04d", day.Format("20060102"), m.numbers[key]), nil
}

func (m *mockRepo) AddItems(ctx context.Context, items []model.OrderItem) error {
	m.touch()
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range items {
		o, ok := m.orders[it.OrderID]
		if !ok {
			return apperr.ErrNotFound
		}
		o.Items = append(o.Items, it)
	}
	return nil
}

func (m *mockRepo) UpdateItem(ctx context.Context, item *model.OrderItem) error {
	m.touch()
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[item.OrderID]
	if !ok {
		return apperr.ErrNotFound
	}
	for i := range o.Items {
		if o.Items[i].ID == item.ID {
			o.Items[i] = *item
			return nil
		}
	}
	return apperr.ErrNotFound
}

func (m *mockRepo) AppendHistory(ctx context.Context, h *model.StatusHistory) error {
	m.touch()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history[h.OrderID] = append(m.history[h.OrderID], *h)
	return nil
}

func (m *mockRepo) ListHistory(ctx context.Context, orderID string) ([]model.StatusHistory, error) {
	m.touch()
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.StatusHistory(nil), m.history[orderID]...), nil
}

func (m *mockRepo) AddPayment(ctx context.Context, p *model.Payment) error {
	m.touch()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[p.OrderID] = append(m.payments[p.OrderID], *p)
	return nil
}

func (m *mockRepo) ListPayments(ctx context.Context, orderID string) ([]model.Payment, error) {
	m.touch()
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.Payment(nil), m.payments[orderID]...), nil
}

type mockCustomers struct {
	customers map[string]*model.Customer
	mu        sync.Mutex
}

func newMockCustomers(cs ...*model.Customer) *mockCustomers {
	m := &mockCustomers{customers: make(map[string]*model.Customer)}
	for _, c := range cs {
		m.customers[c.ID] = c
	}
	return m
}

func (m *mockCustomers) Create(ctx context.Context, c *model.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.customers {
		if existing.StoreID == c.StoreID && existing.Phone == c.Phone {
			return apperr.ErrConflict
		}
	}
	cp := *c
	m.customers[c.ID] = &cp
	return nil
}

func (m *mockCustomers) Update(ctx context.Context, c *model.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.customers[c.ID]; !ok {
		return apperr.ErrNotFound
	}
	cp := *c
	m.customers[c.ID] = &cp
	return nil
}

func (m *mockCustomers) GetByID(ctx context.Context, storeID, id string) (*model.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.customers[id]
	if !ok || c.StoreID != storeID {
		return nil, apperr.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockCustomers) List(ctx context.Context, filter repo.CustomerFilter) ([]model.Customer, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Customer
	for _, c := range m.customers {
		if c.StoreID == filter.StoreID {
			out = append(out, *c)
		}
	}
	return out, len(out), nil
}

type mockDrivers struct {
	drivers map[string]*model.Driver
}

func (m *mockDrivers) Create(ctx context.Context, d *model.Driver) error {
	m.drivers[d.ID] = d
	return nil
}

func (m *mockDrivers) GetByID(ctx context.Context, storeID, id string) (*model.Driver, error) {
	d, ok := m.drivers[id]
	if !ok || d.StoreID != storeID {
		return nil, apperr.ErrNotFound
	}
	return d, nil
}

func (m *mockDrivers) List(ctx context.Context, storeID string) ([]model.Driver, error) {
	var out []model.Driver
	for _, d := range m.drivers {
		if d.StoreID == storeID {
			out = append(out, *d)
		}
	}
	return out, nil
}

type mockStores struct {
	store *model.Store
}

func (m *mockStores) GetByID(ctx context.Context, id string) (*model.Store, error) {
	if m.store == nil || m.store.ID != id {
		return nil, apperr.ErrNotFound
	}
	cp := *m.store
	return &cp, nil
}

func (m *mockStores) UpdateFeatures(ctx context.Context, id string, f model.Features) error {
	if m.store == nil || m.store.ID != id {
		return apperr.ErrNotFound
	}
	m.store.Features = f
	return nil
}

type published struct {
	channel string
	event   events.Event
}

type mockPublisher struct {
	published []published
	mu        sync.Mutex
}

func (m *mockPublisher) Publish(ctx context.Context, channel string, event events.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, published{channel: channel, event: event})
	return nil
}

func (m *mockPublisher) channels() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.published))
	for _, p := range m.published {
		out = append(out, p.channel)
	}
	return out
}

const (
	testStoreID    = "store-1"
	testCustomerID = "cust-1"
	testDriverID   = "driver-1"
)

func testStore(f model.Features) *model.Store {
	return &model.Store{
		ID:       testStoreID,
		Name:     "Fresh Laundry",
		Phone:    "+15550001111",
		Currency: "USD",
		TaxRate:  decimal.NewFromInt(10),
		Features: f,
	}
}

func allFeatures() model.Features {
	return model.Features{PickupEnabled: true, DeliveryEnabled: true, WorkshopEnabled: true}
}

type fixture struct {
	repo      *mockRepo
	customers *mockCustomers
	drivers   *mockDrivers
	stores    *mockStores
	pub       *mockPublisher
	svc       *OrderService
}

func newFixture(f model.Features) *fixture {
	fx := &fixture{
		repo: newMockRepo(),
		customers: newMockCustomers(&model.Customer{
			ID: testCustomerID, StoreID: testStoreID, Name: "Ana Lopez", Phone: "+15551234567",
		}),
		drivers: &mockDrivers{drivers: map[string]*model.Driver{
			testDriverID: {ID: testDriverID, StoreID: testStoreID, Name: "Sam", Phone: "5550000", Active: true},
			"driver-off": {ID: "driver-off", StoreID: testStoreID, Name: "Off", Phone: "5550001", Active: false},
		}},
		stores: &mockStores{store: testStore(f)},
		pub:    &mockPublisher{},
	}
	fx.svc = NewOrderService(fx.repo, fx.customers, fx.drivers, fx.stores, fx.pub)
	fx.svc.now = func() time.Time { return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC) }
	return fx
}

// seed stores an order directly, bypassing CreateOrder.
func (fx *fixture) seed(status model.OrderStatus, items ...model.OrderItem) *model.Order {
	o := &model.Order{
		ID:          fmt.Sprintf("order-%d", len(fx.repo.orders)+1),
		StoreID:     testStoreID,
		CustomerID:  testCustomerID,
		OrderNumber: fmt.Sprintf("ORD-20260314-%04d", len(fx.repo.orders)+1),
		OrderType:   model.OrderTypeWalkIn,
		Status:      status,
		Customer:    &model.Customer{ID: testCustomerID, Name: "Ana Lopez", Phone: "+15551234567"},
	}
	for i := range items {
		items[i].OrderID = o.ID
		if items[i].ID == "" {
			items[i].ID = fmt.Sprintf("%s-item-%d", o.ID, i+1)
		}
		if items[i].Quantity == 0 {
			items[i].Quantity = 1
		}
		o.TotalAmount = o.TotalAmount.Add(items[i].LineTotal())
	}
	o.Subtotal = o.TotalAmount
	o.Items = items
	fx.repo.orders[o.ID] = o
	return o
}

func item(name string, price int64, status model.ItemStatus) model.OrderItem {
	return model.OrderItem{Name: name, Service: "Wash", UnitPrice: decimal.NewFromInt(price), Status: status}
}
