package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/laundry-service/internal/apperr"
	"github.com/laundry-service/internal/events"
	"github.com/laundry-service/internal/logger"
	"github.com/laundry-service/internal/model"
	"github.com/laundry-service/internal/repo"
	"github.com/laundry-service/internal/workflow"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const orderNumberAttempts = 3

type OrderService struct {
	orders    repo.OrderRepository
	customers repo.CustomerRepository
	drivers   repo.DriverRepository
	stores    repo.StoreRepository
	publisher events.Publisher
	now       func() time.Time
}

func NewOrderService(
	orders repo.OrderRepository,
	customers repo.CustomerRepository,
	drivers repo.DriverRepository,
	stores repo.StoreRepository,
	publisher events.Publisher,
) *OrderService {
	return &OrderService{
		orders:    orders,
		customers: customers,
		drivers:   drivers,
		stores:    stores,
		publisher: publisher,
		now:       time.Now,
	}
}

type ItemInput struct {
	Name      string          `json:"name" validate:"required,max=100"`
	Service   string          `json:"service" validate:"max=100"`
	Quantity  int             `json:"quantity" validate:"required,min=1,max=1000"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Notes     *string         `json:"notes"`
}

type CreateOrderRequest struct {
	CustomerID      string          `json:"customerId" validate:"required"`
	OrderType       model.OrderType `json:"orderType" validate:"required,oneof=WALK_IN PICKUP DELIVERY"`
	Items           []ItemInput     `json:"items" validate:"dive"`
	Discount        decimal.Decimal `json:"discount"`
	Notes           *string         `json:"notes"`
	PickupAddress   *string         `json:"pickupAddress"`
	DeliveryAddress *string         `json:"deliveryAddress"`
	DueDate         *time.Time      `json:"dueDate"`
}

type StatusRequest struct {
	Status model.OrderStatus `json:"status" validate:"required"`
	Notes  string            `json:"notes"`
	Reason string            `json:"reason"`
}

type WorkshopRequest struct {
	ItemIDs     []string `json:"itemIds" validate:"required,min=1"`
	PartnerName string   `json:"partnerName" validate:"required,max=100"`
	Notes       string   `json:"notes" validate:"max=500"`
}

type WorkshopReturnRequest struct {
	ItemIDs []string `json:"itemIds"`
}

type PaymentRequest struct {
	Amount decimal.Decimal     `json:"amount"`
	Method model.PaymentMethod `json:"method" validate:"required,oneof=CASH CARD TRANSFER OTHER"`
	Notes  *string             `json:"notes"`
}

// OrderDetail is an order together with everything a screen needs to render
// its actions.
type OrderDetail struct {
	*model.Order
	PaymentStatus model.PaymentStatus `json:"paymentStatus"`
	Balance       decimal.Decimal     `json:"balance"`
	Actions       workflow.ActionSet  `json:"actions"`
}

func (s *OrderService) features(ctx context.Context, storeID string) (*model.Store, error) {
	store, err := s.stores.GetByID(ctx, storeID)
	if err != nil {
		logger.FromContext(ctx).Error("postgres: failed to get store", zap.String("store_id", storeID), zap.Error(err))
		return nil, err
	}
	return store, nil
}

func buildItems(orderID string, inputs []ItemInput, now time.Time) ([]model.OrderItem, error) {
	items := make([]model.OrderItem, 0, len(inputs))
	for _, in := range inputs {
		if in.UnitPrice.IsNegative() {
			return nil, apperr.Invalid("unitPrice", "must not be negative")
		}
		items = append(items, model.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   orderID,
			Name:      strings.TrimSpace(in.Name),
			Service:   strings.TrimSpace(in.Service),
			Quantity:  in.Quantity,
			UnitPrice: in.UnitPrice.Round(2),
			Status:    model.ItemReceived,
			Notes:     in.Notes,
			CreatedAt: now,
		})
	}
	return items, nil
}

// computeTotals recalculates subtotal, tax and total from the items:
// total = subtotal - discount + tax, tax = (subtotal - discount) * rate%.
func computeTotals(o *model.Order, taxRate decimal.Decimal) error {
	subtotal := decimal.Zero
	for _, it := range o.Items {
		subtotal = subtotal.Add(it.LineTotal())
	}
	if o.Discount.IsNegative() {
		return apperr.Invalid("discount", "must not be negative")
	}
	if o.Discount.GreaterThan(subtotal) {
		return apperr.Invalid("discount", "must not exceed the subtotal")
	}

	taxable := subtotal.Sub(o.Discount)
	tax := taxable.Mul(taxRate).Div(decimal.NewFromInt(100)).Round(2)

	o.Subtotal = subtotal
	o.Tax = tax
	o.TotalAmount = taxable.Add(tax)
	if o.PaidAmount.GreaterThan(o.TotalAmount) {
		return apperr.Invalid("discount", "total would fall below the amount already paid")
	}
	return nil
}

func (s *OrderService) CreateOrder(ctx context.Context, storeID string, req CreateOrderRequest) (*model.Order, error) {
	log := logger.FromContext(ctx)

	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if len(req.Items) == 0 && req.OrderType != model.OrderTypePickup {
		return nil, apperr.Invalid("items", "at least one item is required")
	}

	store, err := s.features(ctx, storeID)
	if err != nil {
		return nil, err
	}
	switch {
	case req.OrderType == model.OrderTypePickup && !store.Features.PickupEnabled:
		return nil, apperr.Invalid("orderType", "pickup is not enabled for this store")
	case req.OrderType == model.OrderTypeDelivery && !store.Features.DeliveryEnabled:
		return nil, apperr.Invalid("orderType", "delivery is not enabled for this store")
	}

	customer, err := s.customers.GetByID(ctx, storeID, req.CustomerID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Invalid("customerId", "customer not found")
		}
		return nil, err
	}

	now := s.now()
	order := &model.Order{
		ID:              uuid.New().String(),
		StoreID:         storeID,
		CustomerID:      customer.ID,
		OrderType:       req.OrderType,
		Status:          model.StatusInProgress,
		Discount:        req.Discount.Round(2),
		Notes:           req.Notes,
		PickupAddress:   req.PickupAddress,
		DeliveryAddress: req.DeliveryAddress,
		DueDate:         req.DueDate,
		CreatedAt:       now,
		UpdatedAt:       now,
		Customer:        customer,
	}
	if req.OrderType == model.OrderTypePickup {
		order.Status = model.StatusPickup
	}
	if order.Items, err = buildItems(order.ID, req.Items, now); err != nil {
		return nil, err
	}
	if err := computeTotals(order, store.TaxRate); err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		err = s.orders.WithinTx(ctx, func(tx repo.OrderRepository) error {
			number, err := tx.NextOrderNumber(ctx, storeID, now)
			if err != nil {
				return err
			}
			order.OrderNumber = number
			if err := tx.Create(ctx, order); err != nil {
				return err
			}
			return tx.AppendHistory(ctx, &model.StatusHistory{
				ID:        uuid.New().String(),
				OrderID:   order.ID,
				ToStatus:  order.Status,
				Notes:     strPtr("Order created"),
				CreatedAt: now,
			})
		})
		// two orders racing for the same number: take the next one
		if errors.Is(err, apperr.ErrConflict) && attempt < orderNumberAttempts {
			continue
		}
		break
	}
	if err != nil {
		log.Error("postgres: failed to create order", zap.Error(err))
		return nil, err
	}

	s.publish(ctx, events.OrderCreatedChannel, events.Event{
		StoreID: storeID, OrderID: order.ID, ToStatus: order.Status, At: now,
	})
	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, storeID, id string) (*model.Order, error) {
	return s.orders.GetByID(ctx, storeID, id)
}

// GetOrderDetail returns the order with its payment state and action set.
func (s *OrderService) GetOrderDetail(ctx context.Context, storeID, id string) (*OrderDetail, error) {
	order, err := s.orders.GetByID(ctx, storeID, id)
	if err != nil {
		return nil, err
	}
	store, err := s.features(ctx, storeID)
	if err != nil {
		return nil, err
	}
	return &OrderDetail{
		Order:         order,
		PaymentStatus: order.PaymentStatus(),
		Balance:       order.Balance(),
		Actions:       workflow.AvailableActions(workflow.ViewOf(order), store.Features),
	}, nil
}

func (s *OrderService) GetActions(ctx context.Context, storeID, id string) (workflow.ActionSet, error) {
	detail, err := s.GetOrderDetail(ctx, storeID, id)
	if err != nil {
		return workflow.ActionSet{}, err
	}
	return detail.Actions, nil
}

func (s *OrderService) ListOrders(ctx context.Context, filter repo.OrderFilter) ([]model.Order, int, error) {
	return s.orders.List(ctx, filter)
}

// UpdateStatus performs a plain status transition. Workshop transitions are
// refused here; they go through SendToWorkshop and ReturnFromWorkshop.
func (s *OrderService) UpdateStatus(ctx context.Context, storeID, id string, req StatusRequest) (*model.Order, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if !req.Status.Valid() {
		return nil, apperr.Invalid("status", "unknown status %q", req.Status)
	}
	store, err := s.features(ctx, storeID)
	if err != nil {
		return nil, err
	}

	var order *model.Order
	var from model.OrderStatus
	err = s.orders.WithinTx(ctx, func(tx repo.OrderRepository) error {
		order, err = tx.GetByID(ctx, storeID, id)
		if err != nil {
			return err
		}
		from = order.Status

		t, err := workflow.Validate(workflow.ViewOf(order), store.Features, workflow.Request{To: req.Status, Reason: req.Reason})
		if err != nil {
			return err
		}
		if t.Kind == workflow.KindWorkshop || t.Kind == workflow.KindWorkshopReturn {
			return &apperr.TransitionError{From: string(from), To: string(req.Status), Reason: apperr.ReasonUseWorkshopRoute}
		}

		notes := strings.TrimSpace(req.Notes)
		switch {
		case t.Kind == workflow.KindRework:
			order.IsRework = true
			order.ReworkCount++
			notes = strings.TrimSpace(req.Reason)
			if err := s.setItemStatuses(ctx, tx, order, model.ItemCompleted, model.ItemInProgress); err != nil {
				return err
			}
		case from == model.StatusAtWorkshop && t.To == model.StatusInProgress:
			if err := s.recallWorkshopItems(ctx, tx, order); err != nil {
				return err
			}
		case t.To == model.StatusCompleted:
			if err := s.completeItems(ctx, tx, order); err != nil {
				return err
			}
		}
		return s.transition(ctx, tx, order, t.To, notes)
	})
	if err != nil {
		return nil, s.logFailure(ctx, "update order status", id, err)
	}

	s.publishStatus(ctx, order, from)
	return order, nil
}

// Rework reopens a completed order. The reason is checked before anything
// is read or written.
func (s *OrderService) Rework(ctx context.Context, storeID, id, reason string) (*model.Order, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, &apperr.TransitionError{
			From:   string(model.StatusCompleted),
			To:     string(model.StatusInProgress),
			Reason: apperr.ReasonReasonRequired,
		}
	}
	return s.UpdateStatus(ctx, storeID, id, StatusRequest{Status: model.StatusInProgress, Reason: reason})
}

func (s *OrderService) completeItems(ctx context.Context, tx repo.OrderRepository, order *model.Order) error {
	for i := range order.Items {
		if order.Items[i].Status == model.ItemCompleted {
			continue
		}
		order.Items[i].Status = model.ItemCompleted
		if err := tx.UpdateItem(ctx, &order.Items[i]); err != nil {
			return err
		}
	}
	return nil
}

// recallWorkshopItems brings items still out at the workshop back into
// processing. They were never returned, so they may be routed again.
func (s *OrderService) recallWorkshopItems(ctx context.Context, tx repo.OrderRepository, order *model.Order) error {
	for i := range order.Items {
		it := &order.Items[i]
		if it.Status != model.ItemAtWorkshop {
			continue
		}
		it.Status = model.ItemInProgress
		it.SentToWorkshop = false
		it.WorkshopPartnerName = nil
		if err := tx.UpdateItem(ctx, it); err != nil {
			return err
		}
	}
	order.WorkshopPartnerName = nil
	order.WorkshopNotes = nil
	return nil
}

func (s *OrderService) setItemStatuses(ctx context.Context, tx repo.OrderRepository, order *model.Order, from, to model.ItemStatus) error {
	for i := range order.Items {
		if order.Items[i].Status != from {
			continue
		}
		order.Items[i].Status = to
		if err := tx.UpdateItem(ctx, &order.Items[i]); err != nil {
			return err
		}
	}
	return nil
}

// transition moves the order and appends the audit row in the caller's
// transaction.
func (s *OrderService) transition(ctx context.Context, tx repo.OrderRepository, order *model.Order, to model.OrderStatus, notes string) error {
	from := order.Status
	now := s.now()
	order.Status = to
	order.UpdatedAt = now
	if err := tx.Update(ctx, order); err != nil {
		return err
	}
	return tx.AppendHistory(ctx, &model.StatusHistory{
		ID:         uuid.New().String(),
		OrderID:    order.ID,
		FromStatus: &from,
		ToStatus:   to,
		Notes:      optional(notes),
		CreatedAt:  now,
	})
}

func (s *OrderService) AddItems(ctx context.Context, storeID, id string, inputs []ItemInput) (*model.Order, error) {
	if len(inputs) == 0 {
		return nil, apperr.Invalid("items", "at least one item is required")
	}
	for _, in := range inputs {
		if err := validateStruct(in); err != nil {
			return nil, err
		}
	}
	store, err := s.features(ctx, storeID)
	if err != nil {
		return nil, err
	}

	var order *model.Order
	err = s.orders.WithinTx(ctx, func(tx repo.OrderRepository) error {
		order, err = tx.GetByID(ctx, storeID, id)
		if err != nil {
			return err
		}
		if !workflow.CanAddItems(order.Status) {
			return &apperr.TransitionError{From: string(order.Status), To: string(order.Status), Reason: apperr.ReasonItemsLocked}
		}
		now := s.now()
		items, err := buildItems(order.ID, inputs, now)
		if err != nil {
			return err
		}
		order.Items = append(order.Items, items...)
		if err := computeTotals(order, store.TaxRate); err != nil {
			return err
		}
		order.UpdatedAt = now
		if err := tx.AddItems(ctx, items); err != nil {
			return err
		}
		return tx.Update(ctx, order)
	})
	if err != nil {
		return nil, s.logFailure(ctx, "add items", id, err)
	}
	return order, nil
}

func (s *OrderService) UpdateItemStatus(ctx context.Context, storeID, orderID, itemID string, to model.ItemStatus) (*model.OrderItem, error) {
	if !to.Valid() {
		return nil, apperr.Invalid("status", "unknown item status %q", to)
	}

	var item *model.OrderItem
	err := s.orders.WithinTx(ctx, func(tx repo.OrderRepository) error {
		order, err := tx.GetByID(ctx, storeID, orderID)
		if err != nil {
			return err
		}
		if workflow.IsTerminalStatus(order.Status) {
			return &apperr.TransitionError{From: string(order.Status), To: string(order.Status), Reason: apperr.ReasonTerminal}
		}
		item = findItem(order, itemID)
		if item == nil {
			return apperr.ErrNotFound
		}
		if err := workflow.ValidateItemTransition(item.Status, to); err != nil {
			return err
		}
		item.Status = to
		return tx.UpdateItem(ctx, item)
	})
	if err != nil {
		return nil, s.logFailure(ctx, "update item status", orderID, err)
	}
	return item, nil
}

func findItem(order *model.Order, itemID string) *model.OrderItem {
	for i := range order.Items {
		if order.Items[i].ID == itemID {
			return &order.Items[i]
		}
	}
	return nil
}

// SendToWorkshop routes the selected items to a workshop partner. Each item
// can be sent once; the order moves to AT_WORKSHOP unless it is there already.
func (s *OrderService) SendToWorkshop(ctx context.Context, storeID, id string, req WorkshopRequest) (*model.Order, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	partner := strings.TrimSpace(req.PartnerName)
	if partner == "" {
		return nil, apperr.Invalid("partnerName", "is required")
	}
	store, err := s.features(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if !store.Features.WorkshopEnabled {
		return nil, &apperr.TransitionError{To: string(model.StatusAtWorkshop), Reason: apperr.ReasonFeatureDisabled}
	}

	var order *model.Order
	var from model.OrderStatus
	err = s.orders.WithinTx(ctx, func(tx repo.OrderRepository) error {
		order, err = tx.GetByID(ctx, storeID, id)
		if err != nil {
			return err
		}
		from = order.Status
		if from != model.StatusAtWorkshop {
			if _, err := workflow.Validate(workflow.ViewOf(order), store.Features, workflow.Request{To: model.StatusAtWorkshop}); err != nil {
				return err
			}
		}

		selected := make([]*model.OrderItem, 0, len(req.ItemIDs))
		for _, itemID := range req.ItemIDs {
			item := findItem(order, itemID)
			if item == nil {
				return apperr.Invalid("itemIds", "item %s is not part of this order", itemID)
			}
			if !workflow.CanSendItemToWorkshop(*item) {
				return apperr.Invalid("itemIds", "item %s cannot be sent to the workshop", itemID)
			}
			selected = append(selected, item)
		}
		for _, item := range selected {
			item.Status = model.ItemAtWorkshop
			item.SentToWorkshop = true
			item.WorkshopPartnerName = &partner
			if err := tx.UpdateItem(ctx, item); err != nil {
				return err
			}
		}

		order.WorkshopPartnerName = &partner
		order.WorkshopNotes = optional(req.Notes)
		if from == model.StatusAtWorkshop {
			order.UpdatedAt = s.now()
			return tx.Update(ctx, order)
		}
		return s.transition(ctx, tx, order, model.StatusAtWorkshop, "Sent to "+partner)
	})
	if err != nil {
		return nil, s.logFailure(ctx, "send to workshop", id, err)
	}

	if from != model.StatusAtWorkshop {
		s.publishStatus(ctx, order, from)
	}
	return order, nil
}

// ReturnFromWorkshop marks items as back from the workshop; with no item IDs
// every item still out is returned. The order follows once nothing is left.
func (s *OrderService) ReturnFromWorkshop(ctx context.Context, storeID, id string, req WorkshopReturnRequest) (*model.Order, error) {
	store, err := s.features(ctx, storeID)
	if err != nil {
		return nil, err
	}

	var order *model.Order
	var from model.OrderStatus
	err = s.orders.WithinTx(ctx, func(tx repo.OrderRepository) error {
		order, err = tx.GetByID(ctx, storeID, id)
		if err != nil {
			return err
		}
		from = order.Status
		if _, err := workflow.Validate(workflow.ViewOf(order), store.Features, workflow.Request{To: model.StatusWorkshopReturned}); err != nil {
			return err
		}

		var selected []*model.OrderItem
		if len(req.ItemIDs) == 0 {
			for i := range order.Items {
				if order.Items[i].Status == model.ItemAtWorkshop {
					selected = append(selected, &order.Items[i])
				}
			}
		}
		for _, itemID := range req.ItemIDs {
			item := findItem(order, itemID)
			if item == nil || item.Status != model.ItemAtWorkshop {
				return apperr.Invalid("itemIds", "item %s is not at the workshop", itemID)
			}
			selected = append(selected, item)
		}
		for _, item := range selected {
			item.Status = model.ItemWorkshopReturned
			if err := tx.UpdateItem(ctx, item); err != nil {
				return err
			}
		}

		for _, it := range order.Items {
			if it.Status == model.ItemAtWorkshop {
				return nil
			}
		}
		return s.transition(ctx, tx, order, model.StatusWorkshopReturned, "Returned from workshop")
	})
	if err != nil {
		return nil, s.logFailure(ctx, "return from workshop", id, err)
	}

	if order.Status != from {
		s.publishStatus(ctx, order, from)
	}
	return order, nil
}

func (s *OrderService) RecordPayment(ctx context.Context, storeID, id string, req PaymentRequest) (*model.Payment, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	amount := req.Amount.Round(2)
	if !amount.IsPositive() {
		return nil, apperr.Invalid("amount", "must be greater than 0")
	}

	payment := &model.Payment{
		ID:     uuid.New().String(),
		Amount: amount,
		Method: req.Method,
		Notes:  req.Notes,
	}
	err := s.orders.WithinTx(ctx, func(tx repo.OrderRepository) error {
		order, err := tx.GetByID(ctx, storeID, id)
		if err != nil {
			return err
		}
		if order.Status == model.StatusCancelled {
			return apperr.Invalid("order", "cannot take a payment on a cancelled order")
		}
		paid := order.PaidAmount.Add(amount)
		if paid.GreaterThan(order.TotalAmount) {
			return apperr.Invalid("amount", "exceeds the outstanding balance of %s", order.Balance().StringFixed(2))
		}

		now := s.now()
		payment.OrderID = order.ID
		payment.CreatedAt = now
		if err := tx.AddPayment(ctx, payment); err != nil {
			return err
		}
		order.PaidAmount = paid
		order.UpdatedAt = now
		return tx.Update(ctx, order)
	})
	if err != nil {
		return nil, s.logFailure(ctx, "record payment", id, err)
	}

	s.publish(ctx, events.PaymentRecordedChannel, events.Event{StoreID: storeID, OrderID: id, At: payment.CreatedAt})
	return payment, nil
}

func (s *OrderService) AssignDriver(ctx context.Context, storeID, id, driverID string) (*model.Order, error) {
	if driverID == "" {
		return nil, apperr.Invalid("driverId", "is required")
	}
	store, err := s.features(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if !store.Features.PickupEnabled && !store.Features.DeliveryEnabled {
		return nil, apperr.Invalid("driverId", "pickup and delivery are disabled for this store")
	}
	driver, err := s.drivers.GetByID(ctx, storeID, driverID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Invalid("driverId", "driver not found")
		}
		return nil, err
	}
	if !driver.Active {
		return nil, apperr.Invalid("driverId", "driver is inactive")
	}

	var order *model.Order
	err = s.orders.WithinTx(ctx, func(tx repo.OrderRepository) error {
		order, err = tx.GetByID(ctx, storeID, id)
		if err != nil {
			return err
		}
		if workflow.IsTerminalStatus(order.Status) {
			return &apperr.TransitionError{From: string(order.Status), To: string(order.Status), Reason: apperr.ReasonTerminal}
		}
		order.DriverID = &driver.ID
		order.UpdatedAt = s.now()
		return tx.Update(ctx, order)
	})
	if err != nil {
		return nil, s.logFailure(ctx, "assign driver", id, err)
	}
	return order, nil
}

func (s *OrderService) History(ctx context.Context, storeID, id string) ([]model.StatusHistory, error) {
	if _, err := s.orders.GetByID(ctx, storeID, id); err != nil {
		return nil, err
	}
	return s.orders.ListHistory(ctx, id)
}

func (s *OrderService) Payments(ctx context.Context, storeID, id string) ([]model.Payment, error) {
	if _, err := s.orders.GetByID(ctx, storeID, id); err != nil {
		return nil, err
	}
	return s.orders.ListPayments(ctx, id)
}

func (s *OrderService) publishStatus(ctx context.Context, order *model.Order, from model.OrderStatus) {
	s.publish(ctx, events.OrderStatusChangedChannel, events.Event{
		StoreID:    order.StoreID,
		OrderID:    order.ID,
		FromStatus: from,
		ToStatus:   order.Status,
		At:         order.UpdatedAt,
	})
}

func (s *OrderService) publish(ctx context.Context, channel string, event events.Event) {
	if s.publisher == nil {
		return
	}
	log := logger.FromContext(ctx)
	if err := s.publisher.Publish(ctx, channel, event); err != nil {
		log.Error("failed to publish event", zap.String("channel", channel), zap.Error(err))
		return
	}
	log.Info("event published", zap.String("channel", channel), zap.String("order_id", event.OrderID))
}

// logFailure logs unexpected repository errors; business refusals pass
// through quietly.
func (s *OrderService) logFailure(ctx context.Context, op, orderID string, err error) error {
	if _, ok := apperr.AsTransition(err); ok || apperr.IsValidation(err) || errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	logger.FromContext(ctx).Error("postgres: failed to "+op, zap.String("order_id", orderID), zap.Error(err))
	return err
}

func strPtr(s string) *string { return &s }

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
