package service

import (
	"context"
	"errors"
	"testing"

	"github.com/laundry-service/internal/apperr"
	"github.com/laundry-service/internal/events"
	"github.com/laundry-service/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func requireReason(t *testing.T, err error, reason string) {
	t.Helper()
	te, ok := apperr.AsTransition(err)
	require.True(t, ok, "expected transition error, got %v", err)
	assert.Equal(t, reason, te.Reason)
}

func TestCreateOrder(t *testing.T) {
	fx := newFixture(allFeatures())

	req := CreateOrderRequest{
		CustomerID: testCustomerID,
		OrderType:  model.OrderTypeWalkIn,
		Items: []ItemInput{
			{Name: "Shirt", Service: "Wash & Iron", Quantity: 2, UnitPrice: dec("5.00")},
			{Name: "Suit", Service: "Dry Clean", Quantity: 1, UnitPrice: dec("10.00")},
		},
		Discount: dec("2.00"),
	}

	order, err := fx.svc.CreateOrder(context.Background(), testStoreID, req)
	require.NoError(t, err)

	assert.NotEmpty(t, order.ID)
	assert.Equal(t, "ORD-20260314-0001", order.OrderNumber)
	assert.Equal(t, model.StatusInProgress, order.Status)
	assert.True(t, dec("20").Equal(order.Subtotal), "subtotal %s", order.Subtotal)
	assert.True(t, dec("1.8").Equal(order.Tax), "tax %s", order.Tax)
	assert.True(t, dec("19.8").Equal(order.TotalAmount), "total %s", order.TotalAmount)
	assert.Len(t, order.Items, 2)
	for _, it := range order.Items {
		assert.Equal(t, model.ItemReceived, it.Status)
		assert.Equal(t, order.ID, it.OrderID)
	}

	history := fx.repo.history[order.ID]
	require.Len(t, history, 1)
	assert.Nil(t, history[0].FromStatus)
	assert.Equal(t, model.StatusInProgress, history[0].ToStatus)

	assert.Equal(t, []string{events.OrderCreatedChannel}, fx.pub.channels())
}

func TestCreatePickupOrderWithoutItems(t *testing.T) {
	fx := newFixture(allFeatures())

	order, err := fx.svc.CreateOrder(context.Background(), testStoreID, CreateOrderRequest{
		CustomerID: testCustomerID,
		OrderType:  model.OrderTypePickup,
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPickup, order.Status)
	assert.Empty(t, order.Items)
	assert.True(t, order.TotalAmount.IsZero())
}

func TestCreateOrderDiscountWithoutItems(t *testing.T) {
	fx := newFixture(allFeatures())

	_, err := fx.svc.CreateOrder(context.Background(), testStoreID, CreateOrderRequest{
		CustomerID: testCustomerID,
		OrderType:  model.OrderTypePickup,
		Discount:   dec("50"),
	})
	require.True(t, apperr.IsValidation(err), "got %v", err)
	assert.Empty(t, fx.repo.orders)
	assert.Empty(t, fx.pub.channels())
}

func TestCreateOrderValidation(t *testing.T) {
	shirt := []ItemInput{{Name: "Shirt", Quantity: 1, UnitPrice: dec("3")}}

	tests := []struct {
		name     string
		features model.Features
		req      CreateOrderRequest
		field    string
	}{
		{
			name:     "walk-in without items",
			features: allFeatures(),
			req:      CreateOrderRequest{CustomerID: testCustomerID, OrderType: model.OrderTypeWalkIn},
			field:    "items",
		},
		{
			name:     "pickup disabled",
			features: model.Features{},
			req:      CreateOrderRequest{CustomerID: testCustomerID, OrderType: model.OrderTypePickup},
			field:    "orderType",
		},
		{
			name:     "delivery disabled",
			features: model.Features{PickupEnabled: true},
			req:      CreateOrderRequest{CustomerID: testCustomerID, OrderType: model.OrderTypeDelivery, Items: shirt},
			field:    "orderType",
		},
		{
			name:     "unknown customer",
			features: allFeatures(),
			req:      CreateOrderRequest{CustomerID: "nobody", OrderType: model.OrderTypeWalkIn, Items: shirt},
			field:    "customerId",
		},
		{
			name:     "discount above subtotal",
			features: allFeatures(),
			req:      CreateOrderRequest{CustomerID: testCustomerID, OrderType: model.OrderTypeWalkIn, Items: shirt, Discount: dec("4")},
			field:    "discount",
		},
		{
			name:     "zero quantity",
			features: allFeatures(),
			req: CreateOrderRequest{CustomerID: testCustomerID, OrderType: model.OrderTypeWalkIn,
				Items: []ItemInput{{Name: "Shirt", Quantity: 0, UnitPrice: dec("3")}}},
			field: "quantity",
		},
		{
			name:     "bad order type",
			features: allFeatures(),
			req:      CreateOrderRequest{CustomerID: testCustomerID, OrderType: "SHIPPING", Items: shirt},
			field:    "orderType",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(tt.features)
			_, err := fx.svc.CreateOrder(context.Background(), testStoreID, tt.req)
			var verr *apperr.ValidationError
			require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
			assert.Equal(t, tt.field, verr.Field)
			assert.Empty(t, fx.repo.orders)
			assert.Empty(t, fx.pub.channels())
		})
	}
}

func TestCreateOrderRetriesNumberConflict(t *testing.T) {
	fx := newFixture(allFeatures())
	fx.repo.conflict = 1

	order, err := fx.svc.CreateOrder(context.Background(), testStoreID, CreateOrderRequest{
		CustomerID: testCustomerID,
		OrderType:  model.OrderTypeWalkIn,
		Items:      []ItemInput{{Name: "Shirt", Quantity: 1, UnitPrice: dec("3")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "ORD-20260314-0002", order.OrderNumber)
	assert.Len(t, fx.repo.orders, 1)
}

func TestGetOrder(t *testing.T) {
	fx := newFixture(allFeatures())
	seeded := fx.seed(model.StatusReady, item("Shirt", 5, model.ItemReady))

	order, err := fx.svc.GetOrder(context.Background(), testStoreID, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, order.ID)

	_, err = fx.svc.GetOrder(context.Background(), "other-store", seeded.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestGetOrderDetailIncludesActions(t *testing.T) {
	fx := newFixture(allFeatures())
	seeded := fx.seed(model.StatusReady, item("Shirt", 5, model.ItemReady))

	detail, err := fx.svc.GetOrderDetail(context.Background(), testStoreID, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentUnpaid, detail.PaymentStatus)
	assert.True(t, dec("5").Equal(detail.Balance))
	require.NotEmpty(t, detail.Actions.Forward)
	assert.True(t, detail.Actions.CanCancel)
}

func TestUpdateStatus(t *testing.T) {
	fx := newFixture(allFeatures())
	seeded := fx.seed(model.StatusInProgress, item("Shirt", 5, model.ItemInProgress))

	order, err := fx.svc.UpdateStatus(context.Background(), testStoreID, seeded.ID, StatusRequest{
		Status: model.StatusReady,
		Notes:  "pressed",
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusReady, order.Status)
	assert.Equal(t, model.StatusReady, fx.repo.orders[seeded.ID].Status)

	history := fx.repo.history[seeded.ID]
	require.Len(t, history, 1)
	require.NotNil(t, history[0].FromStatus)
	assert.Equal(t, model.StatusInProgress, *history[0].FromStatus)
	assert.Equal(t, "pressed", *history[0].Notes)

	require.Len(t, fx.pub.published, 1)
	assert.Equal(t, events.OrderStatusChangedChannel, fx.pub.published[0].channel)
	assert.Equal(t, model.StatusInProgress, fx.pub.published[0].event.FromStatus)
	assert.Equal(t, model.StatusReady, fx.pub.published[0].event.ToStatus)
}

func TestUpdateStatusRefusals(t *testing.T) {
	tests := []struct {
		name     string
		features model.Features
		status   model.OrderStatus
		paid     string
		to       model.OrderStatus
		reason   string
	}{
		{"skip ahead", allFeatures(), model.StatusInProgress, "0", model.StatusCompleted, apperr.ReasonInvalidTransition},
		{"unpaid completion", allFeatures(), model.StatusReady, "0", model.StatusCompleted, apperr.ReasonPaymentRequired},
		{"partially paid delivery", allFeatures(), model.StatusOutForDelivery, "2", model.StatusCompleted, apperr.ReasonPaymentRequired},
		{"delivery disabled", model.Features{}, model.StatusReady, "5", model.StatusOutForDelivery, apperr.ReasonFeatureDisabled},
		{"workshop through status route", allFeatures(), model.StatusInProgress, "0", model.StatusAtWorkshop, apperr.ReasonUseWorkshopRoute},
		{"cancel a completed order", allFeatures(), model.StatusCompleted, "5", model.StatusCancelled, apperr.ReasonTerminal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(tt.features)
			seeded := fx.seed(tt.status, item("Shirt", 5, model.ItemReady))
			fx.repo.orders[seeded.ID].PaidAmount = dec(tt.paid)

			_, err := fx.svc.UpdateStatus(context.Background(), testStoreID, seeded.ID, StatusRequest{Status: tt.to})
			requireReason(t, err, tt.reason)
			assert.Equal(t, tt.status, fx.repo.orders[seeded.ID].Status)
			assert.Empty(t, fx.repo.history[seeded.ID])
			assert.Empty(t, fx.pub.channels())
		})
	}
}

func TestUpdateStatusNotFound(t *testing.T) {
	fx := newFixture(allFeatures())

	_, err := fx.svc.UpdateStatus(context.Background(), testStoreID, "missing", StatusRequest{Status: model.StatusReady})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCompleteMarksItemsCompleted(t *testing.T) {
	fx := newFixture(allFeatures())
	seeded := fx.seed(model.StatusReady,
		item("Shirt", 5, model.ItemReady),
		item("Towel", 3, model.ItemInProgress),
	)
	fx.repo.orders[seeded.ID].PaidAmount = dec("8")

	order, err := fx.svc.UpdateStatus(context.Background(), testStoreID, seeded.ID, StatusRequest{Status: model.StatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, order.Status)
	for _, it := range fx.repo.orders[seeded.ID].Items {
		assert.Equal(t, model.ItemCompleted, it.Status)
	}
}

func TestCancelFromAnyOpenStatus(t *testing.T) {
	for _, status := range []model.OrderStatus{model.StatusPickup, model.StatusInProgress, model.StatusReady} {
		t.Run(string(status), func(t *testing.T) {
			fx := newFixture(allFeatures())
			seeded := fx.seed(status, item("Shirt", 5, model.ItemReceived))

			order, err := fx.svc.UpdateStatus(context.Background(), testStoreID, seeded.ID, StatusRequest{
				Status: model.StatusCancelled,
				Reason: "customer changed their mind",
			})
			require.NoError(t, err)
			assert.Equal(t, model.StatusCancelled, order.Status)
		})
	}
}

func TestRework(t *testing.T) {
	fx := newFixture(allFeatures())
	seeded := fx.seed(model.StatusCompleted,
		item("Shirt", 5, model.ItemCompleted),
		item("Suit", 10, model.ItemCompleted),
	)
	fx.repo.orders[seeded.ID].PaidAmount = dec("15")

	order, err := fx.svc.Rework(context.Background(), testStoreID, seeded.ID, "  stain still visible ")
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, order.Status)
	assert.True(t, order.IsRework)
	assert.Equal(t, 1, order.ReworkCount)
	for _, it := range fx.repo.orders[seeded.ID].Items {
		assert.Equal(t, model.ItemInProgress, it.Status)
	}

	history := fx.repo.history[seeded.ID]
	require.Len(t, history, 1)
	assert.Equal(t, "stain still visible", *history[0].Notes)
}

func TestReworkWithoutReasonTouchesNothing(t *testing.T) {
	fx := newFixture(allFeatures())
	seeded := fx.seed(model.StatusCompleted, item("Shirt", 5, model.ItemCompleted))
	before := fx.repo.callCount()

	_, err := fx.svc.Rework(context.Background(), testStoreID, seeded.ID, "   ")
	requireReason(t, err, apperr.ReasonReasonRequired)
	assert.Equal(t, before, fx.repo.callCount())
}

func TestReworkThroughStatusRouteNeedsReason(t *testing.T) {
	fx := newFixture(allFeatures())
	seeded := fx.seed(model.StatusCompleted, item("Shirt", 5, model.ItemCompleted))

	_, err := fx.svc.UpdateStatus(context.Background(), testStoreID, seeded.ID, StatusRequest{Status: model.StatusInProgress})
	requireReason(t, err, apperr.ReasonReasonRequired)
	assert.False(t, fx.repo.orders[seeded.ID].IsRework)
}

func TestPickupAwaitingItems(t *testing.T) {
	fx := newFixture(allFeatures())
	seeded := fx.seed(model.StatusPickup)
	fx.repo.orders[seeded.ID].OrderType = model.OrderTypePickup

	_, err := fx.svc.UpdateStatus(context.Background(), testStoreID, seeded.ID, StatusRequest{Status: model.StatusInProgress})
	requireReason(t, err, apperr.ReasonAwaitingItems)

	_, err = fx.svc.AddItems(context.Background(), testStoreID, seeded.ID, []ItemInput{
		{Name: "Duvet", Quantity: 1, UnitPrice: dec("20")},
	})
	require.NoError(t, err)

	order, err := fx.svc.UpdateStatus(context.Background(), testStoreID, seeded.ID, StatusRequest{Status: model.StatusInProgress})
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, order.Status)
}

func TestAddItemsRecomputesTotals(t *testing.T) {
	fx := newFixture(allFeatures())
	seeded := fx.seed(model.StatusInProgress, item("Shirt", 10, model.ItemInProgress))

	order, err := fx.svc.AddItems(context.Background(), testStoreID, seeded.ID, []ItemInput{
		{Name: "Towel", Quantity: 3, UnitPrice: dec("2.50")},
	})
	require.NoError(t, err)
	assert.Len(t, order.Items, 2)
	assert.True(t, dec("17.5").Equal(order.Subtotal), "subtotal %s", order.Subtotal)
	assert.True(t, dec("1.75").Equal(order.Tax), "tax %s", order.Tax)
	assert.True(t, dec("19.25").Equal(fx.repo.orders[seeded.ID].TotalAmount))
	assert.Len(t, fx.repo.orders[seeded.ID].Items, 2)
}

func TestAddItemsLockedAfterReady(t *testing.T) {
	fx := newFixture(allFeatures())
	seeded := fx.seed(model.StatusReady, item("Shirt", 10, model.ItemReady))

	_, err := fx.svc.AddItems(context.Background(), testStoreID, seeded.ID, []ItemInput{
		{Name: "Towel", Quantity: 1, UnitPrice: dec("2")},
	})
	requireReason(t, err, apperr.ReasonItemsLocked)
	assert.Len(t, fx.repo.orders[seeded.ID].Items, 1)
}

func TestUpdateItemStatus(t *testing.T) {
	fx := newFixture(allFeatures())
	seeded := fx.seed(model.StatusInProgress, item("Shirt", 5, model.ItemReceived))
	itemID := seeded.Items[0].ID

	it, err := fx.svc.UpdateItemStatus(context.Background(), testStoreID, seeded.ID, itemID, model.ItemInProgress)
	require.NoError(t, err)
	assert.Equal(t, model.ItemInProgress, it.Status)

	_, err = fx.svc.UpdateItemStatus(context.Background(), testStoreID, seeded.ID, itemID, model.ItemAtWorkshop)
	requireReason(t, err, apperr.ReasonUseWorkshopRoute)

	_, err = fx.svc.UpdateItemStatus(context.Background(), testStoreID, seeded.ID, "nope", model.ItemReady)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSendToWorkshop(t *testing.T) {
	fx := newFixture(allFeatures())
	seeded := fx.seed(model.StatusInProgress,
		item("Suit", 10, model.ItemInProgress),
		item("Shirt", 5, model.ItemInProgress),
	)
	suitID := seeded.Items[0].ID

	order, err := fx.svc.SendToWorkshop(context.Background(), testStoreID, seeded.ID, WorkshopRequest{
		ItemIDs:     []string{suitID},
		PartnerName: "Clean Partners",
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusAtWorkshop, order.Status)
	require.NotNil(t, order.WorkshopPartnerName)
	assert.Equal(t, "Clean Partners", *order.WorkshopPartnerName)

	stored := fx.repo.orders[seeded.ID]
	assert.Equal(t, model.ItemAtWorkshop, stored.Items[0].Status)
	assert.True(t, stored.Items[0].SentToWorkshop)
	assert.Equal(t, model.ItemInProgress, stored.Items[1].Status)
	assert.Equal(t, []string{events.OrderStatusChangedChannel}, fx.pub.channels())

	// a second item joins while the order is already out; no new transition
	_, err = fx.svc.SendToWorkshop(context.Background(), testStoreID, seeded.ID, WorkshopRequest{
		ItemIDs:     []string{seeded.Items[1].ID},
		PartnerName: "Clean Partners",
	})
	require.NoError(t, err)
	assert.Len(t, fx.repo.history[seeded.ID], 1)
	assert.Len(t, fx.pub.channels(), 1)
}

func TestSendToWorkshopOncePerItem(t *testing.T) {
	fx := newFixture(allFeatures())
	sent := item("Suit", 10, model.ItemReady)
	sent.SentToWorkshop = true
	seeded := fx.seed(model.StatusInProgress, sent, item("Shirt", 5, model.ItemInProgress))

	_, err := fx.svc.SendToWorkshop(context.Background(), testStoreID, seeded.ID, WorkshopRequest{
		ItemIDs:     []string{seeded.Items[0].ID},
		PartnerName: "Clean Partners",
	})
	require.True(t, apperr.IsValidation(err), "got %v", err)
	assert.Equal(t, model.StatusInProgress, fx.repo.orders[seeded.ID].Status)
}

func TestSendToWorkshopDisabled(t *testing.T) {
	fx := newFixture(model.Features{})
	seeded := fx.seed(model.StatusInProgress, item("Suit", 10, model.ItemInProgress))

	_, err := fx.svc.SendToWorkshop(context.Background(), testStoreID, seeded.ID, WorkshopRequest{
		ItemIDs:     []string{seeded.Items[0].ID},
		PartnerName: "Clean Partners",
	})
	requireReason(t, err, apperr.ReasonFeatureDisabled)
}

func TestReturnFromWorkshop(t *testing.T) {
	fx := newFixture(allFeatures())
	a := item("Suit", 10, model.ItemAtWorkshop)
	a.SentToWorkshop = true
	b := item("Coat", 20, model.ItemAtWorkshop)
	b.SentToWorkshop = true
	seeded := fx.seed(model.StatusAtWorkshop, a, b, item("Shirt", 5, model.ItemReady))

	order, err := fx.svc.ReturnFromWorkshop(context.Background(), testStoreID, seeded.ID, WorkshopReturnRequest{
		ItemIDs: []string{seeded.Items[0].ID},
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusAtWorkshop, order.Status, "one item still out")

	order, err = fx.svc.ReturnFromWorkshop(context.Background(), testStoreID, seeded.ID, WorkshopReturnRequest{})
	require.NoError(t, err)
	assert.Equal(t, model.StatusWorkshopReturned, order.Status)
	for _, it := range fx.repo.orders[seeded.ID].Items[:2] {
		assert.Equal(t, model.ItemWorkshopReturned, it.Status)
	}
	assert.Equal(t, []string{events.OrderStatusChangedChannel}, fx.pub.channels())
}

func TestBackToProcessingRecallsWorkshopItems(t *testing.T) {
	fx := newFixture(allFeatures())
	seeded := fx.seed(model.StatusInProgress,
		item("Suit", 10, model.ItemInProgress),
		item("Shirt", 5, model.ItemInProgress),
	)
	suitID := seeded.Items[0].ID

	_, err := fx.svc.SendToWorkshop(context.Background(), testStoreID, seeded.ID, WorkshopRequest{
		ItemIDs:     []string{suitID},
		PartnerName: "Clean Partners",
	})
	require.NoError(t, err)

	order, err := fx.svc.UpdateStatus(context.Background(), testStoreID, seeded.ID, StatusRequest{Status: model.StatusInProgress})
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, order.Status)
	assert.Nil(t, order.WorkshopPartnerName)

	suit := fx.repo.orders[seeded.ID].Items[0]
	assert.Equal(t, model.ItemInProgress, suit.Status)
	assert.False(t, suit.SentToWorkshop)
	assert.Nil(t, suit.WorkshopPartnerName)

	// the recalled item can move on and can be routed again
	_, err = fx.svc.SendToWorkshop(context.Background(), testStoreID, seeded.ID, WorkshopRequest{
		ItemIDs:     []string{suitID},
		PartnerName: "Other Partner",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ItemAtWorkshop, fx.repo.orders[seeded.ID].Items[0].Status)
}

func TestRecordPayment(t *testing.T) {
	fx := newFixture(allFeatures())
	seeded := fx.seed(model.StatusReady, item("Shirt", 10, model.ItemReady))

	p, err := fx.svc.RecordPayment(context.Background(), testStoreID, seeded.ID, PaymentRequest{
		Amount: dec("4"),
		Method: model.PaymentCash,
	})
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, p.OrderID)
	assert.True(t, dec("4").Equal(fx.repo.orders[seeded.ID].PaidAmount))
	assert.Equal(t, model.PaymentPartial, fx.repo.orders[seeded.ID].PaymentStatus())

	_, err = fx.svc.RecordPayment(context.Background(), testStoreID, seeded.ID, PaymentRequest{
		Amount: dec("7"),
		Method: model.PaymentCard,
	})
	assert.True(t, apperr.IsValidation(err), "overpayment must be refused, got %v", err)

	_, err = fx.svc.RecordPayment(context.Background(), testStoreID, seeded.ID, PaymentRequest{
		Amount: dec("6"),
		Method: model.PaymentCard,
	})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPaid, fx.repo.orders[seeded.ID].PaymentStatus())

	payments, err := fx.svc.Payments(context.Background(), testStoreID, seeded.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 2)
	assert.Equal(t, []string{events.PaymentRecordedChannel, events.PaymentRecordedChannel}, fx.pub.channels())
}

func TestRecordPaymentRollsBack(t *testing.T) {
	fx := newFixture(allFeatures())
	seeded := fx.seed(model.StatusReady, item("Shirt", 10, model.ItemReady))
	fx.repo.updErr = errors.New("connection reset")

	_, err := fx.svc.RecordPayment(context.Background(), testStoreID, seeded.ID, PaymentRequest{
		Amount: dec("4"),
		Method: model.PaymentCash,
	})
	require.Error(t, err)
	assert.Empty(t, fx.repo.payments[seeded.ID])
	assert.True(t, fx.repo.orders[seeded.ID].PaidAmount.IsZero())
	assert.Empty(t, fx.pub.channels())
}

func TestRecordPaymentValidation(t *testing.T) {
	fx := newFixture(allFeatures())
	seeded := fx.seed(model.StatusReady, item("Shirt", 10, model.ItemReady))
	cancelled := fx.seed(model.StatusCancelled, item("Shirt", 10, model.ItemReady))

	_, err := fx.svc.RecordPayment(context.Background(), testStoreID, seeded.ID, PaymentRequest{Amount: dec("0"), Method: model.PaymentCash})
	assert.True(t, apperr.IsValidation(err))

	_, err = fx.svc.RecordPayment(context.Background(), testStoreID, seeded.ID, PaymentRequest{Amount: dec("1"), Method: "BITCOIN"})
	assert.True(t, apperr.IsValidation(err))

	_, err = fx.svc.RecordPayment(context.Background(), testStoreID, cancelled.ID, PaymentRequest{Amount: dec("1"), Method: model.PaymentCash})
	assert.True(t, apperr.IsValidation(err))
}

func TestAssignDriver(t *testing.T) {
	fx := newFixture(allFeatures())
	seeded := fx.seed(model.StatusReady, item("Shirt", 10, model.ItemReady))

	order, err := fx.svc.AssignDriver(context.Background(), testStoreID, seeded.ID, testDriverID)
	require.NoError(t, err)
	require.NotNil(t, order.DriverID)
	assert.Equal(t, testDriverID, *order.DriverID)

	_, err = fx.svc.AssignDriver(context.Background(), testStoreID, seeded.ID, "driver-off")
	assert.True(t, apperr.IsValidation(err))

	_, err = fx.svc.AssignDriver(context.Background(), testStoreID, seeded.ID, "ghost")
	assert.True(t, apperr.IsValidation(err))
}

func TestAssignDriverNeedsLogisticsFeature(t *testing.T) {
	fx := newFixture(model.Features{WorkshopEnabled: true})
	seeded := fx.seed(model.StatusReady, item("Shirt", 10, model.ItemReady))

	_, err := fx.svc.AssignDriver(context.Background(), testStoreID, seeded.ID, testDriverID)
	assert.True(t, apperr.IsValidation(err))
}

func TestHistory(t *testing.T) {
	fx := newFixture(allFeatures())
	seeded := fx.seed(model.StatusInProgress, item("Shirt", 5, model.ItemInProgress))
	fx.repo.orders[seeded.ID].PaidAmount = dec("5")

	for _, to := range []model.OrderStatus{model.StatusReady, model.StatusCompleted} {
		_, err := fx.svc.UpdateStatus(context.Background(), testStoreID, seeded.ID, StatusRequest{Status: to})
		require.NoError(t, err)
	}

	history, err := fx.svc.History(context.Background(), testStoreID, seeded.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, model.StatusReady, history[0].ToStatus)
	assert.Equal(t, model.StatusCompleted, history[1].ToStatus)

	_, err = fx.svc.History(context.Background(), "other-store", seeded.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
