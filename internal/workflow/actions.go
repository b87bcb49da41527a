package workflow

import (
	"strings"

	"github.com/laundry-service/internal/apperr"
	"github.com/laundry-service/internal/model"
	"github.com/shopspring/decimal"
)

// OrderView is the slice of an order the workflow needs to decide on actions.
type OrderView struct {
	Status      model.OrderStatus
	OrderType   model.OrderType
	PaidAmount  decimal.Decimal
	TotalAmount decimal.Decimal
	Items       []model.OrderItem
}

func ViewOf(o *model.Order) OrderView {
	return OrderView{
		Status:      o.Status,
		OrderType:   o.OrderType,
		PaidAmount:  o.PaidAmount,
		TotalAmount: o.TotalAmount,
		Items:       o.Items,
	}
}

// PaymentComplete reports whether paid covers total.
func PaymentComplete(paid, total decimal.Decimal) bool {
	return paid.GreaterThanOrEqual(total)
}

type Direction string

const (
	DirectionForward Direction = "forward"
	DirectionReverse Direction = "reverse"
	DirectionCancel  Direction = "cancel"
)

type Action struct {
	Transition
	Direction      Direction `json:"direction"`
	Disabled       bool      `json:"disabled"`
	DisabledReason string    `json:"disabledReason,omitempty"`
}

type ActionSet struct {
	Forward             []Action `json:"forward"`
	Reverse             []Action `json:"reverse"`
	Cancel              *Action  `json:"cancel,omitempty"`
	CanAddItems         bool     `json:"canAddItems"`
	CanCancel           bool     `json:"canCancel"`
	PickupAwaitingItems bool     `json:"pickupAwaitingItems"`
}

// AvailableActions is the single place the presented action lists are
// computed. Transitions behind a disabled feature are dropped; gated ones stay
// listed but disabled with a reason.
func AvailableActions(v OrderView, f model.Features) ActionSet {
	set := ActionSet{
		Forward:             []Action{},
		Reverse:             []Action{},
		CanAddItems:         CanAddItems(v.Status),
		CanCancel:           CanBeCancelled(v.Status),
		PickupAwaitingItems: IsPickupAwaitingItems(v.OrderType, v.Status, len(v.Items)),
	}

	for _, t := range forwardTable[v.Status] {
		if !t.RequiredFeature.Enabled(f) {
			continue
		}
		set.Forward = append(set.Forward, gate(v, t, DirectionForward))
	}
	for _, t := range reverseTable[v.Status] {
		if !t.RequiredFeature.Enabled(f) {
			continue
		}
		set.Reverse = append(set.Reverse, gate(v, t, DirectionReverse))
	}
	if set.CanCancel {
		set.Cancel = &Action{Transition: cancelTransition, Direction: DirectionCancel}
	}
	return set
}

func gate(v OrderView, t Transition, dir Direction) Action {
	a := Action{Transition: t, Direction: dir}
	if reason := blockedReason(v, t); reason != "" {
		a.Disabled = true
		a.DisabledReason = reason
	}
	return a
}

// blockedReason covers the gates that depend on order state rather than on
// the table itself.
func blockedReason(v OrderView, t Transition) string {
	switch {
	case v.Status == model.StatusPickup && t.To == model.StatusInProgress &&
		IsPickupAwaitingItems(v.OrderType, v.Status, len(v.Items)):
		return apperr.ReasonAwaitingItems
	case t.RequiresPayment && !PaymentComplete(v.PaidAmount, v.TotalAmount):
		return apperr.ReasonPaymentRequired
	case t.Kind == KindWorkshop && len(EligibleWorkshopItems(v.Items)) == 0:
		return apperr.ReasonNoEligibleItems
	}
	return ""
}

type Request struct {
	To     model.OrderStatus
	Reason string
}

// Validate checks a requested transition against the tables, the tenant's
// features and the order state. It returns the matched transition or a
// *apperr.TransitionError.
func Validate(v OrderView, f model.Features, req Request) (Transition, error) {
	refuse := func(reason string) (Transition, error) {
		return Transition{}, &apperr.TransitionError{From: string(v.Status), To: string(req.To), Reason: reason}
	}

	if req.To == model.StatusCancelled {
		if !CanBeCancelled(v.Status) {
			return refuse(apperr.ReasonTerminal)
		}
		return cancelTransition, nil
	}

	t, ok := lookup(v.Status, req.To)
	if !ok {
		return refuse(apperr.ReasonInvalidTransition)
	}
	if !t.RequiredFeature.Enabled(f) {
		return refuse(apperr.ReasonFeatureDisabled)
	}
	if t.RequiresReason && strings.TrimSpace(req.Reason) == "" {
		return refuse(apperr.ReasonReasonRequired)
	}
	if reason := blockedReason(v, t); reason != "" {
		return refuse(reason)
	}
	return t, nil
}
