// Package workflow holds the order status state machine: the static forward
// and reverse transition tables, feature and payment gating, and the item
// sub-state rules. It performs no I/O.
package workflow

import (
	"strings"

	"github.com/laundry-service/internal/model"
)

type Feature string

const (
	FeatureNone     Feature = ""
	FeaturePickup   Feature = "pickup"
	FeatureDelivery Feature = "delivery"
	FeatureWorkshop Feature = "workshop"
)

// Enabled reports whether the feature is switched on for the tenant.
func (f Feature) Enabled(features model.Features) bool {
	switch f {
	case FeaturePickup:
		return features.PickupEnabled
	case FeatureDelivery:
		return features.DeliveryEnabled
	case FeatureWorkshop:
		return features.WorkshopEnabled
	default:
		return true
	}
}

// Kind tells callers which operation executes a transition.
type Kind string

const (
	KindStatus         Kind = "status"
	KindWorkshop       Kind = "workshop"
	KindWorkshopReturn Kind = "workshop_return"
	KindRework         Kind = "rework"
	KindCancel         Kind = "cancel"
)

type Transition struct {
	To                   model.OrderStatus `json:"to"`
	Label                string            `json:"label"`
	Icon                 string            `json:"icon"`
	RequiresConfirmation bool              `json:"requiresConfirmation"`
	ConfirmMessage       string            `json:"confirmMessage,omitempty"`
	RequiresPayment      bool              `json:"requiresPayment"`
	RequiredFeature      Feature           `json:"requiredFeature,omitempty"`
	RequiresReason       bool              `json:"requiresReason"`
	Kind                 Kind              `json:"kind"`
}

// Confirmation renders the confirm message for a concrete order number.
func (t Transition) Confirmation(orderNumber string) string {
	return strings.ReplaceAll(t.ConfirmMessage, "{{order}}", orderNumber)
}

var forwardTable = map[model.OrderStatus][]Transition{
	model.StatusPickup: {
		{To: model.StatusInProgress, Label: "Items received", Icon: "package-check", RequiredFeature: FeaturePickup, Kind: KindStatus},
	},
	model.StatusInProgress: {
		{To: model.StatusAtWorkshop, Label: "Send to workshop", Icon: "factory", RequiresConfirmation: true,
			ConfirmMessage: "Send items of order {{order}} to the workshop?", RequiredFeature: FeatureWorkshop, Kind: KindWorkshop},
		{To: model.StatusReady, Label: "Mark ready", Icon: "check-circle", Kind: KindStatus},
	},
	model.StatusAtWorkshop: {
		{To: model.StatusWorkshopReturned, Label: "Returned from workshop", Icon: "undo", RequiredFeature: FeatureWorkshop, Kind: KindWorkshopReturn},
	},
	model.StatusWorkshopReturned: {
		{To: model.StatusReady, Label: "Mark ready", Icon: "check-circle", Kind: KindStatus},
	},
	model.StatusReady: {
		{To: model.StatusOutForDelivery, Label: "Out for delivery", Icon: "truck", RequiredFeature: FeatureDelivery, Kind: KindStatus},
		{To: model.StatusCompleted, Label: "Complete order", Icon: "check-check", RequiresConfirmation: true,
			ConfirmMessage: "Mark order {{order}} as completed?", RequiresPayment: true, Kind: KindStatus},
	},
	model.StatusOutForDelivery: {
		{To: model.StatusCompleted, Label: "Delivered", Icon: "check-check", RequiresConfirmation: true,
			ConfirmMessage: "Confirm order {{order}} was delivered?", RequiresPayment: true, Kind: KindStatus},
	},
}

var reverseTable = map[model.OrderStatus][]Transition{
	model.StatusInProgress: {
		{To: model.StatusPickup, Label: "Back to pickup", Icon: "arrow-left", RequiredFeature: FeaturePickup, Kind: KindStatus},
	},
	model.StatusAtWorkshop: {
		{To: model.StatusInProgress, Label: "Back to processing", Icon: "arrow-left", RequiredFeature: FeatureWorkshop, Kind: KindStatus},
	},
	model.StatusWorkshopReturned: {
		{To: model.StatusAtWorkshop, Label: "Back to workshop", Icon: "arrow-left", RequiredFeature: FeatureWorkshop, Kind: KindStatus},
	},
	model.StatusReady: {
		{To: model.StatusInProgress, Label: "Back to processing", Icon: "arrow-left", Kind: KindStatus},
	},
	model.StatusOutForDelivery: {
		{To: model.StatusReady, Label: "Back to ready", Icon: "arrow-left", RequiredFeature: FeatureDelivery, Kind: KindStatus},
	},
	model.StatusCompleted: {
		{To: model.StatusInProgress, Label: "Rework", Icon: "rotate-ccw", RequiresConfirmation: true,
			ConfirmMessage: "Reopen order {{order}} for rework?", RequiresReason: true, Kind: KindRework},
	},
}

var cancelTransition = Transition{
	To:                   model.StatusCancelled,
	Label:                "Cancel order",
	Icon:                 "x-circle",
	RequiresConfirmation: true,
	ConfirmMessage:       "Cancel order {{order}}? This cannot be undone.",
	Kind:                 KindCancel,
}

// Forward returns a copy of the forward transitions out of s.
func Forward(s model.OrderStatus) []Transition {
	return append([]Transition(nil), forwardTable[s]...)
}

// Reverse returns a copy of the reverse transitions out of s.
func Reverse(s model.OrderStatus) []Transition {
	return append([]Transition(nil), reverseTable[s]...)
}

func IsTerminalStatus(s model.OrderStatus) bool {
	return s == model.StatusCompleted || s == model.StatusCancelled
}

func CanBeCancelled(s model.OrderStatus) bool {
	return !IsTerminalStatus(s)
}

func IsPickupAwaitingItems(t model.OrderType, s model.OrderStatus, itemCount int) bool {
	return t == model.OrderTypePickup && s == model.StatusPickup && itemCount == 0
}

func CanAddItems(s model.OrderStatus) bool {
	return s == model.StatusPickup || s == model.StatusInProgress
}

func lookup(from, to model.OrderStatus) (Transition, bool) {
	for _, t := range forwardTable[from] {
		if t.To == to {
			return t, true
		}
	}
	for _, t := range reverseTable[from] {
		if t.To == to {
			return t, true
		}
	}
	return Transition{}, false
}
