package workflow

import (
	"github.com/laundry-service/internal/apperr"
	"github.com/laundry-service/internal/model"
)

// CanSendItemToWorkshop allows routing an item once, from a pre-workshop state.
func CanSendItemToWorkshop(item model.OrderItem) bool {
	if item.SentToWorkshop {
		return false
	}
	switch item.Status {
	case model.ItemReceived, model.ItemInProgress, model.ItemReady:
		return true
	}
	return false
}

func EligibleWorkshopItems(items []model.OrderItem) []model.OrderItem {
	out := make([]model.OrderItem, 0, len(items))
	for _, it := range items {
		if CanSendItemToWorkshop(it) {
			out = append(out, it)
		}
	}
	return out
}

// AT_WORKSHOP and WORKSHOP_RETURNED are only entered through the workshop
// operations, so they never appear as targets here.
var itemTransitions = map[model.ItemStatus][]model.ItemStatus{
	model.ItemReceived:         {model.ItemInProgress},
	model.ItemInProgress:       {model.ItemReady},
	model.ItemWorkshopReturned: {model.ItemReady},
	model.ItemReady:            {model.ItemCompleted, model.ItemInProgress},
}

func ValidateItemTransition(from, to model.ItemStatus) error {
	for _, s := range itemTransitions[from] {
		if s == to {
			return nil
		}
	}
	reason := apperr.ReasonInvalidTransition
	if to == model.ItemAtWorkshop || to == model.ItemWorkshopReturned {
		reason = apperr.ReasonUseWorkshopRoute
	}
	return &apperr.TransitionError{From: string(from), To: string(to), Reason: reason}
}
