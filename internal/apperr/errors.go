package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrConflict     = errors.New("record already exists")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// ValidationError reports bad input on a single field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Transition refusal reasons.
const (
	ReasonInvalidTransition = "invalid_transition"
	ReasonFeatureDisabled   = "feature_disabled"
	ReasonPaymentRequired   = "payment_required"
	ReasonReasonRequired    = "reason_required"
	ReasonAwaitingItems     = "awaiting_items"
	ReasonNoEligibleItems   = "no_eligible_items"
	ReasonTerminal          = "terminal_status"
	ReasonUseWorkshopRoute  = "use_workshop_route"
	ReasonItemsLocked       = "items_locked"
)

// TransitionError is returned when the workflow refuses a status change.
type TransitionError struct {
	From   string
	To     string
	Reason string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move from %s to %s: %s", e.From, e.To, e.Reason)
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func AsTransition(err error) (*TransitionError, bool) {
	var t *TransitionError
	ok := errors.As(err, &t)
	return t, ok
}
