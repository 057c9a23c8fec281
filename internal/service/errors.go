package service

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error returned by this package wraps exactly one of
// these, so callers can switch on errors.Is or on KindOf.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrConflict          = errors.New("conflict")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrAlreadySettled    = errors.New("booking is already settled")
	ErrAlreadyCancelled  = errors.New("booking is already cancelled")
	ErrGatewayDeclined   = errors.New("payment gateway declined the charge")
	ErrInvalidOperation  = errors.New("invalid operation")
	ErrForbidden         = errors.New("forbidden")
)

var (
	ErrPropertyNotFound = fmt.Errorf("property %w", ErrNotFound)
	ErrSlotNotFound     = fmt.Errorf("slot %w", ErrNotFound)
	ErrBookingNotFound  = fmt.Errorf("booking %w", ErrNotFound)
	ErrWashJobNotFound  = fmt.Errorf("wash job %w", ErrNotFound)

	ErrInvalidWindow    = fmt.Errorf("%w: start time must be before end time", ErrInvalidInput)
	ErrNoSlots          = fmt.Errorf("%w: at least one slot is required", ErrInvalidInput)
	ErrInvalidAmount    = fmt.Errorf("%w: invalid amount", ErrInvalidInput)
	ErrInvalidMethod    = fmt.Errorf("%w: unknown payment method", ErrInvalidInput)
	ErrMissingCustomer  = fmt.Errorf("%w: customer id is required", ErrInvalidInput)
	ErrPropertyInactive = fmt.Errorf("%w: property is not active", ErrInvalidInput)
	ErrForeignSlot      = fmt.Errorf("%w: slot does not belong to the property", ErrInvalidInput)
	ErrSlotMaintenance  = fmt.Errorf("%w: slot is under maintenance", ErrInvalidInput)
)

type Kind string

const (
	KindNotFound          Kind = "NOT_FOUND"
	KindInvalidInput      Kind = "INVALID_INPUT"
	KindConflict          Kind = "CONFLICT"
	KindInvalidTransition Kind = "INVALID_TRANSITION"
	KindAlreadySettled    Kind = "ALREADY_SETTLED"
	KindAlreadyCancelled  Kind = "ALREADY_CANCELLED"
	KindGatewayDeclined   Kind = "GATEWAY_DECLINED"
	KindInvalidOperation  Kind = "INVALID_OPERATION"
	KindForbidden         Kind = "FORBIDDEN"
	KindInternal          Kind = "INTERNAL"
)

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrNotFound, KindNotFound},
	{ErrInvalidInput, KindInvalidInput},
	{ErrConflict, KindConflict},
	{ErrInvalidTransition, KindInvalidTransition},
	{ErrAlreadySettled, KindAlreadySettled},
	{ErrAlreadyCancelled, KindAlreadyCancelled},
	{ErrGatewayDeclined, KindGatewayDeclined},
	{ErrInvalidOperation, KindInvalidOperation},
	{ErrForbidden, KindForbidden},
}

// KindOf maps an error to its stable machine-readable code. Anything not
// raised by this package, persistence failures included, is INTERNAL.
func KindOf(err error) Kind {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}

// SlotConflictError names the slots already held for an overlapping window.
type SlotConflictError struct {
	SlotIDs []uint
}

func (e *SlotConflictError) Error() string {
	ids := make([]string, len(e.SlotIDs))
	for i, id := range e.SlotIDs {
		ids[i] = fmt.Sprint(id)
	}
	return fmt.Sprintf("slot conflict: slots [%s] are already booked in the requested window", strings.Join(ids, ", "))
}

func (e *SlotConflictError) Unwrap() error {
	return ErrConflict
}

// TransitionError names the current and requested status of a refused move.
type TransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid %s transition: %s -> %s", e.Entity, e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
