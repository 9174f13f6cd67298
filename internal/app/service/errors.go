package service

import (
	"errors"
	"fmt"
	"strings"
)

// Error classes. Every error returned by a service either wraps one of these
// or is an unexpected (internal) failure.
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrInvalidState = errors.New("invalid state")
)

var (
	ErrProductNotFound  = fmt.Errorf("%w: product not found", ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrCartNotFound     = fmt.Errorf("%w: cart not found", ErrNotFound)
	ErrCartItemNotFound = fmt.Errorf("%w: product not found in cart", ErrNotFound)
	ErrGuestCartMissing = fmt.Errorf("%w: guest cart not found", ErrNotFound)
	ErrCheckoutNotFound = fmt.Errorf("%w: checkout not found", ErrNotFound)
	ErrOrderNotFound    = fmt.Errorf("%w: order not found or access denied", ErrNotFound)

	ErrInvalidQuantity      = fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	ErrGuestIDRequired      = fmt.Errorf("%w: guest id is required", ErrValidation)
	ErrGuestCartEmpty       = fmt.Errorf("%w: guest cart is empty", ErrValidation)
	ErrNoItems              = fmt.Errorf("%w: no items found", ErrValidation)
	ErrInvalidPaymentStatus = fmt.Errorf("%w: payment status is not valid", ErrValidation)
	ErrInvalidDeliveryTime  = fmt.Errorf("%w: delivery time is not a valid slot", ErrValidation)
	ErrOrderAlreadyCanceled = fmt.Errorf("%w: order is already cancelled", ErrValidation)
	ErrInvalidOrderStatus   = fmt.Errorf("%w: order status cannot move to the requested value", ErrValidation)

	ErrCheckoutFinalized  = fmt.Errorf("%w: checkout session already finalized", ErrInvalidState)
	ErrCheckoutNotPaid    = fmt.Errorf("%w: checkout session is not paid yet", ErrInvalidState)
	ErrOrderNotCancelable = fmt.Errorf("%w: order can no longer be cancelled", ErrInvalidState)

	// ErrCartConflict is returned when a cart write keeps losing to concurrent writers.
	ErrCartConflict = errors.New("cart update conflicted with concurrent changes")
	// ErrCartBusy is returned when the owner lock could not be obtained in time.
	ErrCartBusy = errors.New("cart is busy, try again")
)

// Message returns the client-facing text of a classified error.
func Message(err error) string {
	for _, class := range []error{ErrNotFound, ErrValidation, ErrInvalidState} {
		if errors.Is(err, class) {
			return strings.TrimPrefix(err.Error(), class.Error()+": ")
		}
	}
	return err.Error()
}
