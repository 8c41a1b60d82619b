package order

import "errors"

var (
	// ErrOrderNotFound is returned when no order has the requested number
	ErrOrderNotFound = errors.New("order not found")

	// ErrInvalidOrderNumber is returned when the order number is blank
	ErrInvalidOrderNumber = errors.New("invalid order number")

	// ErrAlreadyApproved is returned when approving an order that already carries an approval
	ErrAlreadyApproved = errors.New("order is already approved")

	// ErrIllegalTransition is returned when the order's state does not allow the requested transition
	ErrIllegalTransition = errors.New("illegal order state transition")
)
