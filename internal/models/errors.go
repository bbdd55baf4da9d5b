package models

import (
	"errors"
	"fmt"
)

// Purchase errors. Every failure mode of the purchase workflow is one of
// these, so callers can branch on the exact condition with errors.Is and
// drive a retry prompt or a method switch. All of them are recoverable;
// none corrupts catalog, reserve, or history.
var (
	// ErrInvalidSelection means the product index is out of range.
	ErrInvalidSelection = errors.New("invalid product selection")

	// ErrOutOfStock means the selected product has zero stock.
	ErrOutOfStock = errors.New("product is out of stock")

	// ErrUnknownPaymentMethod means the method is neither cash nor card.
	ErrUnknownPaymentMethod = errors.New("unknown payment method")

	// ErrInvalidAmount means the tendered amount did not parse as a
	// non-negative number.
	ErrInvalidAmount = errors.New("tendered amount is not a valid non-negative number")

	// ErrInsufficientFunds and ErrInsufficientChange are matched via
	// errors.Is against the typed errors below.
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInsufficientChange = errors.New("machine cannot make change")
)

// InsufficientFundsError reports a cash payment where the tendered amount
// does not cover the price. Shortfall is price minus tendered.
type InsufficientFundsError struct {
	Price     float64
	Tendered  float64
	Shortfall float64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: tendered %.2f for price %.2f, short %.2f", e.Tendered, e.Price, e.Shortfall)
}

// Is lets errors.Is(err, ErrInsufficientFunds) match while errors.As still
// exposes the amounts.
func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// InsufficientChangeError reports a cash payment declined because the
// reserve cannot cover the change owed.
type InsufficientChangeError struct {
	Change    float64
	Available float64
}

func (e *InsufficientChangeError) Error() string {
	return fmt.Sprintf("machine cannot make change: owed %.2f, reserve holds %.2f", e.Change, e.Available)
}

func (e *InsufficientChangeError) Is(target error) bool {
	return target == ErrInsufficientChange
}
