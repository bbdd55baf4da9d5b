// Package payment implements the machine's payment processors. Each
// PaymentMethod has one Processor behind a common Authorize capability, so
// adding a method means adding a variant rather than growing a string switch.
package payment

import (
	"context"

	"vendo/internal/models"
)

// Outcome is the result of an approved authorization. Processors validate
// and compute; they never mutate machine state. The commit step applies the
// stock and reserve effects from the outcome, which keeps a failed purchase
// a strict no-op.
type Outcome struct {
	Method   models.PaymentMethod
	Tendered float64
	Change   float64
}

// Processor authorizes a payment for a product at the given price. The
// tendered argument is the raw amount the buyer keyed in; card payments
// ignore it. A nil error means approved.
type Processor interface {
	Authorize(ctx context.Context, price float64, tendered string) (*Outcome, error)
}
