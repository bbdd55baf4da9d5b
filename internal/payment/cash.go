package payment

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"vendo/internal/models"
)

// CashProcessor validates a cash payment against the product price and the
// machine's change reserve. It reads the reserve balance for the change
// guard but leaves the recording of the sale to the commit step.
type CashProcessor struct {
	reserve *models.CashReserve
}

// NewCashProcessor creates a cash processor backed by the machine's reserve.
func NewCashProcessor(reserve *models.CashReserve) *CashProcessor {
	return &CashProcessor{reserve: reserve}
}

// Authorize runs the cash validation sequence: parse the tendered amount,
// check it covers the price, and check the reserve can dispense the change.
func (p *CashProcessor) Authorize(ctx context.Context, price float64, tendered string) (*Outcome, error) {
	amount, err := parseAmount(tendered)
	if err != nil {
		return nil, err
	}

	if amount < price {
		return nil, &models.InsufficientFundsError{
			Price:     price,
			Tendered:  amount,
			Shortfall: models.RoundCents(price - amount),
		}
	}

	change := models.RoundCents(amount - price)
	if !p.reserve.CanDispense(change) {
		return nil, &models.InsufficientChangeError{
			Change:    change,
			Available: p.reserve.Balance(),
		}
	}

	return &Outcome{
		Method:   models.MethodCash,
		Tendered: models.RoundCents(amount),
		Change:   change,
	}, nil
}

// parseAmount converts raw buyer input into a non-negative amount.
func parseAmount(s string) (float64, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, fmt.Errorf("%w: empty input", models.ErrInvalidAmount)
	}
	amount, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", models.ErrInvalidAmount, s)
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return 0, fmt.Errorf("%w: %q", models.ErrInvalidAmount, s)
	}
	return amount, nil
}
