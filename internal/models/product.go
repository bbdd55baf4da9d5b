package models

import (
	"math"

	"gorm.io/gorm"
)

// Product represents an item slot in the vending machine catalog.
type Product struct {
	ID         int     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name       string  `json:"name" validate:"required,min=2,max=100"`
	Price      float64 `json:"price" validate:"required,gt=0"`
	Stock      int     `json:"stock" validate:"gte=0"`
	gorm.Model         // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// Available reports whether the product can be vended right now.
func (p *Product) Available() bool {
	return p.Stock > 0
}

// ConsumeOne decrements the stock by exactly one unit. Callers must check
// Available first; consuming an empty slot returns ErrOutOfStock instead of
// silently doing nothing, so caller bugs are not masked.
func (p *Product) ConsumeOne() error {
	if !p.Available() {
		return ErrOutOfStock
	}
	p.Stock--
	return nil
}

// RoundCents rounds a monetary amount to two decimal places. All change and
// shortfall arithmetic goes through this so float noise never reaches a
// receipt or a ledger entry.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
