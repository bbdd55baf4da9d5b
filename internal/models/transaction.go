package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// PaymentMethod is the closed set of ways a purchase can be paid.
type PaymentMethod string

const (
	MethodCash PaymentMethod = "cash"
	MethodCard PaymentMethod = "card"
)

// ParsePaymentMethod maps user input onto a PaymentMethod. Unrecognized
// values return ErrUnknownPaymentMethod.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(strings.ToLower(strings.TrimSpace(s))) {
	case MethodCash:
		return MethodCash, nil
	case MethodCard:
		return MethodCard, nil
	default:
		return "", ErrUnknownPaymentMethod
	}
}

// TransactionStatus is the outcome of a purchase attempt.
type TransactionStatus string

const (
	StatusApproved TransactionStatus = "approved"
	StatusDeclined TransactionStatus = "declined"
)

// Transaction is an immutable record of a purchase attempt. It snapshots the
// product's id, name, and price at purchase time so later catalog edits do
// not rewrite history. Only approved transactions enter the machine's
// history; declined ones exist solely as published vend events.
type Transaction struct {
	ID          string            `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProductID   int               `json:"product_id"`
	ProductName string            `json:"product_name"`
	UnitPrice   float64           `json:"unit_price"`
	Amount      float64           `json:"amount"`
	Method      PaymentMethod     `json:"method" gorm:"type:varchar(10)"`
	Status      TransactionStatus `json:"status" gorm:"type:varchar(10)"`
	ChangeGiven float64           `json:"change_given"`
	CreatedAt   time.Time         `json:"created_at"`
}

// NewTransaction builds a transaction with a fresh unique id and the current
// time. Status is set by the caller from the payment outcome.
func NewTransaction(p *Product, method PaymentMethod, status TransactionStatus, changeGiven float64) Transaction {
	return Transaction{
		ID:          uuid.New().String(),
		ProductID:   p.ID,
		ProductName: p.Name,
		UnitPrice:   p.Price,
		Amount:      p.Price,
		Method:      method,
		Status:      status,
		ChangeGiven: RoundCents(changeGiven),
		CreatedAt:   time.Now(),
	}
}
