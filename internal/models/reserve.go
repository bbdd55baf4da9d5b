package models

import "time"

// CashDirection marks which way money moved through the till.
type CashDirection string

const (
	CashIn  CashDirection = "IN"  // bill tendered by the buyer
	CashOut CashDirection = "OUT" // change dispensed back
)

// CashEntry is one movement of cash through the machine. Entries are
// append-only: corrections would be new entries, never edits.
type CashEntry struct {
	Direction     CashDirection `json:"direction"`
	Amount        float64       `json:"amount"`
	TransactionID string        `json:"transaction_id"`
	CreatedAt     time.Time     `json:"created_at"`
}

// CashReserve is the machine's till: an opening float plus the ledger of
// cash movements. The balance is always computed by replaying the entries,
// so there is no separate counter that can drift out of sync. A cash sale
// records the tendered bill coming in and the change going out; the net
// effect per sale is +price.
type CashReserve struct {
	opening float64
	entries []CashEntry
}

// NewCashReserve creates a reserve with the given opening float. A negative
// opening is treated as an empty till.
func NewCashReserve(opening float64) *CashReserve {
	if opening < 0 {
		opening = 0
	}
	return &CashReserve{opening: RoundCents(opening)}
}

// Balance returns the cash currently usable to make change.
func (r *CashReserve) Balance() float64 {
	balance := r.opening
	for _, e := range r.entries {
		switch e.Direction {
		case CashIn:
			balance += e.Amount
		case CashOut:
			balance -= e.Amount
		}
	}
	return RoundCents(balance)
}

// CanDispense reports whether the till holds enough cash to pay out the
// given change.
func (r *CashReserve) CanDispense(change float64) bool {
	return RoundCents(change) <= r.Balance()
}

// RecordSale appends the ledger entries for one approved cash sale: the
// tendered amount in, and the change out when any is owed. It must only be
// called after CanDispense approved the change.
func (r *CashReserve) RecordSale(tendered, change float64, transactionID string) {
	now := time.Now()
	r.entries = append(r.entries, CashEntry{
		Direction:     CashIn,
		Amount:        RoundCents(tendered),
		TransactionID: transactionID,
		CreatedAt:     now,
	})
	if change > 0 {
		r.entries = append(r.entries, CashEntry{
			Direction:     CashOut,
			Amount:        RoundCents(change),
			TransactionID: transactionID,
			CreatedAt:     now,
		})
	}
}

// Entries returns a copy of the ledger, oldest first.
func (r *CashReserve) Entries() []CashEntry {
	out := make([]CashEntry, len(r.entries))
	copy(out, r.entries)
	return out
}
