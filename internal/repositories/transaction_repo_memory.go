package repositories

import (
	"fmt"
	"sync"

	"vendo/internal/models"
)

// MemoryTransactionRepository is an in-memory implementation of
// TransactionRepository. Transactions are kept in append order.
type MemoryTransactionRepository struct {
	transactions []models.Transaction
	byID         map[string]int
	mu           sync.RWMutex
}

// NewMemoryTransactionRepository creates a new instance of MemoryTransactionRepository.
func NewMemoryTransactionRepository() *MemoryTransactionRepository {
	return &MemoryTransactionRepository{
		byID: make(map[string]int),
	}
}

// Append adds a transaction to the history. Duplicate IDs are rejected.
func (r *MemoryTransactionRepository) Append(tx *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tx.ID == "" {
		return fmt.Errorf("transaction is missing an ID")
	}
	if _, ok := r.byID[tx.ID]; ok {
		return fmt.Errorf("transaction with ID %s already recorded", tx.ID)
	}
	r.byID[tx.ID] = len(r.transactions)
	r.transactions = append(r.transactions, *tx)
	return nil
}

// GetAll returns all transactions, oldest first.
func (r *MemoryTransactionRepository) GetAll() ([]models.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	txList := make([]models.Transaction, len(r.transactions))
	copy(txList, r.transactions)
	return txList, nil
}

// GetByID returns a transaction by its ID.
func (r *MemoryTransactionRepository) GetByID(id string) (*models.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("transaction with ID %s not found", id)
	}
	tx := r.transactions[idx]
	return &tx, nil
}

// Count returns the number of recorded transactions.
func (r *MemoryTransactionRepository) Count() (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.transactions)), nil
}
