package repositories

import (
	"vendo/internal/models"
)

// TransactionRepository defines the interface for the machine's transaction
// history. The history is append-only: there is deliberately no update or
// delete, so the audit trail cannot be rewritten.
type TransactionRepository interface {
	Append(tx *models.Transaction) error
	GetAll() ([]models.Transaction, error)
	GetByID(id string) (*models.Transaction, error)
	Count() (int64, error)
}
