package repositories

import (
	"fmt"

	"vendo/internal/models"

	"gorm.io/gorm"
)

// GORMTransactionRepository is a GORM implementation of TransactionRepository.
type GORMTransactionRepository struct {
	db *gorm.DB
}

// NewGORMTransactionRepository creates a new instance of GORMTransactionRepository.
func NewGORMTransactionRepository(db *gorm.DB) *GORMTransactionRepository {
	return &GORMTransactionRepository{
		db: db,
	}
}

// Append inserts a transaction. The primary key makes duplicate IDs fail.
func (r *GORMTransactionRepository) Append(tx *models.Transaction) error {
	if tx.ID == "" {
		return fmt.Errorf("transaction is missing an ID")
	}
	if err := r.db.Create(tx).Error; err != nil {
		return fmt.Errorf("failed to append transaction %s: %w", tx.ID, err)
	}
	return nil
}

// GetAll retrieves all transactions, oldest first.
func (r *GORMTransactionRepository) GetAll() ([]models.Transaction, error) {
	var transactions []models.Transaction
	if err := r.db.Order("created_at ASC").Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("failed to get all transactions: %w", err)
	}
	return transactions, nil
}

// GetByID retrieves a single transaction by its ID from the database.
func (r *GORMTransactionRepository) GetByID(id string) (*models.Transaction, error) {
	var tx models.Transaction
	if err := r.db.First(&tx, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("transaction with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get transaction by ID %s: %w", id, err)
	}
	return &tx, nil
}

// Count returns the number of recorded transactions.
func (r *GORMTransactionRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.Transaction{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}
