package repositories

import (
	"fmt"

	"vendo/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOperatorRepository is a GORM implementation of OperatorRepository.
type GORMOperatorRepository struct {
	db *gorm.DB
}

// NewGORMOperatorRepository creates a new instance of GORMOperatorRepository.
func NewGORMOperatorRepository(db *gorm.DB) *GORMOperatorRepository {
	return &GORMOperatorRepository{
		db: db,
	}
}

// Create creates a new operator in the database.
func (r *GORMOperatorRepository) Create(operator *models.Operator) error {
	if operator.ID == "" {
		operator.ID = uuid.New().String()
	}
	if err := r.db.Create(operator).Error; err != nil {
		return fmt.Errorf("failed to create operator: %w", err)
	}
	return nil
}

// GetByUsername retrieves an operator by their username from the database.
func (r *GORMOperatorRepository) GetByUsername(username string) (*models.Operator, error) {
	var operator models.Operator
	if err := r.db.First(&operator, "username = ?", username).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("operator with username %s not found", username)
		}
		return nil, fmt.Errorf("failed to get operator by username %s: %w", username, err)
	}
	return &operator, nil
}
