package repositories

import (
	"vendo/internal/models"
)

// OperatorRepository defines the interface for operator account data access.
type OperatorRepository interface {
	Create(operator *models.Operator) error
	GetByUsername(username string) (*models.Operator, error)
}
