package repositories

import (
	"vendo/internal/models"
)

// ProductRepository defines the interface for catalog data access. GetAll
// must return products in a stable order, because buyers select by 1-based
// index into that sequence.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id int) (*models.Product, error)
	Create(product *models.Product) error
	UpdateStock(id int, stock int) error
}
