package repositories

import (
	"fmt"
	"sync"

	"vendo/internal/models"
)

// MemoryProductRepository is an in-memory implementation of
// ProductRepository. It is the default backend: vending machine state is
// process-local and starts fresh on every boot. Insertion order is kept so
// catalog indices stay stable.
type MemoryProductRepository struct {
	products []models.Product
	nextID   int
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{nextID: 1}
}

// GetAll returns all products in insertion order.
func (r *MemoryProductRepository) GetAll() ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, len(r.products))
	copy(productList, r.products)
	return productList, nil
}

// GetByID returns a product by its ID.
func (r *MemoryProductRepository) GetByID(id int) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.products {
		if p.ID == id {
			product := p
			return &product, nil
		}
	}
	return nil, fmt.Errorf("product with ID %d not found", id)
}

// Create appends a new product to the catalog, assigning an ID when none is set.
func (r *MemoryProductRepository) Create(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == 0 {
		product.ID = r.nextID
	}
	if product.ID >= r.nextID {
		r.nextID = product.ID + 1
	}
	for _, p := range r.products {
		if p.ID == product.ID {
			return fmt.Errorf("product with ID %d already exists", product.ID)
		}
	}
	r.products = append(r.products, *product)
	return nil
}

// UpdateStock sets the stock count of an existing product.
func (r *MemoryProductRepository) UpdateStock(id int, stock int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if stock < 0 {
		return fmt.Errorf("stock for product %d cannot be negative", id)
	}
	for i := range r.products {
		if r.products[i].ID == id {
			r.products[i].Stock = stock
			return nil
		}
	}
	return fmt.Errorf("product with ID %d not found for stock update", id)
}
