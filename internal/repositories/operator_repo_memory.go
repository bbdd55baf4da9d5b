package repositories

import (
	"fmt"
	"sync"

	"vendo/internal/models"

	"github.com/google/uuid"
)

// MemoryOperatorRepository is an in-memory implementation of OperatorRepository.
type MemoryOperatorRepository struct {
	operators map[string]models.Operator // keyed by username
	mu        sync.RWMutex
}

// NewMemoryOperatorRepository creates a new instance of MemoryOperatorRepository.
func NewMemoryOperatorRepository() *MemoryOperatorRepository {
	return &MemoryOperatorRepository{
		operators: make(map[string]models.Operator),
	}
}

// Create adds a new operator account.
func (r *MemoryOperatorRepository) Create(operator *models.Operator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.operators[operator.Username]; ok {
		return fmt.Errorf("operator with username %s already exists", operator.Username)
	}
	if operator.ID == "" {
		operator.ID = uuid.New().String()
	}
	r.operators[operator.Username] = *operator
	return nil
}

// GetByUsername returns an operator by their username.
func (r *MemoryOperatorRepository) GetByUsername(username string) (*models.Operator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	operator, ok := r.operators[username]
	if !ok {
		return nil, fmt.Errorf("operator with username %s not found", username)
	}
	return &operator, nil
}
