package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"vendo/internal/models"
	"vendo/internal/payment"
	"vendo/internal/repositories"
	"vendo/pkg/rabbitmq"

	"github.com/go-playground/validator/v10"
)

// MachineConfig identifies the machine and sets its initial till and the
// simulated card-processing delay. CardSleep is injectable so tests do not
// wait on the wall clock; nil means a real sleep.
type MachineConfig struct {
	MachineID      string
	Location       string
	OpeningReserve float64
	CardDelay      time.Duration
	CardSleep      func(time.Duration)
}

// CatalogEntry is one row of the buyer-facing catalog view. Index is the
// 1-based selection number buyers key in.
type CatalogEntry struct {
	Index     int     `json:"index"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Available bool    `json:"available"`
}

// PurchaseRequest is the structured input for one purchase attempt. Tendered
// is the raw amount string the buyer keyed in; it is only read for cash.
type PurchaseRequest struct {
	ProductIndex int    `json:"product_index"`
	Method       string `json:"method"`
	Tendered     string `json:"tendered"`
}

// Receipt summarizes an approved purchase for display.
type Receipt struct {
	TransactionID string               `json:"transaction_id"`
	ProductName   string               `json:"product_name"`
	Amount        float64              `json:"amount"`
	Method        models.PaymentMethod `json:"method"`
	ChangeGiven   float64              `json:"change_given"`
	CreatedAt     time.Time            `json:"created_at"`
}

// MachineService orchestrates the purchase workflow for a single vending
// machine: it owns the catalog, the transaction history, and the cash
// reserve, and delegates payment to the per-method processors.
type MachineService struct {
	machineID   string
	location    string
	productRepo repositories.ProductRepository
	txRepo      repositories.TransactionRepository
	reserve     *models.CashReserve
	processors  map[models.PaymentMethod]payment.Processor
	mqClient    *rabbitmq.Client // may be nil when the broker is disabled
	validate    *validator.Validate

	// mu serializes the select-to-commit sequence. The machine itself is a
	// single terminal, but the HTTP surface can carry concurrent requests,
	// and stock/reserve must never go negative under them.
	mu sync.Mutex
}

// NewMachineService creates a MachineService wired to its repositories and
// message bus client.
func NewMachineService(cfg MachineConfig, productRepo repositories.ProductRepository, txRepo repositories.TransactionRepository, mqClient *rabbitmq.Client) *MachineService {
	reserve := models.NewCashReserve(cfg.OpeningReserve)
	return &MachineService{
		machineID:   cfg.MachineID,
		location:    cfg.Location,
		productRepo: productRepo,
		txRepo:      txRepo,
		reserve:     reserve,
		processors: map[models.PaymentMethod]payment.Processor{
			models.MethodCash: payment.NewCashProcessor(reserve),
			models.MethodCard: payment.NewCardProcessor(cfg.CardDelay, cfg.CardSleep),
		},
		mqClient: mqClient,
		validate: validator.New(),
	}
}

// CatalogView returns the buyer-facing catalog: selection number, name,
// price, and availability, in stable order. Pure read.
func (s *MachineService) CatalogView() ([]CatalogEntry, error) {
	products, err := s.productRepo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	entries := make([]CatalogEntry, 0, len(products))
	for i, p := range products {
		entries = append(entries, CatalogEntry{
			Index:     i + 1,
			Name:      p.Name,
			Price:     p.Price,
			Available: p.Available(),
		})
	}
	return entries, nil
}

// Purchase runs one purchase attempt start to finish: select, check
// availability, choose method, authorize payment, commit. Any failure aborts
// with a typed error and zero state change; only an approved payment
// decrements stock, appends history, and (for cash) moves the reserve.
func (s *MachineService) Purchase(ctx context.Context, req PurchaseRequest) (*Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// SelectProduct
	products, err := s.productRepo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	if req.ProductIndex < 1 || req.ProductIndex > len(products) {
		return nil, fmt.Errorf("%w: index %d", models.ErrInvalidSelection, req.ProductIndex)
	}
	product := products[req.ProductIndex-1]

	// CheckAvailability
	if !product.Available() {
		return nil, fmt.Errorf("%w: %s", models.ErrOutOfStock, product.Name)
	}

	// ChooseMethod
	method, err := models.ParsePaymentMethod(req.Method)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownPaymentMethod, req.Method)
	}
	processor, ok := s.processors[method]
	if !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownPaymentMethod, req.Method)
	}

	// ProcessPayment
	outcome, err := processor.Authorize(ctx, product.Price, req.Tendered)
	if err != nil {
		declined := models.NewTransaction(&product, method, models.StatusDeclined, 0)
		s.publishVendEvent(&declined, err.Error())
		return nil, err
	}

	// Commit. Stock first, then history, then the reserve ledger; the
	// in-memory ledger write cannot fail, so a history failure can still
	// roll the stock back and leave the machine untouched.
	if err := product.ConsumeOne(); err != nil {
		return nil, err
	}
	if err := s.productRepo.UpdateStock(product.ID, product.Stock); err != nil {
		return nil, fmt.Errorf("failed to commit stock for %s: %w", product.Name, err)
	}

	tx := models.NewTransaction(&product, method, models.StatusApproved, outcome.Change)
	if err := s.txRepo.Append(&tx); err != nil {
		if restoreErr := s.productRepo.UpdateStock(product.ID, product.Stock+1); restoreErr != nil {
			log.Printf("Failed to restore stock for product %d after history error: %v", product.ID, restoreErr)
		}
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}

	if outcome.Method == models.MethodCash {
		s.reserve.RecordSale(outcome.Tendered, outcome.Change, tx.ID)
	}

	s.publishVendEvent(&tx, "")

	return &Receipt{
		TransactionID: tx.ID,
		ProductName:   tx.ProductName,
		Amount:        tx.Amount,
		Method:        tx.Method,
		ChangeGiven:   tx.ChangeGiven,
		CreatedAt:     tx.CreatedAt,
	}, nil
}

// History returns the machine's approved transactions, oldest first.
func (s *MachineService) History() ([]models.Transaction, error) {
	return s.txRepo.GetAll()
}

// ReserveBalance returns the cash currently available to make change.
func (s *MachineService) ReserveBalance() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reserve.Balance()
}

// ReserveEntries returns the cash ledger, oldest first.
func (s *MachineService) ReserveEntries() []models.CashEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reserve.Entries()
}

// AddProduct validates and appends a product to the catalog.
func (s *MachineService) AddProduct(product *models.Product) error {
	if err := s.validate.Struct(product); err != nil {
		return fmt.Errorf("invalid product: %w", err)
	}
	return s.productRepo.Create(product)
}

// Restock increases a product's stock by the given quantity.
func (s *MachineService) Restock(productID, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("restock quantity must be positive, got %d", quantity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return fmt.Errorf("cannot restock: %w", err)
	}
	if err := s.productRepo.UpdateStock(product.ID, product.Stock+quantity); err != nil {
		return fmt.Errorf("failed to restock product %d: %w", productID, err)
	}
	return nil
}

// publishVendEvent pushes one purchase-attempt outcome to the message bus.
// Publishing is best effort: the purchase result never depends on the broker.
func (s *MachineService) publishVendEvent(tx *models.Transaction, reason string) {
	if s.mqClient == nil {
		return
	}

	event := map[string]interface{}{
		"machine_id":     s.machineID,
		"location":       s.location,
		"transaction_id": tx.ID,
		"product_id":     tx.ProductID,
		"product_name":   tx.ProductName,
		"amount":         tx.Amount,
		"method":         tx.Method,
		"status":         tx.Status,
		"change_given":   tx.ChangeGiven,
		"timestamp":      tx.CreatedAt,
	}
	if reason != "" {
		event["reason"] = reason
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal vend event for transaction %s: %v", tx.ID, err)
		return
	}
	if err := s.mqClient.PublishVendEvent(body); err != nil {
		log.Printf("Warning: Failed to publish vend event for transaction %s: %v", tx.ID, err)
	}
}
