package handlers

import (
	"errors"
	"log"
	"strconv"

	"vendo/internal/models"
	"vendo/internal/services"

	"github.com/gofiber/fiber/v2"
)

// MachineHandler exposes the vending machine over HTTP: the buyer-facing
// catalog and purchase endpoints, and the operator endpoints for history,
// reserve, and catalog maintenance.
type MachineHandler struct {
	service *services.MachineService
}

// NewMachineHandler creates a new MachineHandler.
func NewMachineHandler(service *services.MachineService) *MachineHandler {
	return &MachineHandler{
		service: service,
	}
}

// RegisterPublicRoutes registers the buyer-facing routes.
func (h *MachineHandler) RegisterPublicRoutes(router fiber.Router) {
	router.Get("/catalog", h.HandleCatalog)
	router.Post("/purchases", h.HandlePurchase)
}

// RegisterOperatorRoutes registers the routes guarded by operator auth.
func (h *MachineHandler) RegisterOperatorRoutes(router fiber.Router) {
	router.Get("/transactions", h.HandleTransactions)
	router.Get("/reserve", h.HandleReserve)
	router.Post("/products", h.HandleAddProduct)
	router.Post("/products/:id/restock", h.HandleRestock)
}

// HandleCatalog returns the catalog view: selection number, name, price,
// and availability per product.
func (h *MachineHandler) HandleCatalog(c *fiber.Ctx) error {
	entries, err := h.service.CatalogView()
	if err != nil {
		log.Printf("Error building catalog view: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not load catalog",
			"error":   err.Error(),
		})
	}
	return c.JSON(entries)
}

// HandlePurchase runs one purchase attempt and maps each purchase error to
// a distinct status so clients can drive retry prompts.
func (h *MachineHandler) HandlePurchase(c *fiber.Ctx) error {
	var req services.PurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing purchase request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	receipt, err := h.service.Purchase(c.Context(), req)
	if err != nil {
		return h.respondPurchaseError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(receipt)
}

// respondPurchaseError translates the purchase error taxonomy into HTTP
// responses. Every branch reports the specific condition, never a generic
// failure.
func (h *MachineHandler) respondPurchaseError(c *fiber.Ctx, err error) error {
	var fundsErr *models.InsufficientFundsError
	if errors.As(err, &fundsErr) {
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
			"message":   "Insufficient funds",
			"error":     "insufficient_funds",
			"shortfall": fundsErr.Shortfall,
		})
	}

	var changeErr *models.InsufficientChangeError
	if errors.As(err, &changeErr) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message":     "Machine cannot make change; try exact amount or another method",
			"error":       "insufficient_change",
			"change_owed": changeErr.Change,
		})
	}

	switch {
	case errors.Is(err, models.ErrInvalidSelection):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "That product does not exist",
			"error":   "invalid_selection",
		})
	case errors.Is(err, models.ErrOutOfStock):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Product is out of stock",
			"error":   "out_of_stock",
		})
	case errors.Is(err, models.ErrUnknownPaymentMethod):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Payment method must be 'cash' or 'card'",
			"error":   "unknown_payment_method",
		})
	case errors.Is(err, models.ErrInvalidAmount):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Tendered amount must be a valid non-negative number",
			"error":   "invalid_amount",
		})
	default:
		log.Printf("Unexpected purchase error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not complete purchase",
			"error":   err.Error(),
		})
	}
}

// HandleTransactions returns the machine's transaction history.
func (h *MachineHandler) HandleTransactions(c *fiber.Ctx) error {
	transactions, err := h.service.History()
	if err != nil {
		log.Printf("Error getting transaction history: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve transactions",
			"error":   err.Error(),
		})
	}
	return c.JSON(transactions)
}

// HandleReserve reports the till balance and its ledger.
func (h *MachineHandler) HandleReserve(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"balance": h.service.ReserveBalance(),
		"entries": h.service.ReserveEntries(),
	})
}

// HandleAddProduct appends a new product to the catalog.
func (h *MachineHandler) HandleAddProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		log.Printf("Error parsing product body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.service.AddProduct(&product); err != nil {
		log.Printf("Error adding product: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Could not add product",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleRestock increases a product's stock.
func (h *MachineHandler) HandleRestock(c *fiber.Ctx) error {
	productID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Product id must be an integer",
			"error":   err.Error(),
		})
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing restock body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.service.Restock(productID, req.Quantity); err != nil {
		log.Printf("Error restocking product %d: %v", productID, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Could not restock product",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Product restocked successfully",
	})
}
