package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"vendo/internal/handlers"
	"vendo/internal/middleware"
	"vendo/internal/models"
	"vendo/internal/repositories"
	"vendo/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupApp builds a Fiber app over an in-memory SQLite database with all
// handlers wired, a seeded catalog, and a provisioned operator. Each test
// gets its own named in-memory database so state does not leak between them.
func setupApp(dbName string, openingReserve float64) (*fiber.App, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", dbName)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to in-memory database: %w", err)
	}

	if err := db.AutoMigrate(&models.Product{}, &models.Transaction{}, &models.Operator{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	productRepo := repositories.NewGORMProductRepository(db)
	txRepo := repositories.NewGORMTransactionRepository(db)
	operatorRepo := repositories.NewGORMOperatorRepository(db)

	machineService := services.NewMachineService(services.MachineConfig{
		MachineID:      "VM-TEST",
		Location:       "Test bench",
		OpeningReserve: openingReserve,
		CardDelay:      0,
	}, productRepo, txRepo, nil) // nil for RabbitMQ client

	authService := services.NewAuthService(operatorRepo, "test_jwt_secret")
	if err := authService.SeedOperator("opuser", "op-secret-1"); err != nil {
		return nil, fmt.Errorf("failed to seed operator: %w", err)
	}

	machineHandler := handlers.NewMachineHandler(machineService)
	authHandler := handlers.NewAuthHandler(authService)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")
	machineHandler.RegisterPublicRoutes(apiV1)
	authHandler.RegisterRoutes(apiV1)
	machineHandler.RegisterOperatorRoutes(apiV1.Group("", middleware.OperatorRequired(authService)))

	seedCatalogForTest(productRepo)

	return app, nil
}

// seedCatalogForTest populates the catalog for tests.
func seedCatalogForTest(repo repositories.ProductRepository) {
	products := []models.Product{
		{Name: "Bottled Water", Price: 12.00, Stock: 10},
		{Name: "Cereal Bar", Price: 22.00, Stock: 0},
	}
	for i := range products {
		if err := repo.Create(&products[i]); err != nil {
			log.Printf("Failed to seed product %s: %v", products[i].Name, err)
		}
	}
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}, token string) *http.Response {
	t.Helper()
	jsonBody, err := json.Marshal(body)
	assert.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1) // -1 for no timeout
	assert.NoError(t, err)
	return resp
}

func loginOperator(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp := postJSON(t, app, "/api/v1/auth/login", map[string]string{
		"username": "opuser",
		"password": "op-secret-1",
	}, "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var loginResp map[string]string
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&loginResp))
	assert.NotEmpty(t, loginResp["token"])
	return loginResp["token"]
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func TestCatalogIsPublic(t *testing.T) {
	app, err := setupApp("catalog_public", 100)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog", nil)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var entries []services.CatalogEntry
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	resp.Body.Close()

	assert.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Index)
	assert.Equal(t, "Bottled Water", entries[0].Name)
	assert.True(t, entries[0].Available)
	assert.False(t, entries[1].Available)
}

func TestPurchaseEndpoint(t *testing.T) {
	app, err := setupApp("purchase_flow", 100)
	assert.NoError(t, err)

	// Card purchase succeeds.
	resp := postJSON(t, app, "/api/v1/purchases", map[string]interface{}{
		"product_index": 1,
		"method":        "card",
	}, "")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var receipt services.Receipt
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&receipt))
	resp.Body.Close()
	assert.NotEmpty(t, receipt.TransactionID)
	assert.Equal(t, "Bottled Water", receipt.ProductName)
	assert.Equal(t, 12.00, receipt.Amount)

	// Cash purchase with change.
	resp = postJSON(t, app, "/api/v1/purchases", map[string]interface{}{
		"product_index": 1,
		"method":        "cash",
		"tendered":      "20.00",
	}, "")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&receipt))
	resp.Body.Close()
	assert.Equal(t, 8.00, receipt.ChangeGiven)
}

func TestPurchaseEndpointErrorMapping(t *testing.T) {
	app, err := setupApp("purchase_errors", 0)
	assert.NoError(t, err)

	cases := []struct {
		name       string
		body       map[string]interface{}
		wantStatus int
		wantError  string
	}{
		{
			name:       "invalid selection",
			body:       map[string]interface{}{"product_index": 99, "method": "card"},
			wantStatus: http.StatusNotFound,
			wantError:  "invalid_selection",
		},
		{
			name:       "out of stock",
			body:       map[string]interface{}{"product_index": 2, "method": "card"},
			wantStatus: http.StatusConflict,
			wantError:  "out_of_stock",
		},
		{
			name:       "unknown method",
			body:       map[string]interface{}{"product_index": 1, "method": "bitcoin"},
			wantStatus: http.StatusBadRequest,
			wantError:  "unknown_payment_method",
		},
		{
			name:       "invalid amount",
			body:       map[string]interface{}{"product_index": 1, "method": "cash", "tendered": "abc"},
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid_amount",
		},
		{
			name:       "insufficient funds",
			body:       map[string]interface{}{"product_index": 1, "method": "cash", "tendered": "10.00"},
			wantStatus: http.StatusPaymentRequired,
			wantError:  "insufficient_funds",
		},
		{
			name:       "insufficient change",
			body:       map[string]interface{}{"product_index": 1, "method": "cash", "tendered": "20.00"},
			wantStatus: http.StatusConflict,
			wantError:  "insufficient_change",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, app, "/api/v1/purchases", tc.body, "")
			defer resp.Body.Close()
			assert.Equal(t, tc.wantStatus, resp.StatusCode)

			var errResp map[string]interface{}
			assert.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
			assert.Equal(t, tc.wantError, errResp["error"])
		})
	}

	// The shortfall is reported for retry prompts.
	resp := postJSON(t, app, "/api/v1/purchases", map[string]interface{}{
		"product_index": 1, "method": "cash", "tendered": "10.00",
	}, "")
	defer resp.Body.Close()
	var errResp map[string]interface{}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	assert.Equal(t, 2.00, errResp["shortfall"])
}

func TestOperatorEndpointsRequireAuth(t *testing.T) {
	app, err := setupApp("operator_auth", 100)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, app, "/api/v1/products/1/restock", map[string]int{"quantity": 5}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestOperatorFlow(t *testing.T) {
	app, err := setupApp("operator_flow", 100)
	assert.NoError(t, err)
	token := loginOperator(t, app)

	// A purchase shows up in the history.
	resp := postJSON(t, app, "/api/v1/purchases", map[string]interface{}{
		"product_index": 1,
		"method":        "cash",
		"tendered":      "12.00",
	}, "")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var transactions []models.Transaction
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&transactions))
	resp.Body.Close()
	assert.Len(t, transactions, 1)
	assert.Equal(t, models.StatusApproved, transactions[0].Status)

	// The reserve reflects the sale.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/reserve", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var reserveResp map[string]interface{}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&reserveResp))
	resp.Body.Close()
	assert.Equal(t, 112.0, reserveResp["balance"])

	// Restocking the empty slot makes it purchasable.
	resp = postJSON(t, app, "/api/v1/products/2/restock", map[string]int{"quantity": 3}, token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, app, "/api/v1/purchases", map[string]interface{}{
		"product_index": 2,
		"method":        "card",
	}, "")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// Adding a product extends the catalog.
	resp = postJSON(t, app, "/api/v1/products", map[string]interface{}{
		"name":  "Sparkling Water",
		"price": 14.00,
		"stock": 6,
	}, token)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	reqCatalog := httptest.NewRequest(http.MethodGet, "/api/v1/catalog", nil)
	resp, err = app.Test(reqCatalog, -1)
	assert.NoError(t, err)
	var entries []services.CatalogEntry
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	resp.Body.Close()
	assert.Len(t, entries, 3)
	assert.Equal(t, "Sparkling Water", entries[2].Name)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	app, err := setupApp("login_bad", 100)
	assert.NoError(t, err)

	resp := postJSON(t, app, "/api/v1/auth/login", map[string]string{
		"username": "opuser",
		"password": "wrong",
	}, "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
