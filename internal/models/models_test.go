package models_test

import (
	"errors"
	"testing"

	"vendo/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestProductAvailability(t *testing.T) {
	product := models.Product{ID: 1, Name: "Bottled Water", Price: 12.00, Stock: 2}
	assert.True(t, product.Available())

	assert.NoError(t, product.ConsumeOne())
	assert.NoError(t, product.ConsumeOne())
	assert.Equal(t, 0, product.Stock)
	assert.False(t, product.Available())

	// Consuming an empty slot must fail loudly, not silently no-op.
	err := product.ConsumeOne()
	assert.ErrorIs(t, err, models.ErrOutOfStock)
	assert.Equal(t, 0, product.Stock)
}

func TestParsePaymentMethod(t *testing.T) {
	method, err := models.ParsePaymentMethod("cash")
	assert.NoError(t, err)
	assert.Equal(t, models.MethodCash, method)

	method, err = models.ParsePaymentMethod(" CARD ")
	assert.NoError(t, err)
	assert.Equal(t, models.MethodCard, method)

	_, err = models.ParsePaymentMethod("bitcoin")
	assert.ErrorIs(t, err, models.ErrUnknownPaymentMethod)

	_, err = models.ParsePaymentMethod("")
	assert.ErrorIs(t, err, models.ErrUnknownPaymentMethod)
}

func TestNewTransactionSnapshotsProduct(t *testing.T) {
	product := models.Product{ID: 3, Name: "Iced Coffee", Price: 35.00, Stock: 4}

	tx := models.NewTransaction(&product, models.MethodCash, models.StatusApproved, 5.0)
	assert.NotEmpty(t, tx.ID)
	assert.Equal(t, 3, tx.ProductID)
	assert.Equal(t, "Iced Coffee", tx.ProductName)
	assert.Equal(t, 35.00, tx.UnitPrice)
	assert.Equal(t, 35.00, tx.Amount)
	assert.Equal(t, models.StatusApproved, tx.Status)
	assert.Equal(t, 5.00, tx.ChangeGiven)
	assert.False(t, tx.CreatedAt.IsZero())

	// Later catalog edits must not leak into the recorded snapshot.
	product.Price = 40.00
	product.Name = "Iced Coffee XL"
	assert.Equal(t, "Iced Coffee", tx.ProductName)
	assert.Equal(t, 35.00, tx.UnitPrice)
}

func TestCashReserveLedger(t *testing.T) {
	reserve := models.NewCashReserve(100.0)
	assert.Equal(t, 100.0, reserve.Balance())
	assert.True(t, reserve.CanDispense(100.0))
	assert.False(t, reserve.CanDispense(100.01))

	// A 20.00 bill for a 12.00 product: 20 in, 8 out, net +12.
	reserve.RecordSale(20.00, 8.00, "tx-1")
	assert.Equal(t, 112.0, reserve.Balance())

	entries := reserve.Entries()
	assert.Len(t, entries, 2)
	assert.Equal(t, models.CashIn, entries[0].Direction)
	assert.Equal(t, 20.00, entries[0].Amount)
	assert.Equal(t, models.CashOut, entries[1].Direction)
	assert.Equal(t, 8.00, entries[1].Amount)
	assert.Equal(t, "tx-1", entries[1].TransactionID)

	// Exact tender records only the inflow.
	reserve.RecordSale(15.50, 0, "tx-2")
	assert.Equal(t, 127.5, reserve.Balance())
	assert.Len(t, reserve.Entries(), 3)
}

func TestNewCashReserveClampsNegativeOpening(t *testing.T) {
	reserve := models.NewCashReserve(-5)
	assert.Equal(t, 0.0, reserve.Balance())
}

func TestPurchaseErrorMatching(t *testing.T) {
	var err error = &models.InsufficientFundsError{Price: 12.00, Tendered: 10.00, Shortfall: 2.00}
	assert.ErrorIs(t, err, models.ErrInsufficientFunds)

	var fundsErr *models.InsufficientFundsError
	assert.True(t, errors.As(err, &fundsErr))
	assert.Equal(t, 2.00, fundsErr.Shortfall)
	assert.Contains(t, err.Error(), "short 2.00")

	err = &models.InsufficientChangeError{Change: 8.00, Available: 0}
	assert.ErrorIs(t, err, models.ErrInsufficientChange)

	var changeErr *models.InsufficientChangeError
	assert.True(t, errors.As(err, &changeErr))
	assert.Equal(t, 8.00, changeErr.Change)
}

func TestRoundCents(t *testing.T) {
	assert.Equal(t, 2.00, models.RoundCents(12.00-10.00))
	assert.Equal(t, 0.1, models.RoundCents(0.3-0.2))
	assert.Equal(t, 15.5, models.RoundCents(15.499999999))
}
