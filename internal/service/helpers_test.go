package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"levelup-shop/internal/client"
	"levelup-shop/internal/model"
)

// newTestDB opens an isolated in-memory sqlite database. A single pooled
// connection keeps the database alive for the whole test and serializes
// writes the way a row-locking store would.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&model.Product{},
		&model.Cart{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
	))

	return db
}

func seedProduct(t *testing.T, db *gorm.DB, code string, price string, stock int) *model.Product {
	t.Helper()

	product := &model.Product{
		Code:   code,
		Name:   "Product " + code,
		Price:  decimal.RequireFromString(price),
		Stock:  stock,
		Active: true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func productStock(t *testing.T, db *gorm.DB, productID uint) int {
	t.Helper()

	var product model.Product
	require.NoError(t, db.First(&product, productID).Error)
	return product.Stock
}

// fakeWebpay stands in for the gateway; it records calls so tests can assert
// how often the commit operation actually ran.
type fakeWebpay struct {
	createResp  *client.CreateTransactionResponse
	createErr   error
	commitResp  *client.TransactionResult
	commitErr   error
	statusResp  *client.TransactionResult
	statusErr   error
	createCalls int
	commitCalls int
	statusCalls int
}

func (f *fakeWebpay) CreateTransaction(_ context.Context, buyOrder, sessionID string, amount decimal.Decimal, returnURL string) (*client.CreateTransactionResponse, error) {
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createResp, nil
}

func (f *fakeWebpay) CommitTransaction(_ context.Context, token string) (*client.TransactionResult, error) {
	f.commitCalls++
	if f.commitErr != nil {
		return nil, f.commitErr
	}
	return f.commitResp, nil
}

func (f *fakeWebpay) TransactionStatus(_ context.Context, token string) (*client.TransactionResult, error) {
	f.statusCalls++
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return f.statusResp, nil
}

func authorizedResult(buyOrder, authCode string, amount string) *client.TransactionResult {
	return &client.TransactionResult{
		Status:            client.StatusAuthorized,
		BuyOrder:          buyOrder,
		SessionID:         "SESSION-test",
		Amount:            decimal.RequireFromString(amount),
		AuthorizationCode: authCode,
		PaymentTypeCode:   "VN",
		ResponseCode:      0,
	}
}
