package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"levelup-shop/internal/apperr"
	"levelup-shop/internal/client"
	"levelup-shop/internal/model"
	"levelup-shop/internal/repository"
)

type paymentFixture struct {
	db       *gorm.DB
	carts    CartService
	orders   OrderService
	payments PaymentService
	gateway  *fakeWebpay
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()

	db := newTestDB(t)
	productRepo := repository.NewProductRepository(db)
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	stock := NewStockService(db, productRepo)
	carts := NewCartService(cartRepo, productRepo, stock)
	orders := NewOrderService(db, orderRepo, cartRepo, productRepo, stock, false)

	gateway := &fakeWebpay{
		createResp: &client.CreateTransactionResponse{
			Token: "tok-abc123",
			URL:   "https://webpay.example/init",
		},
	}

	return &paymentFixture{
		db:       db,
		carts:    carts,
		orders:   orders,
		payments: NewPaymentService(gateway, orderRepo, orders, "https://shop.example/api/v1/payments/confirm", zap.NewNop()),
		gateway:  gateway,
	}
}

func (f *paymentFixture) checkout(t *testing.T, customerID uint, productID uint, quantity int) uint {
	t.Helper()

	_, err := f.carts.AddItem(context.Background(), customerID, productID, quantity)
	require.NoError(t, err)
	order, err := f.orders.CreateFromCart(context.Background(), customerID, testAddress)
	require.NoError(t, err)
	return order.ID
}

func TestInitiatePayment(t *testing.T) {
	f := newPaymentFixture(t)
	product := seedProduct(t, f.db, "P1", "10.00", 5)
	orderID := f.checkout(t, 1, product.ID, 3)

	resp, err := f.payments.Initiate(context.Background(), orderID, 1)
	require.NoError(t, err)
	require.Equal(t, "tok-abc123", resp.Token)
	require.Equal(t, "https://webpay.example/init", resp.RedirectURL)
	require.Equal(t, 1, f.gateway.createCalls)

	var order model.Order
	require.NoError(t, f.db.First(&order, orderID).Error)
	require.Equal(t, model.OrderStatePending, order.State)
	require.NotNil(t, order.Token)
	require.Equal(t, "tok-abc123", *order.Token)
	require.NotNil(t, order.BuyOrder)
	require.Contains(t, *order.BuyOrder, "ORDER-")
}

func TestInitiatePaymentChecksOwnershipAndState(t *testing.T) {
	f := newPaymentFixture(t)
	product := seedProduct(t, f.db, "P1", "10.00", 5)
	orderID := f.checkout(t, 1, product.ID, 1)

	_, err := f.payments.Initiate(context.Background(), orderID, 2)
	require.True(t, apperr.IsKind(err, apperr.KindBadRequest))

	_, err = f.payments.Initiate(context.Background(), 999, 1)
	require.True(t, apperr.IsKind(err, apperr.KindNotFound))

	_, err = f.orders.ChangeState(context.Background(), orderID, model.OrderStateCancelled)
	require.NoError(t, err)
	_, err = f.payments.Initiate(context.Background(), orderID, 1)
	require.True(t, apperr.IsKind(err, apperr.KindBadRequest))
}

func TestInitiatePaymentGatewayFailure(t *testing.T) {
	f := newPaymentFixture(t)
	product := seedProduct(t, f.db, "P1", "10.00", 5)
	orderID := f.checkout(t, 1, product.ID, 1)

	f.gateway.createErr = errors.New("connection refused")

	_, err := f.payments.Initiate(context.Background(), orderID, 1)
	require.True(t, apperr.IsKind(err, apperr.KindBadRequest))
	require.Contains(t, err.Error(), "connection refused")

	var order model.Order
	require.NoError(t, f.db.First(&order, orderID).Error)
	require.Equal(t, model.OrderStatePending, order.State)
	require.Nil(t, order.Token)
}

func TestConfirmAuthorizedMarksPaid(t *testing.T) {
	f := newPaymentFixture(t)
	product := seedProduct(t, f.db, "P1", "10.00", 5)
	orderID := f.checkout(t, 1, product.ID, 3)

	_, err := f.payments.Initiate(context.Background(), orderID, 1)
	require.NoError(t, err)
	f.gateway.commitResp = authorizedResult("ORDER-1", "AUTH-77", "30.00")

	result, err := f.payments.Confirm(context.Background(), "tok-abc123")
	require.NoError(t, err)
	require.Equal(t, client.StatusAuthorized, result.Status)
	require.Equal(t, model.OrderStatePaid, result.OrderState)
	require.Equal(t, "AUTH-77", result.AuthorizationCode)

	var order model.Order
	require.NoError(t, f.db.First(&order, orderID).Error)
	require.Equal(t, model.OrderStatePaid, order.State)
	require.NotNil(t, order.PaidAt)
	require.NotNil(t, order.AuthCode)
	require.Equal(t, "AUTH-77", *order.AuthCode)

	// Stock was consumed once, at order creation.
	require.Equal(t, 2, productStock(t, f.db, product.ID))
}

func TestConfirmIsIdempotent(t *testing.T) {
	f := newPaymentFixture(t)
	product := seedProduct(t, f.db, "P1", "10.00", 5)
	orderID := f.checkout(t, 1, product.ID, 3)

	_, err := f.payments.Initiate(context.Background(), orderID, 1)
	require.NoError(t, err)
	f.gateway.commitResp = authorizedResult("ORDER-1", "AUTH-77", "30.00")

	first, err := f.payments.Confirm(context.Background(), "tok-abc123")
	require.NoError(t, err)

	var after model.Order
	require.NoError(t, f.db.First(&after, orderID).Error)
	paidAt := *after.PaidAt

	// Duplicate callback: same settled state, no second gateway commit, no
	// stock or timestamp churn.
	second, err := f.payments.Confirm(context.Background(), "tok-abc123")
	require.NoError(t, err)
	require.Equal(t, first.OrderState, second.OrderState)
	require.Equal(t, first.AuthorizationCode, second.AuthorizationCode)
	require.Equal(t, client.StatusAuthorized, second.Status)
	require.Equal(t, 1, f.gateway.commitCalls)

	require.NoError(t, f.db.First(&after, orderID).Error)
	require.True(t, after.PaidAt.Equal(paidAt))
	require.Equal(t, 2, productStock(t, f.db, product.ID))
}

func TestConfirmRejectedLeavesPending(t *testing.T) {
	f := newPaymentFixture(t)
	product := seedProduct(t, f.db, "P1", "10.00", 5)
	orderID := f.checkout(t, 1, product.ID, 1)

	_, err := f.payments.Initiate(context.Background(), orderID, 1)
	require.NoError(t, err)
	f.gateway.commitResp = &client.TransactionResult{
		Status:       "FAILED",
		BuyOrder:     "ORDER-1",
		Amount:       decimal.RequireFromString("10.00"),
		ResponseCode: -1,
	}

	result, err := f.payments.Confirm(context.Background(), "tok-abc123")
	require.NoError(t, err)
	require.Equal(t, "FAILED", result.Status)
	require.Equal(t, model.OrderStatePending, result.OrderState)

	var order model.Order
	require.NoError(t, f.db.First(&order, orderID).Error)
	require.Equal(t, model.OrderStatePending, order.State)
	require.Nil(t, order.PaidAt)
}

func TestConfirmUnknownToken(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.payments.Confirm(context.Background(), "tok-nope")
	require.True(t, apperr.IsKind(err, apperr.KindNotFound))
	require.Zero(t, f.gateway.commitCalls)
}

func TestConfirmGatewayFailure(t *testing.T) {
	f := newPaymentFixture(t)
	product := seedProduct(t, f.db, "P1", "10.00", 5)
	orderID := f.checkout(t, 1, product.ID, 1)

	_, err := f.payments.Initiate(context.Background(), orderID, 1)
	require.NoError(t, err)
	f.gateway.commitErr = errors.New("gateway timeout")

	_, err = f.payments.Confirm(context.Background(), "tok-abc123")
	require.True(t, apperr.IsKind(err, apperr.KindBadRequest))
	require.Contains(t, err.Error(), "gateway timeout")

	var order model.Order
	require.NoError(t, f.db.First(&order, orderID).Error)
	require.Equal(t, model.OrderStatePending, order.State)
}

func TestStatusIsReadOnly(t *testing.T) {
	f := newPaymentFixture(t)
	product := seedProduct(t, f.db, "P1", "10.00", 5)
	orderID := f.checkout(t, 1, product.ID, 1)

	_, err := f.payments.Initiate(context.Background(), orderID, 1)
	require.NoError(t, err)
	f.gateway.statusResp = authorizedResult("ORDER-1", "AUTH-77", "10.00")

	result, err := f.payments.Status(context.Background(), "tok-abc123")
	require.NoError(t, err)
	require.Equal(t, client.StatusAuthorized, result.Status)
	require.Equal(t, 1, f.gateway.statusCalls)

	// Status never mutates local state, whatever the gateway reports.
	var order model.Order
	require.NoError(t, f.db.First(&order, orderID).Error)
	require.Equal(t, model.OrderStatePending, order.State)
}

func TestFullPaymentScenario(t *testing.T) {
	f := newPaymentFixture(t)
	product := seedProduct(t, f.db, "P1", "10.00", 5)

	cartView, err := f.carts.AddItem(context.Background(), 1, product.ID, 3)
	require.NoError(t, err)
	require.True(t, cartView.Total.Equal(decimal.RequireFromString("30.00")))

	order, err := f.orders.CreateFromCart(context.Background(), 1, testAddress)
	require.NoError(t, err)
	require.True(t, order.Total.Equal(decimal.RequireFromString("30.00")))
	require.Equal(t, model.OrderStatePending, order.State)
	require.Equal(t, 2, productStock(t, f.db, product.ID))

	_, err = f.payments.Initiate(context.Background(), order.ID, 1)
	require.NoError(t, err)
	f.gateway.commitResp = authorizedResult("ORDER-1", "AUTH-1", "30.00")

	result, err := f.payments.Confirm(context.Background(), "tok-abc123")
	require.NoError(t, err)
	require.Equal(t, model.OrderStatePaid, result.OrderState)

	cancelled, err := f.orders.ChangeState(context.Background(), order.ID, model.OrderStateCancelled)
	require.NoError(t, err)
	require.Equal(t, model.OrderStateCancelled, cancelled.State)
	require.Equal(t, 5, productStock(t, f.db, product.ID))
}
