package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"levelup-shop/internal/apperr"
	"levelup-shop/internal/client"
	"levelup-shop/internal/dto"
	"levelup-shop/internal/model"
	"levelup-shop/internal/repository"
)

// PaymentService mediates between orders and the Webpay gateway. Confirmation
// may arrive more than once; applying it is idempotent.
type PaymentService interface {
	Initiate(ctx context.Context, orderID, customerID uint) (*dto.InitiatePaymentResponse, error)
	Confirm(ctx context.Context, token string) (*dto.PaymentResult, error)
	Status(ctx context.Context, token string) (*dto.PaymentResult, error)
}

type paymentServiceImpl struct {
	webpayClient client.WebpayClient
	orderRepo    repository.OrderRepository
	orders       OrderService
	returnURL    string
	logger       *zap.Logger
	now          func() time.Time
}

func NewPaymentService(
	webpayClient client.WebpayClient,
	orderRepo repository.OrderRepository,
	orders OrderService,
	returnURL string,
	logger *zap.Logger,
) PaymentService {
	return &paymentServiceImpl{
		webpayClient: webpayClient,
		orderRepo:    orderRepo,
		orders:       orders,
		returnURL:    returnURL,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *paymentServiceImpl) Initiate(ctx context.Context, orderID, customerID uint) (*dto.InitiatePaymentResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("order %d not found", orderID)
		}
		return nil, err
	}

	if order.CustomerID != customerID {
		return nil, apperr.BadRequest("order %d does not belong to the customer", orderID)
	}
	if order.State != model.OrderStatePending {
		return nil, apperr.BadRequest("order %d is not pending", orderID)
	}

	now := s.now().UnixMilli()
	buyOrder := fmt.Sprintf("ORDER-%d-%d", order.ID, now)
	sessionID := fmt.Sprintf("SESSION-%d-%d", customerID, now)

	resp, err := s.webpayClient.CreateTransaction(ctx, buyOrder, sessionID, order.Total, s.returnURL)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindBadRequest, err, "initiate payment for order %d", orderID)
	}

	if err := s.orderRepo.SetPaymentRef(ctx, order.ID, resp.Token, buyOrder); err != nil {
		return nil, fmt.Errorf("store payment reference: %w", err)
	}

	s.logger.Info("payment initiated",
		zap.Uint("order_id", order.ID),
		zap.String("buy_order", buyOrder))

	return &dto.InitiatePaymentResponse{
		Token:       resp.Token,
		RedirectURL: resp.URL,
	}, nil
}

func (s *paymentServiceImpl) Confirm(ctx context.Context, token string) (*dto.PaymentResult, error) {
	order, err := s.orderRepo.FindByToken(ctx, token)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("no order for payment token")
		}
		return nil, err
	}

	// Already settled: report the stored state instead of committing again.
	// The gateway retries callbacks and users reload confirmation pages.
	if order.State == model.OrderStatePaid {
		return s.settledResult(order), nil
	}

	result, err := s.webpayClient.CommitTransaction(ctx, token)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindBadRequest, err, "confirm payment for order %d", order.ID)
	}

	if result.Status == client.StatusAuthorized {
		applied, err := s.orders.ApplyPayment(ctx, order.ID, s.now(), result.AuthorizationCode)
		if err != nil {
			return nil, fmt.Errorf("apply payment to order %d: %w", order.ID, err)
		}
		if !applied {
			// A concurrent confirmation won the guarded update; the payment
			// is settled either way.
			s.logger.Info("duplicate payment confirmation ignored", zap.Uint("order_id", order.ID))
		}
		order, err = s.orderRepo.FindByID(ctx, order.ID)
		if err != nil {
			return nil, err
		}
	} else {
		s.logger.Warn("payment not authorized",
			zap.Uint("order_id", order.ID),
			zap.String("status", result.Status))
	}

	return s.gatewayResult(order, result), nil
}

func (s *paymentServiceImpl) Status(ctx context.Context, token string) (*dto.PaymentResult, error) {
	order, err := s.orderRepo.FindByToken(ctx, token)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("no order for payment token")
		}
		return nil, err
	}

	result, err := s.webpayClient.TransactionStatus(ctx, token)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindBadRequest, err, "query payment status for order %d", order.ID)
	}

	return s.gatewayResult(order, result), nil
}

func (s *paymentServiceImpl) gatewayResult(order *model.Order, result *client.TransactionResult) *dto.PaymentResult {
	return &dto.PaymentResult{
		OrderID:           order.ID,
		OrderState:        order.State,
		Status:            result.Status,
		BuyOrder:          result.BuyOrder,
		SessionID:         result.SessionID,
		Amount:            result.Amount,
		AuthorizationCode: result.AuthorizationCode,
		PaymentTypeCode:   result.PaymentTypeCode,
		ResponseCode:      result.ResponseCode,
		Installments:      result.InstallmentsNumber,
		CardNumber:        result.CardDetail.CardNumber,
	}
}

// settledResult rebuilds the confirmation view from what was persisted when
// the payment first settled.
func (s *paymentServiceImpl) settledResult(order *model.Order) *dto.PaymentResult {
	result := &dto.PaymentResult{
		OrderID:    order.ID,
		OrderState: order.State,
		Status:     client.StatusAuthorized,
		Amount:     order.Total,
	}
	if order.BuyOrder != nil {
		result.BuyOrder = *order.BuyOrder
	}
	if order.AuthCode != nil {
		result.AuthorizationCode = *order.AuthCode
	}
	return result
}
