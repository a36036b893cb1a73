package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"levelup-shop/internal/apperr"
	"levelup-shop/internal/dto"
	"levelup-shop/internal/model"
	"levelup-shop/internal/repository"
)

const (
	minAddressLen = 10
	maxAddressLen = 500
)

// OrderService drives the order state machine and the cart-to-order
// conversion. Orders carry their total fixed at creation.
type OrderService interface {
	CreateFromCart(ctx context.Context, customerID uint, shippingAddress string) (*dto.OrderView, error)
	ChangeState(ctx context.Context, orderID uint, newState model.OrderState) (*dto.OrderView, error)
	ApplyPayment(ctx context.Context, orderID uint, paidAt time.Time, authCode string) (bool, error)
	GetByID(ctx context.Context, orderID uint) (*dto.OrderView, error)
	ListByCustomer(ctx context.Context, customerID uint) ([]*dto.OrderView, error)
	ListByState(ctx context.Context, state model.OrderState) ([]*dto.OrderView, error)
	ListAll(ctx context.Context) ([]*dto.OrderView, error)
}

type orderServiceImpl struct {
	db             *gorm.DB
	orderRepo      repository.OrderRepository
	cartRepo       repository.CartRepository
	productRepo    repository.ProductRepository
	stock          StockService
	allowForcePaid bool
}

func NewOrderService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	stock StockService,
	allowForcePaid bool,
) OrderService {
	return &orderServiceImpl{
		db:             db,
		orderRepo:      orderRepo,
		cartRepo:       cartRepo,
		productRepo:    productRepo,
		stock:          stock,
		allowForcePaid: allowForcePaid,
	}
}

func (s *orderServiceImpl) CreateFromCart(ctx context.Context, customerID uint, shippingAddress string) (*dto.OrderView, error) {
	shippingAddress = strings.TrimSpace(shippingAddress)
	if len(shippingAddress) < minAddressLen || len(shippingAddress) > maxAddressLen {
		return nil, apperr.BadRequest("shipping address must be between %d and %d characters", minAddressLen, maxAddressLen)
	}

	var order *model.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := s.cartRepo.FindActiveByCustomerTx(ctx, tx, customerID)
		if err != nil {
			if repository.IsNotFound(err) {
				return apperr.BadRequest("no active cart for customer %d", customerID)
			}
			return err
		}

		items, err := s.cartRepo.FindItemsTx(ctx, tx, cart.ID)
		if err != nil {
			return fmt.Errorf("load cart items: %w", err)
		}
		if len(items) == 0 {
			return apperr.BadRequest("cart is empty")
		}

		// Authoritative re-validation: stock may have moved since the items
		// were added. Any failure rolls back the whole transaction.
		total := decimal.Zero
		for _, item := range items {
			product, err := s.productRepo.FindByIDTx(ctx, tx, item.ProductID)
			if err != nil {
				if repository.IsNotFound(err) {
					return apperr.NotFound("product %d not found", item.ProductID)
				}
				return err
			}
			if !product.Active {
				return apperr.BadRequest("product %q is unavailable", product.Name)
			}
			if product.Stock < item.Quantity {
				return apperr.InsufficientStock("insufficient stock for %q, available: %d", product.Name, product.Stock)
			}

			total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}

		order = &model.Order{
			CustomerID:      customerID,
			Total:           total,
			State:           model.OrderStatePending,
			ShippingAddress: shippingAddress,
		}
		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return fmt.Errorf("store order: %w", err)
		}

		orderItems := make([]*model.OrderItem, len(items))
		for i, item := range items {
			orderItems[i] = &model.OrderItem{
				OrderID:   order.ID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
				Subtotal:  item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
			}
		}
		if err := s.orderRepo.CreateItems(ctx, tx, orderItems); err != nil {
			return fmt.Errorf("store order items: %w", err)
		}

		for _, item := range items {
			if err := s.stock.AdjustTx(ctx, tx, item.ProductID, -item.Quantity); err != nil {
				return err
			}
		}

		if err := s.cartRepo.DeleteItemsTx(ctx, tx, cart.ID); err != nil {
			return fmt.Errorf("clear cart items: %w", err)
		}
		if err := s.cartRepo.MarkPurchased(ctx, tx, cart.ID); err != nil {
			return fmt.Errorf("mark cart purchased: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, order.ID)
}

func (s *orderServiceImpl) ChangeState(ctx context.Context, orderID uint, newState model.OrderState) (*dto.OrderView, error) {
	switch newState {
	case model.OrderStatePending, model.OrderStatePaid, model.OrderStateCancelled:
	default:
		return nil, apperr.BadRequest("unknown order state %q", newState)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.FindByIDTx(ctx, tx, orderID)
		if err != nil {
			if repository.IsNotFound(err) {
				return apperr.NotFound("order %d not found", orderID)
			}
			return err
		}

		if !s.transitionAllowed(order.State, newState) {
			return apperr.BadRequest("illegal order state transition %s -> %s", order.State, newState)
		}

		ok, err := s.orderRepo.UpdateState(ctx, tx, orderID, order.State, newState)
		if err != nil {
			return err
		}
		if !ok {
			// The guarded update lost a race; whatever it raced with already
			// owns the transition.
			return apperr.BadRequest("order %d changed state concurrently", orderID)
		}

		// Cancelling a paid order puts every consumed unit back.
		if order.State == model.OrderStatePaid && newState == model.OrderStateCancelled {
			items, err := s.orderRepo.FindItemsTx(ctx, tx, orderID)
			if err != nil {
				return fmt.Errorf("load order items: %w", err)
			}
			for _, item := range items {
				if err := s.stock.AdjustTx(ctx, tx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, orderID)
}

// transitionAllowed is the single place the order state table lives.
func (s *orderServiceImpl) transitionAllowed(from, to model.OrderState) bool {
	switch {
	case from == model.OrderStatePending && to == model.OrderStateCancelled:
		return true
	case from == model.OrderStatePaid && to == model.OrderStateCancelled:
		return true
	case from == model.OrderStatePending && to == model.OrderStatePaid:
		// Normally driven by payment confirmation; administrative callers only
		// get it when the operator turned force-paid on.
		return s.allowForcePaid
	}
	return false
}

// ApplyPayment records a settled gateway confirmation: the guarded
// PENDING->PAID write plus payment timestamp and authorization code, all in
// one transaction. Reports false when the order was no longer PENDING, which
// is how a duplicate confirmation becomes a no-op.
func (s *orderServiceImpl) ApplyPayment(ctx context.Context, orderID uint, paidAt time.Time, authCode string) (bool, error) {
	var applied bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		applied, err = s.orderRepo.MarkPaid(ctx, tx, orderID, paidAt, authCode)
		return err
	})
	return applied, err
}

func (s *orderServiceImpl) GetByID(ctx context.Context, orderID uint) (*dto.OrderView, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("order %d not found", orderID)
		}
		return nil, err
	}

	return s.buildView(ctx, order)
}

func (s *orderServiceImpl) ListByCustomer(ctx context.Context, customerID uint) ([]*dto.OrderView, error) {
	orders, err := s.orderRepo.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	return s.buildViews(ctx, orders)
}

func (s *orderServiceImpl) ListByState(ctx context.Context, state model.OrderState) ([]*dto.OrderView, error) {
	orders, err := s.orderRepo.FindByState(ctx, state)
	if err != nil {
		return nil, err
	}

	return s.buildViews(ctx, orders)
}

func (s *orderServiceImpl) ListAll(ctx context.Context) ([]*dto.OrderView, error) {
	orders, err := s.orderRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	return s.buildViews(ctx, orders)
}

func (s *orderServiceImpl) buildViews(ctx context.Context, orders []*model.Order) ([]*dto.OrderView, error) {
	views := make([]*dto.OrderView, 0, len(orders))
	for _, order := range orders {
		view, err := s.buildView(ctx, order)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *orderServiceImpl) buildView(ctx context.Context, order *model.Order) (*dto.OrderView, error) {
	items, err := s.orderRepo.FindItems(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}

	view := &dto.OrderView{
		ID:              order.ID,
		CustomerID:      order.CustomerID,
		Total:           order.Total,
		State:           order.State,
		ShippingAddress: order.ShippingAddress,
		BuyOrder:        order.BuyOrder,
		PaidAt:          order.PaidAt,
		AuthCode:        order.AuthCode,
		Items:           make([]dto.OrderItemView, 0, len(items)),
		CreatedAt:       order.CreatedAt,
	}

	for _, item := range items {
		view.Items = append(view.Items, dto.OrderItemView{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal,
		})
		view.ItemCount += item.Quantity
	}

	return view, nil
}
