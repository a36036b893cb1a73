package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"levelup-shop/internal/apperr"
	"levelup-shop/internal/dto"
	"levelup-shop/internal/model"
	"levelup-shop/internal/repository"
)

// CartService owns the single ACTIVE cart per customer.
type CartService interface {
	GetActiveCart(ctx context.Context, customerID uint) (*dto.CartView, error)
	AddItem(ctx context.Context, customerID, productID uint, quantity int) (*dto.CartView, error)
	UpdateItemQuantity(ctx context.Context, customerID, itemID uint, quantity int) (*dto.CartView, error)
	RemoveItem(ctx context.Context, customerID, itemID uint) (*dto.CartView, error)
	Clear(ctx context.Context, customerID uint) error
}

type cartServiceImpl struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	stock       StockService
}

func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	stock StockService,
) CartService {
	return &cartServiceImpl{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		stock:       stock,
	}
}

func (s *cartServiceImpl) GetActiveCart(ctx context.Context, customerID uint) (*dto.CartView, error) {
	cart, err := s.cartRepo.GetOrCreateActive(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("get or create active cart: %w", err)
	}

	return s.buildView(ctx, cart)
}

func (s *cartServiceImpl) AddItem(ctx context.Context, customerID, productID uint, quantity int) (*dto.CartView, error) {
	if quantity <= 0 {
		return nil, apperr.BadRequest("quantity must be positive")
	}

	cart, err := s.cartRepo.GetOrCreateActive(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("get or create active cart: %w", err)
	}

	existing, err := s.cartRepo.FindItemByProduct(ctx, cart.ID, productID)
	if err != nil && !repository.IsNotFound(err) {
		return nil, err
	}

	if existing != nil {
		// Merge into the existing line; the combined quantity must still fit
		// current stock.
		combined := existing.Quantity + quantity
		if _, err := s.stock.CheckAvailable(ctx, productID, combined); err != nil {
			return nil, err
		}
		existing.Quantity = combined
		if err := s.cartRepo.SaveItem(ctx, existing); err != nil {
			return nil, fmt.Errorf("update cart item: %w", err)
		}
	} else {
		product, err := s.stock.CheckAvailable(ctx, productID, quantity)
		if err != nil {
			return nil, err
		}
		item := &model.CartItem{
			CartID:    cart.ID,
			ProductID: productID,
			Quantity:  quantity,
			UnitPrice: product.Price,
		}
		if err := s.cartRepo.SaveItem(ctx, item); err != nil {
			return nil, fmt.Errorf("insert cart item: %w", err)
		}
	}

	return s.buildView(ctx, cart)
}

func (s *cartServiceImpl) UpdateItemQuantity(ctx context.Context, customerID, itemID uint, quantity int) (*dto.CartView, error) {
	cart, item, err := s.ownedItem(ctx, customerID, itemID)
	if err != nil {
		return nil, err
	}

	if quantity <= 0 {
		if err := s.cartRepo.DeleteItem(ctx, item.ID); err != nil {
			return nil, fmt.Errorf("delete cart item: %w", err)
		}
		return s.buildView(ctx, cart)
	}

	if _, err := s.stock.CheckAvailable(ctx, item.ProductID, quantity); err != nil {
		return nil, err
	}

	item.Quantity = quantity
	if err := s.cartRepo.SaveItem(ctx, item); err != nil {
		return nil, fmt.Errorf("update cart item: %w", err)
	}

	return s.buildView(ctx, cart)
}

func (s *cartServiceImpl) RemoveItem(ctx context.Context, customerID, itemID uint) (*dto.CartView, error) {
	cart, item, err := s.ownedItem(ctx, customerID, itemID)
	if err != nil {
		return nil, err
	}

	if err := s.cartRepo.DeleteItem(ctx, item.ID); err != nil {
		return nil, fmt.Errorf("delete cart item: %w", err)
	}

	return s.buildView(ctx, cart)
}

func (s *cartServiceImpl) Clear(ctx context.Context, customerID uint) error {
	cart, err := s.cartRepo.GetOrCreateActive(ctx, customerID)
	if err != nil {
		return fmt.Errorf("get or create active cart: %w", err)
	}

	return s.cartRepo.DeleteItems(ctx, cart.ID)
}

func (s *cartServiceImpl) ownedItem(ctx context.Context, customerID, itemID uint) (*model.Cart, *model.CartItem, error) {
	cart, err := s.cartRepo.GetOrCreateActive(ctx, customerID)
	if err != nil {
		return nil, nil, fmt.Errorf("get or create active cart: %w", err)
	}

	item, err := s.cartRepo.FindItem(ctx, itemID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil, apperr.NotFound("cart item %d not found", itemID)
		}
		return nil, nil, err
	}

	if item.CartID != cart.ID {
		return nil, nil, apperr.BadRequest("cart item %d does not belong to the customer's cart", itemID)
	}

	return cart, item, nil
}

// buildView recomputes totals from the current line items; nothing is stored.
func (s *cartServiceImpl) buildView(ctx context.Context, cart *model.Cart) (*dto.CartView, error) {
	items, err := s.cartRepo.FindItems(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("load cart items: %w", err)
	}

	view := &dto.CartView{
		ID:         cart.ID,
		CustomerID: cart.CustomerID,
		State:      cart.State,
		Items:      make([]dto.CartItemView, 0, len(items)),
		Total:      decimal.Zero,
	}

	for _, item := range items {
		subtotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))

		itemView := dto.CartItemView{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  subtotal,
		}
		if product, err := s.productRepo.FindByID(ctx, item.ProductID); err == nil {
			itemView.ProductCode = product.Code
			itemView.ProductName = product.Name
		}

		view.Items = append(view.Items, itemView)
		view.Total = view.Total.Add(subtotal)
		view.ItemCount += item.Quantity
	}

	return view, nil
}
