package service

import (
	"context"

	"gorm.io/gorm"

	"levelup-shop/internal/apperr"
	"levelup-shop/internal/model"
	"levelup-shop/internal/repository"
)

// StockService is the authoritative counter of available product quantity.
// All stock movement in the system goes through Adjust / AdjustTx.
type StockService interface {
	// Adjust applies delta to the product's stock; negative for consumption,
	// positive for restoration. Fails with InsufficientStock if the result
	// would drop below zero.
	Adjust(ctx context.Context, productID uint, delta int) error
	// AdjustTx is Adjust running under a caller-owned transaction, used by
	// order creation and paid-order cancellation.
	AdjustTx(ctx context.Context, tx *gorm.DB, productID uint, delta int) error
	// CheckAvailable verifies the product exists, is active, and has at least
	// quantity units. Read-only.
	CheckAvailable(ctx context.Context, productID uint, quantity int) (*model.Product, error)
}

type stockServiceImpl struct {
	db          *gorm.DB
	productRepo repository.ProductRepository
}

func NewStockService(db *gorm.DB, productRepo repository.ProductRepository) StockService {
	return &stockServiceImpl{
		db:          db,
		productRepo: productRepo,
	}
}

func (s *stockServiceImpl) Adjust(ctx context.Context, productID uint, delta int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.AdjustTx(ctx, tx, productID, delta)
	})
}

func (s *stockServiceImpl) AdjustTx(ctx context.Context, tx *gorm.DB, productID uint, delta int) error {
	ok, err := s.productRepo.AdjustStock(ctx, tx, productID, delta)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	// No row matched: the product is missing, or the floor check failed.
	if _, err := s.productRepo.FindByIDTx(ctx, tx, productID); err != nil {
		if repository.IsNotFound(err) {
			return apperr.NotFound("product %d not found", productID)
		}
		return err
	}

	return apperr.InsufficientStock("insufficient stock for product %d", productID)
}

func (s *stockServiceImpl) CheckAvailable(ctx context.Context, productID uint, quantity int) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("product %d not found", productID)
		}
		return nil, err
	}

	if !product.Active {
		return nil, apperr.BadRequest("product %q is unavailable", product.Name)
	}

	if product.Stock < quantity {
		return nil, apperr.InsufficientStock("insufficient stock for %q, available: %d", product.Name, product.Stock)
	}

	return product, nil
}
