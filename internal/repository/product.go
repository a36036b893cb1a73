package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"levelup-shop/internal/model"
)

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	Save(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, productID uint) (*model.Product, error)
	FindByIDTx(ctx context.Context, tx *gorm.DB, productID uint) (*model.Product, error)
	FindByCode(ctx context.Context, code string) (*model.Product, error)
	FindAll(ctx context.Context) ([]*model.Product, error)
	FindActive(ctx context.Context) ([]*model.Product, error)
	Search(ctx context.Context, keyword string) ([]*model.Product, error)
	// AdjustStock applies delta as a single conditional update and reports
	// whether any row matched; stock can never go below zero through it.
	AdjustStock(ctx context.Context, tx *gorm.DB, productID uint, delta int) (bool, error)
}

type productRepoImpl struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepoImpl{
		db: db,
	}
}

func (r *productRepoImpl) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepoImpl) Save(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *productRepoImpl) FindByID(ctx context.Context, productID uint) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Where("id = ?", productID).
		First(&product).Error

	if err != nil {
		return nil, err
	}

	return &product, nil
}

func (r *productRepoImpl) FindByIDTx(ctx context.Context, tx *gorm.DB, productID uint) (*model.Product, error) {
	var product model.Product
	err := tx.WithContext(ctx).
		Where("id = ?", productID).
		First(&product).Error

	if err != nil {
		return nil, err
	}

	return &product, nil
}

func (r *productRepoImpl) FindByCode(ctx context.Context, code string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&product).Error

	if err != nil {
		return nil, err
	}

	return &product, nil
}

func (r *productRepoImpl) FindAll(ctx context.Context) ([]*model.Product, error) {
	var products []*model.Product
	err := r.db.WithContext(ctx).Order("id").Find(&products).Error
	if err != nil {
		return nil, err
	}

	return products, nil
}

func (r *productRepoImpl) FindActive(ctx context.Context) ([]*model.Product, error) {
	var products []*model.Product
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("id").
		Find(&products).Error
	if err != nil {
		return nil, err
	}

	return products, nil
}

func (r *productRepoImpl) Search(ctx context.Context, keyword string) ([]*model.Product, error) {
	var products []*model.Product
	pattern := "%" + keyword + "%"
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Where("name LIKE ? OR description LIKE ? OR brand LIKE ?", pattern, pattern, pattern).
		Order("id").
		Find(&products).Error
	if err != nil {
		return nil, err
	}

	return products, nil
}

func (r *productRepoImpl) AdjustStock(ctx context.Context, tx *gorm.DB, productID uint, delta int) (bool, error) {
	// The WHERE clause makes read-check-write one atomic statement; two
	// concurrent checkouts for the last unit cannot both match.
	result := tx.WithContext(ctx).Model(&model.Product{}).
		Where("id = ? AND stock + ? >= 0", productID, delta).
		UpdateColumn("stock", gorm.Expr("stock + ?", delta))

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// IsNotFound reports whether err is gorm's record-not-found, so services can
// translate it without importing gorm everywhere.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
