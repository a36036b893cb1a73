package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"levelup-shop/internal/model"
)

type CartRepository interface {
	// GetOrCreateActive returns the customer's ACTIVE cart, creating one if
	// none exists. Concurrent first-calls for the same customer converge on a
	// single row via the unique index on active_customer_id.
	GetOrCreateActive(ctx context.Context, customerID uint) (*model.Cart, error)
	FindActiveByCustomer(ctx context.Context, customerID uint) (*model.Cart, error)
	FindActiveByCustomerTx(ctx context.Context, tx *gorm.DB, customerID uint) (*model.Cart, error)
	MarkPurchased(ctx context.Context, tx *gorm.DB, cartID uint) error

	FindItems(ctx context.Context, cartID uint) ([]*model.CartItem, error)
	FindItemsTx(ctx context.Context, tx *gorm.DB, cartID uint) ([]*model.CartItem, error)
	FindItem(ctx context.Context, itemID uint) (*model.CartItem, error)
	FindItemByProduct(ctx context.Context, cartID, productID uint) (*model.CartItem, error)
	SaveItem(ctx context.Context, item *model.CartItem) error
	DeleteItem(ctx context.Context, itemID uint) error
	DeleteItems(ctx context.Context, cartID uint) error
	DeleteItemsTx(ctx context.Context, tx *gorm.DB, cartID uint) error
}

type cartRepoImpl struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepoImpl{
		db: db,
	}
}

func (r *cartRepoImpl) GetOrCreateActive(ctx context.Context, customerID uint) (*model.Cart, error) {
	cart, err := r.FindActiveByCustomer(ctx, customerID)
	if err == nil {
		return cart, nil
	}
	if !IsNotFound(err) {
		return nil, err
	}

	owner := customerID
	fresh := &model.Cart{
		CustomerID:       customerID,
		State:            model.CartStateActive,
		ActiveCustomerID: &owner,
	}
	// DoNothing on conflict: if another request inserted first, fall through
	// to the fetch and return the winner's row.
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "active_customer_id"}},
			DoNothing: true,
		}).
		Create(fresh).Error
	if err != nil {
		return nil, err
	}

	return r.FindActiveByCustomer(ctx, customerID)
}

func (r *cartRepoImpl) FindActiveByCustomer(ctx context.Context, customerID uint) (*model.Cart, error) {
	return r.FindActiveByCustomerTx(ctx, r.db, customerID)
}

func (r *cartRepoImpl) FindActiveByCustomerTx(ctx context.Context, tx *gorm.DB, customerID uint) (*model.Cart, error) {
	var cart model.Cart
	err := tx.WithContext(ctx).
		Where("customer_id = ? AND state = ?", customerID, model.CartStateActive).
		First(&cart).Error

	if err != nil {
		return nil, err
	}

	return &cart, nil
}

func (r *cartRepoImpl) MarkPurchased(ctx context.Context, tx *gorm.DB, cartID uint) error {
	return tx.WithContext(ctx).Model(&model.Cart{}).
		Where("id = ? AND state = ?", cartID, model.CartStateActive).
		Updates(map[string]interface{}{
			"state":              model.CartStatePurchased,
			"active_customer_id": nil,
		}).Error
}

func (r *cartRepoImpl) FindItems(ctx context.Context, cartID uint) ([]*model.CartItem, error) {
	return r.FindItemsTx(ctx, r.db, cartID)
}

func (r *cartRepoImpl) FindItemsTx(ctx context.Context, tx *gorm.DB, cartID uint) ([]*model.CartItem, error) {
	var items []*model.CartItem
	err := tx.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("id").
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	return items, nil
}

func (r *cartRepoImpl) FindItem(ctx context.Context, itemID uint) (*model.CartItem, error) {
	var item model.CartItem
	err := r.db.WithContext(ctx).
		Where("id = ?", itemID).
		First(&item).Error

	if err != nil {
		return nil, err
	}

	return &item, nil
}

func (r *cartRepoImpl) FindItemByProduct(ctx context.Context, cartID, productID uint) (*model.CartItem, error) {
	var item model.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&item).Error

	if err != nil {
		return nil, err
	}

	return &item, nil
}

func (r *cartRepoImpl) SaveItem(ctx context.Context, item *model.CartItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *cartRepoImpl) DeleteItem(ctx context.Context, itemID uint) error {
	return r.db.WithContext(ctx).Delete(&model.CartItem{}, itemID).Error
}

func (r *cartRepoImpl) DeleteItems(ctx context.Context, cartID uint) error {
	return r.DeleteItemsTx(ctx, r.db, cartID)
}

func (r *cartRepoImpl) DeleteItemsTx(ctx context.Context, tx *gorm.DB, cartID uint) error {
	return tx.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&model.CartItem{}).Error
}
