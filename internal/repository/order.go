package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"levelup-shop/internal/model"
)

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *model.Order) error
	CreateItems(ctx context.Context, tx *gorm.DB, items []*model.OrderItem) error
	FindByID(ctx context.Context, orderID uint) (*model.Order, error)
	FindByIDTx(ctx context.Context, tx *gorm.DB, orderID uint) (*model.Order, error)
	FindByToken(ctx context.Context, token string) (*model.Order, error)
	FindByCustomer(ctx context.Context, customerID uint) ([]*model.Order, error)
	FindByState(ctx context.Context, state model.OrderState) ([]*model.Order, error)
	FindAll(ctx context.Context) ([]*model.Order, error)
	FindItems(ctx context.Context, orderID uint) ([]*model.OrderItem, error)
	FindItemsTx(ctx context.Context, tx *gorm.DB, orderID uint) ([]*model.OrderItem, error)
	SetPaymentRef(ctx context.Context, orderID uint, token, buyOrder string) error
	// UpdateState is guarded by the expected current state; zero rows means
	// somebody else transitioned first.
	UpdateState(ctx context.Context, tx *gorm.DB, orderID uint, from, to model.OrderState) (bool, error)
	// MarkPaid is the guarded PENDING->PAID write recording the settlement.
	MarkPaid(ctx context.Context, tx *gorm.DB, orderID uint, paidAt time.Time, authCode string) (bool, error)
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) Create(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	return tx.WithContext(ctx).Create(order).Error
}

func (r *orderRepoImpl) CreateItems(ctx context.Context, tx *gorm.DB, items []*model.OrderItem) error {
	return tx.WithContext(ctx).Create(&items).Error
}

func (r *orderRepoImpl) FindByID(ctx context.Context, orderID uint) (*model.Order, error) {
	return r.FindByIDTx(ctx, r.db, orderID)
}

func (r *orderRepoImpl) FindByIDTx(ctx context.Context, tx *gorm.DB, orderID uint) (*model.Order, error) {
	var order model.Order
	err := tx.WithContext(ctx).
		Where("id = ?", orderID).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) FindByToken(ctx context.Context, token string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("token = ?", token).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) FindByCustomer(ctx context.Context, customerID uint) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepoImpl) FindByState(ctx context.Context, state model.OrderState) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Where("state = ?", state).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepoImpl) FindAll(ctx context.Context) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepoImpl) FindItems(ctx context.Context, orderID uint) ([]*model.OrderItem, error) {
	return r.FindItemsTx(ctx, r.db, orderID)
}

func (r *orderRepoImpl) FindItemsTx(ctx context.Context, tx *gorm.DB, orderID uint) ([]*model.OrderItem, error) {
	var items []*model.OrderItem
	err := tx.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id").
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	return items, nil
}

func (r *orderRepoImpl) SetPaymentRef(ctx context.Context, orderID uint, token, buyOrder string) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"token":     token,
			"buy_order": buyOrder,
		}).Error
}

func (r *orderRepoImpl) UpdateState(ctx context.Context, tx *gorm.DB, orderID uint, from, to model.OrderState) (bool, error) {
	result := tx.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND state = ?", orderID, from).
		Update("state", to)

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *orderRepoImpl) MarkPaid(ctx context.Context, tx *gorm.DB, orderID uint, paidAt time.Time, authCode string) (bool, error) {
	result := tx.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND state = ?", orderID, model.OrderStatePending).
		Updates(map[string]interface{}{
			"state":     model.OrderStatePaid,
			"paid_at":   paidAt,
			"auth_code": authCode,
		})

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}
