package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type CartState string

const (
	CartStateActive    CartState = "ACTIVE"
	CartStatePurchased CartState = "PURCHASED"
)

type OrderState string

const (
	OrderStatePending   OrderState = "PENDING"
	OrderStatePaid      OrderState = "PAID"
	OrderStateCancelled OrderState = "CANCELLED"
)

type Product struct {
	ID          uint            `gorm:"primaryKey"`
	Code        string          `gorm:"size:64;uniqueIndex;not null"`
	Name        string          `gorm:"size:255;not null"`
	Description string          `gorm:"size:1024"`
	Brand       string          `gorm:"size:128"`
	Image       string          `gorm:"size:512"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Stock       int             `gorm:"not null"` // never negative, enforced by conditional update
	Active      bool            `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Cart struct {
	ID         uint      `gorm:"primaryKey"`
	CustomerID uint      `gorm:"index;not null"`
	State      CartState `gorm:"size:16;index;not null"`
	// Mirrors CustomerID while the cart is ACTIVE and is nulled on purchase.
	// The unique index lets the database reject a second ACTIVE cart for the
	// same customer; NULLs never collide, so purchased carts accumulate freely.
	ActiveCustomerID *uint `gorm:"uniqueIndex"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type CartItem struct {
	ID        uint `gorm:"primaryKey"`
	CartID    uint `gorm:"index;not null"`
	ProductID uint `gorm:"index;not null"`
	Quantity  int  `gorm:"not null"`
	// Price snapshotted when the item entered the cart; later catalog price
	// changes do not touch it.
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Order struct {
	ID              uint            `gorm:"primaryKey"`
	CustomerID      uint            `gorm:"index;not null"`
	Total           decimal.Decimal `gorm:"type:decimal(10,2);not null"` // fixed at creation
	State           OrderState      `gorm:"size:16;index;not null"`
	ShippingAddress string          `gorm:"size:512;not null"`

	// Gateway correlation, set by payment initiation / confirmation.
	Token    *string `gorm:"size:128;uniqueIndex"`
	BuyOrder *string `gorm:"size:64"`
	PaidAt   *time.Time
	AuthCode *string `gorm:"size:32"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type OrderItem struct {
	ID        uint            `gorm:"primaryKey"`
	OrderID   uint            `gorm:"index;not null"`
	ProductID uint            `gorm:"index;not null"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt time.Time
}
