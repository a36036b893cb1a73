package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"levelup-shop/internal/model"
)

type CartItemRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type CartItemView struct {
	ID          uint            `json:"id"`
	ProductID   uint            `json:"product_id"`
	ProductCode string          `json:"product_code"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// CartView carries derived totals only; nothing here is stored.
type CartView struct {
	ID         uint            `json:"id"`
	CustomerID uint            `json:"customer_id"`
	State      model.CartState `json:"state"`
	Items      []CartItemView  `json:"items"`
	Total      decimal.Decimal `json:"total"`
	ItemCount  int             `json:"item_count"`
}

type CreateOrderRequest struct {
	ShippingAddress string `json:"shipping_address"`
}

type ChangeOrderStateRequest struct {
	State model.OrderState `json:"state"`
}

type OrderItemView struct {
	ID        uint            `json:"id"`
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type OrderView struct {
	ID              uint             `json:"id"`
	CustomerID      uint             `json:"customer_id"`
	Total           decimal.Decimal  `json:"total"`
	State           model.OrderState `json:"state"`
	ShippingAddress string           `json:"shipping_address"`
	BuyOrder        *string          `json:"buy_order,omitempty"`
	PaidAt          *time.Time       `json:"paid_at,omitempty"`
	AuthCode        *string          `json:"authorization_code,omitempty"`
	Items           []OrderItemView  `json:"items"`
	ItemCount       int              `json:"item_count"`
	CreatedAt       time.Time        `json:"created_at"`
}

type InitiatePaymentRequest struct {
	OrderID uint `json:"order_id"`
}

type InitiatePaymentResponse struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// PaymentResult mirrors the gateway commit/status shape surfaced to callers.
type PaymentResult struct {
	OrderID           uint             `json:"order_id"`
	OrderState        model.OrderState `json:"order_state"`
	Status            string           `json:"status"`
	BuyOrder          string           `json:"buy_order"`
	SessionID         string           `json:"session_id"`
	Amount            decimal.Decimal  `json:"amount"`
	AuthorizationCode string           `json:"authorization_code"`
	PaymentTypeCode   string           `json:"payment_type_code"`
	ResponseCode      int              `json:"response_code"`
	Installments      int              `json:"installments"`
	CardNumber        string           `json:"card_number"`
}

type ProductRequest struct {
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Brand       string          `json:"brand"`
	Image       string          `json:"image"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Active      *bool           `json:"active"`
}

type AdjustStockRequest struct {
	Delta int `json:"delta"`
}

type ProductView struct {
	ID          uint            `json:"id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Brand       string          `json:"brand"`
	Image       string          `json:"image"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Active      bool            `json:"active"`
}
