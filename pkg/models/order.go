package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses as issued by the commerce backend. The gateway never
// validates transitions; the backend owns the lifecycle.
const (
	OrderPending   = "PENDING"
	OrderConfirmed = "CONFIRMED"
	OrderShipping  = "SHIPPING"
	OrderDelivered = "DELIVERED"
	OrderCancelled = "CANCELLED"
)

type PaymentMethod string

const (
	PaymentCOD   PaymentMethod = "COD"
	PaymentVNPay PaymentMethod = "VNPAY"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCOD || m == PaymentVNPay
}

// Order mirrors the backend representation. All amounts are computed
// server-side; total_amount = subtotal - discount_amount + shipping_fee
// holds by backend contract and is never recomputed here.
type Order struct {
	ID             string          `json:"id"`
	Items          []OrderItem     `json:"items"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	ShippingFee    decimal.Decimal `json:"shipping_fee"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	CouponCode     *string         `json:"coupon_code"`
	PaymentMethod  *PaymentMethod  `json:"payment_method"`
	Paid           bool            `json:"paid"`
	Status         string          `json:"status"`
	StatusHistory  []StatusEntry   `json:"status_history"`
	ShopID         string          `json:"shop_id"`
	UserID         string          `json:"user_id"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type OrderItem struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	ImageURL    string          `json:"image_url"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type StatusEntry struct {
	Status    string    `json:"status"`
	Note      string    `json:"note"`
	Actor     string    `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
}

// Terminal reports whether the order has reached the end of its lifecycle.
func (o *Order) Terminal() bool {
	return o.Status == OrderDelivered || o.Status == OrderCancelled
}

// CreateOrderItem is the from-cart order creation input. Price and product
// snapshot fields are assigned by the backend at creation time.
type CreateOrderItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CheckoutResult is the checkout response: the finalized order plus, for
// gateway payments, the external payment URL. COD checkouts never carry one.
type CheckoutResult struct {
	Order
	PaymentURL string `json:"payment_url,omitempty"`
}
