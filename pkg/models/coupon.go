package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type CouponType string

const (
	CouponPercentage CouponType = "PERCENTAGE"
	CouponFixed      CouponType = "FIXED"
	CouponFreeShip   CouponType = "FREE_SHIPPING"
)

// AvailableCoupon is a read-only projection the backend computes per order.
// EstimatedDiscount already accounts for the order's current subtotal.
type AvailableCoupon struct {
	ID                string          `json:"id"`
	Code              string          `json:"code"`
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	Type              CouponType      `json:"type"`
	DiscountValue     decimal.Decimal `json:"discount_value"`
	MinOrderAmount    decimal.Decimal `json:"min_order_amount"`
	EstimatedDiscount decimal.Decimal `json:"estimated_discount"`
	ExpiresAt         time.Time       `json:"expires_at"`
}
