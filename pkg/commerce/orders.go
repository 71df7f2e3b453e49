package commerce

import (
	"context"
	"fmt"

	"github.com/cellex-webapp/cellex-storefront/pkg/models"
)

// GetOrder fetches the authoritative order state.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	if err := c.get(ctx, "/orders/"+pathEscape(orderID), &order); err != nil {
		return nil, fmt.Errorf("get order %s: %w", orderID, err)
	}
	return &order, nil
}

// ListAvailableCoupons returns the coupons the backend considers applicable
// to the order right now. Read-only; an empty slice means none qualify.
func (c *Client) ListAvailableCoupons(ctx context.Context, orderID string) ([]models.AvailableCoupon, error) {
	coupons := []models.AvailableCoupon{}
	if err := c.get(ctx, "/orders/"+pathEscape(orderID)+"/coupons", &coupons); err != nil {
		return nil, fmt.Errorf("list coupons for order %s: %w", orderID, err)
	}
	return coupons, nil
}

type applyCouponRequest struct {
	Code string `json:"code"`
}

// ApplyCoupon asks the backend to validate and attach the coupon. On
// success the returned order carries the code and the recomputed discount
// and total. On rejection the order is untouched server-side and the error
// is an *APIError with the backend message.
func (c *Client) ApplyCoupon(ctx context.Context, orderID, code string) (*models.Order, error) {
	var order models.Order
	if err := c.post(ctx, "/orders/"+pathEscape(orderID)+"/coupon", applyCouponRequest{Code: code}, &order); err != nil {
		return nil, fmt.Errorf("apply coupon to order %s: %w", orderID, err)
	}
	return &order, nil
}

// RemoveCoupon clears the applied coupon and returns the order with the
// discount reverted.
func (c *Client) RemoveCoupon(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	if err := c.delete(ctx, "/orders/"+pathEscape(orderID)+"/coupon", &order); err != nil {
		return nil, fmt.Errorf("remove coupon from order %s: %w", orderID, err)
	}
	return &order, nil
}

type checkoutRequest struct {
	PaymentMethod models.PaymentMethod `json:"payment_method"`
}

// Checkout finalizes the order's payment method. VNPay checkouts carry the
// external gateway URL in the result; COD checkouts never do. The order
// stays PENDING until the gateway confirms payment, so re-invoking checkout
// after a failure is safe.
func (c *Client) Checkout(ctx context.Context, orderID string, method models.PaymentMethod) (*models.CheckoutResult, error) {
	var result models.CheckoutResult
	if err := c.post(ctx, "/orders/"+pathEscape(orderID)+"/checkout", checkoutRequest{PaymentMethod: method}, &result); err != nil {
		return nil, fmt.Errorf("checkout order %s: %w", orderID, err)
	}
	return &result, nil
}

type createFromCartRequest struct {
	Items []models.CreateOrderItem `json:"items"`
}

// CreateOrderFromCart creates an order from cart line items. The backend
// snapshots product names and prices and enforces stock limits; the caller
// is expected to have clamped quantities already.
func (c *Client) CreateOrderFromCart(ctx context.Context, items []models.CreateOrderItem) (*models.Order, error) {
	var order models.Order
	if err := c.post(ctx, "/orders/from-cart", createFromCartRequest{Items: items}, &order); err != nil {
		return nil, fmt.Errorf("create order from cart: %w", err)
	}
	return &order, nil
}
