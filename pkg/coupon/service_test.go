package coupon

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cellex-webapp/cellex-storefront/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubBackend struct {
	coupons  []models.AvailableCoupon
	order    *models.Order
	applyErr error
}

func (b *stubBackend) ListAvailableCoupons(_ context.Context, orderID string) ([]models.AvailableCoupon, error) {
	return b.coupons, nil
}

func (b *stubBackend) ApplyCoupon(_ context.Context, orderID, code string) (*models.Order, error) {
	if b.applyErr != nil {
		return nil, b.applyErr
	}
	return b.order, nil
}

func (b *stubBackend) RemoveCoupon(_ context.Context, orderID string) (*models.Order, error) {
	return b.order, nil
}

func TestApplyReturnsServerOrder(t *testing.T) {
	code := "SALE10"
	backend := &stubBackend{order: &models.Order{
		ID:             "O1",
		CouponCode:     &code,
		DiscountAmount: decimal.NewFromInt(50000),
		TotalAmount:    decimal.NewFromInt(450000),
	}}
	svc := NewService(backend, nil, zap.NewNop())

	order, err := svc.Apply(context.Background(), "s1", "O1", "SALE10")
	require.NoError(t, err)
	require.Equal(t, "SALE10", *order.CouponCode)
	require.True(t, decimal.NewFromInt(450000).Equal(order.TotalAmount))
}

func TestApplyErrorPassesThroughUntouched(t *testing.T) {
	wantErr := errors.New("minimum order amount not met")
	svc := NewService(&stubBackend{applyErr: wantErr}, nil, zap.NewNop())

	_, err := svc.Apply(context.Background(), "s1", "O1", "BIG50")
	require.ErrorIs(t, err, wantErr)
}

func TestListPassesThrough(t *testing.T) {
	backend := &stubBackend{coupons: []models.AvailableCoupon{
		{
			Code:              "SALE10",
			Type:              models.CouponPercentage,
			DiscountValue:     decimal.NewFromInt(10),
			EstimatedDiscount: decimal.NewFromInt(50000),
			ExpiresAt:         time.Now().Add(24 * time.Hour),
		},
	}}
	svc := NewService(backend, nil, zap.NewNop())

	coupons, err := svc.List(context.Background(), "O1")
	require.NoError(t, err)
	require.Len(t, coupons, 1)
	require.Equal(t, "SALE10", coupons[0].Code)
}
