// Package coupon orchestrates coupon application against the commerce
// backend. The backend validates codes and recomputes amounts; this service
// never mutates anything locally on failure, so a rejected apply leaves the
// caller's view of the order exactly as it was.
package coupon

import (
	"context"

	"github.com/cellex-webapp/cellex-storefront/pkg/audit"
	"github.com/cellex-webapp/cellex-storefront/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// Backend is the slice of the commerce client the service needs.
type Backend interface {
	ListAvailableCoupons(ctx context.Context, orderID string) ([]models.AvailableCoupon, error)
	ApplyCoupon(ctx context.Context, orderID, code string) (*models.Order, error)
	RemoveCoupon(ctx context.Context, orderID string) (*models.Order, error)
}

type Service struct {
	backend Backend
	audit   *audit.Recorder
	logger  *zap.Logger
}

func NewService(backend Backend, recorder *audit.Recorder, logger *zap.Logger) *Service {
	return &Service{
		backend: backend,
		audit:   recorder,
		logger:  logger,
	}
}

// List returns the coupons currently applicable to the order. No side
// effects on the order.
func (s *Service) List(ctx context.Context, orderID string) ([]models.AvailableCoupon, error) {
	return s.backend.ListAvailableCoupons(ctx, orderID)
}

// Apply attaches a coupon code to the order. At most one coupon per order;
// the backend rejects a second apply and the error carries its message.
func (s *Service) Apply(ctx context.Context, sessionID, orderID, code string) (*models.Order, error) {
	order, err := s.backend.ApplyCoupon(ctx, orderID, code)
	if err != nil {
		return nil, err
	}

	s.audit.RecordAsync(&audit.Entry{
		SessionID: sessionID,
		Action:    "apply_coupon",
		OrderID:   orderID,
		Data: bson.M{
			"code":            code,
			"discount_amount": order.DiscountAmount.String(),
			"total_amount":    order.TotalAmount.String(),
		},
	})

	s.logger.Info("coupon applied",
		zap.String("order_id", orderID),
		zap.String("code", code),
		zap.String("discount", order.DiscountAmount.String()))

	return order, nil
}

// Remove clears the applied coupon and returns the order with the discount
// reverted.
func (s *Service) Remove(ctx context.Context, sessionID, orderID string) (*models.Order, error) {
	order, err := s.backend.RemoveCoupon(ctx, orderID)
	if err != nil {
		return nil, err
	}

	s.audit.RecordAsync(&audit.Entry{
		SessionID: sessionID,
		Action:    "remove_coupon",
		OrderID:   orderID,
		Data: bson.M{
			"total_amount": order.TotalAmount.String(),
		},
	})

	return order, nil
}
