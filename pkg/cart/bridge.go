package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/cellex-webapp/cellex-storefront/pkg/models"
	"go.uber.org/zap"
)

// ErrEmptySelection is returned when order creation is attempted with no
// selected cart lines.
var ErrEmptySelection = errors.New("no cart lines selected for order")

// ErrNotInCart is returned when a requested product has no line in the
// session's cart.
var ErrNotInCart = errors.New("product is not in the cart")

// OrderCreator is the backend call that turns cart items into an order.
type OrderCreator interface {
	CreateOrderFromCart(ctx context.Context, items []models.CreateOrderItem) (*models.Order, error)
}

// ClampWarning records a quantity that was corrected to the known stock
// figure before the request went out. The backend never sees the original
// over-limit quantity.
type ClampWarning struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Requested   int    `json:"requested"`
	Clamped     int    `json:"clamped"`
}

func (w ClampWarning) String() string {
	return fmt.Sprintf("quantity for %q adjusted from %d to %d (stock limit)", w.ProductName, w.Requested, w.Clamped)
}

// Bridge converts selected cart lines into an order-creation request.
type Bridge struct {
	store  Store
	orders OrderCreator
	logger *zap.Logger
}

func NewBridge(store Store, orders OrderCreator, logger *zap.Logger) *Bridge {
	return &Bridge{
		store:  store,
		orders: orders,
		logger: logger,
	}
}

// CreateOrder builds the order request and submits it. With an empty
// requested slice every selected line goes in at its cart quantity;
// otherwise each requested item must reference a line the session owns and
// its quantity overrides the cart's. Quantities are clamped to the
// last-known stock with a warning per corrected line; ordered lines are
// removed from the cart once the backend accepts the order.
func (b *Bridge) CreateOrder(ctx context.Context, sessionID string, requested []models.CreateOrderItem) (*models.Order, []ClampWarning, error) {
	lines, err := b.store.SelectedLines(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	byProduct := make(map[string]models.CartLine, len(lines))
	for _, line := range lines {
		byProduct[line.ProductID] = line
	}

	if len(requested) == 0 {
		requested = make([]models.CreateOrderItem, 0, len(lines))
		for _, line := range lines {
			requested = append(requested, models.CreateOrderItem{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
			})
		}
	}
	if len(requested) == 0 {
		return nil, nil, ErrEmptySelection
	}

	items := make([]models.CreateOrderItem, 0, len(requested))
	var warnings []ClampWarning
	for _, item := range requested {
		line, ok := byProduct[item.ProductID]
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrNotInCart, item.ProductID)
		}
		if item.Quantity < 1 {
			return nil, nil, fmt.Errorf("%w: product %s", ErrInvalidQuantity, item.ProductID)
		}

		quantity, corrected := clampQuantity(item.Quantity, line.Stock)
		if corrected {
			warnings = append(warnings, ClampWarning{
				ProductID:   line.ProductID,
				ProductName: line.ProductName,
				Requested:   item.Quantity,
				Clamped:     quantity,
			})
		}
		items = append(items, models.CreateOrderItem{
			ProductID: item.ProductID,
			Quantity:  quantity,
		})
	}

	order, err := b.orders.CreateOrderFromCart(ctx, items)
	if err != nil {
		return nil, nil, err
	}

	for _, item := range items {
		if err := b.store.Remove(ctx, sessionID, item.ProductID); err != nil && !errors.Is(err, ErrLineNotFound) {
			b.logger.Warn("failed to clear ordered cart line",
				zap.String("session_id", sessionID),
				zap.String("product_id", item.ProductID),
				zap.Error(err))
		}
	}

	return order, warnings, nil
}
