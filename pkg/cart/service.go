// Package cart owns the session cart: catalog snapshots, quantity rules,
// and the bridge that turns selected lines into an order-creation request.
package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/cellex-webapp/cellex-storefront/pkg/models"
	"go.uber.org/zap"
)

// ErrOutOfStock is returned when a product has no available stock at all.
// Quantities above a positive stock figure are clamped, not rejected.
var ErrOutOfStock = errors.New("product is out of stock")

// ErrInvalidQuantity is returned for quantities below one.
var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// Catalog looks up product snapshots (name, price, stock) for cart lines.
type Catalog interface {
	GetProduct(ctx context.Context, productID string) (*models.Product, error)
}

// LineResult is a cart mutation outcome. Warning is non-empty when the
// requested quantity was corrected to the known stock figure.
type LineResult struct {
	Line    models.CartLine `json:"line"`
	Warning string          `json:"warning,omitempty"`
}

type Service struct {
	store   Store
	catalog Catalog
	logger  *zap.Logger
}

func NewService(store Store, catalog Catalog, logger *zap.Logger) *Service {
	return &Service{
		store:   store,
		catalog: catalog,
		logger:  logger,
	}
}

// AddItem puts a product into the session cart, snapshotting name, price
// and stock from the catalog. Adding an already-present product raises its
// quantity. The stored quantity never exceeds the known stock.
func (s *Service) AddItem(ctx context.Context, sessionID, productID string, quantity int) (*LineResult, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up product: %w", err)
	}
	if product.Stock <= 0 {
		return nil, ErrOutOfStock
	}

	requested := quantity
	if existing, err := s.store.Line(ctx, sessionID, productID); err == nil {
		requested += existing.Quantity
	} else if !errors.Is(err, ErrLineNotFound) {
		return nil, err
	}

	clamped, corrected := clampQuantity(requested, product.Stock)

	line := models.CartLine{
		SessionID:   sessionID,
		ProductID:   product.ID,
		ProductName: product.Name,
		ImageURL:    product.ImageURL,
		UnitPrice:   product.Price,
		Stock:       product.Stock,
		Quantity:    clamped,
		Selected:    true,
	}
	if err := s.store.Upsert(ctx, &line); err != nil {
		return nil, err
	}

	result := &LineResult{Line: line}
	if corrected {
		result.Warning = clampWarning(product.Name, requested, clamped)
	}
	return result, nil
}

// UpdateQuantity sets the quantity of an existing line, refreshing the
// stock snapshot first. When the catalog is unreachable the last-known
// snapshot still bounds the quantity.
func (s *Service) UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) (*LineResult, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	line, err := s.store.Line(ctx, sessionID, productID)
	if err != nil {
		return nil, err
	}

	if product, err := s.catalog.GetProduct(ctx, productID); err == nil {
		line.ProductName = product.Name
		line.ImageURL = product.ImageURL
		line.UnitPrice = product.Price
		line.Stock = product.Stock
	} else {
		s.logger.Warn("stock refresh failed, using snapshot",
			zap.String("product_id", productID),
			zap.Error(err))
	}

	if line.Stock <= 0 {
		return nil, ErrOutOfStock
	}

	clamped, corrected := clampQuantity(quantity, line.Stock)
	line.Quantity = clamped

	if err := s.store.Upsert(ctx, line); err != nil {
		return nil, err
	}

	result := &LineResult{Line: *line}
	if corrected {
		result.Warning = clampWarning(line.ProductName, quantity, clamped)
	}
	return result, nil
}

func (s *Service) RemoveItem(ctx context.Context, sessionID, productID string) error {
	return s.store.Remove(ctx, sessionID, productID)
}

func (s *Service) List(ctx context.Context, sessionID string) ([]models.CartLine, error) {
	return s.store.Lines(ctx, sessionID)
}

func (s *Service) SetSelected(ctx context.Context, sessionID, productID string, selected bool) error {
	return s.store.SetSelected(ctx, sessionID, productID, selected)
}

// clampQuantity bounds requested to [1, stock] and reports whether a
// correction happened.
func clampQuantity(requested, stock int) (int, bool) {
	if requested > stock {
		return stock, true
	}
	return requested, false
}

func clampWarning(productName string, requested, clamped int) string {
	return fmt.Sprintf("only %d of %q in stock, quantity was adjusted from %d", clamped, productName, requested)
}
