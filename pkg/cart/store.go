package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/cellex-webapp/cellex-storefront/pkg/models"
	"gorm.io/gorm"
)

// ErrLineNotFound is returned when a session has no cart line for the
// requested product.
var ErrLineNotFound = errors.New("cart line not found")

// Store persists session carts. Implementations must scope every operation
// to the given session; lines of other sessions are invisible.
type Store interface {
	Upsert(ctx context.Context, line *models.CartLine) error
	Line(ctx context.Context, sessionID, productID string) (*models.CartLine, error)
	Lines(ctx context.Context, sessionID string) ([]models.CartLine, error)
	SelectedLines(ctx context.Context, sessionID string) ([]models.CartLine, error)
	Remove(ctx context.Context, sessionID, productID string) error
	SetSelected(ctx context.Context, sessionID, productID string, selected bool) error
	Clear(ctx context.Context, sessionID string) error
}

// MySQLStore is the gorm-backed Store.
type MySQLStore struct {
	db *gorm.DB
}

func NewMySQLStore(db *gorm.DB) (*MySQLStore, error) {
	if err := db.AutoMigrate(&models.CartLine{}); err != nil {
		return nil, fmt.Errorf("failed to migrate cart schema: %w", err)
	}
	return &MySQLStore{db: db}, nil
}

func (s *MySQLStore) Upsert(ctx context.Context, line *models.CartLine) error {
	existing, err := s.Line(ctx, line.SessionID, line.ProductID)
	if err != nil && !errors.Is(err, ErrLineNotFound) {
		return err
	}
	if existing != nil {
		line.ID = existing.ID
		line.CreatedAt = existing.CreatedAt
	}
	return s.db.WithContext(ctx).Save(line).Error
}

func (s *MySQLStore) Line(ctx context.Context, sessionID, productID string) (*models.CartLine, error) {
	var line models.CartLine
	err := s.db.WithContext(ctx).
		Where("session_id = ? AND product_id = ?", sessionID, productID).
		First(&line).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLineNotFound
		}
		return nil, fmt.Errorf("failed to load cart line: %w", err)
	}
	return &line, nil
}

func (s *MySQLStore) Lines(ctx context.Context, sessionID string) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&lines).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cart lines: %w", err)
	}
	return lines, nil
}

func (s *MySQLStore) SelectedLines(ctx context.Context, sessionID string) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := s.db.WithContext(ctx).
		Where("session_id = ? AND selected = ?", sessionID, true).
		Order("created_at ASC").
		Find(&lines).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list selected cart lines: %w", err)
	}
	return lines, nil
}

func (s *MySQLStore) Remove(ctx context.Context, sessionID, productID string) error {
	result := s.db.WithContext(ctx).
		Where("session_id = ? AND product_id = ?", sessionID, productID).
		Delete(&models.CartLine{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove cart line: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrLineNotFound
	}
	return nil
}

func (s *MySQLStore) SetSelected(ctx context.Context, sessionID, productID string, selected bool) error {
	result := s.db.WithContext(ctx).
		Model(&models.CartLine{}).
		Where("session_id = ? AND product_id = ?", sessionID, productID).
		Update("selected", selected)
	if result.Error != nil {
		return fmt.Errorf("failed to update cart line selection: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrLineNotFound
	}
	return nil
}

func (s *MySQLStore) Clear(ctx context.Context, sessionID string) error {
	return s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Delete(&models.CartLine{}).Error
}
