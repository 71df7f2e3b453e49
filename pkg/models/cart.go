package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine is a session-owned cart entry. Name, price and stock are
// snapshots taken from the catalog when the line was added or last updated;
// stock is the figure quantities are clamped against before order creation.
type CartLine struct {
	ID          uint            `gorm:"primaryKey;autoIncrement" json:"-"`
	SessionID   string          `gorm:"type:varchar(36);not null;uniqueIndex:idx_cart_session_product" json:"-"`
	ProductID   string          `gorm:"type:varchar(36);not null;uniqueIndex:idx_cart_session_product" json:"product_id"`
	ProductName string          `gorm:"type:varchar(255)" json:"product_name"`
	ImageURL    string          `gorm:"type:varchar(512)" json:"image_url"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(14,2)" json:"unit_price"`
	Stock       int             `json:"stock"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	Selected    bool            `gorm:"default:true" json:"selected"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (CartLine) TableName() string {
	return "cart_lines"
}
