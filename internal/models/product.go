package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category groups products in the catalog.
type Category struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(24)"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	CreatedAt time.Time `json:"created_at"`
}

// Product represents a product in the store.
type Product struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(24)"`
	Name        string          `json:"name" gorm:"type:varchar(100);not null"`
	Description string          `json:"description,omitempty" gorm:"type:varchar(500)"`
	Price       decimal.Decimal `json:"price" gorm:"type:numeric(14,2);not null"`
	Stock       int             `json:"stock"`
	CategoryID  string          `json:"category_id,omitempty" gorm:"index;type:varchar(24)"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	Category *Category `json:"category,omitempty" gorm:"-"`
}
