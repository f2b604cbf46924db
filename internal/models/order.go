package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultOrderStatus is assigned when an order is placed without a status.
const DefaultOrderStatus = "pending"

// LineItem is a purchased quantity of one product. It is created while an
// order is placed and is never updated afterwards.
type LineItem struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(24)"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	ProductID string    `json:"product_id" gorm:"index;type:varchar(24);not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`

	Product *Product `json:"product,omitempty" gorm:"-"`
}

// Order is the aggregate record of a purchase. Line items are referenced by
// id, in placement order, rather than embedded.
type Order struct {
	ID               string          `json:"id" gorm:"primaryKey;type:varchar(24)"`
	LineItemIDs      []string        `json:"line_item_ids" gorm:"column:line_item_ids;serializer:json"`
	ShippingAddress1 string          `json:"shipping_address1" gorm:"type:varchar(255);not null"`
	ShippingAddress2 string          `json:"shipping_address2,omitempty" gorm:"type:varchar(255)"`
	City             string          `json:"city" gorm:"type:varchar(100);not null"`
	Zip              string          `json:"zip,omitempty" gorm:"type:varchar(20)"`
	Country          string          `json:"country" gorm:"type:varchar(100);not null"`
	Phone            string          `json:"phone" gorm:"type:varchar(50);not null"`
	Status           string          `json:"status" gorm:"type:varchar(50);not null"`
	TotalPrice       decimal.Decimal `json:"total_price" gorm:"type:numeric(14,2);not null"`
	UserID           string          `json:"user_id" gorm:"index;type:varchar(24);not null"`
	DateCreated      time.Time       `json:"date_created" gorm:"index"`

	// Populated on reads that join line items and the owner.
	LineItems []LineItem   `json:"line_items,omitempty" gorm:"-"`
	User      *UserSummary `json:"user,omitempty" gorm:"-"`
}
