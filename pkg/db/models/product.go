package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/supermarketlabs/catalog-backend/pkg/enums"
)

// Product is the unit of inventory. StockQuantity never goes below zero;
// Version is the optimistic concurrency token checked on full-record updates.
type Product struct {
	ID            uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	StoreID       uuid.UUID             `gorm:"column:store_id;type:uuid;not null;index"`
	Name          string                `gorm:"column:name;not null"`
	Category      enums.ProductCategory `gorm:"column:category;not null"`
	Price         decimal.Decimal       `gorm:"column:price;type:numeric(12,2);not null"`
	StockQuantity int                   `gorm:"column:stock_quantity;not null;default:0"`
	Supplier      string                `gorm:"column:supplier;not null"`
	Description   *string               `gorm:"column:description"`
	Version       int64                 `gorm:"column:version;not null;default:1"`
	CreatedAt     time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
