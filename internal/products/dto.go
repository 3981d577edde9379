package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/supermarketlabs/catalog-backend/pkg/db/models"
	"github.com/supermarketlabs/catalog-backend/pkg/enums"
)

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name          string
	Category      enums.ProductCategory
	Price         decimal.Decimal
	StockQuantity int
	Supplier      string
	Description   *string
}

// UpdateProductInput replaces the descriptive fields of a product. Version is
// the value the client read; a stale version loses the write.
type UpdateProductInput struct {
	Name        string
	Category    enums.ProductCategory
	Price       decimal.Decimal
	Supplier    string
	Description *string
	Version     int64
}

// ProductDTO is the outward representation of a catalog product.
type ProductDTO struct {
	ID            uuid.UUID             `json:"id"`
	StoreID       uuid.UUID             `json:"store_id"`
	Name          string                `json:"name"`
	Category      enums.ProductCategory `json:"category"`
	Price         decimal.Decimal       `json:"price"`
	StockQuantity int                   `json:"stock_quantity"`
	Supplier      string                `json:"supplier"`
	Description   *string               `json:"description,omitempty"`
	Version       int64                 `json:"version"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

func toDTO(p *models.Product) *ProductDTO {
	return &ProductDTO{
		ID:            p.ID,
		StoreID:       p.StoreID,
		Name:          p.Name,
		Category:      p.Category,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
		Supplier:      p.Supplier,
		Description:   p.Description,
		Version:       p.Version,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
