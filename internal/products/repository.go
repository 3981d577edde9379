package products

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/supermarketlabs/catalog-backend/pkg/db/models"
	"github.com/supermarketlabs/catalog-backend/pkg/enums"
)

// Repository exposes product persistence operations. Stock never moves through
// read-modify-write here: every quantity change is a single guarded UPDATE so
// concurrent writers cannot resurrect a stale value.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads the product regardless of owning store.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// ListByStore returns the store's products, newest first.
func (r *Repository) ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}

// Create inserts a new product row.
func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// descriptiveUpdate carries the replaceable product fields.
type descriptiveUpdate struct {
	Name        string
	Category    enums.ProductCategory
	Price       decimal.Decimal
	Supplier    string
	Description *string
}

// UpdateVersioned replaces the descriptive fields only when the stored version
// still matches expectedVersion. Returns the number of rows touched; zero
// means another writer got there first.
func (r *Repository) UpdateVersioned(ctx context.Context, id uuid.UUID, expectedVersion int64, update descriptiveUpdate) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(map[string]any{
			"name":        update.Name,
			"category":    update.Category,
			"price":       update.Price,
			"supplier":    update.Supplier,
			"description": update.Description,
			"version":     gorm.Expr("version + 1"),
		})
	return res.RowsAffected, res.Error
}

// IncreaseStock adds qty to the product's stock in a single UPDATE.
// Returns the number of rows touched; zero means the product is gone.
func (r *Repository) IncreaseStock(ctx context.Context, id uuid.UUID, qty int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"stock_quantity": gorm.Expr("stock_quantity + ?", qty),
			"version":        gorm.Expr("version + 1"),
		})
	return res.RowsAffected, res.Error
}

// DecreaseStockIfEnough subtracts qty only when enough stock remains. The
// predicate keeps stock_quantity from ever crossing zero, no matter how many
// writers race. Returns the number of rows touched; zero means the product is
// gone or the remaining stock was insufficient.
func (r *Repository) DecreaseStockIfEnough(ctx context.Context, id uuid.UUID, qty int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock_quantity >= ?", id, qty).
		Updates(map[string]any{
			"stock_quantity": gorm.Expr("stock_quantity - ?", qty),
			"version":        gorm.Expr("version + 1"),
		})
	return res.RowsAffected, res.Error
}

// Delete removes a product by ID.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{}).Error
}
