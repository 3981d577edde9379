package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/supermarketlabs/catalog-backend/internal/authz"
	"github.com/supermarketlabs/catalog-backend/pkg/db"
	"github.com/supermarketlabs/catalog-backend/pkg/db/models"
	"github.com/supermarketlabs/catalog-backend/pkg/enums"
	pkgerrors "github.com/supermarketlabs/catalog-backend/pkg/errors"
	"github.com/supermarketlabs/catalog-backend/pkg/metrics"
)

// Service exposes store-scoped catalog operations. Every call runs as the
// provided principal; a principal without a store cannot touch the catalog.
type Service interface {
	CreateProduct(ctx context.Context, principal *authz.Principal, input CreateProductInput) (*ProductDTO, error)
	GetProduct(ctx context.Context, principal *authz.Principal, productID uuid.UUID) (*ProductDTO, error)
	ListProducts(ctx context.Context, principal *authz.Principal) ([]ProductDTO, error)
	UpdateProduct(ctx context.Context, principal *authz.Principal, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	IncreaseStock(ctx context.Context, principal *authz.Principal, productID uuid.UUID, qty int) (*ProductDTO, error)
	DecreaseStock(ctx context.Context, principal *authz.Principal, productID uuid.UUID, qty int) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, principal *authz.Principal, productID uuid.UUID) (uuid.UUID, error)
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	stock    *metrics.StockMetrics
}

// NewService constructs a product service instance. Stock metrics may be nil.
func NewService(repo *Repository, dbClient *db.Client, stock *metrics.StockMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient, stock: stock}, nil
}

// CreateProduct inserts a product owned by the principal's store.
func (s *service) CreateProduct(ctx context.Context, principal *authz.Principal, input CreateProductInput) (*ProductDTO, error) {
	if err := authz.RequireStore(principal); err != nil {
		return nil, err
	}
	if err := validateDescriptive(input.Name, input.Supplier, input.Category, input.Price); err != nil {
		return nil, err
	}
	if input.StockQuantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}

	product := &models.Product{
		ID:            uuid.New(),
		StoreID:       principal.StoreID,
		Name:          strings.TrimSpace(input.Name),
		Category:      input.Category,
		Price:         input.Price,
		StockQuantity: input.StockQuantity,
		Supplier:      strings.TrimSpace(input.Supplier),
		Description:   input.Description,
		Version:       1,
	}
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
	}
	return toDTO(created), nil
}

// GetProduct returns the product when it belongs to the principal's store.
func (s *service) GetProduct(ctx context.Context, principal *authz.Principal, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.authorize(ctx, principal, productID)
	if err != nil {
		return nil, err
	}
	return toDTO(product), nil
}

// ListProducts returns the principal's store catalog, newest first.
func (s *service) ListProducts(ctx context.Context, principal *authz.Principal) ([]ProductDTO, error) {
	if err := authz.RequireStore(principal); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByStore(ctx, principal.StoreID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list products")
	}
	dtos := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *toDTO(&rows[i]))
	}
	return dtos, nil
}

// UpdateProduct replaces the descriptive fields. Stock, store, and creation
// time are never touched here. The write only lands when the stored version
// still matches the version the client read.
func (s *service) UpdateProduct(ctx context.Context, principal *authz.Principal, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	if _, err := s.authorize(ctx, principal, productID); err != nil {
		return nil, err
	}
	if err := validateDescriptive(input.Name, input.Supplier, input.Category, input.Price); err != nil {
		return nil, err
	}

	rows, err := s.repo.UpdateVersioned(ctx, productID, input.Version, descriptiveUpdate{
		Name:        strings.TrimSpace(input.Name),
		Category:    input.Category,
		Price:       input.Price,
		Supplier:    strings.TrimSpace(input.Supplier),
		Description: input.Description,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
	}
	if rows == 0 {
		if _, reloadErr := s.repo.FindByID(ctx, productID); errors.Is(reloadErr, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		s.stock.IncRejected("write_conflict")
		return nil, pkgerrors.New(pkgerrors.CodeWriteConflict, "product changed concurrently")
	}

	return s.reload(ctx, productID)
}

// IncreaseStock adds qty units of stock.
func (s *service) IncreaseStock(ctx context.Context, principal *authz.Principal, productID uuid.UUID, qty int) (*ProductDTO, error) {
	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock amount must be positive")
	}
	if _, err := s.authorize(ctx, principal, productID); err != nil {
		return nil, err
	}

	rows, err := s.repo.IncreaseStock(ctx, productID, qty)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: increase stock")
	}
	if rows == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	s.stock.IncApplied("increase")
	return s.reload(ctx, productID)
}

// DecreaseStock removes qty units of stock. The decrement is refused, not
// clamped, when it would drive stock below zero.
func (s *service) DecreaseStock(ctx context.Context, principal *authz.Principal, productID uuid.UUID, qty int) (*ProductDTO, error) {
	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock amount must be positive")
	}
	if _, err := s.authorize(ctx, principal, productID); err != nil {
		return nil, err
	}

	rows, err := s.repo.DecreaseStockIfEnough(ctx, productID, qty)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: decrease stock")
	}
	if rows == 0 {
		if _, reloadErr := s.repo.FindByID(ctx, productID); errors.Is(reloadErr, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		s.stock.IncRejected("insufficient_stock")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}

	s.stock.IncApplied("decrease")
	return s.reload(ctx, productID)
}

// DeleteProduct removes the product from the principal's catalog and returns
// the id of the removed record.
func (s *service) DeleteProduct(ctx context.Context, principal *authz.Principal, productID uuid.UUID) (uuid.UUID, error) {
	product, err := s.authorize(ctx, principal, productID)
	if err != nil {
		return uuid.Nil, err
	}
	if err := s.repo.Delete(ctx, productID); err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete product")
	}
	return product.ID, nil
}

// authorize loads the product and confirms the principal's store owns it.
// A cross-store probe gets the same Unauthorized a store-less principal gets.
func (s *service) authorize(ctx context.Context, principal *authz.Principal, productID uuid.UUID) (*models.Product, error) {
	if err := authz.RequireStore(principal); err != nil {
		return nil, err
	}

	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	if product.StoreID != principal.StoreID {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "access denied")
	}
	return product, nil
}

func (s *service) reload(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reload product")
	}
	return toDTO(product), nil
}

func validateDescriptive(name, supplier string, category enums.ProductCategory, price decimal.Decimal) error {
	if strings.TrimSpace(name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if strings.TrimSpace(supplier) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "supplier is required")
	}
	if !category.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown category %q", category))
	}
	if !price.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	return nil
}
