package stores

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/supermarketlabs/catalog-backend/pkg/db/models"
	pkgerrors "github.com/supermarketlabs/catalog-backend/pkg/errors"
)

// Repository exposes store persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a stores repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads a store by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).First(&store, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// FindByName retrieves the store matching the provided name exactly.
func (r *Repository) FindByName(ctx context.Context, name string) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// Create inserts a new store row.
func (r *Repository) Create(ctx context.Context, store *models.Store) (*models.Store, error) {
	if err := r.db.WithContext(ctx).Create(store).Error; err != nil {
		return nil, err
	}
	return store, nil
}

// EnsureByName returns the store with the given trimmed name, creating it when absent.
func (r *Repository) EnsureByName(ctx context.Context, name string) (*models.Store, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, gorm.ErrRecordNotFound
	}

	store, err := r.FindByName(ctx, trimmed)
	if err == nil {
		return store, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created := &models.Store{ID: uuid.New(), Name: trimmed}
	// The savepoint keeps an enclosing transaction usable when the insert
	// loses a race with a concurrent registration of the same name.
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(created).Error
	})
	if err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return r.FindByName(ctx, trimmed)
		}
		return nil, err
	}
	return created, nil
}
