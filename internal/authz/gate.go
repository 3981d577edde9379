package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/supermarketlabs/catalog-backend/pkg/auth"
	"github.com/supermarketlabs/catalog-backend/pkg/db/models"
	pkgerrors "github.com/supermarketlabs/catalog-backend/pkg/errors"
)

// Principal is the resolved identity every store-scoped operation runs as.
// StoreID is the zero UUID when the token carried no store binding.
type Principal struct {
	UserID    uuid.UUID
	Username  string
	StoreID   uuid.UUID
	StoreName string
}

// HasStore reports whether the principal is bound to a store.
func (p *Principal) HasStore() bool {
	return p != nil && p.StoreID != uuid.Nil
}

type userLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type storeLoader interface {
	FindByName(ctx context.Context, name string) (*models.Store, error)
}

// Gate resolves token claims into a Principal and enforces the store
// membership every catalog mutation requires.
type Gate struct {
	users  userLoader
	stores storeLoader
}

// NewGate constructs the authorization gate.
func NewGate(users userLoader, stores storeLoader) (*Gate, error) {
	if users == nil {
		return nil, fmt.Errorf("user loader required")
	}
	if stores == nil {
		return nil, fmt.Errorf("store loader required")
	}
	return &Gate{users: users, stores: stores}, nil
}

// Resolve validates the claims against the current user and store records.
// Any mismatch yields Unauthorized; the caller never learns which check failed.
func (g *Gate) Resolve(ctx context.Context, claims *auth.AccessTokenClaims) (*Principal, error) {
	if claims == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}

	user, err := g.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "unknown principal")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load principal")
	}
	if user.Username != claims.Username {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "unknown principal")
	}

	principal := &Principal{
		UserID:   user.ID,
		Username: user.Username,
	}

	if claims.StoreName == "" {
		return principal, nil
	}

	store, err := g.stores.FindByName(ctx, claims.StoreName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "unknown principal")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load principal store")
	}
	if store.ID != user.StoreID {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "unknown principal")
	}

	principal.StoreID = store.ID
	principal.StoreName = store.Name
	return principal, nil
}

// RequireStore rejects principals without a store binding.
func RequireStore(p *Principal) error {
	if !p.HasStore() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "operation requires a store")
	}
	return nil
}
