package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/supermarketlabs/catalog-backend/internal/stores"
	"github.com/supermarketlabs/catalog-backend/pkg/config"
	"github.com/supermarketlabs/catalog-backend/pkg/db"
	"github.com/supermarketlabs/catalog-backend/pkg/db/models"
	pkgerrors "github.com/supermarketlabs/catalog-backend/pkg/errors"
	"github.com/supermarketlabs/catalog-backend/pkg/security"
)

// Service exposes user account management operations.
type Service interface {
	CreateUser(ctx context.Context, input CreateUserInput) (*UserDTO, error)
	GetUser(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	UpdateUser(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*UserDTO, error)
	DeleteUser(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

type service struct {
	repo        *Repository
	dbClient    *db.Client
	storeRepo   *stores.Repository
	passwordCfg config.PasswordConfig
}

// NewService constructs a user service instance.
func NewService(repo *Repository, dbClient *db.Client, storeRepo *stores.Repository, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if storeRepo == nil {
		return nil, fmt.Errorf("store repository required")
	}
	return &service{
		repo:        repo,
		dbClient:    dbClient,
		storeRepo:   storeRepo,
		passwordCfg: passwordCfg,
	}, nil
}

// CreateUser registers a new account, creating its store when the trimmed
// store name does not exist yet. Username is checked before email so the
// caller always learns the first conflicting field.
func (s *service) CreateUser(ctx context.Context, input CreateUserInput) (*UserDTO, error) {
	if strings.TrimSpace(input.StoreName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store name is required")
	}

	if err := s.ensureUsernameFree(ctx, input.Username, uuid.Nil); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, input.Email, uuid.Nil); err != nil {
		return nil, err
	}

	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid password")
	}

	var created *models.User
	var storeName string
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		store, err := s.storeRepo.WithTx(tx).EnsureByName(ctx, input.StoreName)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: ensure store")
		}
		storeName = store.Name

		user := &models.User{
			ID:           uuid.New(),
			Username:     input.Username,
			PasswordHash: hash,
			Email:        input.Email,
			StoreID:      store.ID,
		}
		created, err = s.repo.WithTx(tx).Create(ctx, user)
		if err != nil {
			if pkgerrors.IsUniqueViolation(err) {
				return pkgerrors.New(pkgerrors.CodeConflict, "username or email already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert user")
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return toDTO(created, storeName), nil
}

// GetUser returns the account details for the given ID.
func (s *service) GetUser(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return nil, err
	}
	storeName, err := s.storeNameOf(ctx, user)
	if err != nil {
		return nil, err
	}
	return toDTO(user, storeName), nil
}

// UpdateUser applies the provided changes. The store binding and creation
// timestamp never change here.
func (s *service) UpdateUser(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*UserDTO, error) {
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Username != nil && *input.Username != user.Username {
		if err := s.ensureUsernameFree(ctx, *input.Username, user.ID); err != nil {
			return nil, err
		}
		user.Username = *input.Username
	}
	if input.Email != nil && *input.Email != user.Email {
		if err := s.ensureEmailFree(ctx, *input.Email, user.ID); err != nil {
			return nil, err
		}
		user.Email = *input.Email
	}
	if input.Password != nil {
		hash, err := security.HashPassword(*input.Password, s.passwordCfg)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid password")
		}
		user.PasswordHash = hash
	}

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "username or email already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update user")
	}

	storeName, err := s.storeNameOf(ctx, updated)
	if err != nil {
		return nil, err
	}
	return toDTO(updated, storeName), nil
}

// DeleteUser removes the account and returns the id of the removed record.
func (s *service) DeleteUser(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return uuid.Nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete user")
	}
	return user.ID, nil
}

func (s *service) loadUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load user")
	}
	return user, nil
}

func (s *service) storeNameOf(ctx context.Context, user *models.User) (string, error) {
	store, err := s.storeRepo.FindByID(ctx, user.StoreID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load store")
	}
	return store.Name, nil
}

func (s *service) ensureUsernameFree(ctx context.Context, username string, selfID uuid.UUID) error {
	existing, err := s.repo.FindByUsername(ctx, username)
	if err == nil {
		if existing.ID != selfID {
			return pkgerrors.New(pkgerrors.CodeConflict, "username already exists")
		}
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check username")
}

func (s *service) ensureEmailFree(ctx context.Context, email string, selfID uuid.UUID) error {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		if existing.ID != selfID {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already exists")
		}
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check email")
}
