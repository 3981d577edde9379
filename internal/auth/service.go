package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/supermarketlabs/catalog-backend/pkg/auth"
	"github.com/supermarketlabs/catalog-backend/pkg/config"
	"github.com/supermarketlabs/catalog-backend/pkg/db/models"
	pkgerrors "github.com/supermarketlabs/catalog-backend/pkg/errors"
	"github.com/supermarketlabs/catalog-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
}

type userRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

type storeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
}

type service struct {
	users  userRepository
	stores storeRepository
	jwtCfg config.JWTConfig
	now    func() time.Time
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo  userRepository
	StoreRepo storeRepository
	JWTConfig config.JWTConfig
	Now       func() time.Time
}

// NewService constructs a login service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.StoreRepo == nil {
		return nil, fmt.Errorf("store repository is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		users:  params.UserRepo,
		stores: params.StoreRepo,
		jwtCfg: params.JWTConfig,
		now:    now,
	}, nil
}

// Login authenticates the credentials and mints an access token carrying the
// user's store binding. Unknown username and wrong password are
// indistinguishable to the caller.
func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load user")
	}

	ok, err := security.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil || !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	storeName := ""
	store, err := s.stores.FindByID(ctx, user.StoreID)
	if err == nil {
		storeName = store.Name
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load store")
	}

	token, err := pkgauth.MintAccessToken(s.jwtCfg, s.now(), pkgauth.AccessTokenPayload{
		UserID:    user.ID,
		Username:  user.Username,
		StoreName: storeName,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	return &LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   s.jwtCfg.ExpirationMinutes * 60,
	}, nil
}
