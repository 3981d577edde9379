package users

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/supermarketlabs/catalog-backend/internal/stores"
	"github.com/supermarketlabs/catalog-backend/pkg/config"
	"github.com/supermarketlabs/catalog-backend/pkg/db"
	"github.com/supermarketlabs/catalog-backend/pkg/db/models"
	pkgerrors "github.com/supermarketlabs/catalog-backend/pkg/errors"
	"github.com/supermarketlabs/catalog-backend/pkg/security"
)

var testPasswordCfg = config.PasswordConfig{
	ArgonMemoryKB:    8,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     8,
	ArgonKeyLen:      16,
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Store{}, &models.User{}))

	svc, err := NewService(NewRepository(conn), db.FromConn(conn), stores.NewRepository(conn), testPasswordCfg)
	require.NoError(t, err)
	return svc, conn
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr, "expected typed error, got %v", err)
	require.Equal(t, code, appErr.Code())
}

func TestCreateUserCreatesStoreWhenAbsent(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	dto, err := svc.CreateUser(ctx, CreateUserInput{
		Username:  "alice",
		Password:  "checkout-lane-5",
		Email:     "alice@example.com",
		StoreName: " Fresh Fields ",
	})
	require.NoError(t, err)
	require.Equal(t, "alice", dto.Username)
	require.Equal(t, "Fresh Fields", dto.StoreName)

	var user models.User
	require.NoError(t, conn.First(&user, "username = ?", "alice").Error)
	require.NotEqual(t, "checkout-lane-5", user.PasswordHash)

	ok, err := security.VerifyPassword("checkout-lane-5", user.PasswordHash)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCreateUserReusesExistingStore(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	first, err := svc.CreateUser(ctx, CreateUserInput{
		Username:  "alice",
		Password:  "pw-one-long",
		Email:     "alice@example.com",
		StoreName: "Fresh Fields",
	})
	require.NoError(t, err)

	second, err := svc.CreateUser(ctx, CreateUserInput{
		Username:  "bob",
		Password:  "pw-two-long",
		Email:     "bob@example.com",
		StoreName: "Fresh Fields",
	})
	require.NoError(t, err)
	require.Equal(t, first.StoreName, second.StoreName)

	var count int64
	require.NoError(t, conn.Model(&models.Store{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestCreateUserUsernameConflict(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, CreateUserInput{
		Username: "alice", Password: "pw-one-long", Email: "alice@example.com", StoreName: "A",
	})
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, CreateUserInput{
		Username: "alice", Password: "pw-two-long", Email: "other@example.com", StoreName: "B",
	})
	requireCode(t, err, pkgerrors.CodeConflict)
}

func TestCreateUserEmailConflict(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, CreateUserInput{
		Username: "alice", Password: "pw-one-long", Email: "shared@example.com", StoreName: "A",
	})
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, CreateUserInput{
		Username: "bob", Password: "pw-two-long", Email: "shared@example.com", StoreName: "B",
	})
	requireCode(t, err, pkgerrors.CodeConflict)
}

func TestGetUserNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetUser(context.Background(), uuid.New())
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestUpdateUserKeepsStoreAndCreatedAt(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, CreateUserInput{
		Username: "alice", Password: "pw-one-long", Email: "alice@example.com", StoreName: "Fresh Fields",
	})
	require.NoError(t, err)

	newName := "alice2"
	updated, err := svc.UpdateUser(ctx, created.ID, UpdateUserInput{Username: &newName})
	require.NoError(t, err)
	require.Equal(t, "alice2", updated.Username)
	require.Equal(t, "Fresh Fields", updated.StoreName)
	require.Equal(t, created.CreatedAt.Unix(), updated.CreatedAt.Unix())

	var user models.User
	require.NoError(t, conn.First(&user, "id = ?", created.ID).Error)
	require.Equal(t, "alice2", user.Username)
}

func TestUpdateUserRenameConflict(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, CreateUserInput{
		Username: "alice", Password: "pw-one-long", Email: "alice@example.com", StoreName: "A",
	})
	require.NoError(t, err)

	bob, err := svc.CreateUser(ctx, CreateUserInput{
		Username: "bob", Password: "pw-two-long", Email: "bob@example.com", StoreName: "B",
	})
	require.NoError(t, err)

	taken := "alice"
	_, err = svc.UpdateUser(ctx, bob.ID, UpdateUserInput{Username: &taken})
	requireCode(t, err, pkgerrors.CodeConflict)
}

func TestDeleteUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, CreateUserInput{
		Username: "alice", Password: "pw-one-long", Email: "alice@example.com", StoreName: "A",
	})
	require.NoError(t, err)

	deletedID, err := svc.DeleteUser(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, deletedID)

	_, err = svc.GetUser(ctx, created.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)

	_, err = svc.DeleteUser(ctx, created.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)
}
