package stores

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/supermarketlabs/catalog-backend/pkg/db/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Store{}))
	return conn
}

func TestEnsureByNameCreatesOnce(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()

	first, err := repo.EnsureByName(ctx, "  Fresh Fields  ")
	require.NoError(t, err)
	require.Equal(t, "Fresh Fields", first.Name)

	second, err := repo.EnsureByName(ctx, "Fresh Fields")
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
}

func TestEnsureByNameRejectsEmpty(t *testing.T) {
	repo := NewRepository(openTestDB(t))

	_, err := repo.EnsureByName(context.Background(), "   ")
	require.Error(t, err)
}

func TestEnsureByNameLostInsertRaceReusesRow(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	sqlDB, err := conn.DB()
	require.NoError(t, err)

	// Sneak a same-named store in between EnsureByName's lookup miss and its
	// insert, the way a concurrent registration would.
	racerID := uuid.New()
	fired := false
	require.NoError(t, conn.Callback().Create().Before("gorm:create").Register("conflicting_insert", func(tx *gorm.DB) {
		if fired || tx.Statement.Table != "stores" {
			return
		}
		fired = true
		_, execErr := sqlDB.ExecContext(ctx, "INSERT INTO stores (id, name, created_at) VALUES (?, ?, ?)", racerID, "Fresh Fields", time.Now())
		require.NoError(t, execErr)
	}))

	store, err := repo.EnsureByName(ctx, "Fresh Fields")
	require.NoError(t, err)
	require.Equal(t, racerID, store.ID, "loser of the insert race must reuse the winner's row")

	var count int64
	require.NoError(t, conn.Model(&models.Store{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestFindByNameIsExact(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()

	_, err := repo.EnsureByName(ctx, "Corner Market")
	require.NoError(t, err)

	_, err = repo.FindByName(ctx, "corner market")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
