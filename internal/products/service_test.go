package products

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/supermarketlabs/catalog-backend/internal/authz"
	"github.com/supermarketlabs/catalog-backend/pkg/db"
	"github.com/supermarketlabs/catalog-backend/pkg/db/models"
	"github.com/supermarketlabs/catalog-backend/pkg/enums"
	pkgerrors "github.com/supermarketlabs/catalog-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Store{}, &models.Product{}))

	svc, err := NewService(NewRepository(conn), db.FromConn(conn), nil)
	require.NoError(t, err)
	return svc, conn
}

func seedPrincipal(t *testing.T, conn *gorm.DB, username, storeName string) *authz.Principal {
	t.Helper()

	store := &models.Store{ID: uuid.New(), Name: storeName}
	require.NoError(t, conn.Create(store).Error)
	return &authz.Principal{
		UserID:    uuid.New(),
		Username:  username,
		StoreID:   store.ID,
		StoreName: store.Name,
	}
}

func mustCreateProduct(t *testing.T, svc Service, principal *authz.Principal, stock int) *ProductDTO {
	t.Helper()

	dto, err := svc.CreateProduct(context.Background(), principal, CreateProductInput{
		Name:          "Whole Milk 1L",
		Category:      enums.ProductCategoryDairy,
		Price:         decimal.RequireFromString("5.90"),
		StockQuantity: stock,
		Supplier:      "Valley Farms",
	})
	require.NoError(t, err)
	return dto
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr, "expected typed error, got %v", err)
	require.Equal(t, code, appErr.Code())
}

func TestCreateAndGetProduct(t *testing.T) {
	svc, conn := newTestService(t)
	alice := seedPrincipal(t, conn, "alice", "Fresh Fields")
	ctx := context.Background()

	created := mustCreateProduct(t, svc, alice, 10)
	require.Equal(t, alice.StoreID, created.StoreID)
	require.EqualValues(t, 1, created.Version)

	got, err := svc.GetProduct(ctx, alice, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Whole Milk 1L", got.Name)
	require.True(t, got.Price.Equal(decimal.RequireFromString("5.90")), "price drifted: %s", got.Price)
	require.Equal(t, 10, got.StockQuantity)
}

func TestCreateProductValidation(t *testing.T) {
	svc, conn := newTestService(t)
	alice := seedPrincipal(t, conn, "alice", "Fresh Fields")
	ctx := context.Background()

	cases := []struct {
		name  string
		input CreateProductInput
	}{
		{"empty name", CreateProductInput{Name: " ", Category: enums.ProductCategoryDairy, Price: decimal.NewFromInt(1), Supplier: "x"}},
		{"empty supplier", CreateProductInput{Name: "Milk", Category: enums.ProductCategoryDairy, Price: decimal.NewFromInt(1), Supplier: " "}},
		{"bad category", CreateProductInput{Name: "Milk", Category: "electronics", Price: decimal.NewFromInt(1), Supplier: "x"}},
		{"zero price", CreateProductInput{Name: "Milk", Category: enums.ProductCategoryDairy, Price: decimal.Zero, Supplier: "x"}},
		{"negative price", CreateProductInput{Name: "Milk", Category: enums.ProductCategoryDairy, Price: decimal.NewFromInt(-2), Supplier: "x"}},
		{"negative stock", CreateProductInput{Name: "Milk", Category: enums.ProductCategoryDairy, Price: decimal.NewFromInt(1), Supplier: "x", StockQuantity: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateProduct(ctx, alice, tc.input)
			requireCode(t, err, pkgerrors.CodeValidation)
		})
	}
}

func TestStockLifecycle(t *testing.T) {
	svc, conn := newTestService(t)
	alice := seedPrincipal(t, conn, "alice", "Fresh Fields")
	ctx := context.Background()

	created := mustCreateProduct(t, svc, alice, 10)

	increased, err := svc.IncreaseStock(ctx, alice, created.ID, 5)
	require.NoError(t, err)
	require.Equal(t, 15, increased.StockQuantity)

	decreased, err := svc.DecreaseStock(ctx, alice, created.ID, 15)
	require.NoError(t, err)
	require.Equal(t, 0, decreased.StockQuantity)

	_, err = svc.DecreaseStock(ctx, alice, created.ID, 1)
	requireCode(t, err, pkgerrors.CodeValidation)

	got, err := svc.GetProduct(ctx, alice, created.ID)
	require.NoError(t, err)
	require.Equal(t, 0, got.StockQuantity)
}

func TestDecreaseStockNeverGoesNegative(t *testing.T) {
	svc, conn := newTestService(t)
	alice := seedPrincipal(t, conn, "alice", "Fresh Fields")
	ctx := context.Background()

	created := mustCreateProduct(t, svc, alice, 10)

	// Two writers both saw stock 10 and both try to take 8. The guarded
	// UPDATE lets exactly one through.
	first, err := svc.DecreaseStock(ctx, alice, created.ID, 8)
	require.NoError(t, err)
	require.Equal(t, 2, first.StockQuantity)

	_, err = svc.DecreaseStock(ctx, alice, created.ID, 8)
	requireCode(t, err, pkgerrors.CodeValidation)

	got, err := svc.GetProduct(ctx, alice, created.ID)
	require.NoError(t, err)
	require.Equal(t, 2, got.StockQuantity)
}

func TestConcurrentDecreasesHaveOneWinner(t *testing.T) {
	svc, conn := newTestService(t)
	alice := seedPrincipal(t, conn, "alice", "Fresh Fields")
	ctx := context.Background()

	created := mustCreateProduct(t, svc, alice, 10)

	// One pooled connection keeps sqlite from returning busy errors while
	// the goroutines contend for the same row.
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	results := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.DecreaseStock(ctx, alice, created.ID, 8)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	var rejections []error
	for err := range results {
		if err == nil {
			wins++
			continue
		}
		rejections = append(rejections, err)
	}
	require.Equal(t, 1, wins, "exactly one decrease must land")
	require.Len(t, rejections, 1)
	requireCode(t, rejections[0], pkgerrors.CodeValidation)

	got, err := svc.GetProduct(ctx, alice, created.ID)
	require.NoError(t, err)
	require.Equal(t, 2, got.StockQuantity)
}

func TestStockAmountMustBePositive(t *testing.T) {
	svc, conn := newTestService(t)
	alice := seedPrincipal(t, conn, "alice", "Fresh Fields")
	ctx := context.Background()

	created := mustCreateProduct(t, svc, alice, 10)

	for _, qty := range []int{0, -3} {
		_, err := svc.IncreaseStock(ctx, alice, created.ID, qty)
		requireCode(t, err, pkgerrors.CodeValidation)

		_, err = svc.DecreaseStock(ctx, alice, created.ID, qty)
		requireCode(t, err, pkgerrors.CodeValidation)
	}
}

func TestUpdateProductReplacesDescriptiveFieldsOnly(t *testing.T) {
	svc, conn := newTestService(t)
	alice := seedPrincipal(t, conn, "alice", "Fresh Fields")
	ctx := context.Background()

	created := mustCreateProduct(t, svc, alice, 10)

	desc := "organic"
	updated, err := svc.UpdateProduct(ctx, alice, created.ID, UpdateProductInput{
		Name:        "Whole Milk 2L",
		Category:    enums.ProductCategoryDairy,
		Price:       decimal.RequireFromString("7.50"),
		Supplier:    "Hill Dairy",
		Description: &desc,
		Version:     created.Version,
	})
	require.NoError(t, err)
	require.Equal(t, "Whole Milk 2L", updated.Name)
	require.Equal(t, 10, updated.StockQuantity, "update must not touch stock")
	require.Equal(t, created.StoreID, updated.StoreID)
	require.Equal(t, created.CreatedAt.Unix(), updated.CreatedAt.Unix())
	require.EqualValues(t, created.Version+1, updated.Version)
}

func TestUpdateProductStaleVersionConflicts(t *testing.T) {
	svc, conn := newTestService(t)
	alice := seedPrincipal(t, conn, "alice", "Fresh Fields")
	ctx := context.Background()

	created := mustCreateProduct(t, svc, alice, 10)

	// Two clients read version 1; the slower one must not overwrite the
	// faster one's changes.
	input := UpdateProductInput{
		Name:     "Whole Milk 2L",
		Category: enums.ProductCategoryDairy,
		Price:    decimal.RequireFromString("7.50"),
		Supplier: "Hill Dairy",
		Version:  created.Version,
	}
	_, err := svc.UpdateProduct(ctx, alice, created.ID, input)
	require.NoError(t, err)

	input.Name = "Skim Milk 1L"
	_, err = svc.UpdateProduct(ctx, alice, created.ID, input)
	requireCode(t, err, pkgerrors.CodeWriteConflict)

	got, err := svc.GetProduct(ctx, alice, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Whole Milk 2L", got.Name)
}

func TestCrossStoreAccessIsUnauthorized(t *testing.T) {
	svc, conn := newTestService(t)
	alice := seedPrincipal(t, conn, "alice", "Fresh Fields")
	bob := seedPrincipal(t, conn, "bob", "Corner Market")
	ctx := context.Background()

	created := mustCreateProduct(t, svc, alice, 10)

	_, err := svc.GetProduct(ctx, bob, created.ID)
	requireCode(t, err, pkgerrors.CodeUnauthorized)

	_, err = svc.IncreaseStock(ctx, bob, created.ID, 5)
	requireCode(t, err, pkgerrors.CodeUnauthorized)

	_, err = svc.DecreaseStock(ctx, bob, created.ID, 5)
	requireCode(t, err, pkgerrors.CodeUnauthorized)

	_, err = svc.UpdateProduct(ctx, bob, created.ID, UpdateProductInput{
		Name: "Hijacked", Category: enums.ProductCategoryDairy,
		Price: decimal.NewFromInt(1), Supplier: "x", Version: created.Version,
	})
	requireCode(t, err, pkgerrors.CodeUnauthorized)

	_, err = svc.DeleteProduct(ctx, bob, created.ID)
	requireCode(t, err, pkgerrors.CodeUnauthorized)

	// alice's product is untouched
	got, err := svc.GetProduct(ctx, alice, created.ID)
	require.NoError(t, err)
	require.Equal(t, 10, got.StockQuantity)
	require.Equal(t, "Whole Milk 1L", got.Name)
}

func TestStoreLessPrincipalIsUnauthorized(t *testing.T) {
	svc, conn := newTestService(t)
	alice := seedPrincipal(t, conn, "alice", "Fresh Fields")
	ctx := context.Background()

	created := mustCreateProduct(t, svc, alice, 10)
	nobody := &authz.Principal{UserID: uuid.New(), Username: "nobody"}

	_, err := svc.CreateProduct(ctx, nobody, CreateProductInput{
		Name: "Milk", Category: enums.ProductCategoryDairy,
		Price: decimal.NewFromInt(1), Supplier: "x",
	})
	requireCode(t, err, pkgerrors.CodeUnauthorized)

	_, err = svc.GetProduct(ctx, nobody, created.ID)
	requireCode(t, err, pkgerrors.CodeUnauthorized)

	_, err = svc.ListProducts(ctx, nobody)
	requireCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestUnknownProductIsNotFound(t *testing.T) {
	svc, conn := newTestService(t)
	alice := seedPrincipal(t, conn, "alice", "Fresh Fields")
	ctx := context.Background()

	_, err := svc.GetProduct(ctx, alice, uuid.New())
	requireCode(t, err, pkgerrors.CodeNotFound)

	_, err = svc.IncreaseStock(ctx, alice, uuid.New(), 5)
	requireCode(t, err, pkgerrors.CodeNotFound)

	_, err = svc.DeleteProduct(ctx, alice, uuid.New())
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestDeleteProductRemovesIt(t *testing.T) {
	svc, conn := newTestService(t)
	alice := seedPrincipal(t, conn, "alice", "Fresh Fields")
	ctx := context.Background()

	created := mustCreateProduct(t, svc, alice, 10)
	deletedID, err := svc.DeleteProduct(ctx, alice, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, deletedID)

	_, err = svc.GetProduct(ctx, alice, created.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestListProductsIsStoreScoped(t *testing.T) {
	svc, conn := newTestService(t)
	alice := seedPrincipal(t, conn, "alice", "Fresh Fields")
	bob := seedPrincipal(t, conn, "bob", "Corner Market")
	ctx := context.Background()

	mustCreateProduct(t, svc, alice, 10)
	mustCreateProduct(t, svc, alice, 3)

	mine, err := svc.ListProducts(ctx, alice)
	require.NoError(t, err)
	require.Len(t, mine, 2)

	theirs, err := svc.ListProducts(ctx, bob)
	require.NoError(t, err)
	require.Empty(t, theirs)
}
