package repositories_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"eshop/internal/models"
	"eshop/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// openTestDB opens a private in-memory SQLite database for one test.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := repositories.OpenGORM("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newOrder(userID string, total string, created time.Time, items ...string) *models.Order {
	return &models.Order{
		LineItemIDs:      items,
		ShippingAddress1: "1 Main St",
		City:             "X",
		Country:          "Y",
		Phone:            "555",
		Status:           models.DefaultOrderStatus,
		TotalPrice:       decimal.RequireFromString(total),
		UserID:           userID,
		DateCreated:      created,
	}
}

func TestGORMOrderRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMOrderRepository(openTestDB(t))

	items := []string{models.NewID(), models.NewID()}
	order := newOrder(models.NewID(), "22.98", time.Time{}, items...)
	require.NoError(t, repo.Create(ctx, order))
	assert.True(t, models.IsValidID(order.ID))
	assert.False(t, order.DateCreated.IsZero())

	got, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, items, got.LineItemIDs)
	assert.True(t, decimal.RequireFromString("22.98").Equal(got.TotalPrice))
	assert.Equal(t, "pending", got.Status)

	_, err = repo.GetByID(ctx, models.NewID())
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestGORMOrderRepository_GetByUserNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMOrderRepository(openTestDB(t))

	user := models.NewID()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	oldest := newOrder(user, "1.00", base)
	newest := newOrder(user, "3.00", base.Add(2*time.Hour))
	middle := newOrder(user, "2.00", base.Add(time.Hour))
	other := newOrder(models.NewID(), "9.00", base)
	for _, o := range []*models.Order{oldest, newest, middle, other} {
		require.NoError(t, repo.Create(ctx, o))
	}

	orders, err := repo.GetByUser(ctx, user)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, newest.ID, orders[0].ID)
	assert.Equal(t, middle.ID, orders[1].ID)
	assert.Equal(t, oldest.ID, orders[2].ID)
}

func TestGORMOrderRepository_UpdateStatusAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMOrderRepository(openTestDB(t))

	order := newOrder(models.NewID(), "5.50", time.Now())
	require.NoError(t, repo.Create(ctx, order))

	updated, err := repo.UpdateStatus(ctx, order.ID, "shipped")
	require.NoError(t, err)
	assert.Equal(t, "shipped", updated.Status)

	_, err = repo.UpdateStatus(ctx, models.NewID(), "shipped")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	deleted, err := repo.Delete(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, deleted.ID)
	assert.Equal(t, "shipped", deleted.Status)

	_, err = repo.Delete(ctx, order.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestGORMOrderRepository_Aggregates(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMOrderRepository(openTestDB(t))

	total, err := repo.SumTotalPrice(ctx)
	require.NoError(t, err)
	assert.True(t, total.IsZero())
	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	a, b := models.NewID(), models.NewID()
	require.NoError(t, repo.Create(ctx, newOrder(models.NewID(), "10.00", time.Now(), a)))
	require.NoError(t, repo.Create(ctx, newOrder(models.NewID(), "5.50", time.Now(), b)))

	total, err = repo.SumTotalPrice(ctx)
	require.NoError(t, err)
	assert.Equal(t, "15.5", total.String())
	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	refs, err := repo.ReferencedLineItemIDs(ctx)
	require.NoError(t, err)
	assert.Contains(t, refs, a)
	assert.Contains(t, refs, b)
	assert.Len(t, refs, 2)
}

func TestGORMLineItemRepository(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMLineItemRepository(openTestDB(t))

	item := &models.LineItem{Quantity: 2, ProductID: models.NewID()}
	require.NoError(t, repo.Create(ctx, item))

	got, err := repo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Quantity)
	assert.Equal(t, item.ProductID, got.ProductID)

	stale, err := repo.ListCreatedBefore(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Len(t, stale, 1)
	fresh, err := repo.ListCreatedBefore(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Empty(t, fresh)

	require.NoError(t, repo.Delete(ctx, item.ID))
	_, err = repo.GetByID(ctx, item.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, item.ID), repositories.ErrNotFound)
}

func TestGORMProductAndUserRepositories(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	categories := repositories.NewGORMCategoryRepository(db)
	products := repositories.NewGORMProductRepository(db)
	users := repositories.NewGORMUserRepository(db)

	category := &models.Category{Name: "Peripherals"}
	require.NoError(t, categories.Create(ctx, category))
	product := &models.Product{Name: "Keyboard", Price: decimal.RequireFromString("9.99"), CategoryID: category.ID}
	require.NoError(t, products.Create(ctx, product))

	gotProduct, err := products.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("9.99").Equal(gotProduct.Price))
	gotCategory, err := categories.GetByID(ctx, gotProduct.CategoryID)
	require.NoError(t, err)
	assert.Equal(t, "Peripherals", gotCategory.Name)

	user := &models.User{Name: "Ana", Email: "ana@example.com", Password: "hash"}
	require.NoError(t, users.Create(ctx, user))
	byEmail, err := users.GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = users.GetByID(ctx, models.NewID())
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	_, err = products.GetByID(ctx, models.NewID())
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
