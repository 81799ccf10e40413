package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gildedlane/storefront-backend/pkg/db/models"
)

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  slug TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  description TEXT,
  category TEXT NOT NULL,
  images TEXT NOT NULL DEFAULT '{}',
  price_b2c INTEGER NOT NULL,
  price_b2b INTEGER,
  is_active INTEGER NOT NULL DEFAULT 1,
  is_featured INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	cartItems := `
CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (user_id, product_id)
);`
	require.NoError(t, db.Exec(products).Error)
	require.NoError(t, db.Exec(cartItems).Error)
	return db
}

func newProduct(t *testing.T, db *gorm.DB, name string, priceB2C int, priceB2B *int) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:       uuid.New(),
		Slug:     name + "-" + uuid.NewString()[:8],
		Name:     name,
		Category: "rings",
		Images:   pq.StringArray{"https://cdn.example.com/" + name + ".jpg"},
		PriceB2C: priceB2C,
		PriceB2B: priceB2B,
		IsActive: true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestAddQuantityMergesIntoExistingRow(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()
	product := newProduct(t, db, "gold-band", 699, nil)

	require.NoError(t, repo.AddQuantity(ctx, userID, product.ID, 2))
	require.NoError(t, repo.AddQuantity(ctx, userID, product.ID, 3))

	item, err := repo.FindItem(ctx, userID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, item.Quantity)

	var count int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSetQuantityOverwrites(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()
	product := newProduct(t, db, "silver-chain", 499, nil)

	require.NoError(t, repo.AddQuantity(ctx, userID, product.ID, 5))
	require.NoError(t, repo.SetQuantity(ctx, userID, product.ID, 7))

	item, err := repo.FindItem(ctx, userID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, item.Quantity)
}

func TestSetQuantityMissingRowReturnsNotFound(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)

	err := repo.SetQuantity(context.Background(), uuid.New(), uuid.New(), 3)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRemoveItem(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()
	product := newProduct(t, db, "pearl-stud", 899, nil)

	require.NoError(t, repo.AddQuantity(ctx, userID, product.ID, 1))
	require.NoError(t, repo.RemoveItem(ctx, userID, product.ID))

	_, err := repo.FindItem(ctx, userID, product.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRemoveItemMissingRowReturnsNotFound(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)

	err := repo.RemoveItem(context.Background(), uuid.New(), uuid.New())
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListItemsJoinsCatalogData(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()
	tradePrice := 550
	first := newProduct(t, db, "emerald-ring", 699, &tradePrice)
	second := newProduct(t, db, "ruby-pendant", 1299, nil)

	require.NoError(t, repo.AddQuantity(ctx, userID, first.ID, 2))
	require.NoError(t, repo.AddQuantity(ctx, userID, second.ID, 1))

	rows, err := repo.ListItems(ctx, userID)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, first.ID, rows[0].ProductID)
	assert.Equal(t, "emerald-ring", rows[0].Name)
	assert.Equal(t, 699, rows[0].PriceB2C)
	require.NotNil(t, rows[0].PriceB2B)
	assert.Equal(t, 550, *rows[0].PriceB2B)
	assert.Equal(t, 2, rows[0].Quantity)
	assert.Equal(t, "https://cdn.example.com/emerald-ring.jpg", rows[0].primaryImage())

	assert.Equal(t, second.ID, rows[1].ProductID)
	assert.Nil(t, rows[1].PriceB2B)
}

func TestDeleteItemsScopedToUserAndProducts(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userA := uuid.New()
	userB := uuid.New()
	brooch := newProduct(t, db, "opal-brooch", 999, nil)
	chain := newProduct(t, db, "figaro-chain", 459, nil)

	require.NoError(t, repo.AddQuantity(ctx, userA, brooch.ID, 2))
	require.NoError(t, repo.AddQuantity(ctx, userA, chain.ID, 1))
	require.NoError(t, repo.AddQuantity(ctx, userB, brooch.ID, 4))

	require.NoError(t, repo.DeleteItems(ctx, userA, []uuid.UUID{brooch.ID}))

	_, err := repo.FindItem(ctx, userA, brooch.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	kept, err := repo.FindItem(ctx, userA, chain.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, kept.Quantity)

	item, err := repo.FindItem(ctx, userB, brooch.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, item.Quantity)
}
