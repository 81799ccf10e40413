package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gildedlane/storefront-backend/internal/cart"
	"github.com/gildedlane/storefront-backend/internal/products"
	"github.com/gildedlane/storefront-backend/pkg/db/models"
	"github.com/gildedlane/storefront-backend/pkg/enums"
	pkgerrors "github.com/gildedlane/storefront-backend/pkg/errors"
	"github.com/gildedlane/storefront-backend/pkg/types"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	productsTable := `
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
	ordersTable := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL UNIQUE,
  user_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  payment_method TEXT NOT NULL,
  subtotal INTEGER NOT NULL,
  shipping_fee INTEGER NOT NULL DEFAULT 0,
  total INTEGER NOT NULL,
  shipping_address TEXT NOT NULL,
  billing_address TEXT NOT NULL,
  delivery_date DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderLineItems := `
CREATE TABLE IF NOT EXISTS order_line_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  product_name TEXT NOT NULL,
  product_image TEXT NOT NULL DEFAULT '',
  quantity INTEGER NOT NULL,
  unit_price INTEGER NOT NULL,
  line_total INTEGER NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(productsTable).Error)
	require.NoError(t, db.Exec(cartItems).Error)
	require.NoError(t, db.Exec(ordersTable).Error)
	require.NoError(t, db.Exec(orderLineItems).Error)
	return db
}

type testTransactor struct {
	db *gorm.DB
}

func (t *testTransactor) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return t.db.WithContext(ctx).Transaction(fn)
}

type stubVerifier struct {
	email bool
	phone bool
}

func (s *stubVerifier) IsVerified(_ context.Context, _ string, channel enums.VerificationChannel, _ string) (bool, error) {
	if channel == enums.VerificationChannelEmail {
		return s.email, nil
	}
	return s.phone, nil
}

type orderTestHarness struct {
	db       *gorm.DB
	svc      Service
	cartRepo *cart.Repository
	verifier *stubVerifier
}

func newOrderTestHarness(t *testing.T) *orderTestHarness {
	t.Helper()

	db := setupOrdersTestDB(t)
	verifier := &stubVerifier{email: true, phone: true}
	cartRepo := cart.NewRepository(db)
	svc, err := NewService(ServiceParams{
		DB:          &testTransactor{db: db},
		OrderRepo:   NewRepository(db),
		CartRepo:    cartRepo,
		ProductRepo: products.NewRepository(db),
		Verifier:    verifier,
		ShippingFee: 0,
	})
	require.NoError(t, err)
	return &orderTestHarness{db: db, svc: svc, cartRepo: cartRepo, verifier: verifier}
}

func (h *orderTestHarness) newProduct(t *testing.T, name string, priceB2C int, priceB2B *int, active bool) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:       uuid.New(),
		Slug:     name + "-" + uuid.NewString()[:8],
		Name:     name,
		Category: "earrings",
		Images:   pq.StringArray{"https://cdn.example.com/" + name + ".jpg"},
		PriceB2C: priceB2C,
		PriceB2B: priceB2B,
		IsActive: active,
	}
	require.NoError(t, h.db.Create(product).Error)
	return product
}

func placeInput(items ...SnapshotItem) PlaceOrderInput {
	return PlaceOrderInput{
		Items:         items,
		PaymentMethod: enums.PaymentMethodUPI,
		Shipping: types.ShippingInfo{
			FullName: "Asha Nair",
			Email:    "asha@example.com",
			Phone:    "9876543210",
			Address:  "14 Marine Drive",
			City:     "Mumbai",
			State:    "Maharashtra",
			Pincode:  "400001",
			Country:  "India",
		},
		Billing: types.Address{
			FullName: "Asha Nair",
			Address:  "14 Marine Drive",
			City:     "Mumbai",
			State:    "Maharashtra",
			Pincode:  "400001",
			Country:  "India",
		},
	}
}

func TestPlaceOrderTotalsCartAndClearsIt(t *testing.T) {
	h := newOrderTestHarness(t)
	ctx := context.Background()
	userID := uuid.New()
	product := h.newProduct(t, "gold-band", 699, nil, true)

	require.NoError(t, h.cartRepo.AddQuantity(ctx, userID, product.ID, 3))

	dto, err := h.svc.PlaceOrder(ctx, userID, enums.RoleCustomer, placeInput(SnapshotItem{ProductID: product.ID, Quantity: 3}))
	require.NoError(t, err)

	assert.Equal(t, 699*3, dto.Subtotal)
	assert.Equal(t, 0, dto.ShippingFee)
	assert.Equal(t, 2097, dto.Total)
	assert.Equal(t, string(enums.OrderStatusPending), dto.Status)
	assert.Equal(t, "Payment pending", dto.StatusLabel)
	assert.NotEmpty(t, dto.OrderNumber)
	require.Len(t, dto.Items, 1)
	assert.Equal(t, "gold-band", dto.Items[0].Name)
	assert.Equal(t, 3, dto.Items[0].Quantity)

	entries, err := h.cartRepo.ListEntries(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, entries, "cart must be cleared by placement")
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	h := newOrderTestHarness(t)

	_, err := h.svc.PlaceOrder(context.Background(), uuid.New(), enums.RoleCustomer,
		placeInput(SnapshotItem{ProductID: uuid.New(), Quantity: 1}))
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func TestPlaceOrderRequiresItems(t *testing.T) {
	h := newOrderTestHarness(t)

	_, err := h.svc.PlaceOrder(context.Background(), uuid.New(), enums.RoleCustomer, placeInput())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestPlaceOrderRejectsDuplicateItems(t *testing.T) {
	h := newOrderTestHarness(t)
	productID := uuid.New()

	_, err := h.svc.PlaceOrder(context.Background(), uuid.New(), enums.RoleCustomer,
		placeInput(
			SnapshotItem{ProductID: productID, Quantity: 1},
			SnapshotItem{ProductID: productID, Quantity: 2},
		))
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestPlaceOrderRejectsStaleSnapshot(t *testing.T) {
	h := newOrderTestHarness(t)
	ctx := context.Background()
	userID := uuid.New()
	product := h.newProduct(t, "topaz-ring", 899, nil, true)
	require.NoError(t, h.cartRepo.AddQuantity(ctx, userID, product.ID, 2))

	_, err := h.svc.PlaceOrder(ctx, userID, enums.RoleCustomer,
		placeInput(SnapshotItem{ProductID: product.ID, Quantity: 5}))
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())

	entries, err := h.cartRepo.ListEntries(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "a rejected snapshot must leave the cart alone")
}

func TestPlaceOrderConsumesOnlySubmittedRows(t *testing.T) {
	h := newOrderTestHarness(t)
	ctx := context.Background()
	userID := uuid.New()
	ordered := h.newProduct(t, "coral-bead", 399, nil, true)
	kept := h.newProduct(t, "agate-ring", 649, nil, true)

	require.NoError(t, h.cartRepo.AddQuantity(ctx, userID, ordered.ID, 2))
	require.NoError(t, h.cartRepo.AddQuantity(ctx, userID, kept.ID, 1))

	dto, err := h.svc.PlaceOrder(ctx, userID, enums.RoleCustomer,
		placeInput(SnapshotItem{ProductID: ordered.ID, Quantity: 2}))
	require.NoError(t, err)
	assert.Equal(t, 399*2, dto.Subtotal)

	entries, err := h.cartRepo.ListEntries(ctx, userID)
	require.NoError(t, err)
	require.Len(t, entries, 1, "unsubmitted rows must survive placement")
	assert.Equal(t, kept.ID, entries[0].ProductID)
}

func TestPlaceOrderPersistsBillingAddress(t *testing.T) {
	h := newOrderTestHarness(t)
	ctx := context.Background()
	userID := uuid.New()
	product := h.newProduct(t, "garnet-stud", 549, nil, true)
	require.NoError(t, h.cartRepo.AddQuantity(ctx, userID, product.ID, 1))

	input := placeInput(SnapshotItem{ProductID: product.ID, Quantity: 1})
	input.Billing = types.Address{
		FullName: "Asha Nair",
		Address:  "Flat 2B, Hill Road",
		City:     "Pune",
		State:    "Maharashtra",
		Pincode:  "411001",
		Country:  "India",
	}

	placed, err := h.svc.PlaceOrder(ctx, userID, enums.RoleCustomer, input)
	require.NoError(t, err)
	assert.Equal(t, input.Billing, placed.Billing)

	got, err := h.svc.GetOrder(ctx, userID, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, "Flat 2B, Hill Road", got.Billing.Address)
	assert.Equal(t, "Pune", got.Billing.City)
}

func TestPlaceOrderRequiresVerifiedContacts(t *testing.T) {
	h := newOrderTestHarness(t)
	ctx := context.Background()
	userID := uuid.New()
	product := h.newProduct(t, "silver-hoop", 499, nil, true)
	require.NoError(t, h.cartRepo.AddQuantity(ctx, userID, product.ID, 1))

	h.verifier.email = false
	_, err := h.svc.PlaceOrder(ctx, userID, enums.RoleCustomer, placeInput(SnapshotItem{ProductID: product.ID, Quantity: 1}))
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())

	entries, err := h.cartRepo.ListEntries(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "a rejected placement must leave the cart alone")
}

func TestPlaceOrderInactiveProductRollsBack(t *testing.T) {
	h := newOrderTestHarness(t)
	ctx := context.Background()
	userID := uuid.New()
	active := h.newProduct(t, "jade-stud", 899, nil, true)
	inactive := h.newProduct(t, "retired-pin", 299, nil, false)

	require.NoError(t, h.cartRepo.AddQuantity(ctx, userID, active.ID, 1))
	require.NoError(t, h.cartRepo.AddQuantity(ctx, userID, inactive.ID, 1))

	_, err := h.svc.PlaceOrder(ctx, userID, enums.RoleCustomer, placeInput(
		SnapshotItem{ProductID: active.ID, Quantity: 1},
		SnapshotItem{ProductID: inactive.ID, Quantity: 1},
	))
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())

	var orderCount int64
	require.NoError(t, h.db.Model(&models.Order{}).Where("user_id = ?", userID).Count(&orderCount).Error)
	assert.Zero(t, orderCount, "no order rows may survive the rollback")

	entries, err := h.cartRepo.ListEntries(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "cart must survive the rollback")
}

func TestPlaceOrderUsesTradePricesForResellers(t *testing.T) {
	h := newOrderTestHarness(t)
	ctx := context.Background()
	userID := uuid.New()
	trade := 550
	product := h.newProduct(t, "emerald-ring", 699, &trade, true)

	require.NoError(t, h.cartRepo.AddQuantity(ctx, userID, product.ID, 2))

	dto, err := h.svc.PlaceOrder(ctx, userID, enums.RoleReseller, placeInput(SnapshotItem{ProductID: product.ID, Quantity: 2}))
	require.NoError(t, err)
	assert.Equal(t, 550*2, dto.Subtotal)
	require.Len(t, dto.Items, 1)
	assert.Equal(t, 550, dto.Items[0].UnitPrice)
}

func TestPlaceOrderDefaultsDeliveryDate(t *testing.T) {
	h := newOrderTestHarness(t)
	ctx := context.Background()
	userID := uuid.New()
	product := h.newProduct(t, "pearl-drop", 999, nil, true)
	require.NoError(t, h.cartRepo.AddQuantity(ctx, userID, product.ID, 1))

	dto, err := h.svc.PlaceOrder(ctx, userID, enums.RoleCustomer, placeInput(SnapshotItem{ProductID: product.ID, Quantity: 1}))
	require.NoError(t, err)
	require.NotNil(t, dto.DeliveryDate)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 7), *dto.DeliveryDate, time.Minute)
}

func TestPlaceOrderRejectsPastDeliveryDate(t *testing.T) {
	h := newOrderTestHarness(t)
	ctx := context.Background()
	userID := uuid.New()
	product := h.newProduct(t, "opal-charm", 599, nil, true)
	require.NoError(t, h.cartRepo.AddQuantity(ctx, userID, product.ID, 1))

	input := placeInput(SnapshotItem{ProductID: product.ID, Quantity: 1})
	past := time.Now().AddDate(0, 0, -3)
	input.Shipping.DeliveryDate = &past

	_, err := h.svc.PlaceOrder(ctx, userID, enums.RoleCustomer, input)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestGetOrderScopedToOwner(t *testing.T) {
	h := newOrderTestHarness(t)
	ctx := context.Background()
	userID := uuid.New()
	product := h.newProduct(t, "ruby-pendant", 1299, nil, true)
	require.NoError(t, h.cartRepo.AddQuantity(ctx, userID, product.ID, 1))

	placed, err := h.svc.PlaceOrder(ctx, userID, enums.RoleCustomer, placeInput(SnapshotItem{ProductID: product.ID, Quantity: 1}))
	require.NoError(t, err)

	got, err := h.svc.GetOrder(ctx, userID, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, placed.OrderNumber, got.OrderNumber)
	require.Len(t, got.Items, 1)

	_, err = h.svc.GetOrder(ctx, uuid.New(), placed.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestListOrdersNewestFirst(t *testing.T) {
	h := newOrderTestHarness(t)
	ctx := context.Background()
	userID := uuid.New()
	first := h.newProduct(t, "amber-locket", 799, nil, true)
	second := h.newProduct(t, "onyx-cuff", 1299, nil, true)

	require.NoError(t, h.cartRepo.AddQuantity(ctx, userID, first.ID, 1))
	firstOrder, err := h.svc.PlaceOrder(ctx, userID, enums.RoleCustomer, placeInput(SnapshotItem{ProductID: first.ID, Quantity: 1}))
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	require.NoError(t, h.cartRepo.AddQuantity(ctx, userID, second.ID, 2))
	secondOrder, err := h.svc.PlaceOrder(ctx, userID, enums.RoleCustomer, placeInput(SnapshotItem{ProductID: second.ID, Quantity: 2}))
	require.NoError(t, err)

	list, err := h.svc.ListOrders(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, secondOrder.OrderNumber, list[0].OrderNumber)
	assert.Equal(t, 2, list[0].ItemCount)
	assert.Equal(t, firstOrder.OrderNumber, list[1].OrderNumber)
	assert.Equal(t, 1, list[1].ItemCount)
}
