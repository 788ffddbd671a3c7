package orders

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/saifulmridha/boighor-backend/pkg/db/models"
	"github.com/saifulmridha/boighor-backend/pkg/enums"
	"github.com/saifulmridha/boighor-backend/pkg/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  invoice_id TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  payment_status TEXT NOT NULL DEFAULT 'pending',
  payment_method TEXT NOT NULL,
  total_price NUMERIC NOT NULL DEFAULT 0,
  total_discount NUMERIC NOT NULL DEFAULT 0,
  shipping_charge NUMERIC NOT NULL DEFAULT 0,
  net_amount NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderProducts := `
CREATE TABLE IF NOT EXISTS order_products (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  book_id TEXT NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 1,
  price NUMERIC NOT NULL DEFAULT 0,
  discount INTEGER NOT NULL DEFAULT 0,
  final_price NUMERIC NOT NULL DEFAULT 0,
  purchase_price NUMERIC NOT NULL DEFAULT 0,
  profit_amount NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	shippingAddresses := `
CREATE TABLE IF NOT EXISTS shipping_addresses (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  name TEXT NOT NULL,
  phone TEXT NOT NULL,
  email TEXT,
  address_line TEXT NOT NULL,
  city TEXT NOT NULL,
  postal_code TEXT,
  country TEXT NOT NULL DEFAULT 'Bangladesh',
  created_at DATETIME,
  updated_at DATETIME
);`
	books := `
CREATE TABLE IF NOT EXISTS books (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  category_id TEXT NOT NULL,
  physical_price NUMERIC NOT NULL DEFAULT 0,
  digital_price NUMERIC NOT NULL DEFAULT 0,
  purchase_price NUMERIC NOT NULL DEFAULT 0,
  has_physical_copy INTEGER NOT NULL DEFAULT 0,
  digital_file TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderPayments := `
CREATE TABLE IF NOT EXISTS order_payments (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  amount NUMERIC NOT NULL DEFAULT 0,
  tran_id TEXT,
  val_id TEXT,
  card_type TEXT,
  card_issuer TEXT,
  card_brand TEXT,
  card_issuer_country TEXT,
  raw_payload TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(books).Error)
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderProducts).Error)
	require.NoError(t, db.Exec(shippingAddresses).Error)
	require.NoError(t, db.Exec(orderPayments).Error)
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, userID uuid.UUID, created time.Time, status enums.OrderStatus) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:            uuid.New(),
		UserID:        userID,
		Status:        status,
		PaymentStatus: enums.PaymentStatusPending,
		PaymentMethod: enums.PaymentMethodCOD,
		TotalPrice:    decimal.NewFromInt(500),
		NetAmount:     decimal.NewFromInt(560),
		CreatedAt:     created,
		UpdatedAt:     created,
	}
	require.NoError(t, db.Create(order).Error)

	line := &models.OrderProduct{
		ID:         uuid.New(),
		OrderID:    order.ID,
		BookID:     uuid.New(),
		Quantity:   1,
		Price:      decimal.NewFromInt(500),
		FinalPrice: decimal.NewFromInt(500),
		CreatedAt:  created,
		UpdatedAt:  created,
	}
	require.NoError(t, db.Create(line).Error)
	return order
}

func TestRepositoryListByUser_pagination(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	userID := uuid.New()
	now := time.Now().UTC()
	older := seedOrder(t, db, userID, now.Add(-time.Hour), enums.OrderStatusPending)
	newer := seedOrder(t, db, userID, now, enums.OrderStatusPending)
	seedOrder(t, db, uuid.New(), now, enums.OrderStatusPending)

	rows, nextCursor, err := repo.ListByUser(context.Background(), userID, pagination.Params{Limit: 1})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, newer.ID, rows[0].ID)
	assert.Len(t, rows[0].Products, 1)
	assert.NotEmpty(t, nextCursor)

	rows, nextCursor, err = repo.ListByUser(context.Background(), userID, pagination.Params{Limit: 1, Cursor: nextCursor})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, older.ID, rows[0].ID)
	assert.Empty(t, nextCursor)
}

func TestRepositoryListByUser_badCursor(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	_, _, err := repo.ListByUser(context.Background(), uuid.New(), pagination.Params{Cursor: "not-base64!"})
	require.Error(t, err)
}

func TestRepositoryListPendingFirst(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	userID := uuid.New()
	now := time.Now().UTC()
	shipped := seedOrder(t, db, userID, now, enums.OrderStatusShipped)
	oldPending := seedOrder(t, db, userID, now.Add(-2*time.Hour), enums.OrderStatusPending)
	newPending := seedOrder(t, db, userID, now.Add(-time.Hour), enums.OrderStatusPending)

	rows, err := repo.ListPendingFirst(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, newPending.ID, rows[0].ID)
	assert.Equal(t, oldPending.ID, rows[1].ID)
	assert.Equal(t, shipped.ID, rows[2].ID)
}

func TestRepositoryInvoiceLifecycle(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	order := seedOrder(t, db, uuid.New(), now, enums.OrderStatusPending)

	exists, err := repo.InvoiceExists(context.Background(), "INV-20260310-0001")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.SetInvoiceID(context.Background(), order.ID, "INV-20260310-0001"))

	exists, err = repo.InvoiceExists(context.Background(), "INV-20260310-0001")
	require.NoError(t, err)
	assert.True(t, exists)

	count, err := repo.CountForDay(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRepositoryCreatePayment(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	order := seedOrder(t, db, uuid.New(), now, enums.OrderStatusPending)

	tranID := "TXN-123"
	payment := &models.OrderPayment{
		ID:      uuid.New(),
		OrderID: order.ID,
		Status:  enums.PaymentStatusConfirmed,
		Amount:  decimal.NewFromInt(560),
		TranID:  &tranID,
	}
	require.NoError(t, repo.CreatePayment(context.Background(), payment))

	loaded, err := repo.FindByIDForUser(context.Background(), order.ID, order.UserID)
	require.NoError(t, err)
	require.Len(t, loaded.Payments, 1)
	require.NotNil(t, loaded.Payments[0].TranID)
	assert.Equal(t, tranID, *loaded.Payments[0].TranID)
	assert.True(t, loaded.Payments[0].Amount.Equal(decimal.NewFromInt(560)))
}
