package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/karimfarhat/suqly-backend/pkg/db/models"
	"github.com/karimfarhat/suqly-backend/pkg/enums"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	ordersTable := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  ticket TEXT NOT NULL UNIQUE,
  quotation_id TEXT NOT NULL UNIQUE,
  store_id TEXT NOT NULL,
  customer_name TEXT NOT NULL,
  customer_phone TEXT NOT NULL,
  customer_city TEXT,
  total_cents INTEGER NOT NULL,
  payment_status TEXT NOT NULL DEFAULT 'pending',
  fulfillment_status TEXT NOT NULL DEFAULT 'pending',
  paid_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT,
  name TEXT NOT NULL,
  unit_price_cents INTEGER NOT NULL,
  qty INTEGER NOT NULL,
  size TEXT,
  color TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(ordersTable).Error)
	require.NoError(t, db.Exec(orderItems).Error)
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, storeID uuid.UUID, ticket string, created time.Time) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:                uuid.New(),
		Ticket:            ticket,
		QuotationID:       uuid.New(),
		StoreID:           storeID,
		CustomerName:      "Test Customer",
		CustomerPhone:     "9647700000004",
		TotalCents:        30000,
		PaymentStatus:     enums.PaymentStatusPending,
		FulfillmentStatus: enums.OrderFulfillmentPending,
		CreatedAt:         created,
		UpdatedAt:         created,
		Items: []models.OrderItem{
			{ID: uuid.New(), Name: "Dresser", UnitPriceCents: 30000, Qty: 1},
		},
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestRepositoryFindByTicketPreloadsItems(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	seedOrder(t, db, uuid.New(), "ORD-FIND01", time.Now().UTC())

	found, err := repo.FindByTicket(context.Background(), "ORD-FIND01")
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Dresser", found.Items[0].Name)
}

func TestRepositoryMarkPaidStampsExactlyOnce(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	order := seedOrder(t, db, uuid.New(), "ORD-PAID01", time.Now().UTC())
	paidAt := time.Now().UTC().Truncate(time.Second)

	stamped, err := repo.MarkPaid(context.Background(), order.ID, paidAt)
	require.NoError(t, err)
	assert.True(t, stamped)

	stamped, err = repo.MarkPaid(context.Background(), order.ID, paidAt.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, stamped)

	found, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusPaid, found.PaymentStatus)
	require.NotNil(t, found.PaidAt)
	assert.Equal(t, paidAt.Unix(), found.PaidAt.UTC().Unix())
}

func TestRepositoryUpdateFulfillmentGuarded(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	order := seedOrder(t, db, uuid.New(), "ORD-FULF01", time.Now().UTC())

	moved, err := repo.UpdateFulfillmentGuarded(context.Background(), order.ID,
		enums.OrderFulfillmentPending, enums.OrderFulfillmentConfirmed)
	require.NoError(t, err)
	assert.True(t, moved)

	moved, err = repo.UpdateFulfillmentGuarded(context.Background(), order.ID,
		enums.OrderFulfillmentPending, enums.OrderFulfillmentPreparing)
	require.NoError(t, err)
	assert.False(t, moved)
}

func TestRepositoryListFiltersAndPaginates(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	storeID := uuid.New()
	now := time.Now().UTC()
	seedOrder(t, db, storeID, "ORD-LIST01", now.Add(-2*time.Hour))
	seedOrder(t, db, storeID, "ORD-LIST02", now.Add(-time.Hour))
	paid := seedOrder(t, db, storeID, "ORD-LIST03", now)
	seedOrder(t, db, uuid.New(), "ORD-LIST04", now)

	_, err := repo.MarkPaid(context.Background(), paid.ID, now)
	require.NoError(t, err)

	first, cursor, err := repo.List(context.Background(), ListOrdersParams{StoreID: storeID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.NotNil(t, cursor)
	assert.Equal(t, "ORD-LIST03", first[0].Ticket)

	second, next, err := repo.List(context.Background(), ListOrdersParams{StoreID: storeID, Limit: 2, Cursor: cursor})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "ORD-LIST01", second[0].Ticket)
	assert.Nil(t, next)

	payment := enums.PaymentStatusPaid
	paidOnly, _, err := repo.List(context.Background(), ListOrdersParams{StoreID: storeID, Payment: &payment, Limit: 10})
	require.NoError(t, err)
	require.Len(t, paidOnly, 1)
	assert.Equal(t, "ORD-LIST03", paidOnly[0].Ticket)
}
