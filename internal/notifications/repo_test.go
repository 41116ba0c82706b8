package notifications

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

func setupNotificationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	quotationsTable := `
CREATE TABLE IF NOT EXISTS quotations (
  id TEXT PRIMARY KEY,
  ticket TEXT NOT NULL UNIQUE,
  store_id TEXT NOT NULL,
  customer_name TEXT NOT NULL,
  customer_phone TEXT NOT NULL,
  customer_city TEXT,
  subtotal_cents INTEGER NOT NULL,
  total_cents INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  whatsapp_sent_at DATETIME,
  admin_viewed_at DATETIME,
  store_responded_at DATETIME,
  converted_to_order_id TEXT UNIQUE,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(quotationsTable).Error)
	return db
}

func seedQuotation(t *testing.T, db *gorm.DB, storeID uuid.UUID, ticket string, status enums.QuotationStatus, viewedAt *time.Time) *models.Quotation {
	t.Helper()

	now := time.Now().UTC()
	quotation := &models.Quotation{
		ID:            uuid.New(),
		Ticket:        ticket,
		StoreID:       storeID,
		CustomerName:  "Test Customer",
		CustomerPhone: "9647700000003",
		SubtotalCents: 10000,
		TotalCents:    10000,
		Status:        status,
		AdminViewedAt: viewedAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, db.Create(quotation).Error)
	return quotation
}

func TestUnreadCountOnlyCountsUnviewedPending(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)

	storeID := uuid.New()
	seen := time.Now().UTC().Add(-time.Hour)
	seedQuotation(t, db, storeID, "QT-BADGE1", enums.QuotationStatusPending, nil)
	seedQuotation(t, db, storeID, "QT-BADGE2", enums.QuotationStatusPending, &seen)
	seedQuotation(t, db, storeID, "QT-BADGE3", enums.QuotationStatusContacted, nil)
	seedQuotation(t, db, uuid.New(), "QT-BADGE4", enums.QuotationStatusPending, nil)

	count, err := repo.UnreadCount(context.Background(), storeID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestMarkViewedIsIdempotentAndKeepsFirstStamp(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)

	storeID := uuid.New()
	firstSeen := time.Now().UTC().Add(-2 * time.Hour).Truncate(time.Second)
	seedQuotation(t, db, storeID, "QT-SEEN01", enums.QuotationStatusPending, nil)
	seedQuotation(t, db, storeID, "QT-SEEN02", enums.QuotationStatusPending, nil)
	already := seedQuotation(t, db, storeID, "QT-SEEN03", enums.QuotationStatusPending, &firstSeen)

	now := time.Now().UTC().Truncate(time.Second)
	marked, err := repo.MarkViewed(context.Background(), storeID, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), marked)

	// Second sweep finds nothing left to stamp.
	marked, err = repo.MarkViewed(context.Background(), storeID, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(0), marked)

	var row models.Quotation
	require.NoError(t, db.Where("id = ?", already.ID).First(&row).Error)
	require.NotNil(t, row.AdminViewedAt)
	assert.Equal(t, firstSeen.Unix(), row.AdminViewedAt.UTC().Unix())

	count, err := repo.UnreadCount(context.Background(), storeID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
