package stores

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/karimfarhat/suqly-backend/pkg/db/models"
	pkgerrors "github.com/karimfarhat/suqly-backend/pkg/errors"
)

func setupStoresTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	storesTable := `
CREATE TABLE IF NOT EXISTS stores (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  phone TEXT NOT NULL,
  city TEXT,
  categories TEXT,
  revenue_cents INTEGER NOT NULL DEFAULT 0,
  owner TEXT NOT NULL,
  last_active_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(storesTable).Error)
	return db
}

func seedStore(t *testing.T, db *gorm.DB, ownerID uuid.UUID, name string) *models.Store {
	t.Helper()

	store := &models.Store{
		ID:         uuid.New(),
		Name:       name,
		Phone:      "9647700000001",
		Categories: pq.StringArray{"packaging"},
		OwnerID:    ownerID,
	}
	require.NoError(t, db.Create(store).Error)
	return store
}

func TestFindByIDReturnsSeededStore(t *testing.T) {
	db := setupStoresTestDB(t)
	repo := NewRepository(db)

	seeded := seedStore(t, db, uuid.New(), "Basra Boxes")

	found, err := repo.FindByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, found.ID)
	assert.Equal(t, "Basra Boxes", found.Name)

	_, err = repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestFindByOwnerScopesToOwner(t *testing.T) {
	db := setupStoresTestDB(t)
	repo := NewRepository(db)

	ownerID := uuid.New()
	seedStore(t, db, ownerID, "First Store")
	seedStore(t, db, ownerID, "Second Store")
	seedStore(t, db, uuid.New(), "Someone Else")

	rows, err := repo.FindByOwner(context.Background(), ownerID)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, ownerID, row.OwnerID)
	}
}

func TestAddRevenueAccumulates(t *testing.T) {
	db := setupStoresTestDB(t)
	repo := NewRepository(db)

	seeded := seedStore(t, db, uuid.New(), "Revenue Store")

	require.NoError(t, repo.AddRevenue(context.Background(), seeded.ID, 12_500))
	require.NoError(t, repo.AddRevenue(context.Background(), seeded.ID, 2_500))

	found, err := repo.FindByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(15_000), found.RevenueCents)
}

func TestAddRevenueUnknownStore(t *testing.T) {
	db := setupStoresTestDB(t)
	repo := NewRepository(db)

	err := repo.AddRevenue(context.Background(), uuid.New(), 100)
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}
