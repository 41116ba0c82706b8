package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/karimfarhat/suqly-backend/pkg/db/models"
	"github.com/karimfarhat/suqly-backend/pkg/enums"
)

// Repository tracks which pending quotations a store admin has seen. The
// unread set is defined entirely by quotation columns, so counts always come
// straight from storage.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	MarkViewed(ctx context.Context, storeID uuid.UUID, viewedAt time.Time) (int64, error)
	UnreadCount(ctx context.Context, storeID uuid.UUID) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a notifications repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

// MarkViewed stamps every unviewed pending quotation for the store. Already
// viewed rows keep their first timestamp, which makes repeat calls no-ops.
func (r *repositoryImpl) MarkViewed(ctx context.Context, storeID uuid.UUID, viewedAt time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Quotation{}).
		Where("store_id = ? AND status = ? AND admin_viewed_at IS NULL",
			storeID, enums.QuotationStatusPending).
		UpdateColumn("admin_viewed_at", viewedAt)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repositoryImpl) UnreadCount(ctx context.Context, storeID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Quotation{}).
		Where("store_id = ? AND status = ? AND admin_viewed_at IS NULL",
			storeID, enums.QuotationStatusPending).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
