package negotiation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/karimfarhat/suqly-backend/pkg/db/models"
)

// Repository persists store responses and the response-related stamps on the
// owning quotation.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ReplaceResponse(ctx context.Context, response *models.QuotationResponse) error
	StampResponded(ctx context.Context, quotationID uuid.UUID, respondedAt time.Time) error
	StampWhatsAppSent(ctx context.Context, quotationID uuid.UUID, sentAt time.Time) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a negotiation repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

// ReplaceResponse drops any previous response for the quotation and inserts
// the new one, keeping the at-most-one-response invariant without relying on
// the unique index for the happy path.
func (r *repositoryImpl) ReplaceResponse(ctx context.Context, response *models.QuotationResponse) error {
	db := r.db.WithContext(ctx)

	if err := db.
		Where("response_id IN (?)", db.Session(&gorm.Session{NewDB: true}).
			Model(&models.QuotationResponse{}).
			Select("id").
			Where("quotation_id = ?", response.QuotationID)).
		Delete(&models.QuotationResponseItem{}).Error; err != nil {
		return err
	}
	if err := db.
		Where("quotation_id = ?", response.QuotationID).
		Delete(&models.QuotationResponse{}).Error; err != nil {
		return err
	}

	return db.Create(response).Error
}

func (r *repositoryImpl) StampResponded(ctx context.Context, quotationID uuid.UUID, respondedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Quotation{}).
		Where("id = ?", quotationID).
		UpdateColumn("store_responded_at", respondedAt).Error
}

func (r *repositoryImpl) StampWhatsAppSent(ctx context.Context, quotationID uuid.UUID, sentAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Quotation{}).
		Where("id = ?", quotationID).
		UpdateColumn("whatsapp_sent_at", sentAt).Error
}
