package conversion

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/karimfarhat/suqly-backend/pkg/db/models"
	"github.com/karimfarhat/suqly-backend/pkg/enums"
)

// Repository owns the conversion claim on a quotation.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ClaimConversion(ctx context.Context, quotationID, orderID uuid.UUID) (bool, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a conversion repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

var convertibleStatuses = []enums.QuotationStatus{
	enums.QuotationStatusPending,
	enums.QuotationStatusContacted,
	enums.QuotationStatusNegotiating,
	enums.QuotationStatusAccepted,
}

// ClaimConversion atomically stamps the quotation as converted. The write
// only lands when converted_to_order_id is still NULL and the status is
// still convertible, so exactly one caller can ever win.
func (r *repositoryImpl) ClaimConversion(ctx context.Context, quotationID, orderID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Quotation{}).
		Where("id = ? AND converted_to_order_id IS NULL AND status IN ?", quotationID, convertibleStatuses).
		UpdateColumns(map[string]any{
			"status":                enums.QuotationStatusConverted,
			"converted_to_order_id": orderID,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
