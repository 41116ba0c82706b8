package quotations

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/karimfarhat/suqly-backend/pkg/db/models"
	"github.com/karimfarhat/suqly-backend/pkg/enums"
	"github.com/karimfarhat/suqly-backend/pkg/pagination"
)

// Repository exposes persistence helpers for quotations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateBatch(ctx context.Context, quotations []*models.Quotation) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Quotation, error)
	FindByTicket(ctx context.Context, ticket string) (*models.Quotation, error)
	List(ctx context.Context, params ListQuotationsParams) ([]models.Quotation, *pagination.Cursor, error)
	UpdateStatusGuarded(ctx context.Context, id uuid.UUID, from, to enums.QuotationStatus) (bool, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a quotations repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

// ListQuotationsParams filters and paginates a store's quotations.
type ListQuotationsParams struct {
	StoreID uuid.UUID
	Status  *enums.QuotationStatus
	Limit   int
	Cursor  *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) CreateBatch(ctx context.Context, quotations []*models.Quotation) error {
	return r.db.WithContext(ctx).Create(quotations).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Quotation, error) {
	var quotation models.Quotation
	if err := r.preloaded(ctx).Where("id = ?", id).First(&quotation).Error; err != nil {
		return nil, err
	}
	return &quotation, nil
}

func (r *repositoryImpl) FindByTicket(ctx context.Context, ticket string) (*models.Quotation, error) {
	var quotation models.Quotation
	if err := r.preloaded(ctx).Where("ticket = ?", ticket).First(&quotation).Error; err != nil {
		return nil, err
	}
	return &quotation, nil
}

func (r *repositoryImpl) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Response").
		Preload("Response.Items")
}

func (r *repositoryImpl) List(ctx context.Context, params ListQuotationsParams) ([]models.Quotation, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.preloaded(ctx).Where("store_id = ?", params.StoreID)
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var quotations []models.Quotation
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&quotations).Error; err != nil {
		return nil, nil, err
	}

	if len(quotations) > normalized {
		next := quotations[normalized]
		quotations = quotations[:normalized]
		return quotations, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return quotations, nil, nil
}

// UpdateStatusGuarded moves the status only when the row still holds the
// expected current status. Returns false when another writer got there first.
func (r *repositoryImpl) UpdateStatusGuarded(ctx context.Context, id uuid.UUID, from, to enums.QuotationStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Quotation{}).
		Where("id = ? AND status = ?", id, from).
		UpdateColumn("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
