package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/karimfarhat/suqly-backend/pkg/enums"
)

// QuotationResponse is the store's current offer for a quotation. A
// quotation holds at most one response; re-responding replaces it.
type QuotationResponse struct {
	ID                 uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	QuotationID        uuid.UUID               `gorm:"column:quotation_id;type:uuid;not null;uniqueIndex:ux_quotation_responses_quotation"`
	Note               *string                 `gorm:"column:note"`
	Format             enums.ResponseFormat    `gorm:"column:format;type:response_format;not null"`
	ValidityDays       enums.ValidityDays      `gorm:"column:validity_days;not null"`
	ValidUntil         time.Time               `gorm:"column:valid_until;not null"`
	OriginalTotalCents int64                   `gorm:"column:original_total_cents;not null"`
	AdjustedTotalCents int64                   `gorm:"column:adjusted_total_cents;not null"`
	TotalDiscountCents int64                   `gorm:"column:total_discount_cents;not null"`
	DiscountPercent    int                     `gorm:"column:discount_percent;not null"`
	Items              []QuotationResponseItem `gorm:"foreignKey:ResponseID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

// QuotationResponseItem carries per-line adjusted pricing. Exactly one of
// adjusted price or discount percent was supplied by the store; the other
// was derived at creation time.
type QuotationResponseItem struct {
	ID                 uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ResponseID         uuid.UUID `gorm:"column:response_id;type:uuid;not null"`
	QuotationItemID    uuid.UUID `gorm:"column:quotation_item_id;type:uuid;not null"`
	OriginalPriceCents int64     `gorm:"column:original_price_cents;not null"`
	AdjustedPriceCents int64     `gorm:"column:adjusted_price_cents;not null"`
	DiscountPercent    int       `gorm:"column:discount_percent;not null"`
	Qty                int       `gorm:"column:qty;not null"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
