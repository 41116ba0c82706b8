package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/karimfarhat/suqly-backend/pkg/enums"
)

// Quotation is the per-store price request produced by splitting a
// multi-vendor cart. Items are an immutable snapshot of the cart at split
// time; status only moves through the lifecycle guards.
type Quotation struct {
	ID                 uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Ticket             string                `gorm:"column:ticket;not null;uniqueIndex:ux_quotations_ticket"`
	StoreID            uuid.UUID             `gorm:"column:store_id;type:uuid;not null"`
	CustomerName       string                `gorm:"column:customer_name;not null"`
	CustomerPhone      string                `gorm:"column:customer_phone;not null"`
	CustomerCity       *string               `gorm:"column:customer_city"`
	SubtotalCents      int64                 `gorm:"column:subtotal_cents;not null"`
	TotalCents         int64                 `gorm:"column:total_cents;not null"`
	Status             enums.QuotationStatus `gorm:"column:status;type:quotation_status;not null;default:'pending'"`
	WhatsAppSentAt     *time.Time            `gorm:"column:whatsapp_sent_at"`
	AdminViewedAt      *time.Time            `gorm:"column:admin_viewed_at"`
	StoreRespondedAt   *time.Time            `gorm:"column:store_responded_at"`
	ConvertedToOrderID *uuid.UUID            `gorm:"column:converted_to_order_id;type:uuid;uniqueIndex:ux_quotations_converted_order"`
	Items              []QuotationItem       `gorm:"foreignKey:QuotationID;constraint:OnDelete:CASCADE"`
	Response           *QuotationResponse    `gorm:"foreignKey:QuotationID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// QuotationItem is one snapshotted cart line inside a quotation.
type QuotationItem struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	QuotationID    uuid.UUID  `gorm:"column:quotation_id;type:uuid;not null"`
	ProductID      *uuid.UUID `gorm:"column:product_id;type:uuid"`
	Name           string     `gorm:"column:name;not null"`
	UnitPriceCents int64      `gorm:"column:unit_price_cents;not null"`
	Qty            int        `gorm:"column:qty;not null"`
	Size           *string    `gorm:"column:size"`
	Color          *string    `gorm:"column:color"`
	ImageURL       *string    `gorm:"column:image_url"`
	Position       int        `gorm:"column:position;not null"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
