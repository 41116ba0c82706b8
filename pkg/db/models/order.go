package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/karimfarhat/suqly-backend/pkg/enums"
)

// Order is created exactly once per quotation, at conversion time. Item
// prices are copied from the accepted response so later quotation edits
// can never change what the customer agreed to.
type Order struct {
	ID                uuid.UUID                    `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Ticket            string                       `gorm:"column:ticket;not null;uniqueIndex:ux_orders_ticket"`
	QuotationID       uuid.UUID                    `gorm:"column:quotation_id;type:uuid;not null;uniqueIndex:ux_orders_quotation"`
	StoreID           uuid.UUID                    `gorm:"column:store_id;type:uuid;not null"`
	CustomerName      string                       `gorm:"column:customer_name;not null"`
	CustomerPhone     string                       `gorm:"column:customer_phone;not null"`
	CustomerCity      *string                      `gorm:"column:customer_city"`
	TotalCents        int64                        `gorm:"column:total_cents;not null"`
	PaymentStatus     enums.PaymentStatus          `gorm:"column:payment_status;type:payment_status;not null;default:'pending'"`
	FulfillmentStatus enums.OrderFulfillmentStatus `gorm:"column:fulfillment_status;type:order_fulfillment_status;not null;default:'pending'"`
	PaidAt            *time.Time                   `gorm:"column:paid_at"`
	Items             []OrderItem                  `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time                    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time                    `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderItem is one line of a converted order at its final agreed price.
type OrderItem struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID  `gorm:"column:order_id;type:uuid;not null"`
	ProductID      *uuid.UUID `gorm:"column:product_id;type:uuid"`
	Name           string     `gorm:"column:name;not null"`
	UnitPriceCents int64      `gorm:"column:unit_price_cents;not null"`
	Qty            int        `gorm:"column:qty;not null"`
	Size           *string    `gorm:"column:size"`
	Color          *string    `gorm:"column:color"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
