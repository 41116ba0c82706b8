package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/karimfarhat/suqly-backend/pkg/enums"
)

// LedgerEvent records an immutable money lifecycle event tied to an order.
// Store revenue is the sum of these rows; the stores.revenue_cents column is
// a denormalized aggregate posted in the same transaction.
type LedgerEvent struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID             `gorm:"column:order_id;type:uuid;not null"`
	StoreID     uuid.UUID             `gorm:"column:store_id;type:uuid;not null"`
	QuotationID uuid.UUID             `gorm:"column:quotation_id;type:uuid;not null"`
	Type        enums.LedgerEventType `gorm:"column:type;type:ledger_event_type_enum;not null"`
	AmountCents int64                 `gorm:"column:amount_cents;not null"`
	Metadata    json.RawMessage       `gorm:"column:metadata;type:jsonb"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
}
