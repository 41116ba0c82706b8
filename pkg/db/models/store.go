package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Store represents a vendor tenant selling through the shared storefront.
type Store struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string         `gorm:"column:name;not null"`
	Phone        string         `gorm:"column:phone;not null"`
	City         *string        `gorm:"column:city"`
	Categories   pq.StringArray `gorm:"column:categories;type:text[]"`
	RevenueCents int64          `gorm:"column:revenue_cents;not null;default:0"`
	OwnerID      uuid.UUID      `gorm:"column:owner;type:uuid;not null"`
	LastActiveAt *time.Time     `gorm:"column:last_active_at"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
