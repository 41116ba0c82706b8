package stores

import (
	"time"

	"github.com/google/uuid"

	"github.com/karimfarhat/suqly-backend/pkg/db/models"
)

// StoreDTO exposes safe store data in API responses.
type StoreDTO struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Phone        string     `json:"phone"`
	City         *string    `json:"city,omitempty"`
	Categories   []string   `json:"categories,omitempty"`
	RevenueCents int64      `json:"revenue_cents"`
	OwnerID      uuid.UUID  `json:"owner"`
	LastActiveAt *time.Time `json:"last_active_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// FromModel maps a store row onto the API shape.
func FromModel(store *models.Store) *StoreDTO {
	if store == nil {
		return nil
	}
	return &StoreDTO{
		ID:           store.ID,
		Name:         store.Name,
		Phone:        store.Phone,
		City:         store.City,
		Categories:   append([]string(nil), store.Categories...),
		RevenueCents: store.RevenueCents,
		OwnerID:      store.OwnerID,
		LastActiveAt: store.LastActiveAt,
		CreatedAt:    store.CreatedAt,
		UpdatedAt:    store.UpdatedAt,
	}
}
