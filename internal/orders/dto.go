package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/karimfarhat/suqly-backend/pkg/db/models"
	"github.com/karimfarhat/suqly-backend/pkg/enums"
)

// OrderDTO is the API shape of an order.
type OrderDTO struct {
	ID                uuid.UUID                    `json:"id"`
	Ticket            string                       `json:"ticket"`
	QuotationID       uuid.UUID                    `json:"quotation_id"`
	StoreID           uuid.UUID                    `json:"store_id"`
	CustomerName      string                       `json:"customer_name"`
	CustomerPhone     string                       `json:"customer_phone"`
	CustomerCity      *string                      `json:"customer_city,omitempty"`
	TotalCents        int64                        `json:"total_cents"`
	PaymentStatus     enums.PaymentStatus          `json:"payment_status"`
	FulfillmentStatus enums.OrderFulfillmentStatus `json:"fulfillment_status"`
	PaidAt            *time.Time                   `json:"paid_at,omitempty"`
	Items             []OrderItemDTO               `json:"items"`
	CreatedAt         time.Time                    `json:"created_at"`
	UpdatedAt         time.Time                    `json:"updated_at"`
}

// OrderItemDTO is one line of an order at its agreed price.
type OrderItemDTO struct {
	ID             uuid.UUID  `json:"id"`
	ProductID      *uuid.UUID `json:"product_id,omitempty"`
	Name           string     `json:"name"`
	UnitPriceCents int64      `json:"unit_price_cents"`
	Qty            int        `json:"qty"`
	Size           *string    `json:"size,omitempty"`
	Color          *string    `json:"color,omitempty"`
}

// FromModel maps an order row (with preloaded items) onto the API shape.
func FromModel(o *models.Order) *OrderDTO {
	if o == nil {
		return nil
	}
	dto := &OrderDTO{
		ID:                o.ID,
		Ticket:            o.Ticket,
		QuotationID:       o.QuotationID,
		StoreID:           o.StoreID,
		CustomerName:      o.CustomerName,
		CustomerPhone:     o.CustomerPhone,
		CustomerCity:      o.CustomerCity,
		TotalCents:        o.TotalCents,
		PaymentStatus:     o.PaymentStatus,
		FulfillmentStatus: o.FulfillmentStatus,
		PaidAt:            o.PaidAt,
		Items:             make([]OrderItemDTO, 0, len(o.Items)),
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
	for _, item := range o.Items {
		dto.Items = append(dto.Items, OrderItemDTO{
			ID:             item.ID,
			ProductID:      item.ProductID,
			Name:           item.Name,
			UnitPriceCents: item.UnitPriceCents,
			Qty:            item.Qty,
			Size:           item.Size,
			Color:          item.Color,
		})
	}
	return dto
}
