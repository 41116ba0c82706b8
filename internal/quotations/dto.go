package quotations

import (
	"time"

	"github.com/google/uuid"

	"github.com/karimfarhat/suqly-backend/pkg/db/models"
	"github.com/karimfarhat/suqly-backend/pkg/enums"
)

// QuotationDTO is the API shape of a quotation, with the read-time effective
// status resolved.
type QuotationDTO struct {
	ID                 uuid.UUID             `json:"id"`
	Ticket             string                `json:"ticket"`
	StoreID            uuid.UUID             `json:"store_id"`
	CustomerName       string                `json:"customer_name"`
	CustomerPhone      string                `json:"customer_phone"`
	CustomerCity       *string               `json:"customer_city,omitempty"`
	SubtotalCents      int64                 `json:"subtotal_cents"`
	TotalCents         int64                 `json:"total_cents"`
	Status             enums.QuotationStatus `json:"status"`
	WhatsAppSentAt     *time.Time            `json:"whatsapp_sent_at,omitempty"`
	AdminViewedAt      *time.Time            `json:"admin_viewed_at,omitempty"`
	StoreRespondedAt   *time.Time            `json:"store_responded_at,omitempty"`
	ConvertedToOrderID *uuid.UUID            `json:"converted_to_order_id,omitempty"`
	Items              []QuotationItemDTO    `json:"items"`
	Response           *ResponseDTO          `json:"response,omitempty"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
}

// QuotationItemDTO is one snapshotted cart line.
type QuotationItemDTO struct {
	ID             uuid.UUID  `json:"id"`
	ProductID      *uuid.UUID `json:"product_id,omitempty"`
	Name           string     `json:"name"`
	UnitPriceCents int64      `json:"unit_price_cents"`
	Qty            int        `json:"qty"`
	Size           *string    `json:"size,omitempty"`
	Color          *string    `json:"color,omitempty"`
	ImageURL       *string    `json:"image_url,omitempty"`
	Position       int        `json:"position"`
}

// ResponseDTO is the store's current offer.
type ResponseDTO struct {
	ID                 uuid.UUID            `json:"id"`
	Note               *string              `json:"note,omitempty"`
	Format             enums.ResponseFormat `json:"format"`
	ValidityDays       int                  `json:"validity_days"`
	ValidUntil         time.Time            `json:"valid_until"`
	OriginalTotalCents int64                `json:"original_total_cents"`
	AdjustedTotalCents int64                `json:"adjusted_total_cents"`
	TotalDiscountCents int64                `json:"total_discount_cents"`
	DiscountPercent    int                  `json:"discount_percent"`
	Items              []ResponseItemDTO    `json:"items"`
	CreatedAt          time.Time            `json:"created_at"`
}

// ResponseItemDTO carries per-line adjusted pricing.
type ResponseItemDTO struct {
	QuotationItemID    uuid.UUID `json:"quotation_item_id"`
	OriginalPriceCents int64     `json:"original_price_cents"`
	AdjustedPriceCents int64     `json:"adjusted_price_cents"`
	DiscountPercent    int       `json:"discount_percent"`
	Qty                int       `json:"qty"`
}

// FromModel maps a quotation row (with preloaded items and response) onto the
// API shape, resolving expiry as of now.
func FromModel(q *models.Quotation, now time.Time) *QuotationDTO {
	if q == nil {
		return nil
	}
	dto := &QuotationDTO{
		ID:                 q.ID,
		Ticket:             q.Ticket,
		StoreID:            q.StoreID,
		CustomerName:       q.CustomerName,
		CustomerPhone:      q.CustomerPhone,
		CustomerCity:       q.CustomerCity,
		SubtotalCents:      q.SubtotalCents,
		TotalCents:         q.TotalCents,
		Status:             EffectiveStatus(q, now),
		WhatsAppSentAt:     q.WhatsAppSentAt,
		AdminViewedAt:      q.AdminViewedAt,
		StoreRespondedAt:   q.StoreRespondedAt,
		ConvertedToOrderID: q.ConvertedToOrderID,
		Items:              make([]QuotationItemDTO, 0, len(q.Items)),
		CreatedAt:          q.CreatedAt,
		UpdatedAt:          q.UpdatedAt,
	}
	for _, item := range q.Items {
		dto.Items = append(dto.Items, QuotationItemDTO{
			ID:             item.ID,
			ProductID:      item.ProductID,
			Name:           item.Name,
			UnitPriceCents: item.UnitPriceCents,
			Qty:            item.Qty,
			Size:           item.Size,
			Color:          item.Color,
			ImageURL:       item.ImageURL,
			Position:       item.Position,
		})
	}
	if q.Response != nil {
		dto.Response = responseFromModel(q.Response)
	}
	return dto
}

func responseFromModel(resp *models.QuotationResponse) *ResponseDTO {
	dto := &ResponseDTO{
		ID:                 resp.ID,
		Note:               resp.Note,
		Format:             resp.Format,
		ValidityDays:       int(resp.ValidityDays),
		ValidUntil:         resp.ValidUntil,
		OriginalTotalCents: resp.OriginalTotalCents,
		AdjustedTotalCents: resp.AdjustedTotalCents,
		TotalDiscountCents: resp.TotalDiscountCents,
		DiscountPercent:    resp.DiscountPercent,
		Items:              make([]ResponseItemDTO, 0, len(resp.Items)),
		CreatedAt:          resp.CreatedAt,
	}
	for _, item := range resp.Items {
		dto.Items = append(dto.Items, ResponseItemDTO{
			QuotationItemID:    item.QuotationItemID,
			OriginalPriceCents: item.OriginalPriceCents,
			AdjustedPriceCents: item.AdjustedPriceCents,
			DiscountPercent:    item.DiscountPercent,
			Qty:                item.Qty,
		})
	}
	return dto
}
