package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/karimfarhat/suqly-backend/api/middleware"
	"github.com/karimfarhat/suqly-backend/api/responses"
	"github.com/karimfarhat/suqly-backend/api/validators"
	"github.com/karimfarhat/suqly-backend/internal/conversion"
	"github.com/karimfarhat/suqly-backend/internal/negotiation"
	"github.com/karimfarhat/suqly-backend/internal/quotations"
	pkgerrors "github.com/karimfarhat/suqly-backend/pkg/errors"
	"github.com/karimfarhat/suqly-backend/pkg/logger"
	"github.com/karimfarhat/suqly-backend/pkg/pagination"
	"github.com/karimfarhat/suqly-backend/pkg/ticket"
)

type cartItemRequest struct {
	StoreID        string  `json:"store_id" validate:"required,uuid"`
	ProductID      *string `json:"product_id,omitempty" validate:"omitempty,uuid"`
	Name           string  `json:"name" validate:"required,max=200"`
	UnitPriceCents int64   `json:"unit_price_cents" validate:"gte=0"`
	Qty            int     `json:"qty" validate:"required,gt=0"`
	Size           *string `json:"size,omitempty" validate:"omitempty,max=50"`
	Color          *string `json:"color,omitempty" validate:"omitempty,max=50"`
	ImageURL       *string `json:"image_url,omitempty" validate:"omitempty,max=500"`
}

type customerRequest struct {
	Name  string  `json:"name" validate:"required,max=120"`
	Phone string  `json:"phone" validate:"required,max=32"`
	City  *string `json:"city,omitempty" validate:"omitempty,max=120"`
}

type createQuotationsRequest struct {
	Customer customerRequest   `json:"customer" validate:"required"`
	Items    []cartItemRequest `json:"items" validate:"required,min=1,dive"`
}

// CreateQuotations splits the submitted cart into one quotation per store.
func CreateQuotations(svc quotations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createQuotationsRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]quotations.CartItem, 0, len(req.Items))
		for i, item := range req.Items {
			storeID, err := uuid.Parse(item.StoreID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "cart item store_id must be a uuid").
						WithDetails(map[string]any{"index": i}))
				return
			}
			var productID *uuid.UUID
			if item.ProductID != nil {
				parsed, err := uuid.Parse(*item.ProductID)
				if err != nil {
					responses.WriteError(r.Context(), logg, w,
						pkgerrors.New(pkgerrors.CodeValidation, "cart item product_id must be a uuid").
							WithDetails(map[string]any{"index": i}))
					return
				}
				productID = &parsed
			}
			items = append(items, quotations.CartItem{
				StoreID:        storeID,
				ProductID:      productID,
				Name:           item.Name,
				UnitPriceCents: item.UnitPriceCents,
				Qty:            item.Qty,
				Size:           item.Size,
				Color:          item.Color,
				ImageURL:       item.ImageURL,
			})
		}

		created, err := svc.CreateFromCart(r.Context(), items, quotations.CustomerData{
			Name:  req.Customer.Name,
			Phone: req.Customer.Phone,
			City:  req.Customer.City,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"quotations": created})
	}
}

// QuotationByTicket is the customer-facing lookup; tickets are the only
// handle customers hold.
func QuotationByTicket(svc quotations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requested := strings.TrimSpace(chi.URLParam(r, "ticket"))
		if requested == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "ticket required"))
			return
		}
		if !ticket.IsQuotationTicket(requested) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "quotation not found"))
			return
		}

		dto, err := svc.GetByTicket(r.Context(), requested)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// QuotationDetail returns a quotation owned by the active store.
func QuotationDetail(svc quotations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dto, err := loadOwnedQuotation(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// QuotationList pages the active store's quotations, optionally by status.
func QuotationList(svc quotations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := activeStoreID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), quotations.ListParams{
			StoreID: storeID,
			Status:  strings.TrimSpace(r.URL.Query().Get("status")),
			Limit:   limit,
			Cursor:  strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// QuotationCancel cancels a non-terminal quotation owned by the active store.
func QuotationCancel(svc quotations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dto, err := loadOwnedQuotation(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cancelled, err := svc.Cancel(r.Context(), dto.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cancelled)
	}
}

type respondItemRequest struct {
	QuotationItemID    string `json:"quotation_item_id" validate:"required,uuid"`
	AdjustedPriceCents *int64 `json:"adjusted_price_cents,omitempty"`
	DiscountPercent    *int   `json:"discount_percent,omitempty"`
}

type respondRequest struct {
	Items        []respondItemRequest `json:"items" validate:"dive"`
	Note         string               `json:"note" validate:"max=2000"`
	ValidityDays int                  `json:"validity_days" validate:"required"`
	Format       string               `json:"format" validate:"required"`
}

// QuotationRespond records the store's counter-offer and builds the delivery
// payload for the chosen format.
func QuotationRespond(svc negotiation.Service, quotes quotations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dto, err := loadOwnedQuotation(r, quotes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req respondRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		adjustments := make([]negotiation.ItemAdjustment, 0, len(req.Items))
		for i, item := range req.Items {
			itemID, err := uuid.Parse(item.QuotationItemID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "quotation_item_id must be a uuid").
						WithDetails(map[string]any{"index": i}))
				return
			}
			adjustments = append(adjustments, negotiation.ItemAdjustment{
				QuotationItemID:    itemID,
				AdjustedPriceCents: item.AdjustedPriceCents,
				DiscountPercent:    item.DiscountPercent,
			})
		}

		result, err := svc.Respond(r.Context(), negotiation.RespondInput{
			QuotationID:  dto.ID,
			Adjustments:  adjustments,
			Note:         req.Note,
			ValidityDays: req.ValidityDays,
			Format:       req.Format,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// QuotationConvert converts the quotation into a binding order. Exactly one
// caller wins when requests race.
func QuotationConvert(svc conversion.Service, quotes quotations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dto, err := loadOwnedQuotation(r, quotes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Convert(r.Context(), dto.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// loadOwnedQuotation resolves {quotationId} and verifies the active store
// owns it. Foreign quotations read as not found so ids don't leak.
func loadOwnedQuotation(r *http.Request, svc quotations.Service) (*quotations.QuotationDTO, error) {
	storeID, err := activeStoreID(r)
	if err != nil {
		return nil, err
	}

	id, err := validators.ParseURLUUID(r, "quotationId")
	if err != nil {
		return nil, err
	}

	dto, err := svc.Get(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if dto.StoreID != storeID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quotation not found")
	}
	return dto, nil
}

func activeStoreID(r *http.Request) (uuid.UUID, error) {
	storeID := middleware.StoreUUIDFromContext(r.Context())
	if storeID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "store context missing")
	}
	return storeID, nil
}
