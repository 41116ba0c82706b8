package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/karimfarhat/suqly-backend/api/responses"
	"github.com/karimfarhat/suqly-backend/api/validators"
	"github.com/karimfarhat/suqly-backend/internal/orders"
	"github.com/karimfarhat/suqly-backend/pkg/enums"
	pkgerrors "github.com/karimfarhat/suqly-backend/pkg/errors"
	"github.com/karimfarhat/suqly-backend/pkg/logger"
	"github.com/karimfarhat/suqly-backend/pkg/pagination"
	"github.com/karimfarhat/suqly-backend/pkg/ticket"
)

// OrderByTicket is the customer-facing lookup for a converted order.
func OrderByTicket(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requested := strings.TrimSpace(chi.URLParam(r, "ticket"))
		if requested == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "ticket required"))
			return
		}
		if !ticket.IsOrderTicket(requested) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "order not found"))
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

// OrderDetail returns an order owned by the active store.
func OrderDetail(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dto, err := loadOwnedOrder(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// OrderList pages the active store's orders with optional status filters.
func OrderList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
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

		result, err := svc.List(r.Context(), orders.ListParams{
			StoreID:     storeID,
			Fulfillment: strings.TrimSpace(r.URL.Query().Get("fulfillment_status")),
			Payment:     strings.TrimSpace(r.URL.Query().Get("payment_status")),
			Limit:       limit,
			Cursor:      strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type fulfillmentRequest struct {
	FulfillmentStatus string `json:"fulfillment_status" validate:"required"`
}

// OrderUpdateFulfillment advances the order through its fulfillment states.
func OrderUpdateFulfillment(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dto, err := loadOwnedOrder(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req fulfillmentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseOrderFulfillmentStatus(req.FulfillmentStatus)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown fulfillment status"))
			return
		}

		updated, err := svc.UpdateFulfillment(r.Context(), dto.ID, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// OrderMarkPaid records payment settlement for an order. Money movement
// happens outside; this is a bookkeeping stamp.
func OrderMarkPaid(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dto, err := loadOwnedOrder(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		paid, err := svc.MarkPaid(r.Context(), dto.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, paid)
	}
}

func loadOwnedOrder(r *http.Request, svc orders.Service) (*orders.OrderDTO, error) {
	storeID, err := activeStoreID(r)
	if err != nil {
		return nil, err
	}

	id, err := validators.ParseURLUUID(r, "orderId")
	if err != nil {
		return nil, err
	}

	dto, err := svc.Get(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if dto.StoreID != storeID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return dto, nil
}
