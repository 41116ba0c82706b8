package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/karimfarhat/suqly-backend/api/middleware"
	"github.com/karimfarhat/suqly-backend/api/responses"
	"github.com/karimfarhat/suqly-backend/api/validators"
	"github.com/karimfarhat/suqly-backend/internal/stores"
	pkgerrors "github.com/karimfarhat/suqly-backend/pkg/errors"
	"github.com/karimfarhat/suqly-backend/pkg/logger"
)

// StoreProfile returns the active store's own record.
func StoreProfile(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := activeStoreID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.GetByID(r.Context(), storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// StoreListOwned returns every store owned by the authenticated user.
func StoreListOwned(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := authenticatedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListByOwner(r.Context(), ownerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"stores": list})
	}
}

type createStoreRequest struct {
	Name       string   `json:"name" validate:"required,max=120"`
	Phone      string   `json:"phone" validate:"required,max=32"`
	City       *string  `json:"city,omitempty" validate:"omitempty,max=120"`
	Categories []string `json:"categories,omitempty" validate:"omitempty,max=10,dive,max=50"`
}

// StoreCreate registers a new store owned by the authenticated user.
func StoreCreate(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := authenticatedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createStoreRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Create(r.Context(), stores.CreateStoreInput{
			Name:       req.Name,
			Phone:      req.Phone,
			City:       req.City,
			Categories: req.Categories,
			OwnerID:    ownerID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

func authenticatedUserID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid user identity")
	}
	return id, nil
}
