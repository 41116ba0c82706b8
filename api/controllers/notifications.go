package controllers

import (
	"net/http"

	"github.com/karimfarhat/suqly-backend/api/responses"
	"github.com/karimfarhat/suqly-backend/internal/notifications"
	"github.com/karimfarhat/suqly-backend/pkg/logger"
)

// UnreadCount returns the active store's unread quotation badge. The count is
// read from storage on every call.
func UnreadCount(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := activeStoreID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		badge, err := svc.UnreadCount(r.Context(), storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, badge)
	}
}

// MarkViewed stamps every pending, unviewed quotation for the active store.
func MarkViewed(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := activeStoreID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		badge, err := svc.MarkViewed(r.Context(), storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, badge)
	}
}
