package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/karimfarhat/suqly-backend/api/controllers"
	"github.com/karimfarhat/suqly-backend/api/middleware"
	"github.com/karimfarhat/suqly-backend/internal/conversion"
	"github.com/karimfarhat/suqly-backend/internal/negotiation"
	"github.com/karimfarhat/suqly-backend/internal/notifications"
	"github.com/karimfarhat/suqly-backend/internal/orders"
	"github.com/karimfarhat/suqly-backend/internal/quotations"
	"github.com/karimfarhat/suqly-backend/internal/stores"
	"github.com/karimfarhat/suqly-backend/pkg/config"
	"github.com/karimfarhat/suqly-backend/pkg/db"
	"github.com/karimfarhat/suqly-backend/pkg/logger"
	pkgredis "github.com/karimfarhat/suqly-backend/pkg/redis"
)

// NewRouter assembles the HTTP surface: public customer endpoints keyed by
// ticket, and the store dashboard surface behind JWT auth.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP db.Pinger,
	idemStore pkgredis.IdempotencyStore,
	quotationsSvc quotations.Service,
	negotiationSvc negotiation.Service,
	conversionSvc conversion.Service,
	ordersSvc orders.Service,
	notificationsSvc notifications.Service,
	storesSvc stores.Service,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	// Customer surface. No accounts: the ticket is the credential.
	r.Route("/api/public/v1", func(r chi.Router) {
		r.With(middleware.Idempotency(idemStore, logg)).
			Post("/quotations", controllers.CreateQuotations(quotationsSvc, logg))
		r.Get("/quotations/{ticket}", controllers.QuotationByTicket(quotationsSvc, logg))
		r.Get("/orders/{ticket}", controllers.OrderByTicket(ordersSvc, logg))
	})

	// Store dashboard surface.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/stores", func(r chi.Router) {
			r.Get("/", controllers.StoreListOwned(storesSvc, logg))
			r.Post("/", controllers.StoreCreate(storesSvc, logg))
			r.With(middleware.StoreContext(logg)).Get("/me", controllers.StoreProfile(storesSvc, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.StoreContext(logg))

			r.Route("/quotations", func(r chi.Router) {
				r.Get("/", controllers.QuotationList(quotationsSvc, logg))
				r.Get("/unread-count", controllers.UnreadCount(notificationsSvc, logg))
				r.Post("/viewed", controllers.MarkViewed(notificationsSvc, logg))
				r.Get("/{quotationId}", controllers.QuotationDetail(quotationsSvc, logg))
				r.Post("/{quotationId}/respond", controllers.QuotationRespond(negotiationSvc, quotationsSvc, logg))
				r.Post("/{quotationId}/convert", controllers.QuotationConvert(conversionSvc, quotationsSvc, logg))
				r.Post("/{quotationId}/cancel", controllers.QuotationCancel(quotationsSvc, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.OrderList(ordersSvc, logg))
				r.Get("/{orderId}", controllers.OrderDetail(ordersSvc, logg))
				r.Patch("/{orderId}/fulfillment", controllers.OrderUpdateFulfillment(ordersSvc, logg))
				r.Post("/{orderId}/pay", controllers.OrderMarkPaid(ordersSvc, logg))
			})
		})
	})

	return r
}
