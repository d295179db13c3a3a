package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront/api/controllers"
	"github.com/angelmondragon/storefront/api/middleware"
	"github.com/angelmondragon/storefront/internal/orders"
	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	store controllers.Pinger,
	hub controllers.ScopeHub,
	identities controllers.IdentityResolver,
	ordersSvc orders.Service,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, store))
	})
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Scope(cfg.Session, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(hub, logg))
			r.Delete("/", controllers.CartClear(hub, logg))
			r.Get("/badge", controllers.CartBadge(hub, logg))
			r.Get("/events", controllers.CartEvents(hub, logg))
			r.Post("/items", controllers.CartAddItem(hub, logg))
			r.Patch("/items/{productId}", controllers.CartUpdateItem(hub, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(hub, logg))
		})

		r.Post("/checkout", controllers.CheckoutSubmit(hub, identities, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrdersList(ordersSvc, identities, logg))
			r.Post("/{orderId}/cancel", controllers.OrdersCancel(ordersSvc, identities, logg))
		})
	})

	return r
}
