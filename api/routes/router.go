package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avilesdev/storefront-backend/api/controllers"
	"github.com/avilesdev/storefront-backend/api/middleware"
	"github.com/avilesdev/storefront-backend/internal/bag"
	"github.com/avilesdev/storefront-backend/internal/catalog"
	"github.com/avilesdev/storefront-backend/internal/checkout"
	"github.com/avilesdev/storefront-backend/internal/payment"
	"github.com/avilesdev/storefront-backend/internal/purchase"
	"github.com/avilesdev/storefront-backend/pkg/config"
	"github.com/avilesdev/storefront-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisP controllers.Pinger,
	registry *prometheus.Registry,
	resolver catalog.Resolver,
	bagStore *bag.Store,
	wizard *checkout.Wizard,
	orchestrator *payment.Orchestrator,
	purchaseService purchase.Service,
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

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Session(cfg.JWT, logg))

		r.Route("/bag", func(r chi.Router) {
			r.Get("/", controllers.BagFetch(bagStore, logg))
			r.Delete("/", controllers.BagClear(bagStore, logg))
			r.Post("/items", controllers.BagAddItem(bagStore, logg))
			r.Delete("/items/{itemId}", controllers.BagRemoveItem(bagStore, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", controllers.CheckoutState(wizard, logg))
			r.Post("/advance", controllers.CheckoutAdvance(wizard, logg))
			r.Post("/back", controllers.CheckoutBack(wizard, logg))
			r.Post("/inquiry", controllers.CheckoutInquiry(orchestrator, logg))
			r.Post("/order", controllers.CheckoutOrder(orchestrator, logg))
			r.Post("/confirm", controllers.CheckoutConfirm(orchestrator, logg))
			r.Post("/cancel", controllers.CheckoutCancel(orchestrator, logg))
		})

		r.Post("/purchase", controllers.PurchaseCreate(purchaseService, logg))
		r.Get("/products/{productId}/price", controllers.ProductPrice(resolver, logg))
	})

	return r
}
