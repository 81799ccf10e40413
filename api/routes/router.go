package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gildedlane/storefront-backend/api/controllers"
	"github.com/gildedlane/storefront-backend/api/middleware"
	cartsvc "github.com/gildedlane/storefront-backend/internal/cart"
	checkoutsvc "github.com/gildedlane/storefront-backend/internal/checkout"
	ordersvc "github.com/gildedlane/storefront-backend/internal/orders"
	wishlistsvc "github.com/gildedlane/storefront-backend/internal/wishlist"
	"github.com/gildedlane/storefront-backend/pkg/config"
	"github.com/gildedlane/storefront-backend/pkg/db"
	"github.com/gildedlane/storefront-backend/pkg/logger"
	"github.com/gildedlane/storefront-backend/pkg/metrics"
	"github.com/gildedlane/storefront-backend/pkg/redis"
)

// NewRouter assembles the HTTP surface: health probes and the metrics
// endpoint stay open, everything under /api/v1 requires a bearer token.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	database db.Pinger,
	cache *redis.Client,
	httpMetrics *metrics.HTTPMetrics,
	gatherer prometheus.Gatherer,
	cartService cartsvc.Service,
	wishlistService wishlistsvc.Service,
	checkoutService checkoutsvc.Service,
	orderService ordersvc.Service,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
	)

	var (
		idemStore   redis.IdempotencyStore
		cachePinger redis.Pinger
	)
	if cache != nil {
		idemStore = cache
		cachePinger = cache
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, database, cachePinger, logg))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(cartService, logg))
			r.Post("/", controllers.CartAdd(cartService, logg))
			r.Put("/", controllers.CartSet(cartService, logg))
			r.Delete("/", controllers.CartRemove(cartService, logg))
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", controllers.WishlistList(wishlistService, logg))
			r.Post("/", controllers.WishlistToggle(wishlistService, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/shipping", controllers.CheckoutShipping(checkoutService, logg))
			r.Post("/verify", controllers.CheckoutVerify(checkoutService, logg))
			r.Post("/verify/confirm", controllers.CheckoutVerifyConfirm(checkoutService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.OrderPlace(orderService, logg))
			r.Get("/", controllers.OrderList(orderService, logg))
			r.Get("/{orderId}", controllers.OrderDetail(orderService, logg))
		})
	})

	return r
}
