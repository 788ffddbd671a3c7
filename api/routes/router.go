package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/saifulmridha/boighor-backend/api/controllers"
	webhookcontrollers "github.com/saifulmridha/boighor-backend/api/controllers/webhooks"
	"github.com/saifulmridha/boighor-backend/api/middleware"
	"github.com/saifulmridha/boighor-backend/internal/accounts"
	"github.com/saifulmridha/boighor-backend/internal/cart"
	"github.com/saifulmridha/boighor-backend/internal/catalog"
	"github.com/saifulmridha/boighor-backend/internal/orders"
	"github.com/saifulmridha/boighor-backend/internal/payments"
	"github.com/saifulmridha/boighor-backend/internal/promotions"
	"github.com/saifulmridha/boighor-backend/internal/subscriptions"
	"github.com/saifulmridha/boighor-backend/pkg/config"
	"github.com/saifulmridha/boighor-backend/pkg/db"
	"github.com/saifulmridha/boighor-backend/pkg/enums"
	"github.com/saifulmridha/boighor-backend/pkg/logger"
	"github.com/saifulmridha/boighor-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	registry *prometheus.Registry,
	accountsService accounts.Service,
	catalogRepo *catalog.Repository,
	catalogService catalog.Service,
	discountResolver promotions.Resolver,
	cartService cart.Service,
	ordersService orders.Service,
	subscriptionsService subscriptions.Service,
	paymentsService payments.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbClient, redisClient))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/payments/{kind}", webhookcontrollers.SSLCommerzCallback(paymentsService, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.Register(accountsService, logg))
		r.Post("/login", controllers.Login(accountsService, logg))
	})

	r.Route("/api/v1/books", func(r chi.Router) {
		r.Get("/{bookId}", controllers.BookDetail(catalogService, discountResolver, logg))
	})
	r.Get("/api/v1/categories/{categoryId}/books", controllers.BooksByCategory(catalogRepo, discountResolver, logg))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/v1/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(cartService, logg))
			r.Post("/items", controllers.CartAddItem(cartService, logg))
			r.Patch("/items/{itemId}", controllers.CartUpdateItem(cartService, logg))
			r.Delete("/items/{itemId}", controllers.CartRemoveItem(cartService, logg))
		})

		r.Post("/v1/checkout", controllers.Checkout(ordersService, logg))

		r.Route("/v1/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(ordersService, logg))
			r.Get("/{orderId}", controllers.OrderDetail(ordersService, logg))
		})

		r.Route("/v1/subscriptions", func(r chi.Router) {
			r.Post("/", controllers.SubscriptionBuy(subscriptionsService, logg))
			r.Get("/active", controllers.SubscriptionActive(subscriptionsService, logg))
			r.Post("/books", controllers.SubscriptionAddBook(subscriptionsService, logg))
			r.Get("/books/{bookId}/access", controllers.SubscriptionReadAccess(subscriptionsService, logg))
			r.Get("/books/{bookId}/download", controllers.SubscriptionDownload(subscriptionsService, logg))
			r.Post("/books/{bookId}/unlock", controllers.SubscriptionUnlockBook(subscriptionsService, logg))
		})

		r.Route("/staff/v1/orders", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.UserRoleStaff), logg))
			r.Get("/queue", controllers.StaffOrderQueue(ordersService, logg))
			r.Patch("/{orderId}/status", controllers.StaffSetOrderStatus(ordersService, logg))
		})
	})

	return r
}
