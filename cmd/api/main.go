package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/shopspring/decimal"

	"github.com/saifulmridha/boighor-backend/api/routes"
	"github.com/saifulmridha/boighor-backend/internal/accounts"
	"github.com/saifulmridha/boighor-backend/internal/cart"
	"github.com/saifulmridha/boighor-backend/internal/catalog"
	"github.com/saifulmridha/boighor-backend/internal/orders"
	"github.com/saifulmridha/boighor-backend/internal/payments"
	"github.com/saifulmridha/boighor-backend/internal/promotions"
	"github.com/saifulmridha/boighor-backend/internal/subscriptions"
	"github.com/saifulmridha/boighor-backend/pkg/config"
	"github.com/saifulmridha/boighor-backend/pkg/db"
	"github.com/saifulmridha/boighor-backend/pkg/logger"
	"github.com/saifulmridha/boighor-backend/pkg/metrics"
	"github.com/saifulmridha/boighor-backend/pkg/migrate"
	"github.com/saifulmridha/boighor-backend/pkg/redis"
	"github.com/saifulmridha/boighor-backend/pkg/sslcommerz"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	gateway, err := sslcommerz.NewClient(context.Background(), cfg.Gateway, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment gateway client", err)
		os.Exit(1)
	}

	shippingCharge, err := decimal.NewFromString(cfg.Checkout.ShippingCharge)
	if err != nil {
		logg.Error(context.Background(), "invalid shipping charge", err)
		os.Exit(1)
	}

	accountsRepo := accounts.NewRepository(dbClient.DB())
	catalogRepo := catalog.NewRepository(dbClient.DB())
	promotionsRepo := promotions.NewRepository(dbClient.DB())
	cartRepo := cart.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())
	subscriptionsRepo := subscriptions.NewRepository(dbClient.DB())

	accountsService, err := accounts.NewService(accountsRepo, cfg.JWT, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create accounts service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	discountResolver, err := promotions.NewResolver(promotionsRepo, catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create discount resolver", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(cartRepo, dbClient, catalogService, discountResolver)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(
		ordersRepo,
		orders.NewCartAccessor(cartRepo),
		catalogService,
		dbClient,
		gateway,
		checkoutMetrics,
		orders.Options{
			ShippingCharge: shippingCharge,
			Currency:       cfg.Checkout.Currency,
			SuccessURL:     cfg.Gateway.SuccessURL,
			FailURL:        cfg.Gateway.FailURL,
			CancelURL:      cfg.Gateway.CancelURL,
		},
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	subscriptionsService, err := subscriptions.NewService(
		subscriptionsRepo,
		dbClient,
		catalogService,
		gateway,
		subscriptions.Options{
			Currency:   cfg.Checkout.Currency,
			SuccessURL: cfg.Gateway.SuccessURL,
			FailURL:    cfg.Gateway.FailURL,
			CancelURL:  cfg.Gateway.CancelURL,
		},
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create subscriptions service", err)
		os.Exit(1)
	}

	orderTarget, err := payments.NewOrderTarget(ordersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create order settlement target", err)
		os.Exit(1)
	}
	subscriptionTarget, err := payments.NewSubscriptionTarget(subscriptionsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create subscription settlement target", err)
		os.Exit(1)
	}
	bookUnlockTarget, err := payments.NewBookUnlockTarget(subscriptionsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create book unlock settlement target", err)
		os.Exit(1)
	}

	paymentsService, err := payments.NewService(
		dbClient,
		redisClient,
		checkoutMetrics,
		logg,
		orderTarget,
		subscriptionTarget,
		bookUnlockTarget,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			registry,
			accountsService,
			catalogRepo,
			catalogService,
			discountResolver,
			cartService,
			ordersService,
			subscriptionsService,
			paymentsService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
