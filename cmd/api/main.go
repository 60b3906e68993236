package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rcabrera/tillpoint-backend/api/controllers"
	"github.com/rcabrera/tillpoint-backend/api/routes"
	"github.com/rcabrera/tillpoint-backend/internal/catalog"
	checkoutsvc "github.com/rcabrera/tillpoint-backend/internal/checkout"
	"github.com/rcabrera/tillpoint-backend/internal/ledger"
	"github.com/rcabrera/tillpoint-backend/internal/orders"
	"github.com/rcabrera/tillpoint-backend/internal/printer"
	"github.com/rcabrera/tillpoint-backend/internal/tickets"
	"github.com/rcabrera/tillpoint-backend/pkg/config"
	"github.com/rcabrera/tillpoint-backend/pkg/db"
	"github.com/rcabrera/tillpoint-backend/pkg/logger"
	"github.com/rcabrera/tillpoint-backend/pkg/metrics"
	"github.com/rcabrera/tillpoint-backend/pkg/migrate"
	"github.com/rcabrera/tillpoint-backend/pkg/pubsub"
	"github.com/rcabrera/tillpoint-backend/pkg/redis"
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

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
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

	snapshotStore, err := ledger.NewRedisStore(redisClient, cfg.Ledger.SnapshotTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create snapshot store", err)
		os.Exit(1)
	}
	manager, err := ledger.NewManager(snapshotStore, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger manager", err)
		os.Exit(1)
	}

	promRegistry := prometheus.NewRegistry()
	saleMetrics := metrics.NewSaleMetrics(promRegistry)

	catalogRepo := catalog.NewRepository(dbClient.DB())
	catalogSvc, err := catalog.NewService(catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	ordersRepo := orders.NewRepository(dbClient.DB())
	ordersSvc, err := orders.NewService(ordersRepo, catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	ticketsSvc, err := tickets.NewService(tickets.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create tickets service", err)
		os.Exit(1)
	}

	var publisher *pubsub.Client
	if cfg.FeatureFlags.PublishSale {
		publisher, err = pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap pubsub", err)
			os.Exit(1)
		}
		defer func() {
			if err := publisher.Close(); err != nil {
				logg.Error(context.Background(), "error closing pubsub", err)
			}
		}()
	}

	var salePublisher checkoutsvc.SalePublisher
	if publisher != nil {
		salePublisher = publisher
	}

	checkoutService, err := checkoutsvc.NewService(
		dbClient,
		checkoutsvc.NewRepository(dbClient.DB()),
		catalogRepo,
		ordersRepo,
		salePublisher,
		saleMetrics,
		checkoutsvc.Options{
			ReceiptTitle:       cfg.Receipt.Title,
			ReceiptNumberWidth: cfg.Receipt.NumberWidth,
			ShowReceiptHeader:  cfg.Receipt.ShowHeader,
		},
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	var spooler printer.Spooler
	if cfg.Printer.Mode == "tcp" {
		spooler, err = printer.NewTCPSpooler(cfg.Printer.Address, cfg.Printer.DialTimeout, logg, saleMetrics)
		if err != nil {
			logg.Error(context.Background(), "failed to create printer spooler", err)
			os.Exit(1)
		}
	} else {
		spooler = printer.NewLogSpooler(logg, saleMetrics)
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
		Handler: routes.NewRouter(routes.Deps{
			Cfg:          cfg,
			Logg:         logg,
			Health:       []controllers.Pinger{dbClient, redisClient},
			Manager:      manager,
			CatalogSvc:   catalogSvc,
			OrdersSvc:    ordersSvc,
			TicketsSvc:   ticketsSvc,
			CheckoutSvc:  checkoutService,
			Spooler:      spooler,
			PromRegistry: promRegistry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
