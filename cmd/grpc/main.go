package main

import (
	"context"
	"io"
	"log"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-pricing-service/config"
	"github.com/fekuna/omnipos-pricing-service/internal/events"
	"github.com/fekuna/omnipos-pricing-service/internal/memstore"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/broker"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/cache"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/database/postgres"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/i18n"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/middleware"
	"github.com/fekuna/omnipos-pricing-service/internal/pricingcontext"

	"github.com/fekuna/omnipos-pricing-service/internal/catalog"
	catalogH "github.com/fekuna/omnipos-pricing-service/internal/catalog/handler"
	catalogRepoPkg "github.com/fekuna/omnipos-pricing-service/internal/catalog/repository"
	catalogUCPkg "github.com/fekuna/omnipos-pricing-service/internal/catalog/usecase"

	checkoutH "github.com/fekuna/omnipos-pricing-service/internal/checkout/handler"
	checkoutUCPkg "github.com/fekuna/omnipos-pricing-service/internal/checkout/usecase"

	"github.com/fekuna/omnipos-pricing-service/internal/customer"
	customerH "github.com/fekuna/omnipos-pricing-service/internal/customer/handler"
	customerListenerPkg "github.com/fekuna/omnipos-pricing-service/internal/customer/listener"
	customerRepoPkg "github.com/fekuna/omnipos-pricing-service/internal/customer/repository"
	customerUCPkg "github.com/fekuna/omnipos-pricing-service/internal/customer/usecase"

	"github.com/fekuna/omnipos-pricing-service/internal/inventory"
	inventoryH "github.com/fekuna/omnipos-pricing-service/internal/inventory/handler"
	inventoryRepoPkg "github.com/fekuna/omnipos-pricing-service/internal/inventory/repository"
	inventoryUCPkg "github.com/fekuna/omnipos-pricing-service/internal/inventory/usecase"

	"github.com/fekuna/omnipos-pricing-service/internal/tier"
	tierH "github.com/fekuna/omnipos-pricing-service/internal/tier/handler"
	tierListenerPkg "github.com/fekuna/omnipos-pricing-service/internal/tier/listener"
	tierRepoPkg "github.com/fekuna/omnipos-pricing-service/internal/tier/repository"
	tierSchedulerPkg "github.com/fekuna/omnipos-pricing-service/internal/tier/scheduler"
	tierUCPkg "github.com/fekuna/omnipos-pricing-service/internal/tier/usecase"

	"github.com/fekuna/omnipos-pricing-service/internal/voucher"
	voucherH "github.com/fekuna/omnipos-pricing-service/internal/voucher/handler"
	voucherRepoPkg "github.com/fekuna/omnipos-pricing-service/internal/voucher/repository"
	voucherUCPkg "github.com/fekuna/omnipos-pricing-service/internal/voucher/usecase"

	"github.com/fekuna/omnipos-pricing-service/internal/wallet"
	walletH "github.com/fekuna/omnipos-pricing-service/internal/wallet/handler"
	walletRepoPkg "github.com/fekuna/omnipos-pricing-service/internal/wallet/repository"
	walletUCPkg "github.com/fekuna/omnipos-pricing-service/internal/wallet/usecase"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

type repositories struct {
	customers customer.Repository
	tiers     tier.Repository
	catalog   catalog.Repository
	stock     inventory.Repository
	vouchers  voucher.Repository
	wallets   wallet.Repository
}

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.Server.AppEnv == "development" || cfg.Server.AppEnv == "dev" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	translator, err := i18n.New()
	if err != nil {
		appLogger.Fatal("Could not load locales", zap.Error(err))
	}

	storeLoc, err := cfg.Store.Location()
	if err != nil {
		appLogger.Fatal("Invalid store timezone", zap.Error(err))
	}

	// closers run in reverse order on shutdown
	var closers []io.Closer

	// 3. Initialize Repositories
	var repos repositories
	switch cfg.Server.Storage {
	case "memory":
		products := memstore.NewCatalogStore()
		repos = repositories{
			customers: memstore.NewCustomerStore(),
			tiers:     memstore.NewTierStore(),
			catalog:   products,
			stock:     products,
			vouchers:  memstore.NewVoucherStore(),
			wallets:   memstore.NewWalletStore(),
		}
		appLogger.Warn("Using in-memory storage, data is lost on restart")
	default:
		db, err := postgres.NewPostgres(&postgres.Config{
			Host:            cfg.Postgres.Host,
			Port:            cfg.Postgres.Port,
			User:            cfg.Postgres.User,
			Password:        cfg.Postgres.Password,
			DBName:          cfg.Postgres.DBName,
			SSLMode:         cfg.Postgres.SSLMode,
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
			ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
		})
		if err != nil {
			appLogger.Fatal("Could not connect to database", zap.Error(err))
		}
		closers = append(closers, db)
		appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

		repos = repositories{
			customers: customerRepoPkg.NewPGRepository(db),
			tiers:     tierRepoPkg.NewPGRepository(db),
			catalog:   catalogRepoPkg.NewPGRepository(db),
			stock:     inventoryRepoPkg.NewPGRepository(db),
			vouchers:  voucherRepoPkg.NewPGRepository(db),
			wallets:   walletRepoPkg.NewPGRepository(db),
		}
	}

	// 4. Initialize Redis
	var (
		redisClient  *cache.RedisClient
		contextCache pricingcontext.Cache = pricingcontext.NewMemoryCache(cfg.Pricing.ContextCacheTTL)
		walletLocker wallet.Locker        = wallet.NewMemoryLocker()
		stockLocker  inventory.Locker     = wallet.NewMemoryLocker()
		resetLocker  tierSchedulerPkg.Locker
	)
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(&cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			appLogger.Fatal("Could not connect to Redis", zap.Error(err))
		}
		closers = append(closers, redisClient)
		appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))

		contextCache = pricingcontext.NewRedisCache(redisClient, cfg.Pricing.ContextCacheTTL)
		walletLocker = wallet.NewRedisLocker(redisClient)
		stockLocker = wallet.NewRedisLocker(redisClient)
		resetLocker = wallet.NewRedisLocker(redisClient)
	}

	// 5. Event bus, mirrored to Kafka when enabled
	bus := events.NewBus()
	var (
		ordersConsumer    *broker.KafkaConsumer
		customersConsumer *broker.KafkaConsumer
	)
	if cfg.Kafka.Enabled {
		producer := broker.NewProducer(cfg.Kafka.Brokers)
		closers = append(closers, producer)
		events.NewForwarder(producer, events.Topics{
			Customers: cfg.Kafka.CustomersTopic,
			Loyalty:   cfg.Kafka.TiersTopic,
		}, appLogger).Attach(bus)

		ordersConsumer = broker.NewConsumer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.OrdersTopic,
			GroupID: cfg.Kafka.GroupID,
		})
		// Every instance needs every type change for its own cache, so each gets its own group.
		host, _ := os.Hostname()
		customersConsumer = broker.NewConsumer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.CustomersTopic,
			GroupID: cfg.Kafka.GroupID + "-cache-" + host,
		})
		closers = append(closers, ordersConsumer, customersConsumer)
		appLogger.Info("Connected to Kafka",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("orders_topic", cfg.Kafka.OrdersTopic),
			zap.String("customers_topic", cfg.Kafka.CustomersTopic),
		)
	}

	// 6. Initialize UseCases
	resolver := pricingcontext.NewResolver(repos.customers, contextCache, cfg.Pricing.LookupTimeout, appLogger)
	resolver.Subscribe(bus)

	customerUC := customerUCPkg.NewCustomerUseCase(repos.customers, bus, appLogger)
	catalogUC := catalogUCPkg.NewCatalogUseCase(repos.catalog, resolver, redisClient, cfg.Pricing.ProductCacheTTL, appLogger)
	inventoryUC := inventoryUCPkg.NewInventoryUseCase(repos.stock, stockLocker, catalogUC, appLogger)
	voucherUC := voucherUCPkg.NewVoucherUseCase(repos.vouchers, resolver, appLogger)
	walletUC := walletUCPkg.NewWalletUseCase(repos.wallets, walletLocker, appLogger)
	tierUC := tierUCPkg.NewTierUseCase(repos.tiers, repos.customers, walletUC, bus, tier.NewPeriodPolicy(storeLoc), appLogger)
	checkoutUC := checkoutUCPkg.NewCheckoutUseCase(resolver, catalogUC, voucherUC, tierUC, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 7. Listeners and scheduler
	if cfg.Kafka.Enabled {
		go tierListenerPkg.NewOrderListener(ordersConsumer, tierUC, appLogger).Start(ctx)
		go customerListenerPkg.NewCustomerListener(customersConsumer, resolver, appLogger).Start(ctx)
	}

	scheduler := tierSchedulerPkg.New(tierUC, storeLoc, resetLocker, appLogger)
	if err := scheduler.Start(ctx); err != nil {
		appLogger.Fatal("Could not start tier scheduler", zap.Error(err))
	}

	// 8. Initialize Handlers
	catalogHandler := catalogH.NewCatalogHandler(catalogUC, translator, appLogger)
	checkoutHandler := checkoutH.NewCheckoutHandler(checkoutUC, translator, appLogger)
	customerHandler := customerH.NewCustomerHandler(customerUC, resolver, appLogger)
	inventoryHandler := inventoryH.NewInventoryHandler(inventoryUC, appLogger)
	tierHandler := tierH.NewTierHandler(tierUC, appLogger)
	voucherHandler := voucherH.NewVoucherHandler(voucherUC, translator, appLogger)
	walletHandler := walletH.NewWalletHandler(walletUC, appLogger)

	// 9. Start gRPC Server
	port := cfg.Server.GRPCPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	lis, err := net.Listen("tcp", port)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			middleware.RecoveryInterceptor(appLogger),
			middleware.ContextInterceptor(),
			middleware.LoggingInterceptor(appLogger),
		),
	)

	// Register Services
	grpcServer.RegisterService(catalogHandler.ServiceDesc(), catalogHandler)
	grpcServer.RegisterService(checkoutHandler.ServiceDesc(), checkoutHandler)
	grpcServer.RegisterService(customerHandler.ServiceDesc(), customerHandler)
	grpcServer.RegisterService(inventoryHandler.ServiceDesc(), inventoryHandler)
	grpcServer.RegisterService(tierHandler.ServiceDesc(), tierHandler)
	grpcServer.RegisterService(voucherHandler.ServiceDesc(), voucherHandler)
	grpcServer.RegisterService(walletHandler.ServiceDesc(), walletHandler)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	for _, name := range []string{
		catalogH.ServiceName, checkoutH.ServiceName, customerH.ServiceName, inventoryH.ServiceName,
		tierH.ServiceName, voucherH.ServiceName, walletH.ServiceName,
	} {
		healthServer.SetServingStatus(name, healthpb.HealthCheckResponse_SERVING)
	}

	// Register Reflection
	reflection.Register(grpcServer)

	appLogger.Info("Starting gRPC server", zap.String("port", port), zap.String("storage", cfg.Server.Storage))

	// Graceful Shutdown
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	healthServer.Shutdown()
	grpcServer.GracefulStop()
	cancel()
	scheduler.Stop()

	var closeErr error
	for i := len(closers) - 1; i >= 0; i-- {
		closeErr = multierr.Append(closeErr, closers[i].Close())
	}
	if closeErr != nil {
		appLogger.Error("Errors while closing resources", zap.Error(closeErr))
	}
	appLogger.Info("Server stopped")
}
