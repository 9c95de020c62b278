package main

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/config"
	"storefront/internal/auth"
	"storefront/internal/clients"
	"storefront/internal/delivery"
	grpcServer "storefront/internal/delivery/grpc"
	"storefront/internal/domain"
	"storefront/internal/repository"
	"storefront/internal/usecase"
	"storefront/pkg/cache"
	"storefront/pkg/db"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// dataRepos groups the collaborators that can be served by either backend.
type dataRepos struct {
	products   domain.ProductRepository
	categories domain.CategoryRepository
	cart       domain.CartRepository
	wishlist   domain.WishlistRepository

	// baasPing is set when the managed backend serves the data path.
	baasPing delivery.HealthCheck
}

func main() {
	logger := setupLogger("info")

	cfg, err := config.Load(logger)
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warnf("Invalid log level '%s' in config, using default 'info'. Error: %v", cfg.LogLevel, err)
	} else {
		logger.SetLevel(logLevel)
	}
	if logLevel != logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	logger.Info("Starting Storefront...")

	ctx := context.Background()

	logger.Info("Connecting to database...")
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Errorf("Error closing database connection: %v", err)
		} else {
			logger.Info("Database connection closed.")
		}
	}()
	logger.Info("Database connection established successfully.")

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, database); err != nil {
			logger.Fatalf("Failed to apply migrations: %v", err)
		}
		logger.Info("Database schema is up to date.")
	}

	rdb, err := cache.Connect(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		logger.Fatalf("Failed to connect to redis at %s: %v", cfg.RedisAddr, err)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Errorf("Error closing redis connection: %v", err)
		}
	}()
	logger.Infof("Connected to redis at %s", cfg.RedisAddr)

	repos := selectRepos(cfg, database, logger)

	sessionRepo, err := repository.NewRedisSessionRepository(rdb, logger)
	if err != nil {
		logger.Fatalf("Failed to create session repository: %v", err)
	}
	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer)
	if err != nil {
		logger.Fatalf("Failed to create token manager: %v", err)
	}
	userRepo := repository.NewPostgresUserRepository(database, logger)

	authUseCase := usecase.NewAuthUseCase(userRepo, sessionRepo, tokens, cfg.SessionTTL, logger)
	productUseCase := usecase.NewProductUseCase(repos.products, repos.categories, logger)
	categoryUseCase := usecase.NewCategoryUseCase(repos.categories, productUseCase, logger)
	cartUseCase := usecase.NewCartUseCase(repos.cart, usecase.NewPricing(cfg.FreeShippingThreshold, cfg.ShippingFee), logger)
	wishlistUseCase := usecase.NewWishlistUseCase(repos.wishlist, repos.products, logger)

	checks := map[string]delivery.HealthCheck{
		"postgres": database.PingContext,
		"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	}
	if repos.baasPing != nil {
		checks["baas"] = repos.baasPing
	}
	healthHandler := delivery.NewHealthHandler(checks, logger)

	router := delivery.NewRouter(logger, cfg.CORSOrigins, authUseCase,
		delivery.NewProductHandler(productUseCase, logger),
		delivery.NewCategoryHandler(categoryUseCase, logger),
		delivery.NewCartHandler(cartUseCase, logger),
		delivery.NewWishlistHandler(wishlistUseCase, logger),
		delivery.NewAuthHandler(authUseCase, logger),
		healthHandler,
	)

	httpServer := &http.Server{
		Addr:              cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Infof("HTTP server listening on %s", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to serve HTTP: %v", err)
		}
		logger.Info("HTTP server stopped serving.")
	}()

	lis, err := net.Listen("tcp", cfg.GrpcPort)
	if err != nil {
		logger.Fatalf("Failed to listen on port %s: %v", cfg.GrpcPort, err)
	}
	healthServer := grpcServer.NewServer(healthHandler, logger)
	watchCtx, stopWatch := context.WithCancel(ctx)
	go healthServer.Watch(watchCtx, 15*time.Second)
	go func() {
		if err := healthServer.Serve(lis); err != nil {
			logger.Fatalf("Failed to serve gRPC: %v", err)
		}
		logger.Info("gRPC server stopped serving.")
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	logger.Info("Signal listener started.")

	<-quit
	logger.Warn("Shutdown signal received...")
	stopWatch()

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("HTTP server forced to shut down: %v", err)
	} else {
		logger.Info("HTTP server gracefully stopped.")
	}

	logger.Info("Attempting graceful shutdown of gRPC server...")
	healthServer.GracefulStop()
	logger.Info("gRPC server gracefully stopped.")
	logger.Info("Storefront shut down gracefully.")
}

func selectRepos(cfg *config.Config, database *sql.DB, logger *logrus.Logger) dataRepos {
	if cfg.UseBaaS() {
		client := clients.NewBaaSClient(cfg.BaaSURL, cfg.BaaSAPIKey, cfg.BaaSTimeout, logger)
		logger.Infof("Catalog, cart and wishlist served by BaaS at %s", cfg.BaaSURL)
		return dataRepos{products: client, categories: client, cart: client, wishlist: client, baasPing: client.Ping}
	}
	logger.Info("Catalog, cart and wishlist served by Postgres")
	return dataRepos{
		products:   repository.NewPostgresProductRepository(database, logger),
		categories: repository.NewPostgresCategoryRepository(database, logger),
		cart:       repository.NewPostgresCartRepository(database, logger),
		wishlist:   repository.NewPostgresWishlistRepository(database, logger),
	}
}

func setupLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logger.Warnf("Invalid log level '%s', using default 'info'. Error: %v", level, err)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)
	return logger
}
