package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sahani-Mohottige/SafeOnlineShop/config"
	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/app/controller"
	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/app/repository"
	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/app/service"
	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/db"
	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/middleware"
	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/router"
	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/scheduler"
	ws "github.com/Sahani-Mohottige/SafeOnlineShop/internal/websocket"
	"github.com/Sahani-Mohottige/SafeOnlineShop/pkg/lock"
	"github.com/Sahani-Mohottige/SafeOnlineShop/pkg/logger"
	"github.com/Sahani-Mohottige/SafeOnlineShop/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logger.Initialize(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		EnableColor: cfg.Server.Environment == "development",
	})

	logger.Info("Starting SafeOnlineShop Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   cfg.Log.Level,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Cart lock: shared through Redis when configured, in-process otherwise
	var locker lock.Locker = lock.NewLocalLocker()
	if cfg.Redis.Enabled() {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Fatal("Failed to connect to Redis", err)
		}
		defer func() {
			if err := redis.Close(); err != nil {
				logger.Error("Failed to close Redis connection", err)
			}
		}()
		locker = redis.NewLocker(redis.GetClient(), cfg.Redis.LockTTL)
		logger.Info("Using Redis cart lock", map[string]interface{}{
			"addr": cfg.Redis.Addr,
		})
	} else {
		logger.Warn("REDIS_ADDR not set, cart lock is process local")
	}

	// Order events hub
	hub := ws.NewHub()
	go hub.Run()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())
	cartRepo := repository.NewCartRepository(db.GetDB())
	checkoutRepo := repository.NewCheckoutRepository(db.GetDB())
	orderRepo := repository.NewOrderRepository(db.GetDB())

	// Initialize services
	authService := service.NewAuthService(
		userRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	productService := service.NewProductService(productRepo)
	cartService := service.NewCartService(cartRepo, productRepo, locker, cfg.Cart.LockTimeout)
	orderService := service.NewOrderService(orderRepo, userRepo, hub)
	checkoutService := service.NewCheckoutService(
		checkoutRepo,
		cartRepo,
		productRepo,
		userRepo,
		orderService,
		locker,
		cfg.Cart.LockTimeout,
		db.GetDB(),
		cfg.Checkout.TrustClientTotal,
	)

	// Background jobs
	sweeper := scheduler.NewGuestCartSweeper(cartService, cfg.Cart.GuestSweepSpec, cfg.Cart.GuestTTL)
	if err := sweeper.Start(); err != nil {
		logger.Fatal("Failed to start guest cart sweeper", err)
	}

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	productController := controller.NewProductController(productService)
	cartController := controller.NewCartController(cartService)
	checkoutController := controller.NewCheckoutController(checkoutService)
	orderController := controller.NewOrderController(orderService)
	orderEventsController := controller.NewOrderEventsController(hub, cfg.CORS.AllowedOrigins)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Setup router
	r := router.NewRouter(
		authController,
		productController,
		cartController,
		checkoutController,
		orderController,
		orderEventsController,
		authMiddleware,
		cfg,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           r.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}
	sweeper.Stop()
	hub.Stop()

	logger.Info("Server stopped successfully")
}
