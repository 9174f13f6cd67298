package router

import (
	"net/http"
	"time"

	"github.com/Sahani-Mohottige/SafeOnlineShop/config"
	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/app/controller"
	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/app/model"
	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Router struct {
	authController        *controller.AuthController
	productController     *controller.ProductController
	cartController        *controller.CartController
	checkoutController    *controller.CheckoutController
	orderController       *controller.OrderController
	orderEventsController *controller.OrderEventsController
	authMiddleware        *middleware.AuthMiddleware
	config                *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	productController *controller.ProductController,
	cartController *controller.CartController,
	checkoutController *controller.CheckoutController,
	orderController *controller.OrderController,
	orderEventsController *controller.OrderEventsController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:        authController,
		productController:     productController,
		cartController:        cartController,
		checkoutController:    checkoutController,
		orderController:       orderController,
		orderEventsController: orderEventsController,
		authMiddleware:        authMiddleware,
		config:                cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "SafeOnlineShop API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		users := v1.Group("/users")
		{
			users.POST("/register", r.authController.Register)
			users.POST("/login", r.authController.Login)
			users.POST("/refresh", r.authController.RefreshToken)
			users.GET("/profile", r.authMiddleware.Authenticate(), r.authController.GetProfile)
			users.PUT("/profile", r.authMiddleware.Authenticate(), r.authController.UpdateProfile)
		}

		v1.POST("/auth/guest", r.authController.IssueGuestID)

		products := v1.Group("/products")
		{
			products.GET("", r.productController.GetProducts)
			products.GET("/search", r.productController.SearchProducts)
			products.GET("/best-seller", r.productController.GetBestSeller)
			products.GET("/new-arrivals", r.productController.GetNewArrivals)
			products.GET("/similar/:id", r.productController.GetSimilarProducts)
			products.GET("/:id", r.productController.GetProductByID)
		}

		// guests and users share the cart routes; a valid token wins over guest_id
		cart := v1.Group("/cart")
		cart.Use(r.authMiddleware.OptionalAuthenticate())
		{
			cart.GET("", r.cartController.GetCart)
			cart.POST("", r.cartController.AddToCart)
			cart.PUT("", r.cartController.UpdateCartItem)
			cart.DELETE("", r.cartController.RemoveFromCart)
			cart.POST("/clear", r.cartController.ClearCart)
			cart.POST("/merge", r.authMiddleware.Authenticate(), r.cartController.MergeCart)
		}

		checkout := v1.Group("/checkout")
		checkout.Use(r.authMiddleware.Authenticate())
		{
			checkout.POST("", r.checkoutController.CreateCheckout)
			checkout.GET("/:id", r.checkoutController.GetCheckout)
			checkout.PUT("/:id/pay", r.checkoutController.PayCheckout)
			checkout.POST("/:id/finalize", r.checkoutController.FinalizeCheckout)
		}

		orders := v1.Group("/orders")
		orders.Use(r.authMiddleware.Authenticate())
		{
			orders.POST("", r.orderController.CreateOrder)
			orders.GET("/my-orders", r.orderController.GetMyOrders)
			orders.GET("/:id", r.orderController.GetOrderByID)
			orders.POST("/:id/cancel", r.orderController.CancelOrder)
			orders.PUT("/:id/status",
				r.authMiddleware.RequireRole(string(model.RoleAdmin)),
				r.orderController.UpdateOrderStatus,
			)
		}

		v1.GET("/ws/orders", r.authMiddleware.AuthenticateSocket(), r.orderEventsController.Subscribe)
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept", "Authorization",
			middleware.GuestIDHeader, middleware.RequestIDHeader,
		},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, origin := range allowedOrigins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			return cors.New(cfg)
		}
	}
	cfg.AllowOrigins = allowedOrigins
	return cors.New(cfg)
}
