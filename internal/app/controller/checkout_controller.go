package controller

import (
	"net/http"

	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/app/model"
	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/app/service"
	apperrors "github.com/Sahani-Mohottige/SafeOnlineShop/internal/errors"
	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/middleware"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

type CheckoutController struct {
	checkoutService service.CheckoutService
}

func NewCheckoutController(checkoutService service.CheckoutService) *CheckoutController {
	return &CheckoutController{
		checkoutService: checkoutService,
	}
}

// LineItemRequest is one product line sent by the client for checkouts and orders.
type LineItemRequest struct {
	ProductID uint    `json:"product_id" binding:"required"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
	Price     float64 `json:"price" binding:"min=0"`
	Size      string  `json:"size"`
	Color     string  `json:"color"`
	Quantity  int     `json:"quantity" binding:"required,min=1"`
}

type CreateCheckoutRequest struct {
	CheckoutItems   []LineItemRequest     `json:"checkout_items" binding:"dive"`
	ShippingAddress model.ShippingAddress `json:"shipping_address"`
	PaymentMethod   string                `json:"payment_method" binding:"required"`
	TotalPrice      float64               `json:"total_price" binding:"min=0"`
}

type PayCheckoutRequest struct {
	PaymentStatus  string        `json:"payment_status" binding:"required"`
	PaymentDetails datatypes.JSONMap `json:"payment_details"`
}

func lineItems(in []LineItemRequest) []service.LineItem {
	items := make([]service.LineItem, 0, len(in))
	for _, item := range in {
		items = append(items, service.LineItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Image:     item.Image,
			Price:     item.Price,
			Size:      item.Size,
			Color:     item.Color,
			Quantity:  item.Quantity,
		})
	}
	return items
}

// CreateCheckout opens a checkout session
// POST /api/v1/checkout
func (ctrl *CheckoutController) CreateCheckout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var req CreateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, log, err, map[string]interface{}{"user_id": userID})
		return
	}

	checkout, err := ctrl.checkoutService.StartCheckout(c.Request.Context(), service.StartCheckoutInput{
		UserID:          userID,
		Items:           lineItems(req.CheckoutItems),
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		TotalPrice:      req.TotalPrice,
	})
	if err != nil {
		respondServiceError(c, log, err, "Create checkout", map[string]interface{}{
			"user_id": userID,
		})
		return
	}

	log.Info("Checkout created successfully", map[string]interface{}{
		"user_id":     userID,
		"checkout_id": checkout.ID,
	})
	c.JSON(http.StatusCreated, checkout)
}

// GetCheckout returns a checkout session of the caller
// GET /api/v1/checkout/:id
func (ctrl *CheckoutController) GetCheckout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}
	checkoutID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	checkout, err := ctrl.checkoutService.GetCheckout(c.Request.Context(), checkoutID, userID)
	if err != nil {
		respondServiceError(c, log, err, "Fetch checkout", map[string]interface{}{
			"user_id":     userID,
			"checkout_id": checkoutID,
		})
		return
	}
	c.JSON(http.StatusOK, checkout)
}

// PayCheckout records a successful payment
// PUT /api/v1/checkout/:id/pay
func (ctrl *CheckoutController) PayCheckout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}
	checkoutID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	fields := map[string]interface{}{
		"user_id":     userID,
		"checkout_id": checkoutID,
	}

	var req PayCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, log, err, fields)
		return
	}

	checkout, err := ctrl.checkoutService.ConfirmPayment(c.Request.Context(), checkoutID, userID, req.PaymentStatus, req.PaymentDetails)
	if err != nil {
		respondServiceError(c, log, err, "Confirm checkout payment", fields)
		return
	}

	log.Info("Checkout payment recorded", fields)
	c.JSON(http.StatusOK, gin.H{
		"message":  "Payment status updated",
		"checkout": checkout,
	})
}

// FinalizeCheckout turns a paid checkout into an order
// POST /api/v1/checkout/:id/finalize
func (ctrl *CheckoutController) FinalizeCheckout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}
	checkoutID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	fields := map[string]interface{}{
		"user_id":     userID,
		"checkout_id": checkoutID,
	}
	order, err := ctrl.checkoutService.Finalize(c.Request.Context(), checkoutID, userID)
	if err != nil {
		respondServiceError(c, log, err, "Finalize checkout", fields)
		return
	}

	log.Info("Checkout finalized successfully", map[string]interface{}{
		"user_id":     userID,
		"checkout_id": checkoutID,
		"order_id":    order.ID,
	})
	c.JSON(http.StatusCreated, order)
}
