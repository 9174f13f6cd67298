package controller

import (
	"net/http"
	"time"

	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/app/model"
	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/app/service"
	apperrors "github.com/Sahani-Mohottige/SafeOnlineShop/internal/errors"
	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/middleware"
	"github.com/gin-gonic/gin"
)

type OrderController struct {
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

type CreateOrderRequest struct {
	OrderItems       []LineItemRequest      `json:"order_items" binding:"dive"`
	ShippingAddress  *model.ShippingAddress `json:"shipping_address"`
	PaymentMethod    string                 `json:"payment_method" binding:"required"`
	TotalPrice       float64                `json:"total_price" binding:"min=0"`
	Username         string                 `json:"username"`
	DateOfPurchase   *time.Time             `json:"date_of_purchase"`
	DeliveryTime     string                 `json:"delivery_time"`
	DeliveryLocation string                 `json:"delivery_location"`
	Message          string                 `json:"message"`
}

type UpdateOrderStatusRequest struct {
	Status model.OrderStatus `json:"status" binding:"required,oneof=Shipped Delivered"`
}

// CreateOrder places an unpaid order directly, without a checkout session
// POST /api/v1/orders
func (ctrl *OrderController) CreateOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, log, err, map[string]interface{}{"user_id": userID})
		return
	}
	if len(req.OrderItems) == 0 {
		log.Warn("Order rejected: no items", map[string]interface{}{"user_id": userID})
		apperrors.BadRequest(c, apperrors.OrderNoItems, "No order items")
		return
	}

	draft := service.OrderDraft{
		UserID:           userID,
		Username:         req.Username,
		Items:            lineItems(req.OrderItems),
		PaymentMethod:    req.PaymentMethod,
		TotalPrice:       req.TotalPrice,
		DateOfPurchase:   req.DateOfPurchase,
		DeliveryTime:     req.DeliveryTime,
		DeliveryLocation: req.DeliveryLocation,
		Message:          req.Message,
	}
	if req.ShippingAddress != nil {
		draft.ShippingAddress = *req.ShippingAddress
	}

	order, err := ctrl.orderService.CreateOrderDirect(c.Request.Context(), draft)
	if err != nil {
		respondServiceError(c, log, err, "Create order", map[string]interface{}{
			"user_id": userID,
		})
		return
	}

	log.Info("Order created successfully", map[string]interface{}{
		"user_id":  userID,
		"order_id": order.ID,
	})
	c.JSON(http.StatusCreated, order)
}

// GetMyOrders returns the caller's orders, newest first
// GET /api/v1/orders/my-orders
func (ctrl *OrderController) GetMyOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	orders, err := ctrl.orderService.ListOrders(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, log, err, "Fetch orders", map[string]interface{}{
			"user_id": userID,
		})
		return
	}
	if orders == nil {
		orders = []model.Order{}
	}

	log.Info("Orders fetched successfully", map[string]interface{}{
		"user_id": userID,
		"count":   len(orders),
	})
	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
	})
}

// GetOrderByID returns one order of the caller
// GET /api/v1/orders/:id
func (ctrl *OrderController) GetOrderByID(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := ctrl.orderService.GetOrder(c.Request.Context(), userID, orderID)
	if err != nil {
		respondServiceError(c, log, err, "Fetch order", map[string]interface{}{
			"user_id":  userID,
			"order_id": orderID,
		})
		return
	}
	c.JSON(http.StatusOK, order)
}

// CancelOrder cancels one of the caller's orders
// POST /api/v1/orders/:id/cancel
func (ctrl *OrderController) CancelOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	fields := map[string]interface{}{
		"user_id":  userID,
		"order_id": orderID,
	}
	if _, err := ctrl.orderService.CancelOrder(c.Request.Context(), orderID, userID); err != nil {
		respondServiceError(c, log, err, "Cancel order", fields)
		return
	}

	log.Info("Order cancelled successfully", fields)
	c.JSON(http.StatusOK, gin.H{
		"message": "Order cancelled successfully",
	})
}

// UpdateOrderStatus advances fulfilment of any order (Admin only)
// PUT /api/v1/orders/:id/status
func (ctrl *OrderController) UpdateOrderStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, log, err, map[string]interface{}{"order_id": orderID})
		return
	}

	fields := map[string]interface{}{
		"order_id": orderID,
		"status":   req.Status,
	}
	order, err := ctrl.orderService.AdvanceStatus(c.Request.Context(), orderID, req.Status)
	if err != nil {
		respondServiceError(c, log, err, "Update order status", fields)
		return
	}

	log.Info("Order status updated successfully", fields)
	c.JSON(http.StatusOK, order)
}
