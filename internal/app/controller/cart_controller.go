package controller

import (
	"net/http"

	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/app/model"
	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/app/service"
	apperrors "github.com/Sahani-Mohottige/SafeOnlineShop/internal/errors"
	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

type AddToCartRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	GuestID   string `json:"guest_id"`
	GuestIDJS string `json:"guestId"`
}

type UpdateCartRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	GuestID   string `json:"guest_id"`
	GuestIDJS string `json:"guestId"`
}

type RemoveFromCartRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	GuestID   string `json:"guest_id"`
	GuestIDJS string `json:"guestId"`
}

type MergeCartRequest struct {
	GuestID   string `json:"guest_id"`
	GuestIDJS string `json:"guestId"`
}

type ClearCartRequest struct {
	GuestID   string `json:"guest_id"`
	GuestIDJS string `json:"guestId"`
}

// guestIDOf accepts the camelCase spelling older storefront clients send.
func guestIDOf(snake, camel string) string {
	if snake != "" {
		return snake
	}
	return camel
}

func cartJSON(cart *model.Cart) *model.Cart {
	if cart.Products == nil {
		cart.Products = []model.CartItem{}
	}
	return cart
}

// GetCart returns the cart of the caller
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	identity := middleware.ResolveIdentity(c, "")

	cart, err := ctrl.cartService.Resolve(c.Request.Context(), identity)
	if err != nil {
		respondServiceError(c, log, err, "Fetch cart", nil)
		return
	}
	if cart == nil {
		c.JSON(http.StatusOK, gin.H{
			"products":    []model.CartItem{},
			"total_price": 0,
			"total_items": 0,
		})
		return
	}

	log.Info("Cart fetched successfully", map[string]interface{}{
		"cart_id":     cart.ID,
		"total_items": cart.TotalItems,
	})
	c.JSON(http.StatusOK, cartJSON(cart))
}

// AddToCart adds a product line or increments an existing one
// POST /api/v1/cart
func (ctrl *CartController) AddToCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, log, err, nil)
		return
	}
	identity := middleware.ResolveIdentity(c, guestIDOf(req.GuestID, req.GuestIDJS))

	fields := map[string]interface{}{
		"product_id": req.ProductID,
		"quantity":   req.Quantity,
		"size":       req.Size,
		"color":      req.Color,
	}
	log.Debug("Adding item to cart", fields)

	cart, created, err := ctrl.cartService.AddItem(c.Request.Context(), identity, service.AddItemInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Size:      req.Size,
		Color:     req.Color,
	})
	if err != nil {
		respondServiceError(c, log, err, "Add item to cart", fields)
		return
	}

	log.Info("Item added to cart successfully", map[string]interface{}{
		"cart_id":     cart.ID,
		"created":     created,
		"total_items": cart.TotalItems,
	})

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, cartJSON(cart))
}

// UpdateCartItem overwrites the quantity of a line
// PUT /api/v1/cart
func (ctrl *CartController) UpdateCartItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req UpdateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, log, err, nil)
		return
	}
	identity := middleware.ResolveIdentity(c, guestIDOf(req.GuestID, req.GuestIDJS))

	fields := map[string]interface{}{
		"product_id": req.ProductID,
		"quantity":   req.Quantity,
	}
	cart, err := ctrl.cartService.UpdateQuantity(c.Request.Context(), identity, req.ProductID, req.Size, req.Color, req.Quantity)
	if err != nil {
		respondServiceError(c, log, err, "Update cart item", fields)
		return
	}

	log.Info("Cart item updated successfully", fields)
	c.JSON(http.StatusOK, cartJSON(cart))
}

// RemoveFromCart drops a line from the cart
// DELETE /api/v1/cart
func (ctrl *CartController) RemoveFromCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RemoveFromCartRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		respondBindError(c, log, err, nil)
		return
	}
	identity := middleware.ResolveIdentity(c, guestIDOf(req.GuestID, req.GuestIDJS))

	fields := map[string]interface{}{
		"product_id": req.ProductID,
		"size":       req.Size,
		"color":      req.Color,
	}
	cart, err := ctrl.cartService.RemoveItem(c.Request.Context(), identity, req.ProductID, req.Size, req.Color)
	if err != nil {
		respondServiceError(c, log, err, "Remove cart item", fields)
		return
	}

	log.Info("Cart item removed successfully", fields)
	c.JSON(http.StatusOK, cartJSON(cart))
}

// MergeCart folds the guest cart into the caller's cart
// POST /api/v1/cart/merge
func (ctrl *CartController) MergeCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var req MergeCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, log, err, map[string]interface{}{"user_id": userID})
		return
	}

	guestID := guestIDOf(req.GuestID, req.GuestIDJS)
	if guestID == "" {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "guest_id is required")
		return
	}

	fields := map[string]interface{}{
		"user_id":  userID,
		"guest_id": guestID,
	}
	cart, err := ctrl.cartService.MergeGuestIntoUser(c.Request.Context(), userID, guestID)
	if err != nil {
		respondServiceError(c, log, err, "Merge guest cart", fields)
		return
	}

	log.Info("Guest cart merged successfully", fields)
	c.JSON(http.StatusOK, cartJSON(cart))
}

// ClearCart empties the cart but keeps it
// POST /api/v1/cart/clear
func (ctrl *CartController) ClearCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ClearCartRequest
	// the body is optional here
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, log, err, nil)
			return
		}
	}
	identity := middleware.ResolveIdentity(c, guestIDOf(req.GuestID, req.GuestIDJS))

	cart, err := ctrl.cartService.Clear(c.Request.Context(), identity)
	if err != nil {
		respondServiceError(c, log, err, "Clear cart", nil)
		return
	}

	log.Info("Cart cleared successfully", map[string]interface{}{
		"cart_id": cart.ID,
	})
	c.JSON(http.StatusOK, cartJSON(cart))
}
