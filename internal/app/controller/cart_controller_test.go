package controller

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/app/service"
	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCartRouter(env *testEnv, auth ...gin.HandlerFunc) *gin.Engine {
	ctrl := NewCartController(env.carts)
	router := gin.New()
	group := router.Group("/cart", auth...)
	group.GET("", ctrl.GetCart)
	group.POST("", ctrl.AddToCart)
	group.PUT("", ctrl.UpdateCartItem)
	group.DELETE("", ctrl.RemoveFromCart)
	group.POST("/clear", ctrl.ClearCart)
	group.POST("/merge", ctrl.MergeCart)
	return router
}

func TestCartController_GetCart_Empty(t *testing.T) {
	env := setupTestEnv(t)
	router := setupCartRouter(env, asUser(env.user.ID))

	w := performRequest(router, http.MethodGet, "/cart", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"products":[],"total_price":0,"total_items":0}`, w.Body.String())
}

func TestCartController_AddToCart_User(t *testing.T) {
	env := setupTestEnv(t)
	router := setupCartRouter(env, asUser(env.user.ID))

	body := AddToCartRequest{ProductID: env.product.ID, Quantity: 2, Size: "M", Color: "Red"}
	w := performRequest(router, http.MethodPost, "/cart", body)
	assert.Equal(t, http.StatusCreated, w.Code)

	response := decodeBody(t, w)
	assert.Equal(t, float64(50), response["total_price"])
	assert.Equal(t, float64(2), response["total_items"])
	products := response["products"].([]interface{})
	require.Len(t, products, 1)

	// second add increments and answers 200
	w = performRequest(router, http.MethodPost, "/cart", body)
	assert.Equal(t, http.StatusOK, w.Code)
	response = decodeBody(t, w)
	assert.Equal(t, float64(4), response["total_items"])

	w = performRequest(router, http.MethodGet, "/cart", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(100), decodeBody(t, w)["total_price"])
}

func TestCartController_AddToCart_Guest(t *testing.T) {
	env := setupTestEnv(t)
	router := setupCartRouter(env)

	body := AddToCartRequest{ProductID: env.product.ID, Quantity: 1, GuestID: "guest_abc"}
	w := performRequest(router, http.MethodPost, "/cart", body)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "guest_abc", decodeBody(t, w)["guest_id"])

	// the guest id can also travel in a header or query parameter
	w = performRequest(router, http.MethodGet, "/cart", nil, middleware.GuestIDHeader, "guest_abc")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decodeBody(t, w)["total_items"])

	w = performRequest(router, http.MethodGet, "/cart?guest_id=guest_abc", nil)
	assert.Equal(t, float64(1), decodeBody(t, w)["total_items"])
}

func TestCartController_AddToCart_Anonymous(t *testing.T) {
	env := setupTestEnv(t)
	router := setupCartRouter(env)

	w := performRequest(router, http.MethodPost, "/cart", AddToCartRequest{ProductID: env.product.ID, Quantity: 1})
	assert.Equal(t, http.StatusCreated, w.Code)

	guestID, _ := decodeBody(t, w)["guest_id"].(string)
	assert.True(t, strings.HasPrefix(guestID, "guest_"))
}

func TestCartController_AddToCart_Errors(t *testing.T) {
	env := setupTestEnv(t)
	router := setupCartRouter(env, asUser(env.user.ID))

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
		wantCode   string
	}{
		{
			name:       "Unknown product",
			body:       AddToCartRequest{ProductID: 9999, Quantity: 1},
			wantStatus: http.StatusNotFound,
			wantCode:   "PRODUCT_NOT_FOUND",
		},
		{
			name:       "Zero quantity",
			body:       map[string]interface{}{"product_id": env.product.ID, "quantity": 0},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_INVALID_INPUT",
		},
		{
			name:       "Missing product",
			body:       map[string]interface{}{"quantity": 1},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_INVALID_INPUT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(router, http.MethodPost, "/cart", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, decodeBody(t, w)["error"])
		})
	}
}

func TestCartController_UpdateAndRemove(t *testing.T) {
	env := setupTestEnv(t)
	router := setupCartRouter(env, asUser(env.user.ID))

	w := performRequest(router, http.MethodPost, "/cart", AddToCartRequest{ProductID: env.product.ID, Quantity: 1, Size: "M"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = performRequest(router, http.MethodPut, "/cart", UpdateCartRequest{ProductID: env.product.ID, Quantity: 5, Size: "M"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(125), decodeBody(t, w)["total_price"])

	w = performRequest(router, http.MethodPut, "/cart", UpdateCartRequest{ProductID: env.product.ID, Quantity: 5, Size: "XL"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "CART_ITEM_NOT_FOUND", decodeBody(t, w)["error"])

	w = performRequest(router, http.MethodDelete, "/cart", RemoveFromCartRequest{ProductID: env.product.ID, Size: "M"})
	assert.Equal(t, http.StatusOK, w.Code)
	response := decodeBody(t, w)
	assert.Equal(t, float64(0), response["total_items"])
	assert.Empty(t, response["products"])
}

func TestCartController_UpdateCartItem_NoCart(t *testing.T) {
	env := setupTestEnv(t)
	router := setupCartRouter(env, asUser(env.user.ID))

	w := performRequest(router, http.MethodPut, "/cart", UpdateCartRequest{ProductID: env.product.ID, Quantity: 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "CART_NOT_FOUND", decodeBody(t, w)["error"])
}

func TestCartController_ClearCart(t *testing.T) {
	env := setupTestEnv(t)
	router := setupCartRouter(env)

	_, _, err := env.carts.AddItem(context.Background(), service.GuestIdentity("g1"), service.AddItemInput{ProductID: env.product.ID, Quantity: 3})
	require.NoError(t, err)

	w := performRequest(router, http.MethodPost, "/cart/clear", nil, middleware.GuestIDHeader, "g1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decodeBody(t, w)["total_items"])

	w = performRequest(router, http.MethodPost, "/cart/clear", ClearCartRequest{GuestID: "g_missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCartController_MergeCart(t *testing.T) {
	env := setupTestEnv(t)
	router := setupCartRouter(env, asUser(env.user.ID))

	_, _, err := env.carts.AddItem(context.Background(), service.GuestIdentity("g1"), service.AddItemInput{ProductID: env.product.ID, Quantity: 2})
	require.NoError(t, err)

	w := performRequest(router, http.MethodPost, "/cart/merge", MergeCartRequest{GuestID: "g1"})
	assert.Equal(t, http.StatusOK, w.Code)
	response := decodeBody(t, w)
	assert.Equal(t, float64(env.user.ID), response["user_id"])
	assert.Equal(t, float64(2), response["total_items"])

	w = performRequest(router, http.MethodPost, "/cart/merge", MergeCartRequest{GuestID: "guest_999"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "CART_GUEST_NOT_FOUND", decodeBody(t, w)["error"])

	w = performRequest(router, http.MethodPost, "/cart/merge", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_REQUIRED", decodeBody(t, w)["error"])
}

func TestCartController_CamelCaseGuestID(t *testing.T) {
	env := setupTestEnv(t)
	guestRouter := setupCartRouter(env)

	w := performRequest(guestRouter, http.MethodPost, "/cart", map[string]interface{}{
		"product_id": env.product.ID,
		"quantity":   1,
		"guestId":    "guest_camel",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "guest_camel", decodeBody(t, w)["guest_id"])

	w = performRequest(guestRouter, http.MethodGet, "/cart?guestId=guest_camel", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decodeBody(t, w)["total_items"])

	userRouter := setupCartRouter(env, asUser(env.user.ID))
	w = performRequest(userRouter, http.MethodPost, "/cart/merge", map[string]interface{}{"guestId": "guest_camel"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(env.user.ID), decodeBody(t, w)["user_id"])
}

func TestCartController_MergeCart_EmptyGuestCart(t *testing.T) {
	env := setupTestEnv(t)
	router := setupCartRouter(env, asUser(env.user.ID))

	guest := service.GuestIdentity("g1")
	_, _, err := env.carts.AddItem(context.Background(), guest, service.AddItemInput{ProductID: env.product.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = env.carts.Clear(context.Background(), guest)
	require.NoError(t, err)

	w := performRequest(router, http.MethodPost, "/cart/merge", MergeCartRequest{GuestID: "g1"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "CART_GUEST_EMPTY", decodeBody(t, w)["error"])
}

func TestCartController_MergeCart_Unauthorized(t *testing.T) {
	env := setupTestEnv(t)
	router := setupCartRouter(env)

	w := performRequest(router, http.MethodPost, "/cart/merge", MergeCartRequest{GuestID: "g1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
