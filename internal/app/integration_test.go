package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Sahani-Mohottige/SafeOnlineShop/config"
	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/app/controller"
	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/app/model"
	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/app/repository"
	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/app/service"
	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/db"
	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/middleware"
	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/router"
	ws "github.com/Sahani-Mohottige/SafeOnlineShop/internal/websocket"
	"github.com/Sahani-Mohottige/SafeOnlineShop/pkg/lock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type TestServer struct {
	Router *gin.Engine
	DB     *gorm.DB
}

func setupIntegrationTest(t *testing.T) *TestServer {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	cfg := &config.Config{
		Server: config.ServerConfig{GinMode: gin.TestMode},
		CORS:   config.CORSConfig{AllowedOrigins: []string{"*"}},
	}

	// Setup repositories
	userRepo := repository.NewUserRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	cartRepo := repository.NewCartRepository(testDB)
	locker := lock.NewLocalLocker()

	hub := ws.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	// Setup services
	authService := service.NewAuthService(userRepo, "test-secret", 15*time.Minute, 7*24*time.Hour)
	orderService := service.NewOrderService(repository.NewOrderRepository(testDB), userRepo, hub)
	checkoutService := service.NewCheckoutService(
		repository.NewCheckoutRepository(testDB),
		cartRepo,
		productRepo,
		userRepo,
		orderService,
		locker,
		5*time.Second,
		testDB,
		false,
	)

	r := router.NewRouter(
		controller.NewAuthController(authService),
		controller.NewProductController(service.NewProductService(productRepo)),
		controller.NewCartController(service.NewCartService(cartRepo, productRepo, locker, 5*time.Second)),
		controller.NewCheckoutController(checkoutService),
		controller.NewOrderController(orderService),
		controller.NewOrderEventsController(hub, cfg.CORS.AllowedOrigins),
		middleware.NewAuthMiddleware("test-secret"),
		cfg,
	)

	return &TestServer{
		Router: r.Setup(),
		DB:     testDB,
	}
}

func (ts *TestServer) do(t *testing.T, method, path string, body interface{}, headers map[string]string) (int, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)

	var response map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &response)
	return w.Code, response
}

func TestCompleteShopperJourney(t *testing.T) {
	ts := setupIntegrationTest(t)

	hoodie := &model.Product{Name: "Hoodie", SKU: "HD-1", Price: 40, CountInStock: 10, Category: "Top Wear", Gender: "Men"}
	require.NoError(t, ts.DB.Create(hoodie).Error)
	tee := &model.Product{Name: "Tee", SKU: "TS-1", Price: 15, CountInStock: 10, Category: "Top Wear", Gender: "Men"}
	require.NoError(t, ts.DB.Create(tee).Error)

	// 1. Browse as an anonymous visitor
	t.Log("Step 1: Obtain a guest id and fill the guest cart")
	code, response := ts.do(t, http.MethodPost, "/api/v1/auth/guest", nil, nil)
	require.Equal(t, http.StatusOK, code)
	guestID := response["guest_id"].(string)
	guest := map[string]string{middleware.GuestIDHeader: guestID}

	code, _ = ts.do(t, http.MethodPost, "/api/v1/cart",
		map[string]interface{}{"product_id": hoodie.ID, "quantity": 1, "size": "M", "color": "Black"}, guest)
	require.Equal(t, http.StatusCreated, code)
	code, response = ts.do(t, http.MethodPost, "/api/v1/cart",
		map[string]interface{}{"product_id": tee.ID, "quantity": 2, "size": "L", "color": "White"}, guest)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 70.0, response["total_price"])

	// 2. Register
	t.Log("Step 2: Register")
	code, response = ts.do(t, http.MethodPost, "/api/v1/users/register", map[string]interface{}{
		"name":     "Journey Buyer",
		"email":    "journey@example.com",
		"password": "password123",
	}, nil)
	require.Equal(t, http.StatusCreated, code)
	accessToken := response["tokens"].(map[string]interface{})["access_token"].(string)
	auth := map[string]string{"Authorization": "Bearer " + accessToken}

	// 3. The user already has a cart of their own before merging
	t.Log("Step 3: Add to the user cart and merge the guest cart")
	code, _ = ts.do(t, http.MethodPost, "/api/v1/cart",
		map[string]interface{}{"product_id": hoodie.ID, "quantity": 1, "size": "M", "color": "Black"}, auth)
	require.Equal(t, http.StatusCreated, code)

	code, response = ts.do(t, http.MethodPost, "/api/v1/cart/merge", map[string]interface{}{"guest_id": guestID}, auth)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 4.0, response["total_items"])
	assert.Equal(t, 110.0, response["total_price"])

	code, response = ts.do(t, http.MethodGet, "/api/v1/cart", nil, guest)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0.0, response["total_items"], "guest cart is gone after the merge")

	// 4. Checkout from the merged cart
	t.Log("Step 4: Checkout, pay and finalize")
	code, response = ts.do(t, http.MethodGet, "/api/v1/cart", nil, auth)
	require.Equal(t, http.StatusOK, code)
	var items []map[string]interface{}
	for _, raw := range response["products"].([]interface{}) {
		line := raw.(map[string]interface{})
		items = append(items, map[string]interface{}{
			"product_id": line["product_id"],
			"name":       line["name"],
			"price":      line["price"],
			"size":       line["size"],
			"color":      line["color"],
			"quantity":   line["quantity"],
		})
	}
	require.Len(t, items, 2)

	code, response = ts.do(t, http.MethodPost, "/api/v1/checkout", map[string]interface{}{
		"checkout_items": items,
		"shipping_address": map[string]interface{}{
			"address":     "12 Galle Road",
			"city":        "Colombo",
			"postal_code": "00300",
			"country":     "Sri Lanka",
		},
		"payment_method": "PayPal",
		"total_price":    110,
	}, auth)
	require.Equal(t, http.StatusCreated, code)
	checkoutID := uint(response["id"].(float64))

	code, _ = ts.do(t, http.MethodPut, fmt.Sprintf("/api/v1/checkout/%d/pay", checkoutID), map[string]interface{}{
		"payment_status":  "Paid",
		"payment_details": map[string]interface{}{"transaction_id": "TX-100"},
	}, auth)
	require.Equal(t, http.StatusOK, code)

	code, response = ts.do(t, http.MethodPost, fmt.Sprintf("/api/v1/checkout/%d/finalize", checkoutID), nil, auth)
	require.Equal(t, http.StatusCreated, code)
	orderID := uint(response["id"].(float64))
	assert.Equal(t, true, response["is_paid"])
	assert.Equal(t, 110.0, response["total_price"])

	code, response = ts.do(t, http.MethodGet, "/api/v1/cart", nil, auth)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0.0, response["total_items"], "user cart is removed by finalize")

	// 5. Order history
	t.Log("Step 5: Order history")
	code, response = ts.do(t, http.MethodGet, "/api/v1/orders/my-orders", nil, auth)
	require.Equal(t, http.StatusOK, code)
	orders := response["orders"].([]interface{})
	require.Len(t, orders, 1)

	code, response = ts.do(t, http.MethodGet, fmt.Sprintf("/api/v1/orders/%d", orderID), nil, auth)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Journey Buyer", response["username"])
	assert.Len(t, response["order_items"], 2)
}
