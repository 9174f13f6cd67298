package controller

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/app/model"
	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/app/repository"
	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/app/service"
	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/db"
	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/middleware"
	"github.com/Sahani-Mohottige/SafeOnlineShop/pkg/lock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testJWTSecret = "test-jwt-secret-for-controllers"

type testEnv struct {
	db       *gorm.DB
	auth     service.AuthService
	products service.ProductService
	carts    service.CartService
	checkout service.CheckoutService
	orders   service.OrderService
	user     *model.User
	product  *model.Product
}

func setupTestEnv(t *testing.T) *testEnv {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	userRepo := repository.NewUserRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	cartRepo := repository.NewCartRepository(testDB)
	locker := lock.NewLocalLocker()

	orderService := service.NewOrderService(repository.NewOrderRepository(testDB), userRepo, nil)

	user := &model.User{
		Email: "test@example.com",
		Name:  "Test User",
		Role:  model.RoleCustomer,
	}
	require.NoError(t, testDB.Create(user).Error)

	product := &model.Product{
		Name:         "Test Product",
		SKU:          "TP-1",
		Price:        25,
		CountInStock: 10,
		Category:     "Top Wear",
		Gender:       "Men",
	}
	require.NoError(t, testDB.Create(product).Error)

	gin.SetMode(gin.TestMode)

	return &testEnv{
		db:       testDB,
		auth:     service.NewAuthService(userRepo, testJWTSecret, 15*time.Minute, 24*time.Hour),
		products: service.NewProductService(productRepo),
		carts:    service.NewCartService(cartRepo, productRepo, locker, 5*time.Second),
		checkout: service.NewCheckoutService(
			repository.NewCheckoutRepository(testDB),
			cartRepo,
			productRepo,
			userRepo,
			orderService,
			locker,
			5*time.Second,
			testDB,
			false,
		),
		orders:  orderService,
		user:    user,
		product: product,
	}
}

// asUser marks the request as authenticated without going through JWT validation
func asUser(userID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	}
}

func asAdmin(userID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Set(middleware.UserRoleKey, model.RoleAdmin)
		c.Next()
	}
}

func performRequest(router http.Handler, method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}
