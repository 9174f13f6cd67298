package controller

import (
	"net/http"
	"strings"

	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/app/model"
	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/app/repository"
	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/app/service"
	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/middleware"
	"github.com/gin-gonic/gin"
)

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

// ProductQuery holds the catalog filters. Names follow the storefront's query strings.
type ProductQuery struct {
	Collection string   `form:"collection"`
	Category   string   `form:"category"`
	Material   string   `form:"material"`
	Brand      string   `form:"brand"`
	Size       string   `form:"size"`
	Color      string   `form:"color"`
	Gender     string   `form:"gender"`
	MinPrice   *float64 `form:"minPrice" binding:"omitempty,min=0"`
	MaxPrice   *float64 `form:"maxPrice" binding:"omitempty,min=0"`
	SortBy     string   `form:"sortBy" binding:"omitempty,oneof=priceAsc priceDesc popularity"`
	Search     string   `form:"search"`
	Limit      int      `form:"limit" binding:"min=0"`
}

func (q ProductQuery) filter() repository.ProductFilter {
	return repository.ProductFilter{
		Collection: strings.TrimSpace(q.Collection),
		Category:   strings.TrimSpace(q.Category),
		Materials:  splitList(q.Material),
		Brands:     splitList(q.Brand),
		Sizes:      splitList(q.Size),
		Color:      strings.TrimSpace(q.Color),
		Gender:     strings.TrimSpace(q.Gender),
		MinPrice:   q.MinPrice,
		MaxPrice:   q.MaxPrice,
		Search:     strings.TrimSpace(q.Search),
		SortBy:     repository.ProductSort(q.SortBy),
		Limit:      q.Limit,
	}
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func productsJSON(products []model.Product) []model.Product {
	if products == nil {
		return []model.Product{}
	}
	return products
}

// GetProducts returns the catalog filtered by query parameters
// GET /api/v1/products
func (ctrl *ProductController) GetProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var query ProductQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindError(c, log, err, map[string]interface{}{
			"query": c.Request.URL.RawQuery,
		})
		return
	}

	products, err := ctrl.productService.ListProducts(c.Request.Context(), query.filter())
	if err != nil {
		respondServiceError(c, log, err, "Fetch products", nil)
		return
	}

	log.Info("Products fetched successfully", map[string]interface{}{
		"count": len(products),
	})
	c.JSON(http.StatusOK, productsJSON(products))
}

// SearchProducts matches name or description
// GET /api/v1/products/search?query=
func (ctrl *ProductController) SearchProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	products, err := ctrl.productService.ListProducts(c.Request.Context(), repository.ProductFilter{
		Search: strings.TrimSpace(c.Query("query")),
	})
	if err != nil {
		respondServiceError(c, log, err, "Search products", nil)
		return
	}
	c.JSON(http.StatusOK, productsJSON(products))
}

// GetProductByID returns a product by ID
// GET /api/v1/products/:id
func (ctrl *ProductController) GetProductByID(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := ctrl.productService.GetProductByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, log, err, "Fetch product", map[string]interface{}{
			"product_id": id,
		})
		return
	}
	c.JSON(http.StatusOK, product)
}

// GetBestSeller returns the highest rated product
// GET /api/v1/products/best-seller
func (ctrl *ProductController) GetBestSeller(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	product, err := ctrl.productService.BestSeller(c.Request.Context())
	if err != nil {
		respondServiceError(c, log, err, "Fetch best seller", nil)
		return
	}
	c.JSON(http.StatusOK, product)
}

// GetNewArrivals returns the latest products
// GET /api/v1/products/new-arrivals
func (ctrl *ProductController) GetNewArrivals(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	products, err := ctrl.productService.NewArrivals(c.Request.Context())
	if err != nil {
		respondServiceError(c, log, err, "Fetch new arrivals", nil)
		return
	}
	c.JSON(http.StatusOK, productsJSON(products))
}

// GetSimilarProducts returns products of the same gender and category
// GET /api/v1/products/similar/:id
func (ctrl *ProductController) GetSimilarProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	products, err := ctrl.productService.Similar(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, log, err, "Fetch similar products", map[string]interface{}{
			"product_id": id,
		})
		return
	}
	c.JSON(http.StatusOK, productsJSON(products))
}
