package service

import (
	"context"
	"testing"

	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/app/model"
	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/app/repository"
	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupProductServiceTest(t *testing.T) ProductService {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})
	return NewProductService(repository.NewProductRepository(testDB))
}

func TestProductService_ImportAndList(t *testing.T) {
	productService := setupProductServiceTest(t)
	ctx := context.Background()

	written, err := productService.ImportProducts(ctx, []model.Product{
		{Name: "Tee", SKU: "T-1", Price: 15, Category: "Top Wear", Gender: "Men", Rating: 4.5},
		{Name: "Polo", SKU: "T-2", Price: 25, Category: "Top Wear", Gender: "Men", Rating: 3.2},
		{Name: "Skirt", SKU: "B-1", Price: 35, Category: "Bottom Wear", Gender: "Women", Rating: 4.9},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, written)

	// importing the same SKU again updates it
	written, err = productService.ImportProducts(ctx, []model.Product{
		{Name: "Tee", SKU: "T-1", Price: 12, Category: "Top Wear", Gender: "Men", Rating: 4.5},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, written)

	products, err := productService.ListProducts(ctx, repository.ProductFilter{Gender: "Men", SortBy: repository.ProductSortPriceAsc})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, 12.0, products[0].Price)

	best, err := productService.BestSeller(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Skirt", best.Name)

	arrivals, err := productService.NewArrivals(ctx)
	require.NoError(t, err)
	assert.Len(t, arrivals, 3)

	similar, err := productService.Similar(ctx, products[0].ID)
	require.NoError(t, err)
	require.Len(t, similar, 1)
	assert.Equal(t, "Polo", similar[0].Name)
}

func TestProductService_NotFound(t *testing.T) {
	productService := setupProductServiceTest(t)
	ctx := context.Background()

	_, err := productService.GetProductByID(ctx, 42)
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = productService.BestSeller(ctx)
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = productService.Similar(ctx, 42)
	assert.ErrorIs(t, err, ErrProductNotFound)
}
