package service

import (
	"context"
	"errors"

	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/app/model"
	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/app/repository"
	"github.com/Sahani-Mohottige/SafeOnlineShop/pkg/logger"
	"gorm.io/gorm"
)

const (
	newArrivalsLimit = 8
	similarLimit     = 4
)

type ProductService interface {
	ListProducts(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error)
	GetProductByID(ctx context.Context, id uint) (*model.Product, error)
	BestSeller(ctx context.Context) (*model.Product, error)
	NewArrivals(ctx context.Context) ([]model.Product, error)
	Similar(ctx context.Context, id uint) ([]model.Product, error)
	ImportProducts(ctx context.Context, products []model.Product) (int, error)
}

type productService struct {
	productRepo repository.ProductRepository
}

func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productService{productRepo: productRepo}
}

func (s *productService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error) {
	products, err := s.productRepo.FindWithFilter(ctx, filter)
	if err != nil {
		logger.Error("Failed to list products", err)
		return nil, err
	}
	return products, nil
}

func (s *productService) GetProductByID(ctx context.Context, id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}
	return product, nil
}

func (s *productService) BestSeller(ctx context.Context) (*model.Product, error) {
	product, err := s.productRepo.FindTopRated(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) NewArrivals(ctx context.Context) ([]model.Product, error) {
	return s.productRepo.FindNewest(ctx, newArrivalsLimit)
}

func (s *productService) Similar(ctx context.Context, id uint) ([]model.Product, error) {
	product, err := s.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.productRepo.FindSimilar(ctx, product, similarLimit)
}

// ImportProducts upserts the given products by SKU and returns how many were written.
func (s *productService) ImportProducts(ctx context.Context, products []model.Product) (int, error) {
	logger.Info("Importing products", map[string]interface{}{
		"count": len(products),
	})

	written := 0
	for i := range products {
		if err := s.productRepo.Upsert(ctx, &products[i]); err != nil {
			logger.Error("Failed to import product", err, map[string]interface{}{
				"sku": products[i].SKU,
			})
			return written, err
		}
		written++
	}

	logger.Info("Products imported", map[string]interface{}{
		"written": written,
	})
	return written, nil
}
