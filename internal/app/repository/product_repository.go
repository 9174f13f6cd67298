package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/app/model"
	"github.com/Sahani-Mohottige/SafeOnlineShop/pkg/logger"
	"gorm.io/gorm"
)

type ProductSort string

const (
	ProductSortPriceAsc   ProductSort = "priceAsc"
	ProductSortPriceDesc  ProductSort = "priceDesc"
	ProductSortPopularity ProductSort = "popularity"
)

type ProductFilter struct {
	Collection string
	Category   string
	Materials  []string
	Brands     []string
	Sizes      []string
	Color      string
	Gender     string
	MinPrice   *float64
	MaxPrice   *float64
	Search     string
	SortBy     ProductSort
	Limit      int
}

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	Upsert(ctx context.Context, product *model.Product) error
	FindWithFilter(ctx context.Context, filter ProductFilter) ([]model.Product, error)
	FindByID(ctx context.Context, id uint) (*model.Product, error)
	FindByIDs(ctx context.Context, ids []uint) (map[uint]model.Product, error)
	FindTopRated(ctx context.Context) (*model.Product, error)
	FindNewest(ctx context.Context, limit int) ([]model.Product, error)
	FindSimilar(ctx context.Context, product *model.Product, limit int) ([]model.Product, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"name":     product.Name,
		"sku":      product.SKU,
		"category": product.Category,
	})

	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"name": product.Name,
			"sku":  product.SKU,
		})
		return err
	}

	logger.Debug("Product created in database", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})
	return nil
}

// Upsert creates the product or updates the existing row with the same SKU.
func (r *productRepository) Upsert(ctx context.Context, product *model.Product) error {
	var existing model.Product
	err := r.db.WithContext(ctx).Where("sku = ?", product.SKU).First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return r.Create(ctx, product)
		}
		return err
	}

	product.ID = existing.ID
	product.CreatedAt = existing.CreatedAt
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		logger.Error("Failed to update product in database", err, map[string]interface{}{
			"product_id": product.ID,
			"sku":        product.SKU,
		})
		return err
	}
	return nil
}

func (r *productRepository) FindWithFilter(ctx context.Context, filter ProductFilter) ([]model.Product, error) {
	logger.Debug("Finding products with filter", map[string]interface{}{
		"collection": filter.Collection,
		"category":   filter.Category,
		"gender":     filter.Gender,
		"search":     filter.Search,
		"sort_by":    filter.SortBy,
		"limit":      filter.Limit,
	})

	query := r.db.WithContext(ctx).Model(&model.Product{})

	if filter.Collection != "" && filter.Collection != "all" {
		query = query.Where("collections = ?", filter.Collection)
	}
	if filter.Category != "" && filter.Category != "all" {
		query = query.Where("category = ?", filter.Category)
	}
	if len(filter.Materials) > 0 {
		query = query.Where("material IN ?", filter.Materials)
	}
	if len(filter.Brands) > 0 {
		query = query.Where("brand IN ?", filter.Brands)
	}
	if len(filter.Sizes) > 0 {
		conds := make([]string, 0, len(filter.Sizes))
		args := make([]interface{}, 0, len(filter.Sizes))
		for _, size := range filter.Sizes {
			conds = append(conds, "sizes LIKE ?")
			args = append(args, "%"+size+"%")
		}
		query = query.Where(strings.Join(conds, " OR "), args...)
	}
	if filter.Color != "" {
		query = query.Where("colors LIKE ?", "%"+filter.Color+"%")
	}
	if filter.Gender != "" {
		query = query.Where("gender = ?", filter.Gender)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}
	if filter.Search != "" {
		like := fmt.Sprintf("%%%s%%", strings.ToLower(filter.Search))
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	switch filter.SortBy {
	case ProductSortPriceAsc:
		query = query.Order("price ASC")
	case ProductSortPriceDesc:
		query = query.Order("price DESC")
	case ProductSortPopularity:
		query = query.Order("rating DESC")
	default:
		query = query.Order("id ASC")
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var products []model.Product
	if err := query.Find(&products).Error; err != nil {
		logger.Error("Failed to find products with filter", err)
		return nil, err
	}

	logger.Debug("Products found with filter", map[string]interface{}{
		"count": len(products),
	})
	return products, nil
}

func (r *productRepository) FindByID(ctx context.Context, id uint) (*model.Product, error) {
	logger.Debug("Finding product by ID in database", map[string]interface{}{
		"product_id": id,
	})

	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindByIDs(ctx context.Context, ids []uint) (map[uint]model.Product, error) {
	result := make(map[uint]model.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var products []model.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		logger.Error("Failed to find products by IDs in database", err, map[string]interface{}{
			"count": len(ids),
		})
		return nil, err
	}
	for _, p := range products {
		result[p.ID] = p
	}
	return result, nil
}

func (r *productRepository) FindTopRated(ctx context.Context) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).Order("rating DESC").Order("id ASC").First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindNewest(ctx context.Context, limit int) ([]model.Product, error) {
	var products []model.Product
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Limit(limit).Find(&products).Error; err != nil {
		logger.Error("Failed to find newest products", err)
		return nil, err
	}
	return products, nil
}

func (r *productRepository) FindSimilar(ctx context.Context, product *model.Product, limit int) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("id <> ? AND gender = ? AND category = ?", product.ID, product.Gender, product.Category).
		Limit(limit).
		Find(&products).Error
	if err != nil {
		logger.Error("Failed to find similar products", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return nil, err
	}
	return products, nil
}
