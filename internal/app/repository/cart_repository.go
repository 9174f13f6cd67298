package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/app/model"
	"github.com/Sahani-Mohottige/SafeOnlineShop/pkg/logger"
	"gorm.io/gorm"
)

// ErrVersionConflict is returned by Save when the stored cart changed after it was read.
var ErrVersionConflict = errors.New("cart was modified concurrently")

type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	Create(ctx context.Context, cart *model.Cart) error
	FindByUserID(ctx context.Context, userID uint) (*model.Cart, error)
	FindByGuestID(ctx context.Context, guestID string) (*model.Cart, error)
	Save(ctx context.Context, cart *model.Cart) error
	Delete(ctx context.Context, id uint) error
	DeleteByUserID(ctx context.Context, userID uint) error
	DeleteStaleGuestCarts(ctx context.Context, updatedBefore time.Time) (int64, error)
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) WithTx(tx *gorm.DB) CartRepository {
	return &cartRepository{db: tx}
}

func (r *cartRepository) Create(ctx context.Context, cart *model.Cart) error {
	logger.Debug("Creating cart in database", map[string]interface{}{
		"user_id":  cart.UserID,
		"guest_id": cart.GuestID,
		"items":    len(cart.Products),
	})

	cart.Version = 1
	if err := r.db.WithContext(ctx).Create(cart).Error; err != nil {
		logger.Error("Failed to create cart in database", err, map[string]interface{}{
			"user_id":  cart.UserID,
			"guest_id": cart.GuestID,
		})
		return err
	}

	logger.Debug("Cart created in database", map[string]interface{}{
		"cart_id": cart.ID,
	})
	return nil
}

func (r *cartRepository) preloadItems(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Products", func(db *gorm.DB) *gorm.DB {
		return db.Order("cart_items.id ASC")
	})
}

func (r *cartRepository) FindByUserID(ctx context.Context, userID uint) (*model.Cart, error) {
	logger.Debug("Finding cart by user ID in database", map[string]interface{}{
		"user_id": userID,
	})

	var cart model.Cart
	if err := r.preloadItems(ctx).Where("user_id = ?", userID).First(&cart).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find cart by user ID in database", err, map[string]interface{}{
				"user_id": userID,
			})
		}
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) FindByGuestID(ctx context.Context, guestID string) (*model.Cart, error) {
	logger.Debug("Finding cart by guest ID in database", map[string]interface{}{
		"guest_id": guestID,
	})

	var cart model.Cart
	if err := r.preloadItems(ctx).Where("guest_id = ?", guestID).First(&cart).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find cart by guest ID in database", err, map[string]interface{}{
				"guest_id": guestID,
			})
		}
		return nil, err
	}
	return &cart, nil
}

// Save writes the cart header and replaces its lines. The header update only
// applies when the stored version still equals cart.Version; otherwise
// ErrVersionConflict is returned and nothing is written.
func (r *cartRepository) Save(ctx context.Context, cart *model.Cart) error {
	logger.Debug("Saving cart in database", map[string]interface{}{
		"cart_id": cart.ID,
		"version": cart.Version,
		"items":   len(cart.Products),
	})

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Cart{}).
			Where("id = ? AND version = ?", cart.ID, cart.Version).
			Updates(map[string]interface{}{
				"user_id":     cart.UserID,
				"guest_id":    cart.GuestID,
				"total_price": cart.TotalPrice,
				"total_items": cart.TotalItems,
				"version":     gorm.Expr("version + 1"),
				"updated_at":  time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrVersionConflict
		}

		if err := tx.Where("cart_id = ?", cart.ID).Delete(&model.CartItem{}).Error; err != nil {
			return err
		}
		if len(cart.Products) == 0 {
			return nil
		}

		items := make([]model.CartItem, len(cart.Products))
		for i, item := range cart.Products {
			item.ID = 0
			item.CartID = cart.ID
			items[i] = item
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		cart.Products = items
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrVersionConflict) {
			logger.Error("Failed to save cart in database", err, map[string]interface{}{
				"cart_id": cart.ID,
			})
		}
		return err
	}

	cart.Version++
	return nil
}

func (r *cartRepository) Delete(ctx context.Context, id uint) error {
	logger.Debug("Deleting cart from database", map[string]interface{}{
		"cart_id": id,
	})

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", id).Delete(&model.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Cart{}, id).Error
	})
	if err != nil {
		logger.Error("Failed to delete cart from database", err, map[string]interface{}{
			"cart_id": id,
		})
		return err
	}
	return nil
}

func (r *cartRepository) DeleteByUserID(ctx context.Context, userID uint) error {
	logger.Debug("Deleting cart by user ID from database", map[string]interface{}{
		"user_id": userID,
	})

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cartIDs := tx.Model(&model.Cart{}).Select("id").Where("user_id = ?", userID)
		if err := tx.Where("cart_id IN (?)", cartIDs).Delete(&model.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", userID).Delete(&model.Cart{}).Error
	})
	if err != nil {
		logger.Error("Failed to delete cart by user ID from database", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}
	return nil
}

func (r *cartRepository) DeleteStaleGuestCarts(ctx context.Context, updatedBefore time.Time) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stale := tx.Model(&model.Cart{}).Select("id").
			Where("user_id IS NULL AND updated_at < ?", updatedBefore)
		if err := tx.Where("cart_id IN (?)", stale).Delete(&model.CartItem{}).Error; err != nil {
			return err
		}
		result := tx.Where("user_id IS NULL AND updated_at < ?", updatedBefore).Delete(&model.Cart{})
		deleted = result.RowsAffected
		return result.Error
	})
	if err != nil {
		logger.Error("Failed to delete stale guest carts", err, map[string]interface{}{
			"updated_before": updatedBefore,
		})
		return 0, err
	}

	logger.Debug("Stale guest carts deleted", map[string]interface{}{
		"deleted": deleted,
	})
	return deleted, nil
}
