package repository

import (
	"context"
	"time"

	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/app/model"
	"github.com/Sahani-Mohottige/SafeOnlineShop/pkg/logger"
	"gorm.io/gorm"
)

type CheckoutRepository interface {
	WithTx(tx *gorm.DB) CheckoutRepository
	Create(ctx context.Context, checkout *model.Checkout) error
	FindByID(ctx context.Context, id uint) (*model.Checkout, error)
	MarkPaid(ctx context.Context, checkout *model.Checkout) error
	// MarkFinalized flips is_finalized only for a paid, unfinalized session.
	// It reports false when the guard did not match.
	MarkFinalized(ctx context.Context, id uint, at time.Time) (bool, error)
	LinkOrder(ctx context.Context, id, orderID uint) error
}

type checkoutRepository struct {
	db *gorm.DB
}

func NewCheckoutRepository(db *gorm.DB) CheckoutRepository {
	return &checkoutRepository{db: db}
}

func (r *checkoutRepository) WithTx(tx *gorm.DB) CheckoutRepository {
	return &checkoutRepository{db: tx}
}

func (r *checkoutRepository) Create(ctx context.Context, checkout *model.Checkout) error {
	logger.Debug("Creating checkout in database", map[string]interface{}{
		"user_id":     checkout.UserID,
		"items":       len(checkout.CheckoutItems),
		"total_price": checkout.TotalPrice,
	})

	if err := r.db.WithContext(ctx).Create(checkout).Error; err != nil {
		logger.Error("Failed to create checkout in database", err, map[string]interface{}{
			"user_id": checkout.UserID,
		})
		return err
	}

	logger.Debug("Checkout created in database", map[string]interface{}{
		"checkout_id": checkout.ID,
	})
	return nil
}

func (r *checkoutRepository) FindByID(ctx context.Context, id uint) (*model.Checkout, error) {
	var checkout model.Checkout
	err := r.db.WithContext(ctx).
		Preload("CheckoutItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("checkout_items.id ASC")
		}).
		First(&checkout, id).Error
	if err != nil {
		return nil, err
	}
	return &checkout, nil
}

func (r *checkoutRepository) MarkPaid(ctx context.Context, checkout *model.Checkout) error {
	logger.Debug("Marking checkout paid in database", map[string]interface{}{
		"checkout_id": checkout.ID,
	})

	err := r.db.WithContext(ctx).Model(&model.Checkout{}).
		Where("id = ?", checkout.ID).
		Updates(map[string]interface{}{
			"payment_status":  checkout.PaymentStatus,
			"is_paid":         checkout.IsPaid,
			"paid_at":         checkout.PaidAt,
			"payment_details": checkout.PaymentDetails,
		}).Error
	if err != nil {
		logger.Error("Failed to mark checkout paid in database", err, map[string]interface{}{
			"checkout_id": checkout.ID,
		})
		return err
	}
	return nil
}

func (r *checkoutRepository) MarkFinalized(ctx context.Context, id uint, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Checkout{}).
		Where("id = ? AND is_paid = ? AND is_finalized = ?", id, true, false).
		Updates(map[string]interface{}{
			"is_finalized": true,
			"finalized_at": at,
		})
	if result.Error != nil {
		logger.Error("Failed to mark checkout finalized in database", result.Error, map[string]interface{}{
			"checkout_id": id,
		})
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *checkoutRepository) LinkOrder(ctx context.Context, id, orderID uint) error {
	return r.db.WithContext(ctx).Model(&model.Checkout{}).
		Where("id = ?", id).
		Update("order_id", orderID).Error
}
