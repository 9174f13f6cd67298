package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/app/model"
	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/app/repository"
	"github.com/Sahani-Mohottige/SafeOnlineShop/pkg/lock"
	"github.com/Sahani-Mohottige/SafeOnlineShop/pkg/logger"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrUnknownCheckoutProduct = fmt.Errorf("%w: checkout contains an unknown product", ErrValidation)

	errFinalizeGuard = errors.New("finalize guard did not match")
)

type StartCheckoutInput struct {
	UserID          uint
	Items           []LineItem
	ShippingAddress model.ShippingAddress
	PaymentMethod   string
	TotalPrice      float64
}

type CheckoutService interface {
	StartCheckout(ctx context.Context, input StartCheckoutInput) (*model.Checkout, error)
	GetCheckout(ctx context.Context, checkoutID, userID uint) (*model.Checkout, error)
	ConfirmPayment(ctx context.Context, checkoutID, userID uint, paymentStatus string, details datatypes.JSONMap) (*model.Checkout, error)
	Finalize(ctx context.Context, checkoutID, userID uint) (*model.Order, error)
}

type checkoutService struct {
	checkoutRepo     repository.CheckoutRepository
	cartRepo         repository.CartRepository
	productRepo      repository.ProductRepository
	userRepo         repository.UserRepository
	orderService     OrderService
	locker           lock.Locker
	lockTimeout      time.Duration
	db               *gorm.DB
	trustClientTotal bool
	now              func() time.Time
}

func NewCheckoutService(
	checkoutRepo repository.CheckoutRepository,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	orderService OrderService,
	locker lock.Locker,
	lockTimeout time.Duration,
	db *gorm.DB,
	trustClientTotal bool,
) CheckoutService {
	if locker == nil {
		locker = lock.NewLocalLocker()
	}
	if lockTimeout <= 0 {
		lockTimeout = 5 * time.Second
	}
	return &checkoutService{
		checkoutRepo:     checkoutRepo,
		cartRepo:         cartRepo,
		productRepo:      productRepo,
		userRepo:         userRepo,
		orderService:     orderService,
		locker:           locker,
		lockTimeout:      lockTimeout,
		db:               db,
		trustClientTotal: trustClientTotal,
		now:              time.Now,
	}
}

func (s *checkoutService) StartCheckout(ctx context.Context, input StartCheckoutInput) (*model.Checkout, error) {
	logger.Info("Starting checkout", map[string]interface{}{
		"user_id":        input.UserID,
		"items_count":    len(input.Items),
		"payment_method": input.PaymentMethod,
		"client_total":   input.TotalPrice,
	})

	if len(input.Items) == 0 {
		logger.Warn("Cannot start checkout: no items", map[string]interface{}{
			"user_id": input.UserID,
		})
		return nil, ErrNoItems
	}

	items := input.Items
	total := input.TotalPrice
	if !s.trustClientTotal {
		var err error
		items, total, err = s.reprice(ctx, input.Items)
		if err != nil {
			return nil, err
		}
		if math.Abs(total-input.TotalPrice) > 0.005 {
			logger.Warn("Client checkout total differs from catalog total", map[string]interface{}{
				"user_id":      input.UserID,
				"client_total": input.TotalPrice,
				"server_total": total,
			})
		}
	}

	checkout := &model.Checkout{
		UserID:          input.UserID,
		CheckoutItems:   make([]model.CheckoutItem, 0, len(items)),
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   input.PaymentMethod,
		TotalPrice:      total,
		PaymentStatus:   model.CheckoutPaymentPending,
		IsPaid:          false,
	}
	for _, item := range items {
		checkout.CheckoutItems = append(checkout.CheckoutItems, model.CheckoutItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Image:     item.Image,
			Price:     item.Price,
			Size:      item.Size,
			Color:     item.Color,
			Quantity:  item.Quantity,
		})
	}

	if err := s.checkoutRepo.Create(ctx, checkout); err != nil {
		logger.Error("Failed to create checkout", err, map[string]interface{}{
			"user_id": input.UserID,
		})
		return nil, err
	}

	logger.Info("Checkout created", map[string]interface{}{
		"checkout_id": checkout.ID,
		"user_id":     checkout.UserID,
		"total_price": checkout.TotalPrice,
	})
	return checkout, nil
}

// reprice replaces client prices with catalog prices and recomputes the total.
func (s *checkoutService) reprice(ctx context.Context, items []LineItem) ([]LineItem, float64, error) {
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	priced := make([]LineItem, len(items))
	for i, item := range items {
		product, ok := products[item.ProductID]
		if !ok {
			logger.Warn("Checkout references unknown product", map[string]interface{}{
				"product_id": item.ProductID,
			})
			return nil, 0, ErrUnknownCheckoutProduct
		}
		item.Price = product.Price
		if item.Name == "" {
			item.Name = product.Name
		}
		if item.Image == "" {
			item.Image = product.ImageURL
		}
		priced[i] = item
	}

	total, _ := sumLines(len(priced), func(i int) (float64, int) {
		return priced[i].Price, priced[i].Quantity
	})
	return priced, total, nil
}

func (s *checkoutService) GetCheckout(ctx context.Context, checkoutID, userID uint) (*model.Checkout, error) {
	checkout, err := s.checkoutRepo.FindByID(ctx, checkoutID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCheckoutNotFound
		}
		logger.Error("Failed to fetch checkout", err, map[string]interface{}{
			"checkout_id": checkoutID,
		})
		return nil, err
	}
	if checkout.UserID != userID {
		logger.Warn("Checkout belongs to another user", map[string]interface{}{
			"checkout_id": checkoutID,
			"user_id":     userID,
		})
		return nil, ErrCheckoutNotFound
	}
	return checkout, nil
}

func (s *checkoutService) ConfirmPayment(ctx context.Context, checkoutID, userID uint, paymentStatus string, details datatypes.JSONMap) (*model.Checkout, error) {
	fields := map[string]interface{}{
		"checkout_id":    checkoutID,
		"user_id":        userID,
		"payment_status": paymentStatus,
	}
	logger.Info("Confirming checkout payment", fields)

	checkout, err := s.GetCheckout(ctx, checkoutID, userID)
	if err != nil {
		return nil, err
	}

	if model.CheckoutPaymentStatus(paymentStatus) != model.CheckoutPaymentPaid {
		logger.Warn("Rejected payment confirmation with invalid status", fields)
		return nil, ErrInvalidPaymentStatus
	}

	paidAt := s.now()
	checkout.PaymentStatus = model.CheckoutPaymentPaid
	checkout.IsPaid = true
	checkout.PaidAt = &paidAt
	checkout.PaymentDetails = details

	if err := s.checkoutRepo.MarkPaid(ctx, checkout); err != nil {
		logger.Error("Failed to confirm checkout payment", err, fields)
		return nil, err
	}

	logger.Info("Checkout payment confirmed", fields)
	return checkout, nil
}

func (s *checkoutService) Finalize(ctx context.Context, checkoutID, userID uint) (*model.Order, error) {
	fields := map[string]interface{}{
		"checkout_id": checkoutID,
		"user_id":     userID,
	}
	logger.Info("Finalizing checkout", fields)

	checkout, err := s.GetCheckout(ctx, checkoutID, userID)
	if err != nil {
		return nil, err
	}
	if err := finalizeState(checkout); err != nil {
		logger.Warn("Checkout cannot be finalized", mergeFields(fields, err))
		return nil, err
	}

	// the user's cart is torn down below; keep cart mutations out meanwhile
	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	unlock, err := s.locker.Lock(lockCtx, UserIdentity(checkout.UserID).Key())
	cancel()
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			logger.Warn("Cart lock not acquired in time", fields)
			return nil, ErrCartBusy
		}
		return nil, err
	}
	defer unlock()

	username := ""
	if user, err := s.userRepo.FindByID(ctx, checkout.UserID); err == nil {
		username = user.Name
	}

	finalizedAt := s.now()
	paidAt := finalizedAt
	if checkout.PaidAt != nil {
		paidAt = *checkout.PaidAt
	}

	var order *model.Order
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := s.checkoutRepo.WithTx(tx).MarkFinalized(ctx, checkout.ID, finalizedAt)
		if err != nil {
			return err
		}
		if !ok {
			return errFinalizeGuard
		}

		checkoutID := checkout.ID
		order, err = s.orderService.PlaceOrder(ctx, tx, OrderDraft{
			UserID:          checkout.UserID,
			Username:        username,
			Items:           checkoutLines(checkout),
			ShippingAddress: checkout.ShippingAddress,
			PaymentMethod:   checkout.PaymentMethod,
			TotalPrice:      checkout.TotalPrice,
			CheckoutID:      &checkoutID,
		}, Prepaid(paidAt, checkout.PaymentDetails))
		if err != nil {
			return err
		}

		if err := s.checkoutRepo.WithTx(tx).LinkOrder(ctx, checkout.ID, order.ID); err != nil {
			return err
		}
		return s.cartRepo.WithTx(tx).DeleteByUserID(ctx, checkout.UserID)
	})
	if errors.Is(err, errFinalizeGuard) {
		// another request changed the session between our read and the guarded update
		latest, findErr := s.checkoutRepo.FindByID(ctx, checkout.ID)
		if findErr != nil {
			return nil, findErr
		}
		if stateErr := finalizeState(latest); stateErr != nil {
			logger.Warn("Checkout finalize lost a race", mergeFields(fields, stateErr))
			return nil, stateErr
		}
		return nil, ErrCheckoutFinalized
	}
	if err != nil {
		logger.Error("Failed to finalize checkout", err, fields)
		return nil, err
	}

	logger.Info("Checkout finalized", map[string]interface{}{
		"checkout_id": checkout.ID,
		"order_id":    order.ID,
		"user_id":     checkout.UserID,
	})
	s.orderService.Notify(order, OrderEventCreated)
	return order, nil
}

func finalizeState(checkout *model.Checkout) error {
	if checkout.IsFinalized {
		return ErrCheckoutFinalized
	}
	if !checkout.IsPaid {
		return ErrCheckoutNotPaid
	}
	return nil
}

func checkoutLines(checkout *model.Checkout) []LineItem {
	lines := make([]LineItem, 0, len(checkout.CheckoutItems))
	for _, item := range checkout.CheckoutItems {
		lines = append(lines, LineItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Image:     item.Image,
			Price:     item.Price,
			Size:      item.Size,
			Color:     item.Color,
			Quantity:  item.Quantity,
		})
	}
	return lines
}
