package service

import (
	"context"
	"errors"
	"time"

	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/app/model"
	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/app/repository"
	"github.com/Sahani-Mohottige/SafeOnlineShop/pkg/lock"
	"github.com/Sahani-Mohottige/SafeOnlineShop/pkg/logger"
	"gorm.io/gorm"
)

const maxCartSaveAttempts = 3

type AddItemInput struct {
	ProductID uint
	Quantity  int
	Size      string
	Color     string
}

type CartService interface {
	// Resolve returns the stored cart of the identity, or nil when there is none.
	Resolve(ctx context.Context, identity Identity) (*model.Cart, error)
	AddItem(ctx context.Context, identity Identity, input AddItemInput) (cart *model.Cart, created bool, err error)
	UpdateQuantity(ctx context.Context, identity Identity, productID uint, size, color string, quantity int) (*model.Cart, error)
	RemoveItem(ctx context.Context, identity Identity, productID uint, size, color string) (*model.Cart, error)
	Clear(ctx context.Context, identity Identity) (*model.Cart, error)
	MergeGuestIntoUser(ctx context.Context, userID uint, guestID string) (*model.Cart, error)
	// PurgeStaleGuestCarts deletes guest carts untouched for longer than idle.
	PurgeStaleGuestCarts(ctx context.Context, idle time.Duration) (int64, error)
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	locker      lock.Locker
	lockTimeout time.Duration
}

func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	locker lock.Locker,
	lockTimeout time.Duration,
) CartService {
	if locker == nil {
		locker = lock.NewLocalLocker()
	}
	if lockTimeout <= 0 {
		lockTimeout = 5 * time.Second
	}
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		locker:      locker,
		lockTimeout: lockTimeout,
	}
}

func (s *cartService) Resolve(ctx context.Context, identity Identity) (*model.Cart, error) {
	logger.Debug("Resolving cart", identity.logFields())

	cart, err := s.find(ctx, identity)
	if err != nil {
		logger.Error("Failed to resolve cart", err, identity.logFields())
		return nil, err
	}
	return cart, nil
}

// find returns (nil, nil) when the identity owns no cart.
func (s *cartService) find(ctx context.Context, identity Identity) (*model.Cart, error) {
	var (
		cart *model.Cart
		err  error
	)
	switch {
	case identity.UserID != nil:
		cart, err = s.cartRepo.FindByUserID(ctx, *identity.UserID)
	case identity.GuestID != "":
		cart, err = s.cartRepo.FindByGuestID(ctx, identity.GuestID)
	default:
		return nil, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return cart, err
}

func (s *cartService) acquire(ctx context.Context, keys ...string) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	unlocks := make([]lock.UnlockFunc, 0, len(keys))
	release := func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}
	for _, key := range keys {
		unlock, err := s.locker.Lock(lockCtx, key)
		if err != nil {
			release()
			if errors.Is(err, lock.ErrNotAcquired) {
				logger.Warn("Cart lock not acquired in time", map[string]interface{}{
					"key": key,
				})
				return nil, ErrCartBusy
			}
			return nil, err
		}
		unlocks = append(unlocks, unlock)
	}
	return release, nil
}

// mutate runs a locked read-modify-write on an existing cart, retrying on version conflicts.
func (s *cartService) mutate(ctx context.Context, identity Identity, apply func(cart *model.Cart) error) (*model.Cart, error) {
	unlock, err := s.acquire(ctx, identity.Key())
	if err != nil {
		return nil, err
	}
	defer unlock()

	for attempt := 1; attempt <= maxCartSaveAttempts; attempt++ {
		cart, err := s.find(ctx, identity)
		if err != nil {
			return nil, err
		}
		if cart == nil {
			return nil, ErrCartNotFound
		}
		if err := apply(cart); err != nil {
			return nil, err
		}
		recomputeTotals(cart)

		err = s.cartRepo.Save(ctx, cart)
		if errors.Is(err, repository.ErrVersionConflict) {
			logger.Warn("Cart version conflict, retrying", map[string]interface{}{
				"cart_id": cart.ID,
				"attempt": attempt,
			})
			continue
		}
		if err != nil {
			return nil, err
		}
		return cart, nil
	}
	return nil, ErrCartConflict
}

func (s *cartService) AddItem(ctx context.Context, identity Identity, input AddItemInput) (*model.Cart, bool, error) {
	fields := identity.logFields()
	fields["product_id"] = input.ProductID
	fields["quantity"] = input.Quantity
	fields["size"] = input.Size
	fields["color"] = input.Color
	logger.Info("Adding item to cart", fields)

	if input.Quantity < 1 {
		return nil, false, ErrInvalidQuantity
	}

	product, err := s.productRepo.FindByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cannot add to cart: product not found", fields)
			return nil, false, ErrProductNotFound
		}
		logger.Error("Failed to fetch product", err, fields)
		return nil, false, err
	}

	if identity.IsZero() {
		identity = GuestIdentity(NewGuestID())
		logger.Debug("Generated guest identity for new cart", map[string]interface{}{
			"guest_id": identity.GuestID,
		})
	}

	unlock, err := s.acquire(ctx, identity.Key())
	if err != nil {
		return nil, false, err
	}
	defer unlock()

	for attempt := 1; attempt <= maxCartSaveAttempts; attempt++ {
		cart, err := s.find(ctx, identity)
		if err != nil {
			logger.Error("Failed to load cart", err, fields)
			return nil, false, err
		}

		if cart == nil {
			cart = newCart(identity, snapshotLine(product, input))
			recomputeTotals(cart)
			err := s.cartRepo.Create(ctx, cart)
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// created by a writer outside this lock; merge into theirs
				continue
			}
			if err != nil {
				logger.Error("Failed to create cart", err, fields)
				return nil, false, err
			}
			logger.Info("Cart created", map[string]interface{}{
				"cart_id":     cart.ID,
				"total_items": cart.TotalItems,
			})
			return cart, true, nil
		}

		if idx := cart.FindItem(input.ProductID, input.Size, input.Color); idx >= 0 {
			cart.Products[idx].Quantity += input.Quantity
		} else {
			cart.Products = append(cart.Products, snapshotLine(product, input))
		}
		recomputeTotals(cart)

		err = s.cartRepo.Save(ctx, cart)
		if errors.Is(err, repository.ErrVersionConflict) {
			continue
		}
		if err != nil {
			logger.Error("Failed to save cart", err, fields)
			return nil, false, err
		}

		logger.Info("Item added to cart", map[string]interface{}{
			"cart_id":     cart.ID,
			"total_items": cart.TotalItems,
			"total_price": cart.TotalPrice,
		})
		return cart, false, nil
	}
	return nil, false, ErrCartConflict
}

func newCart(identity Identity, first model.CartItem) *model.Cart {
	cart := &model.Cart{Products: []model.CartItem{first}}
	if identity.UserID != nil {
		userID := *identity.UserID
		cart.UserID = &userID
	} else {
		guestID := identity.GuestID
		cart.GuestID = &guestID
	}
	return cart
}

func snapshotLine(product *model.Product, input AddItemInput) model.CartItem {
	return model.CartItem{
		ProductID: product.ID,
		Name:      product.Name,
		Image:     product.ImageURL,
		Price:     product.Price,
		Size:      input.Size,
		Color:     input.Color,
		Quantity:  input.Quantity,
	}
}

func (s *cartService) UpdateQuantity(ctx context.Context, identity Identity, productID uint, size, color string, quantity int) (*model.Cart, error) {
	fields := identity.logFields()
	fields["product_id"] = productID
	fields["quantity"] = quantity
	logger.Info("Updating cart item quantity", fields)

	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	cart, err := s.mutate(ctx, identity, func(cart *model.Cart) error {
		idx := cart.FindItem(productID, size, color)
		if idx < 0 {
			return ErrCartItemNotFound
		}
		cart.Products[idx].Quantity = quantity
		return nil
	})
	if err != nil {
		logger.Warn("Failed to update cart item quantity", mergeFields(fields, err))
		return nil, err
	}

	logger.Info("Cart item quantity updated", map[string]interface{}{
		"cart_id":     cart.ID,
		"total_items": cart.TotalItems,
	})
	return cart, nil
}

func (s *cartService) RemoveItem(ctx context.Context, identity Identity, productID uint, size, color string) (*model.Cart, error) {
	fields := identity.logFields()
	fields["product_id"] = productID
	logger.Info("Removing item from cart", fields)

	cart, err := s.mutate(ctx, identity, func(cart *model.Cart) error {
		idx := cart.FindItem(productID, size, color)
		if idx < 0 {
			return ErrCartItemNotFound
		}
		cart.Products = append(cart.Products[:idx], cart.Products[idx+1:]...)
		return nil
	})
	if err != nil {
		logger.Warn("Failed to remove item from cart", mergeFields(fields, err))
		return nil, err
	}

	logger.Info("Item removed from cart", map[string]interface{}{
		"cart_id":     cart.ID,
		"total_items": cart.TotalItems,
	})
	return cart, nil
}

func (s *cartService) Clear(ctx context.Context, identity Identity) (*model.Cart, error) {
	logger.Info("Clearing cart", identity.logFields())

	cart, err := s.mutate(ctx, identity, func(cart *model.Cart) error {
		cart.Products = []model.CartItem{}
		return nil
	})
	if err != nil {
		logger.Warn("Failed to clear cart", mergeFields(identity.logFields(), err))
		return nil, err
	}

	logger.Info("Cart cleared", map[string]interface{}{
		"cart_id": cart.ID,
	})
	return cart, nil
}

func (s *cartService) MergeGuestIntoUser(ctx context.Context, userID uint, guestID string) (*model.Cart, error) {
	fields := map[string]interface{}{
		"user_id":  userID,
		"guest_id": guestID,
	}
	logger.Info("Merging guest cart into user cart", fields)

	if guestID == "" {
		return nil, ErrGuestIDRequired
	}

	userIdentity := UserIdentity(userID)
	guestIdentity := GuestIdentity(guestID)

	// user before guest, always, so two merges cannot deadlock
	unlock, err := s.acquire(ctx, userIdentity.Key(), guestIdentity.Key())
	if err != nil {
		return nil, err
	}
	defer unlock()

	for attempt := 1; attempt <= maxCartSaveAttempts; attempt++ {
		guestCart, err := s.find(ctx, guestIdentity)
		if err != nil {
			return nil, err
		}
		if guestCart == nil {
			logger.Warn("Cannot merge: guest cart not found", fields)
			return nil, ErrGuestCartMissing
		}
		if len(guestCart.Products) == 0 {
			logger.Warn("Cannot merge: guest cart is empty", fields)
			return nil, ErrGuestCartEmpty
		}

		userCart, err := s.find(ctx, userIdentity)
		if err != nil {
			return nil, err
		}

		if userCart == nil {
			guestCart.UserID = &userID
			guestCart.GuestID = nil
			recomputeTotals(guestCart)
			err := s.cartRepo.Save(ctx, guestCart)
			if errors.Is(err, repository.ErrVersionConflict) {
				continue
			}
			if err != nil {
				logger.Error("Failed to assign guest cart to user", err, fields)
				return nil, err
			}
			logger.Info("Guest cart assigned to user", map[string]interface{}{
				"cart_id":     guestCart.ID,
				"user_id":     userID,
				"total_items": guestCart.TotalItems,
			})
			return guestCart, nil
		}

		for _, line := range guestCart.Products {
			if idx := userCart.FindItem(line.ProductID, line.Size, line.Color); idx >= 0 {
				userCart.Products[idx].Quantity += line.Quantity
			} else {
				line.ID = 0
				userCart.Products = append(userCart.Products, line)
			}
		}
		recomputeTotals(userCart)

		err = s.cartRepo.Save(ctx, userCart)
		if errors.Is(err, repository.ErrVersionConflict) {
			continue
		}
		if err != nil {
			logger.Error("Failed to save merged cart", err, fields)
			return nil, err
		}

		if err := s.cartRepo.Delete(ctx, guestCart.ID); err != nil {
			logger.Warn("Merged cart saved but guest cart could not be deleted", mergeFields(fields, err))
		}

		logger.Info("Guest cart merged into user cart", map[string]interface{}{
			"cart_id":     userCart.ID,
			"user_id":     userID,
			"total_items": userCart.TotalItems,
		})
		return userCart, nil
	}
	return nil, ErrCartConflict
}

func (s *cartService) PurgeStaleGuestCarts(ctx context.Context, idle time.Duration) (int64, error) {
	cutoff := time.Now().Add(-idle)
	deleted, err := s.cartRepo.DeleteStaleGuestCarts(ctx, cutoff)
	if err != nil {
		logger.Error("Failed to purge stale guest carts", err, map[string]interface{}{
			"cutoff": cutoff,
		})
		return 0, err
	}

	logger.Info("Stale guest carts purged", map[string]interface{}{
		"deleted": deleted,
		"cutoff":  cutoff,
	})
	return deleted, nil
}

func mergeFields(fields map[string]interface{}, err error) map[string]interface{} {
	out := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out["error"] = err.Error()
	return out
}
