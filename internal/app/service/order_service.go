package service

import (
	"context"
	"errors"
	"time"

	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/app/model"
	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/app/repository"
	"github.com/Sahani-Mohottige/SafeOnlineShop/pkg/logger"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	OrderEventCreated       = "order.created"
	OrderEventCancelled     = "order.cancelled"
	OrderEventStatusChanged = "order.status_changed"
)

// OrderNotifier receives order lifecycle events after they are committed.
type OrderNotifier interface {
	NotifyOrder(userID uint, event string, order *model.Order)
}

type PaymentKind int

const (
	PaymentUnpaid PaymentKind = iota
	PaymentPrepaid
)

// PaymentProof tells PlaceOrder whether the order was paid before it existed.
type PaymentProof struct {
	Kind    PaymentKind
	PaidAt  time.Time
	Details datatypes.JSONMap
}

func Unpaid() PaymentProof {
	return PaymentProof{Kind: PaymentUnpaid}
}

func Prepaid(paidAt time.Time, details datatypes.JSONMap) PaymentProof {
	return PaymentProof{Kind: PaymentPrepaid, PaidAt: paidAt, Details: details}
}

// LineItem is a product snapshot carried by checkouts and orders.
type LineItem struct {
	ProductID uint
	Name      string
	Image     string
	Price     float64
	Size      string
	Color     string
	Quantity  int
}

// OrderDraft is everything PlaceOrder needs apart from payment.
type OrderDraft struct {
	UserID           uint
	Username         string
	Items            []LineItem
	ShippingAddress  model.ShippingAddress
	PaymentMethod    string
	TotalPrice       float64
	DateOfPurchase   *time.Time
	DeliveryTime     string
	DeliveryLocation string
	Message          string
	CheckoutID       *uint
}

type OrderService interface {
	// PlaceOrder is the only way an order comes into existence. When tx is non-nil
	// the order is written inside it and no event is emitted; the caller does that after commit.
	PlaceOrder(ctx context.Context, tx *gorm.DB, draft OrderDraft, proof PaymentProof) (*model.Order, error)
	CreateOrderDirect(ctx context.Context, draft OrderDraft) (*model.Order, error)
	ListOrders(ctx context.Context, userID uint) ([]model.Order, error)
	GetOrder(ctx context.Context, userID, orderID uint) (*model.Order, error)
	CancelOrder(ctx context.Context, orderID, userID uint) (*model.Order, error)
	// AdvanceStatus moves an order forward in fulfilment (Processing, Shipped, Delivered).
	AdvanceStatus(ctx context.Context, orderID uint, next model.OrderStatus) (*model.Order, error)
	Notify(order *model.Order, event string)
}

type orderService struct {
	orderRepo repository.OrderRepository
	userRepo  repository.UserRepository
	notifier  OrderNotifier
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	notifier OrderNotifier,
) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		userRepo:  userRepo,
		notifier:  notifier,
	}
}

func (s *orderService) PlaceOrder(ctx context.Context, tx *gorm.DB, draft OrderDraft, proof PaymentProof) (*model.Order, error) {
	if len(draft.Items) == 0 {
		return nil, ErrNoItems
	}

	order := &model.Order{
		UserID:           draft.UserID,
		Username:         draft.Username,
		OrderItems:       make([]model.OrderItem, 0, len(draft.Items)),
		DateOfPurchase:   draft.DateOfPurchase,
		DeliveryTime:     draft.DeliveryTime,
		DeliveryLocation: draft.DeliveryLocation,
		Message:          draft.Message,
		ShippingAddress:  draft.ShippingAddress,
		PaymentMethod:    draft.PaymentMethod,
		TotalPrice:       draft.TotalPrice,
		Status:           model.OrderStatusProcessing,
		CheckoutID:       draft.CheckoutID,
	}
	for _, item := range draft.Items {
		order.OrderItems = append(order.OrderItems, model.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Image:     item.Image,
			Price:     item.Price,
			Size:      item.Size,
			Color:     item.Color,
			Quantity:  item.Quantity,
		})
	}

	switch proof.Kind {
	case PaymentPrepaid:
		paidAt := proof.PaidAt
		order.IsPaid = true
		order.PaidAt = &paidAt
		order.PaymentStatus = model.OrderPaymentPaid
		order.PaymentDetails = proof.Details
	default:
		order.IsPaid = false
		order.PaymentStatus = model.OrderPaymentPending
	}

	repo := s.orderRepo
	if tx != nil {
		repo = s.orderRepo.WithTx(tx)
	}
	if err := repo.Create(ctx, order); err != nil {
		logger.Error("Failed to place order", err, map[string]interface{}{
			"user_id":     draft.UserID,
			"checkout_id": draft.CheckoutID,
		})
		return nil, err
	}

	logger.Info("Order placed", map[string]interface{}{
		"order_id":    order.ID,
		"user_id":     order.UserID,
		"is_paid":     order.IsPaid,
		"total_price": order.TotalPrice,
	})
	if tx == nil {
		s.Notify(order, OrderEventCreated)
	}
	return order, nil
}

func (s *orderService) CreateOrderDirect(ctx context.Context, draft OrderDraft) (*model.Order, error) {
	logger.Info("Creating direct order", map[string]interface{}{
		"user_id":           draft.UserID,
		"items_count":       len(draft.Items),
		"delivery_time":     draft.DeliveryTime,
		"delivery_location": draft.DeliveryLocation,
	})

	if len(draft.Items) == 0 {
		return nil, ErrNoItems
	}
	if err := s.validateDelivery(draft); err != nil {
		logger.Warn("Direct order rejected", map[string]interface{}{
			"user_id": draft.UserID,
			"error":   err.Error(),
		})
		return nil, err
	}

	if draft.Username == "" {
		user, err := s.userRepo.FindByID(ctx, draft.UserID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if user != nil {
			draft.Username = user.Name
		}
	}

	return s.PlaceOrder(ctx, nil, draft, Unpaid())
}

// validateDelivery checks the requested slot. Location and date are stored as given.
func (s *orderService) validateDelivery(draft OrderDraft) error {
	if draft.DeliveryTime != "" && !model.IsValidDeliveryTime(draft.DeliveryTime) {
		return ErrInvalidDeliveryTime
	}
	return nil
}

func (s *orderService) ListOrders(ctx context.Context, userID uint) ([]model.Order, error) {
	logger.Debug("Fetching user orders", map[string]interface{}{
		"user_id": userID,
	})

	orders, err := s.orderRepo.FindByUserID(ctx, userID)
	if err != nil {
		logger.Error("Failed to fetch user orders", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return orders, nil
}

func (s *orderService) GetOrder(ctx context.Context, userID, orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByIDAndUser(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		logger.Error("Failed to fetch order", err, map[string]interface{}{
			"order_id": orderID,
			"user_id":  userID,
		})
		return nil, err
	}
	return order, nil
}

func (s *orderService) CancelOrder(ctx context.Context, orderID, userID uint) (*model.Order, error) {
	fields := map[string]interface{}{
		"order_id": orderID,
		"user_id":  userID,
	}
	logger.Info("Cancelling order", fields)

	// a lost race against another transition is re-evaluated once against the new status
	for attempt := 0; attempt < 2; attempt++ {
		order, err := s.GetOrder(ctx, userID, orderID)
		if err != nil {
			return nil, err
		}

		switch {
		case order.Status == model.OrderStatusCancelled:
			logger.Warn("Order is already cancelled", fields)
			return nil, ErrOrderAlreadyCanceled
		case order.Status.IsTerminal():
			logger.Warn("Order can no longer be cancelled", fields)
			return nil, ErrOrderNotCancelable
		}

		ok, err := s.orderRepo.UpdateStatusFrom(ctx, order.ID, order.Status, model.OrderStatusCancelled)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		order.Status = model.OrderStatusCancelled
		logger.Info("Order cancelled", fields)
		s.Notify(order, OrderEventCancelled)
		return order, nil
	}
	return nil, ErrOrderNotCancelable
}

func (s *orderService) AdvanceStatus(ctx context.Context, orderID uint, next model.OrderStatus) (*model.Order, error) {
	fields := map[string]interface{}{
		"order_id": orderID,
		"status":   next,
	}
	logger.Info("Advancing order status", fields)

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if !order.Status.CanAdvanceTo(next) {
		logger.Warn("Rejected order status change", mergeFields(fields, ErrInvalidOrderStatus))
		return nil, ErrInvalidOrderStatus
	}

	ok, err := s.orderRepo.UpdateStatusFrom(ctx, order.ID, order.Status, next)
	if err != nil {
		return nil, err
	}
	if !ok {
		// changed underneath us, most likely cancelled by the owner
		return nil, ErrInvalidOrderStatus
	}

	order, err = s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	logger.Info("Order status advanced", fields)
	s.Notify(order, OrderEventStatusChanged)
	return order, nil
}

func (s *orderService) Notify(order *model.Order, event string) {
	if s.notifier == nil || order == nil {
		return
	}
	s.notifier.NotifyOrder(order.UserID, event, order)
}
