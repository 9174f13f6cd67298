package model

import (
	"time"

	"gorm.io/datatypes"
)

type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

// IsTerminal reports whether no further transition is allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

var orderStatusRank = map[OrderStatus]int{
	OrderStatusProcessing: 0,
	OrderStatusShipped:    1,
	OrderStatusDelivered:  2,
}

// CanAdvanceTo reports whether next is a forward fulfilment step from s.
// Cancellation is not an advance.
func (s OrderStatus) CanAdvanceTo(next OrderStatus) bool {
	from, ok := orderStatusRank[s]
	if !ok {
		return false
	}
	to, ok := orderStatusRank[next]
	return ok && to > from
}

// Order payment statuses share the checkout spelling.
const (
	OrderPaymentPending = string(CheckoutPaymentPending)
	OrderPaymentPaid    = string(CheckoutPaymentPaid)
)

// DeliveryTimeSlots are the accepted values for Order.DeliveryTime.
var DeliveryTimeSlots = []string{"10 AM", "11 AM", "1 PM", "2 PM", "3 PM", "4 PM", "5 PM", "6 PM"}

// IsValidDeliveryTime reports whether slot is one of DeliveryTimeSlots.
func IsValidDeliveryTime(slot string) bool {
	for _, s := range DeliveryTimeSlots {
		if s == slot {
			return true
		}
	}
	return false
}

type Order struct {
	ID               uint              `gorm:"primarykey" json:"id"`
	UserID           uint              `gorm:"not null;index" json:"user_id"`
	Username         string            `gorm:"type:varchar(100)" json:"username"`
	OrderItems       []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order_items"`
	DateOfPurchase   *time.Time        `json:"date_of_purchase,omitempty"`
	DeliveryTime     string            `gorm:"type:varchar(10)" json:"delivery_time,omitempty"`
	DeliveryLocation string            `gorm:"type:varchar(100)" json:"delivery_location,omitempty"`
	Message          string            `gorm:"type:text" json:"message,omitempty"`
	ShippingAddress  ShippingAddress   `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`
	PaymentMethod    string            `gorm:"type:varchar(50);not null" json:"payment_method"`
	PaymentStatus    string            `gorm:"type:varchar(20);default:'Pending'" json:"payment_status"`
	PaymentDetails   datatypes.JSONMap `json:"payment_details,omitempty"`
	TotalPrice       float64           `gorm:"not null" json:"total_price"`
	IsPaid           bool              `gorm:"not null;default:false" json:"is_paid"`
	PaidAt           *time.Time        `json:"paid_at,omitempty"`
	IsDelivered      bool              `gorm:"not null;default:false" json:"is_delivered"`
	DeliveredAt      *time.Time        `json:"delivered_at,omitempty"`
	Status           OrderStatus       `gorm:"type:varchar(20);default:'Processing'" json:"status"`
	CheckoutID       *uint             `gorm:"uniqueIndex" json:"checkout_id,omitempty"` // set when created by finalization
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

type OrderItem struct {
	ID        uint    `gorm:"primarykey" json:"id"`
	OrderID   uint    `gorm:"not null;index" json:"-"`
	ProductID uint    `gorm:"not null;index" json:"product_id"`
	Name      string  `gorm:"not null" json:"name"`
	Image     string  `json:"image"`
	Price     float64 `gorm:"not null" json:"price"`
	Size      string  `gorm:"type:varchar(50)" json:"size"`
	Color     string  `gorm:"type:varchar(50)" json:"color"`
	Quantity  int     `gorm:"not null" json:"quantity"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
