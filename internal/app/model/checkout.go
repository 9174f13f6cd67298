package model

import (
	"time"

	"gorm.io/datatypes"
)

type CheckoutPaymentStatus string

const (
	CheckoutPaymentPending CheckoutPaymentStatus = "Pending"
	CheckoutPaymentPaid    CheckoutPaymentStatus = "Paid"
)

// ShippingAddress is embedded into checkouts and orders with a shipping_ column prefix.
type ShippingAddress struct {
	Address    string `gorm:"type:varchar(255)" json:"address"`
	City       string `gorm:"type:varchar(100)" json:"city" binding:"required"`
	PostalCode string `gorm:"type:varchar(20)" json:"postal_code"`
	Country    string `gorm:"type:varchar(100)" json:"country" binding:"required"`
}

// Checkout is a payment-pending snapshot of what the user intends to buy.
// State is derived from IsPaid and IsFinalized: Created, Paid, Finalized.
type Checkout struct {
	ID              uint                  `gorm:"primarykey" json:"id"`
	UserID          uint                  `gorm:"not null;index" json:"user_id"`
	CheckoutItems   []CheckoutItem        `gorm:"foreignKey:CheckoutID;constraint:OnDelete:CASCADE" json:"checkout_items"`
	ShippingAddress ShippingAddress       `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`
	PaymentMethod   string                `gorm:"type:varchar(50);not null" json:"payment_method"`
	TotalPrice      float64               `gorm:"not null" json:"total_price"`
	PaymentStatus   CheckoutPaymentStatus `gorm:"type:varchar(20);default:'Pending'" json:"payment_status"`
	IsPaid          bool                  `gorm:"not null;default:false" json:"is_paid"`
	PaidAt          *time.Time            `json:"paid_at,omitempty"`
	PaymentDetails  datatypes.JSONMap     `json:"payment_details,omitempty"` // stored verbatim
	IsFinalized     bool                  `gorm:"not null;default:false" json:"is_finalized"`
	FinalizedAt     *time.Time            `json:"finalized_at,omitempty"`
	OrderID         *uint                 `gorm:"index" json:"order_id,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

func (Checkout) TableName() string {
	return "checkouts"
}

type CheckoutItem struct {
	ID         uint    `gorm:"primarykey" json:"id"`
	CheckoutID uint    `gorm:"not null;index" json:"-"`
	ProductID  uint    `gorm:"not null;index" json:"product_id"`
	Name       string  `gorm:"not null" json:"name"`
	Image      string  `json:"image"`
	Price      float64 `gorm:"not null" json:"price"`
	Size       string  `gorm:"type:varchar(50)" json:"size"`
	Color      string  `gorm:"type:varchar(50)" json:"color"`
	Quantity   int     `gorm:"not null" json:"quantity"`
}

func (CheckoutItem) TableName() string {
	return "checkout_items"
}
