package model

import (
	"time"
)

// Cart is the single cart of one identity. Exactly one of UserID and GuestID is set.
type Cart struct {
	ID         uint       `gorm:"primarykey" json:"id"`
	UserID     *uint      `gorm:"uniqueIndex" json:"user_id,omitempty"`                    // owner when authenticated
	GuestID    *string    `gorm:"type:varchar(100);uniqueIndex" json:"guest_id,omitempty"` // owner when anonymous
	Products   []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"products"`
	TotalPrice float64    `gorm:"not null;default:0" json:"total_price"`
	TotalItems int        `gorm:"not null;default:0" json:"total_items"`
	Version    int        `gorm:"not null;default:1" json:"version"` // bumped on every write
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (Cart) TableName() string {
	return "carts"
}

// FindItem returns the index of the line matching the (product, size, color) tuple, or -1.
func (c *Cart) FindItem(productID uint, size, color string) int {
	for i := range c.Products {
		if c.Products[i].Matches(productID, size, color) {
			return i
		}
	}
	return -1
}

type CartItem struct {
	ID        uint    `gorm:"primarykey" json:"id"`
	CartID    uint    `gorm:"not null;index" json:"-"`
	ProductID uint    `gorm:"not null;index" json:"product_id"`
	Name      string  `gorm:"not null" json:"name"`
	Image     string  `json:"image"`
	Price     float64 `gorm:"not null" json:"price"` // snapshot at add time
	Size      string  `gorm:"type:varchar(50)" json:"size"`
	Color     string  `gorm:"type:varchar(50)" json:"color"`
	Quantity  int     `gorm:"not null;default:1" json:"quantity"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// Matches reports whether the line has the given identity tuple.
func (i CartItem) Matches(productID uint, size, color string) bool {
	return i.ProductID == productID && i.Size == size && i.Color == color
}
