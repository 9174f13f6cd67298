package service

import (
	"fmt"

	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/app/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const guestIDPrefix = "guest_"

// Identity is the owner key of a cart: an authenticated user or an anonymous guest.
// A zero Identity carries neither and owns nothing.
type Identity struct {
	UserID  *uint
	GuestID string
}

func UserIdentity(userID uint) Identity {
	return Identity{UserID: &userID}
}

func GuestIdentity(guestID string) Identity {
	return Identity{GuestID: guestID}
}

func (i Identity) IsUser() bool {
	return i.UserID != nil
}

func (i Identity) IsZero() bool {
	return i.UserID == nil && i.GuestID == ""
}

// Key is the lock key of the identity.
func (i Identity) Key() string {
	if i.UserID != nil {
		return fmt.Sprintf("cart:user:%d", *i.UserID)
	}
	return "cart:guest:" + i.GuestID
}

func (i Identity) logFields() map[string]interface{} {
	if i.UserID != nil {
		return map[string]interface{}{"user_id": *i.UserID}
	}
	return map[string]interface{}{"guest_id": i.GuestID}
}

// NewGuestID returns a fresh anonymous identity key.
func NewGuestID() string {
	return guestIDPrefix + uuid.NewString()
}

// recomputeTotals derives the cart totals from its lines.
func recomputeTotals(cart *model.Cart) {
	total, count := sumLines(len(cart.Products), func(i int) (float64, int) {
		return cart.Products[i].Price, cart.Products[i].Quantity
	})
	cart.TotalPrice = total
	cart.TotalItems = count
}

func sumLines(n int, line func(i int) (float64, int)) (float64, int) {
	total := decimal.Zero
	count := 0
	for i := 0; i < n; i++ {
		price, qty := line(i)
		total = total.Add(decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(qty))))
		count += qty
	}
	return total.InexactFloat64(), count
}
