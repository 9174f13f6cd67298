package middleware

import (
	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/app/service"
	"github.com/gin-gonic/gin"
)

// ResolveIdentity picks the cart owner for the request. An authenticated user always
// wins over a guest id; bodyGuestID is the guest_id field of a JSON body, if any.
func ResolveIdentity(c *gin.Context, bodyGuestID string) service.Identity {
	if userID, ok := GetUserID(c); ok {
		return service.UserIdentity(userID)
	}
	if bodyGuestID != "" {
		return service.GuestIdentity(bodyGuestID)
	}
	return service.GuestIdentity(GetGuestID(c))
}
