package controller

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/app/service"
	apperrors "github.com/Sahani-Mohottige/SafeOnlineShop/internal/errors"
	"github.com/Sahani-Mohottige/SafeOnlineShop/pkg/logger"
	"github.com/gin-gonic/gin"
)

// errorCodes maps service sentinels to response codes. Anything missing falls back
// to the class of the error.
var errorCodes = []struct {
	err  error
	code string
}{
	{service.ErrProductNotFound, apperrors.ProductNotFound},
	{service.ErrUserNotFound, apperrors.ResourceNotFound},
	{service.ErrCartNotFound, apperrors.CartNotFound},
	{service.ErrCartItemNotFound, apperrors.CartItemNotFound},
	{service.ErrGuestCartMissing, apperrors.CartGuestNotFound},
	{service.ErrGuestCartEmpty, apperrors.CartGuestEmpty},
	{service.ErrGuestIDRequired, apperrors.CartGuestRequired},
	{service.ErrInvalidQuantity, apperrors.CartInvalidQuantity},
	{service.ErrCheckoutNotFound, apperrors.CheckoutNotFound},
	{service.ErrNoItems, apperrors.CheckoutNoItems},
	{service.ErrUnknownCheckoutProduct, apperrors.ProductNotFound},
	{service.ErrInvalidPaymentStatus, apperrors.CheckoutInvalidPayment},
	{service.ErrCheckoutNotPaid, apperrors.CheckoutNotPaid},
	{service.ErrCheckoutFinalized, apperrors.CheckoutFinalized},
	{service.ErrOrderNotFound, apperrors.OrderNotFound},
	{service.ErrInvalidDeliveryTime, apperrors.OrderInvalidDelivery},
	{service.ErrOrderAlreadyCanceled, apperrors.OrderAlreadyCanceled},
	{service.ErrOrderNotCancelable, apperrors.OrderNotCancelable},
	{service.ErrInvalidOrderStatus, apperrors.OrderInvalidStatus},
	{service.ErrEmailAlreadyExists, apperrors.AuthEmailAlreadyExists},
	{service.ErrInvalidCredentials, apperrors.AuthInvalidCredentials},
}

func errorCode(err error, fallback string) string {
	for _, entry := range errorCodes {
		if stderrors.Is(err, entry.err) {
			return entry.code
		}
	}
	return fallback
}

// respondServiceError translates a service error into a response. Unclassified
// errors are logged with fields and answered with a generic message.
func respondServiceError(c *gin.Context, log *logger.Logger, err error, action string, fields map[string]interface{}) {
	switch {
	case stderrors.Is(err, service.ErrGuestCartEmpty):
		// merging an empty guest cart answers like a missing one
		log.Warn(action+": guest cart is empty", fields)
		apperrors.NotFound(c, apperrors.CartGuestEmpty, service.Message(err))
	case stderrors.Is(err, service.ErrNotFound):
		log.Warn(action+": not found", withError(fields, err))
		apperrors.NotFound(c, errorCode(err, apperrors.ResourceNotFound), service.Message(err))
	case stderrors.Is(err, service.ErrValidation), stderrors.Is(err, service.ErrInvalidState):
		log.Warn(action+": rejected", withError(fields, err))
		apperrors.BadRequest(c, errorCode(err, apperrors.ValidationInvalidInput), service.Message(err))
	case stderrors.Is(err, service.ErrCartBusy), stderrors.Is(err, service.ErrCartConflict):
		log.Warn(action+": cart contention", withError(fields, err))
		apperrors.Conflict(c, apperrors.CartBusy, err.Error())
	default:
		log.Error(action+" failed", err, fields)
		info := apperrors.ParseError(err, action)
		apperrors.RespondWithError(c, http.StatusInternalServerError, info.Code, info.Message)
	}
}

// respondBindError answers a request body that failed to bind.
func respondBindError(c *gin.Context, log *logger.Logger, err error, fields map[string]interface{}) {
	log.Warn("Invalid request body", withError(fields, err))
	if invalid := apperrors.BindingFields(err); invalid != nil {
		apperrors.RespondWithValidationError(c, invalid)
		return
	}
	apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
}

func withError(fields map[string]interface{}, err error) map[string]interface{} {
	merged := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		merged[k] = v
	}
	merged["error"] = err.Error()
	return merged
}

// parseIDParam reads a positive numeric path parameter.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}
