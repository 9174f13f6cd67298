package errors

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// ErrorInfo is a code and message pair derived from an error.
type ErrorInfo struct {
	Code    string // see codes.go
	Message string // user facing message
}

// ParseError turns persistence and driver errors into a user facing code and message
// without leaking SQL details. context names the operation, e.g. "create order".
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "Server error",
		}
	}

	errStr := err.Error()
	errStrLower := strings.ToLower(errStr)

	// 1. gorm sentinels
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    notFoundCode(context),
			Message: getNotFoundMessage(context),
		}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return parseDuplicateKeyError(errStr, context)
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return parseForeignKeyError(errStr, context)
	}

	// 2. raw driver messages (postgres and sqlite)

	// 2-1. unique constraint violation (23505)
	if strings.Contains(errStrLower, "duplicate key") || strings.Contains(errStrLower, "unique constraint") {
		return parseDuplicateKeyError(errStr, context)
	}

	// 2-2. foreign key violation (23503)
	if strings.Contains(errStrLower, "foreign key constraint") {
		return parseForeignKeyError(errStr, context)
	}

	// 2-3. not null violation (23502)
	if strings.Contains(errStrLower, "not-null constraint") || strings.Contains(errStrLower, "not null constraint") {
		return parseNotNullError(errStr)
	}

	// 3. network
	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "A backing service is unavailable, please try again later",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: getDefaultErrorMessage(context),
	}
}

func parseDuplicateKeyError(errStr string, context string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	if strings.Contains(errLower, "email") {
		return ErrorInfo{
			Code:    AuthEmailAlreadyExists,
			Message: "User already exists",
		}
	}

	if strings.Contains(errLower, "sku") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "A product with this SKU already exists",
		}
	}

	// a second cart for the same owner or a second order for one checkout
	if strings.Contains(errLower, "carts") || strings.Contains(errLower, "checkout_id") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "The request conflicted with a concurrent update, please retry",
		}
	}

	return ErrorInfo{
		Code:    ResourceAlreadyExists,
		Message: "The resource already exists",
	}
}

func parseForeignKeyError(errStr string, context string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	if strings.Contains(errLower, "still referenced") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "The resource is still referenced and cannot be deleted",
		}
	}
	if strings.Contains(errLower, "user_id") {
		return ErrorInfo{Code: ResourceNotFound, Message: "User not found"}
	}
	if strings.Contains(errLower, "product_id") {
		return ErrorInfo{Code: ProductNotFound, Message: "Product not found"}
	}

	return ErrorInfo{
		Code:    ResourceNotFound,
		Message: getNotFoundMessage(context),
	}
}

func parseNotNullError(errStr string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	for _, field := range []string{"email", "name", "price", "quantity"} {
		if strings.Contains(errLower, field) {
			return ErrorInfo{Code: ValidationRequired, Message: field + " is required"}
		}
	}
	return ErrorInfo{
		Code:    ValidationRequired,
		Message: "A required field is missing",
	}
}

func notFoundCode(context string) string {
	contextLower := strings.ToLower(context)
	switch {
	case strings.Contains(contextLower, "checkout"):
		return CheckoutNotFound
	case strings.Contains(contextLower, "order"):
		return OrderNotFound
	case strings.Contains(contextLower, "cart"):
		return CartNotFound
	case strings.Contains(contextLower, "product"):
		return ProductNotFound
	}
	return ResourceNotFound
}

func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "checkout"):
		return "Checkout session not found"
	case strings.Contains(contextLower, "order"):
		return "Order not found"
	case strings.Contains(contextLower, "cart"):
		return "Cart not found"
	case strings.Contains(contextLower, "product"):
		return "Product not found"
	case strings.Contains(contextLower, "user"):
		return "User not found"
	}
	return "Requested resource not found"
}

func getDefaultErrorMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "create"):
		return "Failed to create, please try again later"
	case strings.Contains(contextLower, "update"):
		return "Failed to update, please try again later"
	case strings.Contains(contextLower, "delete"):
		return "Failed to delete, please try again later"
	}
	return "Server error, please try again later"
}

// ParseAndRespond parses err and writes the result with the given status.
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	errorInfo := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Error:   errorInfo.Code,
		Message: errorInfo.Message,
	})
}

// BindingFields flattens validator failures into json field name -> rule.
// It returns nil when err is not a validation failure.
func BindingFields(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return fields
}
