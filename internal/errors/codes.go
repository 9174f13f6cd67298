package errors

// Error codes returned in ErrorResponse.Error.
// Format: CATEGORY_SPECIFIC_DETAIL. Clients map these to their own messages.

const (
	// ==================== Auth (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // login required
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // wrong email/password
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"       // token expired
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"       // malformed or bad signature
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"        // duplicate email

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND"

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID    = "VALIDATION_INVALID_ID"
	ValidationRequired     = "VALIDATION_REQUIRED"

	// ==================== Resource (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Product (PRODUCT_) ====================
	ProductNotFound = "PRODUCT_NOT_FOUND"

	// ==================== Cart (CART_) ====================
	CartNotFound        = "CART_NOT_FOUND"
	CartItemNotFound    = "CART_ITEM_NOT_FOUND"
	CartInvalidQuantity = "CART_INVALID_QUANTITY"
	CartGuestRequired   = "CART_GUEST_ID_REQUIRED"
	CartGuestNotFound   = "CART_GUEST_NOT_FOUND"
	CartGuestEmpty      = "CART_GUEST_EMPTY"
	CartBusy            = "CART_BUSY"

	// ==================== Checkout (CHECKOUT_) ====================
	CheckoutNotFound       = "CHECKOUT_NOT_FOUND"
	CheckoutNoItems        = "CHECKOUT_NO_ITEMS"
	CheckoutInvalidPayment = "CHECKOUT_INVALID_PAYMENT_STATUS"
	CheckoutNotPaid        = "CHECKOUT_NOT_PAID"
	CheckoutFinalized      = "CHECKOUT_ALREADY_FINALIZED"

	// ==================== Order (ORDER_) ====================
	OrderNotFound        = "ORDER_NOT_FOUND"
	OrderNoItems         = "ORDER_NO_ITEMS"
	OrderInvalidDelivery = "ORDER_INVALID_DELIVERY"
	OrderAlreadyCanceled = "ORDER_ALREADY_CANCELLED"
	OrderNotCancelable   = "ORDER_NOT_CANCELABLE"
	OrderInvalidStatus   = "ORDER_INVALID_STATUS"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
)
