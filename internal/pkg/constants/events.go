package constants

// WebSocket event types
const (
	// Common events
	EventError = "error"

	// Vote events
	EventPaymentStatus = "payment_status"
)

// WebSocket error codes
const (
	ErrorInvalidToken = "invalid_token"
	ErrorNotFound     = "not_found"
	ErrorInternal     = "internal_error"
)
