package votes

import (
	"errors"
	"fmt"
)

// Validation
var (
	ErrInvalidPhone     = errors.New("invalid phone number")
	ErrInvalidUnitCount = errors.New("invalid votes count")
	ErrMissingTarget    = errors.New("nominee id is required")
)

// Verification
var ErrVerificationFailed = errors.New("bot verification failed")

// Ledger
var (
	ErrTargetNotFound      = errors.New("nominee not found")
	ErrIntentNotFound      = errors.New("payment not found")
	ErrInvalidTrackingID   = errors.New("invalid tracking id")
	ErrDuplicateTrackingID = errors.New("tracking id already attached to another payment")
	ErrNotCompleted        = errors.New("payment is not completed")
)

// Gateway
var (
	ErrCredentialRejected = errors.New("gateway rejected credentials")
	ErrPushRejected       = errors.New("gateway rejected payment request")
	ErrGatewayUnavailable = errors.New("gateway unavailable")
)

// GatewayError describes one failed gateway call. Kind is one of the gateway sentinels.
type GatewayError struct {
	Op         string
	StatusCode int
	Code       string
	Message    string
	Kind       error
}

func (e *GatewayError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Op, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Code != "" {
		msg += " [" + e.Code + "]"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *GatewayError) Unwrap() error {
	return e.Kind
}

// IsRetryable reports whether a gateway failure may succeed if the caller tries again
func IsRetryable(err error) bool {
	return errors.Is(err, ErrGatewayUnavailable)
}

// Describe returns the gateway's own message when err is a GatewayError
func Describe(err error) string {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) && gwErr.Message != "" {
		return gwErr.Message
	}
	return err.Error()
}
