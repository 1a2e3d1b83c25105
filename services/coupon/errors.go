package coupon

import "fmt"

// ErrorCode identifies why a coupon was rejected.
type ErrorCode string

const (
	CodeNotFound     ErrorCode = "couponNotFound"
	CodeNotStarted   ErrorCode = "couponNotStarted"
	CodeExpired      ErrorCode = "couponExpired"
	CodeExhausted    ErrorCode = "couponExhausted"
	CodeBelowMinimum ErrorCode = "couponBelowMinimum"
)

// Error is a coupon validation failure. Validation rejects before any charge
// is attempted, so these errors never leave transaction side effects.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(code ErrorCode, msg string) error {
	return &Error{Code: code, Message: msg}
}
