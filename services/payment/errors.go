package payment

import (
	"errors"
	"fmt"

	"consultdesk/models"
)

var (
	// ErrGatewayUnavailable is returned on transport-level gateway failures.
	// The transaction state is indeterminate; callers retry verification
	// rather than treating it as failed.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrMissingConfiguration is returned when no usable merchant id or base
	// URL could be resolved. Reported before any gateway I/O.
	ErrMissingConfiguration = errors.New("missing gateway configuration")

	// ErrTransactionNotFound is returned when the referenced transaction
	// does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrMissingAuthority is returned when verification is requested without
	// an authority token on either the request or the record.
	ErrMissingAuthority = errors.New("missing authority parameter")
)

// TransitionError reports a status change outside the allowed graph for the
// transaction kind. Callers reject the write; nothing is partially updated.
type TransitionError struct {
	Kind models.TransactionKind
	From models.TransactionStatus
	To   models.TransactionStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid %s status transition: %q -> %q", e.Kind, e.From, e.To)
}

// GatewayError reports a non-success code from the payment gateway.
type GatewayError struct {
	Code    int
	Message string
}

func (e *GatewayError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gateway rejected request (code %d): %s", e.Code, e.Message)
	}
	return fmt.Sprintf("gateway rejected request (code %d)", e.Code)
}
