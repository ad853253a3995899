package apperr

import (
	"errors"
	"fmt"
)

// Error kinds shared by every feature package. Wrap them with fmt.Errorf("%w")
// or the helpers below and let Respond pick the status code.
var (
	ErrValidation               = errors.New("validation failed")
	ErrNotFound                 = errors.New("not found")
	ErrConflict                 = errors.New("conflict")
	ErrInsufficientStock        = errors.New("insufficient stock")
	ErrUnsupportedPaymentMethod = errors.New("unsupported payment method")
	ErrExternalService          = errors.New("external service failure")
	ErrForbidden                = errors.New("forbidden")
	ErrUnauthorized             = errors.New("unauthorized")
)

// kindError carries a caller facing message while still matching its kind.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func Validation(format string, args ...any) error {
	return &kindError{kind: ErrValidation, msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &kindError{kind: ErrNotFound, msg: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) error {
	return &kindError{kind: ErrConflict, msg: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...any) error {
	return &kindError{kind: ErrForbidden, msg: fmt.Sprintf(format, args...)}
}

func Unauthorized(format string, args ...any) error {
	return &kindError{kind: ErrUnauthorized, msg: fmt.Sprintf(format, args...)}
}

// External wraps a failure from the image host, payment processor or another
// remote collaborator. The cause stays reachable through errors.Unwrap chains
// only for logging; Respond never exposes it.
func External(service string, cause error) error {
	return &externalError{service: service, cause: cause}
}

type externalError struct {
	service string
	cause   error
}

func (e *externalError) Error() string {
	return fmt.Sprintf("%s: %v", e.service, e.cause)
}

func (e *externalError) Is(target error) bool { return target == ErrExternalService }
func (e *externalError) Unwrap() error        { return e.cause }

// InsufficientStockError names the product and the quantities that did not fit.
type InsufficientStockError struct {
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Not enough stock for %s! Available: %d, Requested: %d", e.ProductName, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }
