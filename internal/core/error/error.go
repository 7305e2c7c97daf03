package errx

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage describes a missing Redis key.
	RedisNotFoundMessage = "redis key not found"
	// CatalogErrorMessage describes catalog backend failures.
	CatalogErrorMessage = "catalog request failed"
	// ModelErrorMessage describes generation backend failures.
	ModelErrorMessage = "text generation failed"
)

// Error kinds. Match them with errors.Is on anything returned by this module.
var (
	ErrBadRequest            = errors.New("bad request")
	ErrConfiguration         = errors.New("catalog credentials missing or invalid")
	ErrUpstreamUnavailable   = errors.New("upstream unavailable")
	ErrMalformedModelOutput  = errors.New("malformed model output")
	ErrInvalidActionType     = errors.New("invalid action type")
	ErrUnresolvableProduct   = errors.New("product could not be resolved")
	ErrGenerationUnavailable = errors.New("generation backend unavailable")
)

// Error wraps an underlying error with an HTTP status and safe message.
type Error struct {
	Err     error
	Status  int
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new Error with the provided information.
func New(err error, status int, message string) *Error {
	return &Error{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// Wrap tags err with one of the package error kinds so errors.Is(err, kind) holds.
func Wrap(kind error, err error) *Error {
	if err == nil {
		err = kind
	} else if !errors.Is(err, kind) {
		err = fmt.Errorf("%w: %w", kind, err)
	}
	return New(err, statusFor(kind), messageFor(kind))
}

// BadRequest reports invalid caller input.
func BadRequest(message string) *Error {
	return New(ErrBadRequest, http.StatusBadRequest, message)
}

// Internal wraps an unexpected failure.
func Internal(err error) *Error {
	return New(err, http.StatusInternalServerError, SystemErrorMessage)
}

// StatusOf returns the HTTP status carried by err, or 500.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) && e.Status != 0 {
		return e.Status
	}
	return http.StatusInternalServerError
}

func statusFor(kind error) int {
	switch kind {
	case ErrBadRequest:
		return http.StatusBadRequest
	case ErrConfiguration:
		return http.StatusFailedDependency
	case ErrUpstreamUnavailable, ErrGenerationUnavailable:
		return http.StatusBadGateway
	case ErrUnresolvableProduct:
		return http.StatusNotFound
	case ErrMalformedModelOutput, ErrInvalidActionType:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func messageFor(kind error) string {
	switch kind {
	case ErrUpstreamUnavailable:
		return CatalogErrorMessage
	case ErrGenerationUnavailable:
		return ModelErrorMessage
	case nil:
		return SystemErrorMessage
	default:
		return kind.Error()
	}
}
