package integration

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrSupplierNotConfigured = errors.New("integration: supplier not configured")
	ErrUnknownSupplier       = errors.New("integration: unknown supplier")
)

// ErrorKind classifies connector failures
type ErrorKind string

const (
	ErrorKindAuth            ErrorKind = "auth"
	ErrorKindRateLimit       ErrorKind = "rate_limit"
	ErrorKindServer          ErrorKind = "server"
	ErrorKindNetwork         ErrorKind = "network"
	ErrorKindNotFound        ErrorKind = "not_found"
	ErrorKindClient          ErrorKind = "client"
	ErrorKindInvalidResponse ErrorKind = "invalid_response"
)

// ConnectorError is returned by every SupplierConnector operation that fails
type ConnectorError struct {
	Kind     ErrorKind
	Supplier SupplierID
	Status   int
	Message  string
	Attempts int
	Err      error
}

// Error implements the error interface
func (e *ConnectorError) Error() string {
	msg := fmt.Sprintf("%s: %s error", e.Supplier, e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.Status)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Attempts > 1 {
		msg += fmt.Sprintf(" after %d attempts", e.Attempts)
	}
	return msg
}

// Unwrap returns the underlying transport error, if any
func (e *ConnectorError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether the failure may succeed on a later attempt
func (e *ConnectorError) IsRetryable() bool {
	switch e.Kind {
	case ErrorKindRateLimit, ErrorKindServer, ErrorKindNetwork:
		return true
	default:
		return false
	}
}

// ClassifyStatus maps an upstream HTTP status to an error kind.
// Retryable: 5xx, 429 and 408. Any other 4xx fails immediately.
func ClassifyStatus(status int) ErrorKind {
	switch {
	case status == http.StatusTooManyRequests:
		return ErrorKindRateLimit
	case status == http.StatusRequestTimeout:
		return ErrorKindServer
	case status >= 500:
		return ErrorKindServer
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrorKindAuth
	case status == http.StatusNotFound:
		return ErrorKindNotFound
	default:
		return ErrorKindClient
	}
}

// NewStatusError builds a ConnectorError from an upstream HTTP status
func NewStatusError(supplier SupplierID, status int, message string) *ConnectorError {
	return &ConnectorError{
		Kind:     ClassifyStatus(status),
		Supplier: supplier,
		Status:   status,
		Message:  message,
		Attempts: 1,
	}
}

// AuthError reports rejected or expired credentials
func AuthError(supplier SupplierID, message string, err error) *ConnectorError {
	return &ConnectorError{Kind: ErrorKindAuth, Supplier: supplier, Message: message, Attempts: 1, Err: err}
}

// NetworkError reports a transport failure with no HTTP response
func NetworkError(supplier SupplierID, err error) *ConnectorError {
	return &ConnectorError{Kind: ErrorKindNetwork, Supplier: supplier, Message: "request failed", Attempts: 1, Err: err}
}

// NotFoundError reports an unknown product id
func NotFoundError(supplier SupplierID, id string) *ConnectorError {
	return &ConnectorError{
		Kind:     ErrorKindNotFound,
		Supplier: supplier,
		Status:   http.StatusNotFound,
		Message:  fmt.Sprintf("product %s not found", id),
		Attempts: 1,
	}
}

// InvalidResponseError reports a payload that could not be decoded
func InvalidResponseError(supplier SupplierID, err error) *ConnectorError {
	return &ConnectorError{Kind: ErrorKindInvalidResponse, Supplier: supplier, Message: "invalid response", Attempts: 1, Err: err}
}

// IsKind reports whether err is a ConnectorError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var ce *ConnectorError
	if errors.As(err, &ce) {
		return ce.Kind == kind
	}
	return false
}

// IsRetryable reports whether err is a retryable ConnectorError
func IsRetryable(err error) bool {
	var ce *ConnectorError
	if errors.As(err, &ce) {
		return ce.IsRetryable()
	}
	return false
}
