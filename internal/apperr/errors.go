// Package apperr defines the error taxonomy returned across the core boundary.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a class of failure. Codes are stable and safe to expose to clients.
type Code string

const (
	CodeNoFileProvided        Code = "no_file_provided"
	CodeUnsupportedFormat     Code = "unsupported_format"
	CodeCapabilityUnavailable Code = "capability_unavailable"
	CodeFormatError           Code = "format_error"
	CodeSchemaError           Code = "schema_error"
	CodeNoDatasetLoaded       Code = "no_dataset_loaded"
	CodeColumnNotFound        Code = "column_not_found"
	CodeUnsupportedChartKind  Code = "unsupported_chart_kind"
	CodeInsufficientData      Code = "insufficient_data"
	CodePayloadTooLarge       Code = "payload_too_large"
	CodeInvalidRequest        Code = "invalid_request"
	CodeRateLimited           Code = "rate_limited"
	CodeInternal              Code = "internal"
)

// Sentinels for errors.Is. They match any *Error carrying the same code.
var (
	ErrNoFileProvided        = &Error{Code: CodeNoFileProvided}
	ErrUnsupportedFormat     = &Error{Code: CodeUnsupportedFormat}
	ErrCapabilityUnavailable = &Error{Code: CodeCapabilityUnavailable}
	ErrFormat                = &Error{Code: CodeFormatError}
	ErrSchema                = &Error{Code: CodeSchemaError}
	ErrNoDatasetLoaded       = &Error{Code: CodeNoDatasetLoaded}
	ErrColumnNotFound        = &Error{Code: CodeColumnNotFound}
	ErrUnsupportedChartKind  = &Error{Code: CodeUnsupportedChartKind}
	ErrInsufficientData      = &Error{Code: CodeInsufficientData}
	ErrPayloadTooLarge       = &Error{Code: CodePayloadTooLarge}
	ErrInvalidRequest        = &Error{Code: CodeInvalidRequest}
	ErrRateLimited           = &Error{Code: CodeRateLimited}
)

// Error is a classified failure with a human-readable message.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// New builds an *Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies err under code, keeping it as the cause.
func Wrap(code Code, err error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by code, so sentinels compare equal to any
// error of the same class.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// CodeOf extracts the code of err, or CodeInternal for unclassified errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// HTTPStatus maps a code onto the status the HTTP boundary should answer with.
func HTTPStatus(code Code) int {
	switch code {
	case CodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case CodeUnsupportedFormat:
		return http.StatusUnsupportedMediaType
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeColumnNotFound, CodeNoDatasetLoaded:
		return http.StatusNotFound
	case CodeFormatError, CodeSchemaError, CodeInsufficientData:
		return http.StatusUnprocessableEntity
	case CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// Response is the {error, code} body returned for failed requests.
type Response struct {
	Error string `json:"error" yaml:"error"`
	Code  Code   `json:"code" yaml:"code"`
}

// ToResponse renders err for a client. Unclassified errors keep a generic
// message so internal details do not leak.
func ToResponse(err error) Response {
	var e *Error
	if errors.As(err, &e) && e.Code != CodeInternal {
		return Response{Error: e.Error(), Code: e.Code}
	}
	return Response{Error: "internal error", Code: CodeInternal}
}
