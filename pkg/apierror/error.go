package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error by how the gift engine reacts to it.
type Kind string

const (
	// KindTransport covers network failures, timeouts and undecodable payloads.
	// Always non-fatal; an attempt that hits one rotates to the next bot.
	KindTransport Kind = "TRANSPORT"

	// KindResolution means a reference, recipient or account could not be
	// resolved. It aborts the current item or run and is never retried.
	KindResolution Kind = "RESOLUTION"

	// KindPlatform is a structured rejection returned by the upstream API.
	KindPlatform Kind = "PLATFORM_REJECTION"
)

// Error represents a structured error from the gifting pipeline.
type Error struct {
	Kind       Kind   `json:"kind"`
	StatusCode int    `json:"status,omitempty"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"message"`
	Err        error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Code != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	case e.Code != "":
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Transport wraps a network or decode failure.
func Transport(message string, err error) *Error {
	if message == "" {
		message = "upstream request failed"
	}
	return &Error{
		Kind:    KindTransport,
		Message: message,
		Err:     err,
	}
}

// Resolution creates an error for something that could not be found.
func Resolution(message string) *Error {
	if message == "" {
		message = "could not resolve reference"
	}
	return &Error{
		Kind:    KindResolution,
		Message: message,
	}
}

// WrapResolution marks err as a resolution failure. Errors that already are
// resolution errors are returned unchanged.
func WrapResolution(message string, err error) error {
	if err == nil || IsResolution(err) {
		return err
	}
	e := Resolution(message)
	e.Err = err
	return e
}

// Platform creates an error for a structured upstream rejection.
func Platform(statusCode int, code, message string) *Error {
	if message == "" {
		message = http.StatusText(statusCode)
	}
	return &Error{
		Kind:       KindPlatform,
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
	}
}

// platformBody is the error envelope returned by the account and MCP services.
type platformBody struct {
	ErrorCode        string `json:"errorCode"`
	ErrorMessage     string `json:"errorMessage"`
	NumericErrorCode int    `json:"numericErrorCode"`
}

// FromResponse builds a platform rejection from a non-2xx response body.
// Bodies that are not the upstream error envelope still produce an error
// carrying the status code.
func FromResponse(statusCode int, body []byte) *Error {
	var pb platformBody
	if err := json.Unmarshal(body, &pb); err != nil || pb.ErrorCode == "" {
		return Platform(statusCode, "", "")
	}
	return Platform(statusCode, pb.ErrorCode, pb.ErrorMessage)
}

// IsTransport reports whether err is, or wraps, a transport error.
func IsTransport(err error) bool {
	return hasKind(err, KindTransport)
}

// IsResolution reports whether err is, or wraps, a resolution error.
func IsResolution(err error) bool {
	return hasKind(err, KindResolution)
}

// IsPlatform reports whether err is, or wraps, a platform rejection.
func IsPlatform(err error) bool {
	return hasKind(err, KindPlatform)
}

// hasKind walks every *Error in the chain, so a resolution error wrapping a
// platform rejection reports both kinds.
func hasKind(err error, kind Kind) bool {
	for err != nil {
		var apiErr *Error
		if !errors.As(err, &apiErr) {
			return false
		}
		if apiErr.Kind == kind {
			return true
		}
		err = apiErr.Err
	}
	return false
}
