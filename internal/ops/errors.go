// Package ops implements the file operations exposed by the API as stateless
// adapters over pdfcpu, imaging and goldmark. Adapters receive input buffers
// and parameters, return fresh output bytes, and hold no state between calls.
//
// Errors carry a kind, not content: messages wrapped around the sentinel
// errors below must contain only static text, never a filename or file bytes.
// Library errors are folded into ErrProcessing so that their text (which may
// echo parts of the input) cannot reach clients or logs.
package ops

import (
	"context"
	"errors"
	"net/http"
)

// Sentinel error kinds. Handlers return these (wrapped with static context)
// and the HTTP error handler maps them to status codes and client messages.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrTooLarge         = errors.New("file too large")
	ErrEmptyResult      = errors.New("operation would produce empty output")
	ErrProcessing       = errors.New("processing failed")
)

// Kind returns the stable error-kind label used in logs.
func Kind(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ErrTooLarge):
		return "too_large"
	case errors.Is(err, ErrUnsupportedMedia):
		return "unsupported_media"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrEmptyResult):
		return "empty_result"
	default:
		return "processing_failed"
	}
}

// HTTPStatus maps an error to its response status code.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrUnsupportedMedia):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrEmptyResult):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Detail returns the client-safe message for an error. Client-input kinds
// keep their (static) wrapped text so the caller can act on it; everything
// else collapses to a generic message so library diagnostics never leak.
func Detail(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrUnsupportedMedia),
		errors.Is(err, ErrTooLarge),
		errors.Is(err, ErrEmptyResult):
		return err.Error()
	default:
		return "processing failed"
	}
}

// wrapProcessing folds a library error into ErrProcessing, discarding its
// text. The original error is intentionally not wrapped with %w.
func wrapProcessing(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return ErrProcessing
}
