package resilience

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
)

// StatusError is a non-2xx HTTP response from a remote source.
type StatusError struct {
	URL        string
	StatusCode int
}

// NewStatusError builds a StatusError for the given URL and status.
func NewStatusError(url string, code int) *StatusError {
	return &StatusError{URL: url, StatusCode: code}
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Temporary reports whether the status is worth retrying.
func (e *StatusError) Temporary() bool {
	return RetryableStatus(e.StatusCode)
}

// RetryableStatus reports whether an HTTP status signals a passing
// condition: 408, 429, or any 5xx.
func RetryableStatus(code int) bool {
	if code == http.StatusRequestTimeout || code == http.StatusTooManyRequests {
		return true
	}
	return code >= 500 && code <= 599
}

// statusCoder is implemented by API client errors that carry the HTTP
// status of a failed call.
type statusCoder interface {
	HTTPStatus() int
}

// Transient reports whether err is likely to clear on its own: a retryable
// HTTP status, a network timeout, or a dropped connection. An open circuit
// breaker is not transient; retrying it only burns the backoff budget.
func Transient(err error) bool {
	if err == nil || BreakerOpen(err) {
		return false
	}

	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}

	var sc statusCoder
	if errors.As(err, &sc) {
		return RetryableStatus(sc.HTTPStatus())
	}

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}

	return errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, syscall.EPIPE)
}

// ClassifyError labels err "transient" or "permanent" for logs.
func ClassifyError(err error) string {
	if Transient(err) {
		return "transient"
	}
	return "permanent"
}
