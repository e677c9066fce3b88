package funcsdk

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/portal/pkg/httpx"
)

const (
	ErrorCodeUpstream       = "upstream_error"
	ErrorCodeBadGateway     = "bad_gateway"
	ErrorCodeGatewayTimeout = "gateway_timeout"
)

// ErrResponseTooLarge is wrapped in a NetworkError when a function answers
// with more than the client is willing to read.
var ErrResponseTooLarge = errors.New("response body too large")

// RequestError is returned when a function answers with a non-2xx status.
type RequestError struct {
	Endpoint   string
	Operation  string // human readable, e.g. "password generation"
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	return fmt.Sprintf("%s failed: %s returned HTTP %d", e.Operation, e.Endpoint, e.StatusCode)
}

// WriteError relays the failure to a portal client, keeping the upstream
// status code.
func (e *RequestError) WriteError(w http.ResponseWriter) {
	status := e.StatusCode
	if status < 400 || status > 599 {
		status = http.StatusBadGateway
	}
	httpx.WriteError(w, status, ErrorCodeUpstream, e.Operation+" failed")
}

// NetworkError is returned when no response could be obtained at all: DNS
// failure, refused connection, timeout or cancelled context.
type NetworkError struct {
	Endpoint  string
	Operation string
	Err       error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s failed: %s unreachable: %v", e.Operation, e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Timeout reports whether the failure was a deadline being exceeded.
func (e *NetworkError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	return errors.As(e.Err, &t) && t.Timeout()
}

// WriteError writes 504 for timeouts and 502 otherwise.
func (e *NetworkError) WriteError(w http.ResponseWriter) {
	if e.Timeout() {
		httpx.WriteError(w, http.StatusGatewayTimeout, ErrorCodeGatewayTimeout, e.Operation+" timed out")
		return
	}
	httpx.WriteError(w, http.StatusBadGateway, ErrorCodeBadGateway, e.Operation+" failed: backend unreachable")
}
