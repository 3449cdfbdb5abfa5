package integrations

import (
	"errors"
	"net/http"
	"net/url"
	"time"
)

// DefaultTimeout applies to the index request and every detail request.
const DefaultTimeout = 60 * time.Second

const retryDelay = time.Second

var (
	// ErrNotFound is returned when a registry resource doesn't exist.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, non-200 responses).
	ErrNetwork = errors.New("network error")
)

// NewHTTPClient creates an HTTP client with the given timeout.
// A non-positive timeout selects [DefaultTimeout].
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// ResolveURL resolves ref against base. Absolute references are returned
// unchanged; unparseable references are returned as-is.
func ResolveURL(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
