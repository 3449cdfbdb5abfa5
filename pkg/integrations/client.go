package integrations

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/matzehuels/re3facet/pkg/errors"
	"github.com/matzehuels/re3facet/pkg/httputil"
	"github.com/matzehuels/re3facet/pkg/observability"
)

// TransportError reports a failed registry request: a non-200 status,
// a timeout or a connection failure. It aborts a harvest.
type TransportError struct {
	URL        string // Requested URL
	StatusCode int    // HTTP status, 0 when no response was received
	Err        error  // ErrNotFound or ErrNetwork, wrapping the cause
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("GET %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("GET %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Code implements errors.Coder.
func (e *TransportError) Code() errors.Code { return errors.ErrCodeTransport }

// Retryable reports whether the failure is transient: no response at all,
// or a 5xx status.
func (e *TransportError) Retryable() bool {
	return e.StatusCode == 0 || e.StatusCode >= 500
}

// Client provides shared HTTP functionality for registry API clients.
// It applies default headers and optional retries to every request.
//
// A Client is safe for concurrent use.
type Client struct {
	http    *http.Client
	headers map[string]string
	retries int
}

// NewClient creates a Client using httpClient (nil selects [NewHTTPClient]
// with the default timeout) and the given default headers.
func NewClient(httpClient *http.Client, headers map[string]string) *Client {
	if httpClient == nil {
		httpClient = NewHTTPClient(0)
	}
	return &Client{http: httpClient, headers: headers}
}

// WithRetries returns a copy of c that retries transient failures up to n
// additional times with exponential backoff. Zero disables retries.
func (c *Client) WithRetries(n int) *Client {
	cp := *c
	cp.retries = max(n, 0)
	return &cp
}

// GetBytes performs an HTTP GET and returns the response body verbatim.
func (c *Client) GetBytes(ctx context.Context, url string) ([]byte, error) {
	var data []byte
	fetch := func() error {
		body, err := c.doRequest(ctx, url)
		if err != nil {
			return err
		}
		defer body.Close()
		data, err = io.ReadAll(body)
		if err != nil {
			return retryable(&TransportError{URL: url, Err: fmt.Errorf("%w: %v", ErrNetwork, err)})
		}
		return nil
	}

	if c.retries == 0 {
		if err := fetch(); err != nil {
			return nil, unwrapRetryable(err)
		}
		return data, nil
	}
	if err := httputil.Retry(ctx, c.retries+1, retryDelay, fetch); err != nil {
		return nil, unwrapRetryable(err)
	}
	return data, nil
}

// GetText performs an HTTP GET and returns the response body as a string.
func (c *Client) GetText(ctx context.Context, url string) (string, error) {
	data, err := c.GetBytes(ctx, url)
	return string(data), err
}

func (c *Client) doRequest(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{URL: url, Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, retryable(&TransportError{URL: url, Err: fmt.Errorf("%w: %v", ErrNetwork, err)})
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(url, resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func checkStatus(url string, code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return &TransportError{URL: url, StatusCode: code, Err: ErrNotFound}
	default:
		return retryable(&TransportError{URL: url, StatusCode: code, Err: fmt.Errorf("%w: status %d", ErrNetwork, code)})
	}
}

// retryable marks transient transport errors for httputil.Retry.
func retryable(err *TransportError) error {
	if err.Retryable() {
		return &httputil.RetryableError{Err: err}
	}
	return err
}

// unwrapRetryable strips the retry marker so callers always receive
// a *TransportError (or a context error).
func unwrapRetryable(err error) error {
	if re, ok := err.(*httputil.RetryableError); ok {
		return re.Err
	}
	return err
}
