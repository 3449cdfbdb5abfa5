// Package httputil provides HTTP utilities for registry clients.
//
// # Overview
//
// This package provides infrastructure used by the registry fetcher:
//
//   - [Retry]: opt-in retry with exponential backoff
//   - [Limiter]: request pacing so a full harvest stays polite to the registry
//
// # Retry
//
// The fetcher never retries on its own; a failed request surfaces as a
// transport error. Callers that want retries wrap the request in [Retry],
// and only errors wrapped in [RetryableError] are attempted again:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    return fetch(ctx)
//	})
//
// # Rate limiting
//
// A harvest issues one detail request per repository, a few thousand in
// total. [NewLimiter] paces them with a token bucket:
//
//	limiter := httputil.NewLimiter(5) // 5 requests per second
//	if err := limiter.Wait(ctx); err != nil {
//	    return err
//	}
//
// A rate of zero disables pacing.
package httputil
