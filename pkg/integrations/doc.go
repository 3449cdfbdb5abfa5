// Package integrations provides HTTP clients for registry APIs.
//
// # Overview
//
// The [Client] type provides the shared HTTP plumbing; each registry has its
// own subpackage built on it:
//
//   - [re3data]: the re3data.org registry of research data repositories
//
// # Failures
//
// Every failed request surfaces as a [*TransportError] carrying the URL and,
// when a response arrived, its status code. A 404 wraps [ErrNotFound]; every
// other failure wraps [ErrNetwork]:
//
//	body, err := client.GetBytes(ctx, url)
//	var te *integrations.TransportError
//	if errors.As(err, &te) && te.StatusCode == http.StatusServiceUnavailable {
//	    // registry is down
//	}
//
// Requests are not retried unless the caller opts in with [Client.WithRetries].
// Only transient failures (no response, 5xx status) are retried.
//
// [re3data]: github.com/matzehuels/re3facet/pkg/integrations/re3data
package integrations
