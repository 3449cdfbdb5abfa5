// Package re3data provides a client for the re3data.org registry API.
//
// # Overview
//
// The registry publishes an index document whose link elements point at one
// detail document per research data repository:
//
//	client := re3data.NewClient(re3data.Config{})
//	docs, err := client.Harvest(ctx)
//
// [Client.Harvest] fetches the index and then every detail document. It is
// sequential by default; [Config.Concurrency] enables bounded fan-out and
// [Config.Rate] paces detail requests. Documents are returned verbatim and
// in index order regardless of concurrency.
//
// # Failures
//
// Any failed request aborts the harvest with an [integrations.TransportError].
// Requests are not retried unless [Config.Retries] is set.
package re3data
