// Package pkg provides the core libraries of re3facet, a subject browser for
// the re3data registry of research data repositories.
//
// # Overview
//
// re3facet harvests every repository description from re3data, extracts one
// record per repository, decomposes the DFG subject codes each repository
// lists into a three-level hierarchy, and serves that hierarchy as a
// checkbox tree. Checked tree values then select subjects and repositories.
//
// # Architecture
//
// The data flow through re3facet:
//
//	re3data index + detail documents
//	         ↓
//	    [harvest] (cache snapshot or fetch via [integrations/re3data])
//	         ↓
//	    [registry] (parse XML, extract records, build the table)
//	         ↓
//	    [subject] (decompose codes, count repositories per subject)
//	         ↓
//	    [hierarchy] (prefix tree, tree JSON, Markdown, DOT/SVG)
//	         ↓
//	    CLI, HTTP API ([server]) or [export]
//
// [pipeline] wires these stages together; both the CLI and the server run
// through a [pipeline.Runner].
//
// # Quick Start
//
//	client := re3data.NewClient(re3data.Config{Concurrency: 4})
//	store := harvest.NewStore(cache.NewPathCache(), client, nil)
//	result, err := pipeline.NewRunner(store, nil).Run(ctx, pipeline.Options{})
//	if err != nil {
//	    return err
//	}
//	sel := subject.NewSelection("1-01")
//	rows := subject.FilterBySelection(result.Subjects, sel)
//
// # Supporting Packages
//
// [cache] - Snapshot backends: a plain file at a chosen path, a TTL-aware
// directory cache, Redis, and a no-op cache.
//
// [errors] - Structured error codes shared by the CLI and the HTTP API.
//
// [httputil] - Retry with backoff and a request rate limiter.
//
// [observability] - Hook interfaces for harvest, cache and HTTP events, with
// a Prometheus implementation in [observability/prom].
//
// [buildinfo] - Version information injected at build time.
package pkg
