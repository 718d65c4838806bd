// Package sources implements the content-source diagnostics feature.
//
// It exposes a single endpoint reporting every registered source: its ID,
// category, whether the inclusion policy admits it, whether it is currently
// reachable, and how many raw records it holds. Probes run concurrently with
// a bounded timeout, so one hung source cannot stall the report.
//
// # HTTP Endpoints
//
//   - GET /sources : Probe every registered source and report its status.
package sources
