// Package monitoring provides Prometheus metrics for the backend.
//
// Metrics cover the HTTP surface (request counts, latency, sizes) and the
// terminal registry (active sessions, bytes moved, read timeouts). Each
// Metrics instance owns its own Prometheus registry so construction is
// safe in tests; exposition goes through Handler().
package monitoring
