// Package fetch implements the coalescing fetch orchestrator that sits
// between the HTTP handlers and the upstream clients.
//
// For each key the orchestrator runs a fixed protocol: fast-path cache read,
// per-key lock, double-check, upstream refresh with retry, and stale-cache
// fallback when the refresh fails. The per-key lock bounds concurrent
// upstream calls for one key to at most one in flight; different keys never
// block each other.
package fetch
