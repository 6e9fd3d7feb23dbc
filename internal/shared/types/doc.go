// Package types holds shared type definitions for the backend: service and
// tool metadata for the provider surface, execution results, and request
// DTOs for the HTTP and WebSocket layers.
package types
