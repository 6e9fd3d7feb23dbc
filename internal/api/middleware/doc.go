// Package middleware provides Gin middleware: CORS, rate limiting and
// request id propagation.
package middleware
