// Package http provides the REST surface: health/service endpoints and a
// JSON mirror of the terminal session registry.
package http
