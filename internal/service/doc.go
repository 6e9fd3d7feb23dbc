// Package service provides the provider registry: service implementations
// register under a stable id and callers dispatch "service.tool" calls
// through Execute.
package service
