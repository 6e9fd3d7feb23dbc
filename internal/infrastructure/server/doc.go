// Package server wires configuration, logging, metrics, the terminal
// session registry and the HTTP/WebSocket surfaces into a runnable
// service.
package server
