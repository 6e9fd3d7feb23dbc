// Package ws streams terminal session I/O over WebSocket. The handler
// polls the registry's Read on behalf of the connected client (the
// registry contract expects polling) and relays input and resize messages
// back to the session.
package ws
