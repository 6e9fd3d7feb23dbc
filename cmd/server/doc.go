// Command server runs the lovcode backend: a PTY session registry exposed
// over HTTP and WebSocket.
package main
