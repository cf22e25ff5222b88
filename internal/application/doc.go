// Package application wires the echo handler, its middleware chain and the
// HTTP server together, keeping the main package focused on CLI parsing and
// orchestration.
package application
