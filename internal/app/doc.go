// Package app assembles the delivery analysis web service: it loads
// configuration, initializes structured logging, wires the service layer
// onto a chi router with the full middleware chain, and manages the HTTP
// server lifecycle including graceful shutdown.
package app
