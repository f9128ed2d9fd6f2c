// Package http contains the HTTP handlers for the delivery analysis API.
// Handlers translate multipart uploads and form parameters into service
// calls and render results as JSON, with failures reported as RFC 7807
// problem documents.
package http
