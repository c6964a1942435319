// Package server exposes image measurement over HTTP.
//
// The router is built on gin. Every response body is JSON.
//
// # Endpoints
//
//   - GET  /              liveness check with a fixed body
//   - GET  /health        configured analysis stages and OCR availability
//   - POST /predict-image multipart upload, returns size and mean brightness
//   - GET  /metrics       Prometheus exposition (when enabled)
//
// # Uploads
//
// /predict-image streams the multipart body and uses the part named "file".
// When no such part exists, the first part carrying a filename is used.
// The body is capped at the configured upload limit and larger requests are
// answered with 413.
//
// # Error Handling
//
// Client errors use a single shape:
//
//	{"status": "error", "detail": "<human readable message>"}
//
// Details never contain stack traces or internal paths. Panics in handlers are
// recovered, logged with zap and answered with 500 in the same shape.
//
// # Middleware
//
// Requests pass through recovery, request id assignment, access logging,
// metrics (when enabled) and CORS, in that order. The request id is taken
// from X-Request-ID when the client sends a usable one and generated
// otherwise. It is echoed in the response header.
//
// # Usage
//
//	srv := server.New(cfg, log, proc)
//	go srv.Run()
//	...
//	srv.Shutdown(ctx)
package server
