// Package middleware stores global and route-specific middleware.
//
// These intercept requests to handle cross-cutting concerns such as Basic
// credential extraction, request ids, request logging, metrics, tracing,
// CORS and panic recovery.
package middleware
