// Package errs defines the HTTP error shapes returned by the gateway.
//
// Every failure leaves the API as an HTTPError serialized to JSON, so
// ERP clients always parse the same structure: a status, a machine code,
// a message and optional per-field details for rejected parameters.
package errs
