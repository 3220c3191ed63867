// Package validation binds request parameters and validates them.
//
// Path, query and body values are bound with echo, checked with
// `validator` struct tags or hand-written rules, and every failure is
// reported as a 422 with one entry per offending parameter.
package validation
