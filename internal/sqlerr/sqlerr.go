// Package sqlerr handles database driver errors.
//
// It classifies errors coming out of pgx (SQLSTATE codes, connection
// failures, timeouts) and turns them into errs.HTTPError values. The
// gateway forwards the driver's own text to the client, because stored
// procedure exceptions carry messages meant for ERP operators.
package sqlerr

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Code is a coarse category of a database error.
type Code string

const (
	Other                 Code = "other"
	NotNullViolation      Code = "not_null_violation"
	ForeignKeyViolation   Code = "foreign_key_violation"
	UniqueViolation       Code = "unique_violation"
	CheckViolation        Code = "check_violation"
	RaiseException        Code = "raise_exception"
	InsufficientPrivilege Code = "insufficient_privilege"
	InvalidAuthorization  Code = "invalid_authorization"
	UndefinedFunction     Code = "undefined_function"
	ConnectionFailure     Code = "connection_failure"
	QueryCanceled         Code = "query_canceled"
)

// MapCode maps a SQLSTATE to a Code.
func MapCode(sqlState string) Code {
	switch sqlState {
	case "23502":
		return NotNullViolation
	case "23503":
		return ForeignKeyViolation
	case "23505":
		return UniqueViolation
	case "23514":
		return CheckViolation
	case "P0001":
		return RaiseException
	case "42501":
		return InsufficientPrivilege
	case "28000", "28P01":
		return InvalidAuthorization
	case "42883":
		return UndefinedFunction
	case "57014":
		return QueryCanceled
	}

	// Class 08 is "connection exception".
	if len(sqlState) == 5 && sqlState[:2] == "08" {
		return ConnectionFailure
	}

	return Other
}

// Severity mirrors the severity field of a server error.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityFatal   Severity = "FATAL"
	SeverityPanic   Severity = "PANIC"
	SeverityWarning Severity = "WARNING"
	SeverityNotice  Severity = "NOTICE"
	SeverityDebug   Severity = "DEBUG"
	SeverityInfo    Severity = "INFO"
	SeverityLog     Severity = "LOG"
)

// MapSeverity maps the raw severity string to a Severity, defaulting to
// SeverityError for anything unknown.
func MapSeverity(severity string) Severity {
	switch Severity(severity) {
	case SeverityFatal, SeverityPanic, SeverityWarning, SeverityNotice,
		SeverityDebug, SeverityInfo, SeverityLog:
		return Severity(severity)
	}
	return SeverityError
}

// Error is a normalized database error.
//
// Message holds the full driver text (for a server error that is
// "ERROR: <message> (SQLSTATE <code>)"), which is what the client receives.
type Error struct {
	Code           Code
	Severity       Severity
	DatabaseCode   string
	Message        string
	SchemaName     string
	TableName      string
	ColumnName     string
	DataTypeName   string
	ConstraintName string
	driverErr      error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the original driver error.
func (e *Error) Unwrap() error {
	return e.driverErr
}

// Wrap normalizes any error returned by the driver into an *Error.
//
// nil stays nil and errors that are already normalized are returned as-is.
// Server errors keep their SQLSTATE metadata; everything else (network,
// timeouts, cancellation) becomes Code Other, or ConnectionFailure for
// connect errors, with the driver's text as the message.
func Wrap(err error) error {
	if err == nil {
		return nil
	}

	var sqlErr *Error
	if errors.As(err, &sqlErr) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		converted := ConvertPgError(pgErr)
		converted.driverErr = err
		return converted
	}

	code := Other
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		code = ConnectionFailure
	}

	return &Error{
		Code:      code,
		Severity:  SeverityError,
		Message:   err.Error(),
		driverErr: err,
	}
}
