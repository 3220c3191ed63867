package sqlerr

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/deppfellow/erp-gateway/internal/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// NotFoundMessage is returned whenever a query that must yield a record
// yields nothing.
const NotFoundMessage = "Записей не найдено"

// ErrCode reports the mapped sqlerr.Code for a given error.
//
// Behavior:
//   - If err can be unwrapped into *sqlerr.Error, return its Code.
//   - Otherwise return sqlerr.Other.
func ErrCode(err error) Code {
	var sqlErr *Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Code
	}
	return Other
}

// ConvertPgError converts a pgconn.PgError (raw server error) into our
// custom sqlerr.Error.
//
// The message keeps the whole driver rendering, e.g.
//
//	ERROR: deal 42 is already linked (SQLSTATE P0001)
//
// so the client sees exactly what the procedure raised.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Error(),
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

// generateErrorCode creates consistent machine codes from DB errors.
//
// Output format:
//
//	<DOMAIN>_<ACTION>
//
// Example:
//
//	repair_bitrix_deal_links + UniqueViolation => REPAIR_BITRIX_DEAL_LINK_ALREADY_EXISTS
//
// DOMAIN comes from the table name (crudely singularized), or DATABASE
// when the error is not tied to a table, as with procedure exceptions.
func generateErrorCode(tableName string, errType Code) string {
	if tableName == "" {
		tableName = "DATABASE"
	}

	domain := strings.ToUpper(tableName)
	if strings.HasSuffix(domain, "S") && len(domain) > 1 {
		domain = domain[:len(domain)-1]
	}

	action := "ERROR"
	switch errType {
	case ForeignKeyViolation:
		action = "NOT_FOUND"
	case UniqueViolation:
		action = "ALREADY_EXISTS"
	case NotNullViolation:
		action = "REQUIRED"
	case CheckViolation:
		action = "INVALID"
	case RaiseException:
		action = "REJECTED"
	case InsufficientPrivilege:
		action = "FORBIDDEN"
	case UndefinedFunction:
		action = "UNDEFINED"
	case ConnectionFailure:
		action = "UNAVAILABLE"
	case QueryCanceled:
		action = "CANCELED"
	}

	return fmt.Sprintf("%s_%s", domain, action)
}

// HandleError converts a low-level database error into an application-level error.
//
// Output:
//   - If already *errs.HTTPError: returned unchanged
//   - If a driver error (server error, connect failure, timeout, or anything
//     normalized by Wrap): 500 carrying the raw driver text
//   - If ErrNoRows: 404
//   - Otherwise: generic 500
//
// It is called once, by the global error handler, for every error a
// handler did not translate itself.
func HandleError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	if sqlErr := driverError(err); sqlErr != nil {
		return errs.NewDatabaseError(sqlErr.Message, generateErrorCode(sqlErr.TableName, sqlErr.Code))
	}

	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		return errs.NewNotFoundError(NotFoundMessage, false, nil)
	}

	return errs.NewInternalServerError()
}

// driverError extracts a normalized *Error from err, or nil if err did not
// come from the database driver.
func driverError(err error) *Error {
	var sqlErr *Error
	if errors.As(err, &sqlErr) {
		return sqlErr
	}

	var pgErr *pgconn.PgError
	var connectErr *pgconn.ConnectError
	if errors.As(err, &pgErr) || errors.As(err, &connectErr) || pgconn.Timeout(err) {
		var wrapped *Error
		errors.As(Wrap(err), &wrapped)
		return wrapped
	}

	return nil
}
