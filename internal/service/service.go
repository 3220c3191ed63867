// Package service contains the business logic.
//
// It sits between the handler and repository layers. Handlers pass in the
// request's database session together with validated parameters; services
// call repositories on that session and turn empty or rejected results
// into HTTP errors.
package service

import (
	"github.com/deppfellow/erp-gateway/internal/errs"
	"github.com/deppfellow/erp-gateway/internal/record"
	"github.com/deppfellow/erp-gateway/internal/sqlerr"
)

// requireRow turns a missing single-row result into a 404.
func requireRow(row *record.Row, err error) (*record.Row, error) {
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, errs.NewNotFoundError(sqlerr.NotFoundMessage, false, nil)
	}
	return row, nil
}

// resultID reads a procedure's result as an integer id. ok is false when
// the procedure produced no row, a NULL or zero.
func resultID(value any, found bool) (int64, bool) {
	if !found {
		return 0, false
	}
	id, ok := record.Int64(value)
	if !ok || id == 0 {
		return 0, false
	}
	return id, true
}
