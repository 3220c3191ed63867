package database

import (
	"context"

	"github.com/deppfellow/erp-gateway/internal/record"
	"github.com/deppfellow/erp-gateway/internal/sqlerr"
)

// All runs sql and returns every row. Driver errors are normalized with
// sqlerr.Wrap.
func All(ctx context.Context, q Querier, sql string, args ...any) ([]*record.Row, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, sqlerr.Wrap(err)
	}

	result, err := record.All(rows)
	if err != nil {
		return nil, sqlerr.Wrap(err)
	}

	return result, nil
}

// One runs sql and returns its first row, or nil when there is none.
func One(ctx context.Context, q Querier, sql string, args ...any) (*record.Row, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, sqlerr.Wrap(err)
	}

	row, err := record.One(rows)
	if err != nil {
		return nil, sqlerr.Wrap(err)
	}

	return row, nil
}

// Table runs sql and returns the whole result set with its header.
func Table(ctx context.Context, q Querier, sql string, args ...any) (*record.Table, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, sqlerr.Wrap(err)
	}

	table, err := record.Collect(rows)
	if err != nil {
		return nil, sqlerr.Wrap(err)
	}

	return table, nil
}

// Scalar runs sql and returns the first column of its first row.
// ok is false when the query produced no row or no columns.
func Scalar(ctx context.Context, q Querier, sql string, args ...any) (value any, ok bool, err error) {
	row, err := One(ctx, q, sql, args...)
	if err != nil || row == nil || row.Len() == 0 {
		return nil, false, err
	}

	return row.Values()[0], true, nil
}
