// Package databasetest provides in-memory stand-ins for database sessions.
//
// Tests script the rows a query returns and then inspect which queries
// ran and whether the session was committed and closed.
package databasetest

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// Column describes one result column.
type Column struct {
	Name string
	OID  uint32
}

// Text returns a text column.
func Text(name string) Column { return Column{Name: name, OID: pgtype.TextOID} }

// Int returns a bigint column.
func Int(name string) Column { return Column{Name: name, OID: pgtype.Int8OID} }

// Date returns a date column.
func Date(name string) Column { return Column{Name: name, OID: pgtype.DateOID} }

// Timestamp returns a timestamp column.
func Timestamp(name string) Column { return Column{Name: name, OID: pgtype.TimestampOID} }

// Rows is a scripted pgx.Rows.
type Rows struct {
	columns []Column
	data    [][]any
	pos     int
	closed  bool

	// FailAfter makes iteration fail with IterErr once that many rows were
	// read. Negative disables it.
	FailAfter int
	IterErr   error
	err       error
}

// NewRows returns rows with the given header and data.
func NewRows(columns []Column, data ...[]any) *Rows {
	return &Rows{columns: columns, data: data, FailAfter: -1}
}

func (r *Rows) Close() {
	r.closed = true
}

// Closed reports whether Close was called.
func (r *Rows) Closed() bool {
	return r.closed
}

func (r *Rows) Err() error {
	return r.err
}

func (r *Rows) CommandTag() pgconn.CommandTag {
	return pgconn.NewCommandTag(fmt.Sprintf("SELECT %d", len(r.data)))
}

func (r *Rows) FieldDescriptions() []pgconn.FieldDescription {
	fields := make([]pgconn.FieldDescription, len(r.columns))
	for i, column := range r.columns {
		fields[i] = pgconn.FieldDescription{Name: column.Name, DataTypeOID: column.OID}
	}
	return fields
}

func (r *Rows) Next() bool {
	if r.closed || r.err != nil {
		return false
	}
	if r.FailAfter >= 0 && r.pos >= r.FailAfter {
		r.err = r.IterErr
		r.closed = true
		return false
	}
	if r.pos >= len(r.data) {
		r.closed = true
		return false
	}
	r.pos++
	return true
}

func (r *Rows) Scan(dest ...any) error {
	return errors.New("databasetest: Scan is not supported, use Values")
}

func (r *Rows) Values() ([]any, error) {
	if r.pos == 0 || r.pos > len(r.data) {
		return nil, errors.New("databasetest: no current row")
	}
	current := r.data[r.pos-1]
	values := make([]any, len(current))
	copy(values, current)
	return values, nil
}

func (r *Rows) RawValues() [][]byte {
	return nil
}

func (r *Rows) Conn() *pgx.Conn {
	return nil
}
