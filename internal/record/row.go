// Package record turns arbitrary query results into ordered name/value rows.
//
// The gateway never declares result structs: every endpoint returns
// whatever columns its query selects. A Row remembers the column order so
// JSON objects and CSV headers come out exactly as the query declared them.
package record

import (
	"bytes"
	"encoding/json"
)

// Row is one result record: an ordered mapping of column name to value.
type Row struct {
	columns []string
	values  []any
}

// NewRow builds a Row from parallel column and value slices.
// Extra values without a column are dropped.
func NewRow(columns []string, values []any) *Row {
	row := &Row{
		columns: make([]string, 0, len(columns)),
		values:  make([]any, 0, len(columns)),
	}
	for i, column := range columns {
		var value any
		if i < len(values) {
			value = values[i]
		}
		row.Set(column, value)
	}
	return row
}

// Columns returns the column names in order.
func (r *Row) Columns() []string {
	return r.columns
}

// Values returns the values in column order.
func (r *Row) Values() []any {
	return r.values
}

// Len returns the number of columns.
func (r *Row) Len() int {
	return len(r.columns)
}

// Get returns the value stored under column and whether the column exists.
// A present column holding NULL returns (nil, true).
func (r *Row) Get(column string) (any, bool) {
	for i, name := range r.columns {
		if name == column {
			return r.values[i], true
		}
	}
	return nil, false
}

// Set stores value under column, replacing an existing value in place or
// appending a new column at the end.
func (r *Row) Set(column string, value any) {
	for i, name := range r.columns {
		if name == column {
			r.values[i] = value
			return
		}
	}
	r.columns = append(r.columns, column)
	r.values = append(r.values, value)
}

// MarshalJSON encodes the row as a JSON object with keys in column order.
func (r *Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, column := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(column)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		value, err := json.Marshal(r.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Table is a full result set with its header, used for exports.
//
// Records are positional, one value per header column, so a result that
// repeats a column name keeps every value. Only the JSON mapping of a Row
// merges duplicate names.
type Table struct {
	Columns []string
	Records [][]any
}
