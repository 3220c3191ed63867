package record

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// All reads every remaining row of rows and closes it.
//
// The result is never nil, so an empty result set encodes as [].
func All(rows pgx.Rows) ([]*Row, error) {
	defer rows.Close()

	columns, oids := describe(rows)
	result := make([]*Row, 0)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		result = append(result, NewRow(columns, normalize(values, oids)))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// One reads the first row of rows, discards the rest and closes it.
// It returns (nil, nil) for an empty result set.
func One(rows pgx.Rows) (*Row, error) {
	defer rows.Close()

	columns, oids := describe(rows)
	var row *Row
	if rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row = NewRow(columns, normalize(values, oids))
	}

	// Close drains the remaining rows so that Err reports failures that
	// happen after the first row.
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return row, nil
}

// Collect reads rows into a Table, keeping the header even when there are
// no rows.
func Collect(rows pgx.Rows) (*Table, error) {
	defer rows.Close()

	columns, oids := describe(rows)
	table := &Table{Columns: columns, Records: make([][]any, 0)}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		table.Records = append(table.Records, normalize(values, oids))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return table, nil
}

func describe(rows pgx.Rows) ([]string, []uint32) {
	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	oids := make([]uint32, len(fields))
	for i, field := range fields {
		columns[i] = field.Name
		oids[i] = field.DataTypeOID
	}
	return columns, oids
}

// normalize converts driver values whose default encoding is unhelpful
// for clients: dates lose their midnight clock and UUIDs become strings.
func normalize(values []any, oids []uint32) []any {
	for i, value := range values {
		switch v := value.(type) {
		case time.Time:
			if i < len(oids) && oids[i] == pgtype.DateOID {
				values[i] = NewDate(v)
			}
		case [16]byte:
			values[i] = uuid.UUID(v).String()
		}
	}
	return values
}
