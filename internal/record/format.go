package record

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"time"
)

// Strings renders every value of the row for a text export.
func (r *Row) Strings() []string {
	return Strings(r.values)
}

// Strings renders values for a text export, keeping their positions.
func Strings(values []any) []string {
	fields := make([]string, len(values))
	for i, value := range values {
		fields[i] = FormatValue(value)
	}
	return fields
}

// FormatValue renders a single value as export text.
//
//   - NULL is the empty string
//   - dates are yyyy-MM-dd, timestamps yyyy-MM-dd HH:mm:ss
//   - driver valuers (numerics and friends) use their driver value
func FormatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case bool:
		return strconv.FormatBool(v)
	case Date:
		return v.String()
	case time.Time:
		return v.Format(TimestampLayout)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case driver.Valuer:
		inner, err := v.Value()
		if err != nil {
			return ""
		}
		return FormatValue(inner)
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(value)
}

// Int64 converts an integer-like value to int64.
//
// Values coming from different queries may use different integer widths
// for the same logical key, so comparisons go through Int64.
func Int64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		if v > 1<<63-1 {
			return 0, false
		}
		return int64(v), true
	case float64:
		if v == float64(int64(v)) {
			return int64(v), true
		}
	case driver.Valuer:
		inner, err := v.Value()
		if err != nil {
			return 0, false
		}
		switch inner := inner.(type) {
		case int64:
			return inner, true
		case string:
			n, err := strconv.ParseInt(inner, 10, 64)
			return n, err == nil
		}
	}
	return 0, false
}
