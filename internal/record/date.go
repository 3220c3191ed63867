package record

import (
	"time"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// TimestampLayout is how timestamps are rendered in exports.
const TimestampLayout = "2006-01-02 15:04:05"

// Date is a calendar date without a time of day.
//
// Values of SQL "date" columns are decoded into Date so they serialize as
// "2024-01-31" rather than as a midnight timestamp.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar date.
func NewDate(t time.Time) Date {
	year, month, day := t.Date()
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a yyyy-MM-dd string.
func ParseDate(value string) (Date, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}
