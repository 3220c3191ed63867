package validation

import (
	"strconv"
	"time"

	"github.com/deppfellow/erp-gateway/internal/record"
	"github.com/pkg/errors"
)

// OptionalInt is an integer query parameter that may be absent.
//
// echo only calls UnmarshalParam when the parameter is present, so Set
// distinguishes "not sent" from "sent as 0".
type OptionalInt struct {
	Value int64
	Set   bool
}

// UnmarshalParam implements echo.BindUnmarshaler.
func (p *OptionalInt) UnmarshalParam(src string) error {
	value, err := strconv.ParseInt(src, 10, 64)
	if err != nil {
		return err
	}
	p.Value = value
	p.Set = true
	return nil
}

// Arg returns the value as a query argument: nil (SQL NULL) when absent.
func (p OptionalInt) Arg() any {
	if !p.Set {
		return nil
	}
	return p.Value
}

// OptionalString is a text query parameter that may be absent.
// An empty value that was sent counts as set.
type OptionalString struct {
	Value string
	Set   bool
}

// UnmarshalParam implements echo.BindUnmarshaler.
func (p *OptionalString) UnmarshalParam(src string) error {
	p.Value = src
	p.Set = true
	return nil
}

// Arg returns the value as a query argument: nil (SQL NULL) when absent.
func (p OptionalString) Arg() any {
	if !p.Set {
		return nil
	}
	return p.Value
}

// Date is a yyyy-MM-dd query parameter.
type Date struct {
	record.Date
	Set bool
}

// UnmarshalParam implements echo.BindUnmarshaler. A malformed value fails
// with a *time.ParseError.
func (p *Date) UnmarshalParam(src string) error {
	date, err := record.ParseDate(src)
	if err != nil {
		return err
	}
	p.Date = date
	p.Set = true
	return nil
}

// Arg returns the date as a query argument: nil when absent.
func (p Date) Arg() any {
	if !p.Set {
		return nil
	}
	return p.Time
}

// parseFailure describes a value echo could not convert.
type parseFailure struct {
	value   string
	message string
}

func parseFailureOf(err error) (parseFailure, bool) {
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		message := "must be a valid integer"
		if numErr.Err == strconv.ErrRange {
			message = "is out of range"
		}
		return parseFailure{value: numErr.Num, message: message}, true
	}

	var timeErr *time.ParseError
	if errors.As(err, &timeErr) {
		return parseFailure{value: timeErr.Value, message: "must be a date in yyyy-MM-dd format"}, true
	}

	return parseFailure{}, false
}
