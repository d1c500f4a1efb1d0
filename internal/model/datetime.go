package model

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

var (
	ErrInvalidDate  = errors.New("date has wrong format, use YYYY-MM-DD")
	ErrInvalidClock = errors.New("time has wrong format, use hh:mm")
)

// Date is a calendar day without time of day, stored in DATE columns.
type Date time.Time

func NewDate(year int, month time.Month, day int) Date {
	return Date(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date(t), nil
}

func (d Date) Time() time.Time { return time.Time(d) }
func (d Date) IsZero() bool    { return time.Time(d).IsZero() }
func (d Date) String() string  { return time.Time(d).Format(DateLayout) }

func (d Date) Equal(other Date) bool {
	return d.String() == other.String()
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		*d = Date{}
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return ErrInvalidDate
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
	case time.Time:
		*d = DateOf(v)
	case []byte:
		return d.scanString(string(v))
	case string:
		return d.scanString(v)
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
	return nil
}

func (d *Date) scanString(s string) error {
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// Clock is a time of day, stored in TIME columns.
type Clock time.Time

func NewClock(hour, minute int) Clock {
	return Clock(time.Date(0, 1, 1, hour, minute, 0, 0, time.UTC))
}

func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{ClockLayout, "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return NewClock(t.Hour(), t.Minute()), nil
		}
	}
	return Clock{}, ErrInvalidClock
}

func (c Clock) String() string { return time.Time(c).Format(ClockLayout) }

// Minutes since midnight.
func (c Clock) Minutes() int {
	t := time.Time(c)
	return t.Hour()*60 + t.Minute()
}

func (c Clock) After(other Clock) bool {
	return c.Minutes() > other.Minutes()
}

func (c Clock) MarshalJSON() ([]byte, error) {
	if time.Time(c).IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + c.String() + `"`), nil
}

func (c *Clock) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		*c = Clock{}
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return ErrInvalidClock
	}
	parsed, err := ParseClock(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c *Clock) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*c = Clock{}
	case time.Time:
		*c = NewClock(v.Hour(), v.Minute())
	case []byte:
		parsed, err := ParseClock(string(v))
		if err != nil {
			return err
		}
		*c = parsed
	case string:
		parsed, err := ParseClock(v)
		if err != nil {
			return err
		}
		*c = parsed
	default:
		return fmt.Errorf("cannot scan %T into Clock", src)
	}
	return nil
}

func (c Clock) Value() (driver.Value, error) {
	return time.Time(c).Format("15:04:05"), nil
}
