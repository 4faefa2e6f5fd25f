package archival

import (
	"errors"
	"fmt"
	"time"
)

const (
	// TimestampLength is the width of the YYYYMMDDHHMMSS segment in a capture URL.
	TimestampLength = 14

	// The Wayback Machine holds no captures older than 1996.
	minYear = 1996
	maxYear = 9999
)

var errTimestampShape = errors.New("timestamp must be 14 digits")

// Date is a naive calendar date. It carries no time of day and no location.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate returns the date without checking that it exists.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// DateOf drops the time of day of t, keeping t's own calendar fields.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func (d Date) IsZero() bool {
	return d == Date{}
}

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDate reads a YYYY-MM-DD date with the same range checks as ParseTimestamp.
func ParseDate(s string) (Date, error) {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return Date{}, fmt.Errorf("date %q is not in YYYY-MM-DD form", s)
	}
	return ParseTimestamp(s[0:4] + s[5:7] + s[8:10] + "000000")
}

// ParseTimestamp parses a fixed-width YYYYMMDDHHMMSS archive timestamp into the
// calendar date it names. The time-of-day digits are discarded unchecked; an
// out-of-range year, month or day is rejected instead of being rolled over.
func ParseTimestamp(ts string) (Date, error) {
	if len(ts) != TimestampLength {
		return Date{}, errTimestampShape
	}
	for i := 0; i < len(ts); i++ {
		if ts[i] < '0' || ts[i] > '9' {
			return Date{}, errTimestampShape
		}
	}

	year := digits(ts[0:4])
	month := digits(ts[4:6])
	day := digits(ts[6:8])

	if year < minYear || year > maxYear {
		return Date{}, fmt.Errorf("year %d outside %d-%d", year, minYear, maxYear)
	}
	if month < 1 || month > 12 {
		return Date{}, fmt.Errorf("month %d out of range", month)
	}
	if n := DaysIn(year, time.Month(month)); day < 1 || day > n {
		return Date{}, fmt.Errorf("day %d out of range for %04d-%02d", day, year, month)
	}

	return Date{Year: year, Month: time.Month(month), Day: day}, nil
}

// DaysIn reports the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	// Day 0 of the next month normalises to the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// LastSaturday returns the final Saturday of the month.
func LastSaturday(year int, month time.Month) Date {
	t := time.Date(year, month, DaysIn(year, month), 0, 0, 0, 0, time.UTC)
	for t.Weekday() != time.Saturday {
		t = t.AddDate(0, 0, -1)
	}
	return DateOf(t)
}

// IsLastSaturday reports whether d is the last Saturday of its own month.
func IsLastSaturday(d Date) bool {
	return LastSaturday(d.Year, d.Month) == d
}

func digits(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		n = n*10 + int(s[i]-'0')
	}
	return n
}
