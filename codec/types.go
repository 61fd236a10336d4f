package codec

import (
	"fmt"
	"time"
)

// Formats for the extension type string forms.
const (
	dateFormat     = "2006-01-02"
	timeFormat     = "15:04:05"
	datetimeFormat = dateFormat + "T" + timeFormat + ".000000+00:00"
)

// A Date is a calendar date without a time of day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate creates a date.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// DateOf returns the date of a point in time in UTC.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return Date{Year: y, Month: m, Day: d}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func parseDate(s string) (Date, error) {
	t, err := time.Parse(dateFormat, s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// A TimeOfDay is a wall clock time with second precision.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// NewTimeOfDay creates a time of day.
func NewTimeOfDay(hour, minute, second int) TimeOfDay {
	return TimeOfDay{Hour: hour, Minute: minute, Second: second}
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

func parseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse(timeFormat, s)
	if err != nil {
		return TimeOfDay{}, err
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
}
