// Package calendar decides which dates are working days.
//
// A Calendar is built from an explicit holiday set and never consults global
// state, so the same holidays always yield the same answers.
package calendar

import "time"

const DateLayout = "2006-01-02"

type Calendar struct {
	holidays map[string]struct{}
}

// New builds a calendar that treats the given dates (time of day ignored) as holidays.
func New(holidays ...time.Time) Calendar {
	set := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		set[Truncate(h).Format(DateLayout)] = struct{}{}
	}
	return Calendar{holidays: set}
}

// IsHoliday reports whether date is in the holiday set.
func (c Calendar) IsHoliday(date time.Time) bool {
	_, ok := c.holidays[Truncate(date).Format(DateLayout)]
	return ok
}

// IsBusinessDay is false on weekends and holidays.
func (c Calendar) IsBusinessDay(date time.Time) bool {
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return !c.IsHoliday(date)
}

// CountBusinessDays counts business days in [start, end], both inclusive.
func (c Calendar) CountBusinessDays(start, end time.Time) int {
	start, end = Truncate(start), Truncate(end)
	count := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if c.IsBusinessDay(d) {
			count++
		}
	}
	return count
}

// NextBusinessDay returns the first business day strictly after date.
func (c Calendar) NextBusinessDay(date time.Time) time.Time {
	d := Truncate(date).AddDate(0, 0, 1)
	for !c.IsBusinessDay(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// RollForward keeps date when it is a business day, otherwise moves to the next one.
func (c Calendar) RollForward(date time.Time) time.Time {
	d := Truncate(date)
	if c.IsBusinessDay(d) {
		return d
	}
	return c.NextBusinessDay(d)
}

// Truncate drops the time of day and normalizes to UTC.
func Truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysInclusive is the number of calendar days in [start, end]; 0 when end < start.
func DaysInclusive(start, end time.Time) int {
	start, end = Truncate(start), Truncate(end)
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours()/24) + 1
}

// Overlaps reports whether [aStart, aEnd] and [bStart, bEnd] share at least one day.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !Truncate(aStart).After(Truncate(bEnd)) && !Truncate(aEnd).Before(Truncate(bStart))
}

// Intersect returns the common range of two date ranges.
func Intersect(aStart, aEnd, bStart, bEnd time.Time) (time.Time, time.Time, bool) {
	if !Overlaps(aStart, aEnd, bStart, bEnd) {
		return time.Time{}, time.Time{}, false
	}
	start, end := Truncate(aStart), Truncate(aEnd)
	if bs := Truncate(bStart); bs.After(start) {
		start = bs
	}
	if be := Truncate(bEnd); be.Before(end) {
		end = be
	}
	return start, end, true
}

// Contains reports whether date falls within [start, end].
func Contains(start, end, date time.Time) bool {
	d := Truncate(date)
	return !d.Before(Truncate(start)) && !d.After(Truncate(end))
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
