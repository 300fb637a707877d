package service

import "time"

// Clock anchors calendar windows (today, this week, this month) in one time zone.
type Clock struct {
	now func() time.Time
	loc *time.Location
}

// NewClock returns a clock reading now in loc; nil arguments fall back to time.Now and UTC.
func NewClock(now func() time.Time, loc *time.Location) *Clock {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Clock{now: now, loc: loc}
}

func (c *Clock) Now() time.Time {
	return c.now().In(c.loc)
}

func (c *Clock) Location() *time.Location {
	return c.loc
}

// Midnight returns 00:00 of the current day.
func (c *Clock) Midnight() time.Time {
	n := c.Now()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, c.loc)
}

// PeriodStarts returns the start of today, of the week (Monday) and of the month.
func (c *Clock) PeriodStarts() (today, week, month time.Time) {
	today = c.Midnight()
	offset := (int(today.Weekday()) + 6) % 7 // days since Monday
	week = today.AddDate(0, 0, -offset)
	month = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, c.loc)
	return today, week, month
}

// DayBounds widens date-only filter values to whole days in the clock's zone:
// start becomes 00:00 of its day and end becomes the last instant of its day.
func (c *Clock) DayBounds(start, end *time.Time) (*time.Time, *time.Time) {
	if start != nil && isDateOnly(*start) {
		s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, c.loc)
		start = &s
	}
	if end != nil && isDateOnly(*end) {
		e := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 999999999, c.loc)
		end = &e
	}
	return start, end
}

func isDateOnly(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
}
