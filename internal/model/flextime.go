package model

import (
	"bytes"
	"fmt"
	"time"
)

// FlexTime accepts either an RFC 3339 timestamp or a bare YYYY-MM-DD date in JSON bodies.
// DateOnly marks the bare form, whose Time is midnight UTC until anchored to a zone.
type FlexTime struct {
	time.Time
	DateOnly bool
}

var flexLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", DateLayout}

// DateLayout is the date-only format used in query strings and reports
const DateLayout = "2006-01-02"

func (f *FlexTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("date must be a string")
	}
	raw := string(data[1 : len(data)-1])
	t, err := ParseFlexTime(raw)
	if err != nil {
		return err
	}
	f.Time = t
	f.DateOnly = len(raw) == len(DateLayout)
	return nil
}

// Anchor returns the instant f names in loc: date-only values become midnight of that day in loc.
func (f FlexTime) Anchor(loc *time.Location) time.Time {
	if !f.DateOnly {
		return f.Time
	}
	return time.Date(f.Year(), f.Month(), f.Day(), 0, 0, 0, 0, loc)
}

// ParseFlexTime parses s with the supported layouts, date-only values resolve to UTC midnight.
func ParseFlexTime(s string) (time.Time, error) {
	for _, layout := range flexLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD or RFC 3339", s)
}
