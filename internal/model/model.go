package model

import (
	"errors"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// RawEvent is a single event as returned by a calendar provider, after
// the provider has already expanded recurrences. Its JSON shape matches
// the Home Assistant calendar API:
//
//	{"summary": "...", "start": {"dateTime": "..."}, "end": {"date": "..."}}
type RawEvent struct {
	Summary *string   `json:"summary,omitempty"`
	Start   EventTime `json:"start"`
	End     EventTime `json:"end"`
}

// EventTime carries either a date-only value (all-day events) or a
// date-time value. When both are set DateTime wins.
type EventTime struct {
	Date     string `json:"date,omitempty"`
	DateTime string `json:"dateTime,omitempty"`
}

// DateOnly builds an EventTime holding just the calendar date of t.
func DateOnly(t time.Time) EventTime {
	return EventTime{Date: t.Format(dateLayout)}
}

// DateTimeOf builds an EventTime holding t as RFC 3339.
func DateTimeOf(t time.Time) EventTime {
	return EventTime{DateTime: t.Format(time.RFC3339)}
}

// Text returns a pointer to s, for building RawEvent summaries.
func Text(s string) *string {
	return &s
}

// Time resolves the value in loc. Date-only values become local
// midnight of that date; date-times carrying an offset are converted
// into loc, and those without one are read as loc wall-clock time.
func (t EventTime) Time(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	if v := strings.TrimSpace(t.DateTime); v != "" {
		if parsed, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return parsed.In(loc), nil
		}
		for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04", dateLayout} {
			if parsed, err := time.ParseInLocation(layout, v, loc); err == nil {
				return parsed, nil
			}
		}
		return time.Time{}, errors.New("unrecognized dateTime value: " + v)
	}
	if v := strings.TrimSpace(t.Date); v != "" {
		return time.ParseInLocation(dateLayout, v, loc)
	}
	return time.Time{}, errors.New("event time has neither date nor dateTime")
}
