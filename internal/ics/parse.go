package ics

import (
	"bytes"
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "weekcal/internal/log"
)

// ParsedEvent is one VEVENT before recurrence expansion.
type ParsedEvent struct {
	Source Source
	UID    string

	// Summary is nil when the VEVENT has no SUMMARY property.
	Summary *string

	Start  time.Time
	End    time.Time
	AllDay bool

	RawRRule   string
	ExDates    []time.Time
	Recurrence *time.Time // RECURRENCE-ID of an overridden instance
}

// IsOverride reports whether ev replaces one instance of a recurring
// event.
func (ev ParsedEvent) IsOverride() bool {
	return ev.Recurrence != nil
}

// ParseICS parses a feed body. VEVENTs that cannot be read are logged and
// skipped; only an unreadable calendar is an error.
func ParseICS(src Source, body []byte) ([]ParsedEvent, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	events := make([]ParsedEvent, 0)
	for _, comp := range cal.Events() {
		ev, perr := parseVEvent(src, comp)
		if perr != nil {
			appLog.Warn("ics vevent skipped", "id", src.ID, "err", perr)
			continue
		}
		events = append(events, ev)
	}

	appLog.Debug("ics parse completed", "id", src.ID, "event_count", len(events))
	return events, nil
}

func parseVEvent(src Source, ve *ical.VEvent) (ParsedEvent, error) {
	out := ParsedEvent{Source: src}

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uidProp.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		s := p.Value
		out.Summary = &s
	}

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return out, errors.New("missing DTSTART")
	}
	out.AllDay = isDateValue(dtStart)

	var err error
	if out.AllDay {
		if out.Start, err = ve.GetAllDayStartAt(); err != nil {
			return out, err
		}
	} else if out.Start, err = ve.GetStartAt(); err != nil {
		return out, err
	}

	// DTEND is optional: an all-day event then lasts one day and a timed
	// one is instantaneous.
	switch {
	case ve.GetProperty(ical.ComponentPropertyDtEnd) == nil && out.AllDay:
		out.End = out.Start.AddDate(0, 0, 1)
	case ve.GetProperty(ical.ComponentPropertyDtEnd) == nil:
		out.End = out.Start
	case out.AllDay:
		if out.End, err = ve.GetAllDayEndAt(); err != nil {
			return out, err
		}
	default:
		if out.End, err = ve.GetEndAt(); err != nil {
			return out, err
		}
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		out.RawRRule = p.Value
	}

	loc := out.Start.Location()
	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		exLoc := propertyLocation(p, loc)
		for _, part := range strings.Split(p.Value, ",") {
			if t, err := parseICSTime(part, exLoc); err == nil {
				out.ExDates = append(out.ExDates, t)
			}
		}
	}

	if p := ve.GetProperty("RECURRENCE-ID"); p != nil {
		if t, err := parseICSTime(p.Value, propertyLocation(p, loc)); err == nil {
			out.Recurrence = &t
		}
	}

	return out, nil
}

// isDateValue reports whether a DTSTART carries a date without a time.
func isDateValue(p *ical.IANAProperty) bool {
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

// propertyLocation resolves a TZID parameter, or returns def.
func propertyLocation(p *ical.IANAProperty, def *time.Location) *time.Location {
	if tzs, ok := p.ICalParameters["TZID"]; ok && len(tzs) > 0 {
		if loc, err := time.LoadLocation(tzs[0]); err == nil {
			return loc
		}
	}
	return def
}

// parseICSTime reads the basic DATE and DATE-TIME forms used by EXDATE
// and RECURRENCE-ID. Floating values are read in loc.
func parseICSTime(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	switch {
	case v == "":
		return time.Time{}, errors.New("empty time value")
	case strings.HasSuffix(v, "Z"):
		return time.Parse("20060102T150405Z", v)
	case strings.Contains(v, "T"):
		return time.ParseInLocation("20060102T150405", v, loc)
	default:
		return time.ParseInLocation("20060102", v, loc)
	}
}
