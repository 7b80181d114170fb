package ics

import (
	"errors"
	"maps"
	"slices"
	"time"

	"github.com/teambition/rrule-go"

	appLog "weekcal/internal/log"
	"weekcal/internal/model"
)

const defaultMaxOccurrencesPerEvent = 5000

// ExpandConfig bounds recurrence expansion.
type ExpandConfig struct {
	// Occurrences overlapping [RangeStart, RangeEnd) are kept.
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxOccurrencesPerEvent caps runaway rules. Zero means the default.
	MaxOccurrencesPerEvent int
}

// ExpandResult holds the expanded events in start order.
type ExpandResult struct {
	Events []model.RawEvent
	// TruncatedUIDs lists events that hit MaxOccurrencesPerEvent.
	TruncatedUIDs []string
}

// Expand turns parsed VEVENTs into concrete raw events within the range,
// applying RRULE, EXDATE and RECURRENCE-ID overrides. All-day
// occurrences are emitted as dates, timed ones as date-times.
func Expand(events []ParsedEvent, cfg ExpandConfig) (ExpandResult, error) {
	var result ExpandResult

	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return result, errors.New("expand: RangeEnd is before RangeStart")
	}
	if cfg.MaxOccurrencesPerEvent <= 0 {
		cfg.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}

	baseByUID := make(map[string][]ParsedEvent)
	overridesByUID := make(map[string][]ParsedEvent)
	for _, ev := range events {
		if ev.IsOverride() {
			overridesByUID[ev.UID] = append(overridesByUID[ev.UID], ev)
		} else {
			baseByUID[ev.UID] = append(baseByUID[ev.UID], ev)
		}
	}

	var occurrences []occurrence
	for _, uid := range slices.Sorted(maps.Keys(baseByUID)) {
		truncated := false
		for _, ev := range baseByUID[uid] {
			occ, hitCap := expandEvent(ev, overridesByUID[uid], cfg)
			truncated = truncated || hitCap
			occurrences = append(occurrences, occ...)
		}
		if truncated {
			result.TruncatedUIDs = append(result.TruncatedUIDs, uid)
			appLog.Warn("expand: occurrences truncated", "uid", uid, "cap", cfg.MaxOccurrencesPerEvent)
		}
	}

	slices.SortStableFunc(occurrences, func(a, b occurrence) int {
		return a.start.Compare(b.start)
	})
	result.Events = make([]model.RawEvent, 0, len(occurrences))
	for _, o := range occurrences {
		result.Events = append(result.Events, o.raw())
	}
	return result, nil
}

// occurrence is one concrete instance of a ParsedEvent.
type occurrence struct {
	ev         ParsedEvent
	start, end time.Time
}

func (o occurrence) raw() model.RawEvent {
	if o.ev.AllDay {
		return model.RawEvent{Summary: o.ev.Summary, Start: model.DateOnly(o.start), End: model.DateOnly(o.end)}
	}
	return model.RawEvent{Summary: o.ev.Summary, Start: model.DateTimeOf(o.start), End: model.DateTimeOf(o.end)}
}

func expandEvent(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) ([]occurrence, bool) {
	if ev.RawRRule == "" {
		return expandSingleEvent(ev, overrides, cfg), false
	}
	return expandRecurringEvent(ev, overrides, cfg)
}

func expandSingleEvent(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) []occurrence {
	occ := occurrence{ev: ev, start: ev.Start, end: ev.End}
	if o, ok := findOverrideForStart(overrides, ev.Start); ok {
		occ = occurrence{ev: o, start: o.Start, end: o.End}
	}
	if !overlaps(occ.start, occ.end, cfg.RangeStart, cfg.RangeEnd) {
		return nil
	}
	return []occurrence{occ}
}

func expandRecurringEvent(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) ([]occurrence, bool) {
	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		appLog.Error("expand: failed to parse RRULE", err, "uid", ev.UID, "rrule", ev.RawRRule)
		return nil, false
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	// Instances that started before the range but are still running
	// overlap it too.
	dur := ev.End.Sub(ev.Start)
	loc := ev.Start.Location()
	starts := set.Between(cfg.RangeStart.Add(-dur).In(loc), cfg.RangeEnd.In(loc), true)

	hitCap := false
	if len(starts) > cfg.MaxOccurrencesPerEvent {
		starts = starts[:cfg.MaxOccurrencesPerEvent]
		hitCap = true
	}

	out := make([]occurrence, 0, len(starts))
	for _, start := range starts {
		occ := occurrence{ev: ev, start: start, end: start.Add(dur)}
		if ev.AllDay {
			date := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
			occ.start = date
			occ.end = date.AddDate(0, 0, allDaySpan(ev))
		}
		if o, ok := findOverrideForStart(overrides, start); ok {
			occ = occurrence{ev: o, start: o.Start, end: o.End}
		}
		if overlaps(occ.start, occ.end, cfg.RangeStart, cfg.RangeEnd) {
			out = append(out, occ)
		}
	}
	return out, hitCap
}

// allDaySpan is the number of days an all-day event covers, at least one.
func allDaySpan(ev ParsedEvent) int {
	days := int(ev.End.Sub(ev.Start).Round(24*time.Hour) / (24 * time.Hour))
	return max(days, 1)
}

// findOverrideForStart finds the override whose RECURRENCE-ID is start.
func findOverrideForStart(overrides []ParsedEvent, start time.Time) (ParsedEvent, bool) {
	for _, ov := range overrides {
		if ov.Recurrence != nil && ov.Recurrence.Equal(start) {
			return ov, true
		}
	}
	return ParsedEvent{}, false
}

// overlaps treats instantaneous events at the range start as inside.
func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	if !aStart.Before(bEnd) {
		return false
	}
	return aEnd.After(bStart) || aStart.Equal(bStart)
}
