package event

import (
	"fmt"
	"time"

	"weekcal/internal/config"
	"weekcal/internal/model"
)

// Build converts one raw provider event into its per-day fragments.
//
//   - Events whose summary matches the global or the calendar filter are
//     dropped.
//   - With HidePastEvents, events that ended strictly before now are
//     dropped; ongoing ones are kept.
//   - Timed events crossing midnight are split at every local midnight,
//     so each fragment lies within one day.
//
// Times are resolved in loc. An error is returned only when the raw
// start or end cannot be parsed.
func Build(cfg *config.Config, cal *config.CalendarConfig, raw model.RawEvent, now time.Time, loc *time.Location) ([]*Event, error) {
	summary := ""
	if raw.Summary != nil {
		summary = *raw.Summary
	}
	if cfg.ShouldFilterOut(summary) || cal.ShouldFilterOut(summary) {
		return nil, nil
	}

	start, err := raw.Start.Time(loc)
	if err != nil {
		return nil, fmt.Errorf("event %q start: %w", summary, err)
	}
	end, err := raw.End.Time(loc)
	if err != nil {
		return nil, fmt.Errorf("event %q end: %w", summary, err)
	}

	if cfg.HidePastEvents && end.Before(now) {
		return nil, nil
	}

	b := fragmentBuilder{
		raw:           raw,
		cal:           cal,
		now:           now,
		originalStart: start,
		originalEnd:   end,
	}

	if isFullDay(start, end, false) || config.SameDay(start, end) {
		return []*Event{b.fragment(start, end)}, nil
	}

	var out []*Event
	for cur := start; cur.Before(end); {
		next := nextMidnight(cur)
		fragEnd := end
		if next.Before(end) {
			fragEnd = next
		}
		out = append(out, b.fragment(cur, fragEnd))
		cur = next
	}
	return out, nil
}

type fragmentBuilder struct {
	raw           model.RawEvent
	cal           *config.CalendarConfig
	now           time.Time
	originalStart time.Time
	originalEnd   time.Time
}

func (b fragmentBuilder) fragment(start, end time.Time) *Event {
	e := &Event{
		Start:           start,
		End:             end,
		OriginalStart:   b.originalStart,
		OriginalEnd:     b.originalEnd,
		CalendarEntity:  b.cal.Entity,
		CalendarSorting: b.cal.Sorting,
		Color:           b.cal.Color,
	}
	if b.raw.Summary != nil {
		e.Summary = *b.raw.Summary
	} else {
		e.Untitled = true
	}

	e.FullDay = isFullDay(b.originalStart, b.originalEnd, false)
	e.MultiDay = !e.FullDay && !config.SameDay(b.originalStart, b.originalEnd)

	if p, ok := b.cal.Prefix.Resolve(e.Summary); ok {
		e.Prefix = p
	}
	e.Class = eventClass(e, b.now)
	return e
}

// isFullDay reports whether [start, end) has no time-of-day component and
// covers exactly one calendar day. multiDay lifts the one-day limit.
func isFullDay(start, end time.Time, multiDay bool) bool {
	if start.IsZero() || end.IsZero() || !isMidnight(start) || !isMidnight(end) {
		return false
	}
	return multiDay || end.Equal(start.AddDate(0, 0, 1))
}

func isMidnight(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0
}

func nextMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
}
