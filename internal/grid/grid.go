// Package grid lays fragments out into the per-day, per-column model a
// renderer draws without further logic.
package grid

import (
	"strings"
	"time"

	"weekcal/internal/config"
	"weekcal/internal/event"
	appLog "weekcal/internal/log"
	"weekcal/internal/model"
)

const dateKeyLayout = "2006-01-02"

// Day is one cell of the grid. Events is ordered by column and may
// contain placeholders.
type Day struct {
	Date   time.Time      `json:"date"`
	Events []*event.Event `json:"events"`
	Class  string         `json:"class"`
}

// Index groups fragments by the calendar date of their start.
type Index map[string][]*event.Event

// DateKey is the Index key for t.
func DateKey(t time.Time) string {
	return t.Format(dateKeyLayout)
}

func (ix Index) Add(events ...*event.Event) {
	for _, e := range events {
		k := DateKey(e.Start)
		ix[k] = append(ix[k], e)
	}
}

// ComputeGrid builds the fragments of every calendar in cfg from raw and
// synthesizes the grid for the window around now. raw is keyed by
// calendar entity. Events whose dates cannot be parsed are logged and
// skipped.
func ComputeGrid(cfg *config.Config, raw map[string][]model.RawEvent, now time.Time, loc *time.Location) []Day {
	if loc != nil {
		now = now.In(loc)
	}
	ix := Index{}
	for _, cal := range cfg.Calendars {
		for _, r := range raw[cal.Entity] {
			events, err := event.Build(cfg, cal, r, now, loc)
			if err != nil {
				appLog.Warn("skipping malformed event", "calendar", cal.Entity, "err", err)
				continue
			}
			ix.Add(events...)
		}
	}
	return Synthesize(cfg, ix, now)
}

// Synthesize walks the configured window in order. Each day's fragments
// are sorted and then aligned against the previous day, so a multi-day
// event keeps its column until it ends or a new week row begins.
func Synthesize(cfg *config.Config, ix Index, now time.Time) []Day {
	cmp := event.NewComparator(cfg.Locale)
	dates := cfg.Days(now)
	days := make([]Day, 0, len(dates))

	var yesterday []*event.Event
	for _, date := range dates {
		today := append([]*event.Event(nil), ix[DateKey(date)]...)
		cmp.Sort(today)

		if !cfg.IsStartOfWeek(date) {
			today = align(today, yesterday)
		}
		if today == nil {
			today = []*event.Event{}
		}

		days = append(days, Day{
			Date:   date,
			Events: today,
			Class:  DayClass(date, now),
		})
		yesterday = today
	}
	return days
}

// align moves every multi-day fragment of today into the column its
// event held yesterday, padding with placeholders when that column is
// past the end of today's list.
//
// When a swap brings a later fragment forward into position i, the cursor
// stays on i so the incoming fragment is aligned too. A column is claimed
// at most once per day, which keeps duplicate titles from trading places
// forever.
func align(today, yesterday []*event.Event) []*event.Event {
	claimed := make(map[int]bool)
	for i := 0; i < len(today); {
		e := today[i]
		if e.IsPlaceholder() || !e.MultiDay {
			i++
			continue
		}
		j := columnOf(yesterday, e)
		if j < 0 || j == i || claimed[j] {
			i++
			continue
		}

		for len(today) <= j {
			today = append(today, event.Placeholder())
		}
		today[i], today[j] = today[j], today[i]
		claimed[j] = true

		if j < i {
			i++
		}
	}
	return today
}

func columnOf(yesterday []*event.Event, e *event.Event) int {
	for j, y := range yesterday {
		if y.IsPlaceholder() {
			continue
		}
		if y.Untitled == e.Untitled && y.Summary == e.Summary {
			return j
		}
	}
	return -1
}

var weekdayTokens = [...]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// DayClass returns the relative-day class of date followed by its weekday
// name, e.g. "tomorrow future wednesday".
func DayClass(date, now time.Time) string {
	var classes []string
	switch {
	case config.SameDay(date, now):
		classes = append(classes, "today")
	case config.SameDay(date, now.AddDate(0, 0, 1)):
		classes = append(classes, "tomorrow", "future")
	case config.SameDay(date, now.AddDate(0, 0, -1)):
		classes = append(classes, "yesterday", "past")
	case date.After(now):
		classes = append(classes, "future")
	default:
		classes = append(classes, "past")
	}
	classes = append(classes, weekdayTokens[date.Weekday()])
	return strings.Join(classes, " ")
}
