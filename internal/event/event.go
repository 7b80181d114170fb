// Package event turns raw provider events into per-day fragments and
// knows how to order and label them.
package event

import (
	"strings"
	"time"
)

// Class tokens attached to fragments.
const (
	ClassMultiDay = "multiday"
	ClassStart    = "start"
	ClassEnd      = "end"
	ClassFullDay  = "fullday"
	ClassPast     = "past"
	ClassOngoing  = "ongoing"
	ClassFuture   = "future"
	ClassNone     = "none"
)

// Event is one calendar day's slice of a provider event. A split event
// produces one Event per day it touches; all of them share OriginalStart
// and OriginalEnd. Events are never modified once built.
type Event struct {
	// Start and End are the fragment boundaries, clipped to one day
	// unless the event is full-day.
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	OriginalStart time.Time `json:"originalStart"`
	OriginalEnd   time.Time `json:"originalEnd"`

	Summary string `json:"summary"`
	// Untitled is set when the provider sent no summary at all.
	Untitled bool `json:"untitled,omitempty"`

	FullDay  bool `json:"fullDay"`
	MultiDay bool `json:"multiDay"`

	CalendarEntity  string `json:"calendar_entity"`
	CalendarSorting int    `json:"calendarSorting"`
	Color           string `json:"color"`
	Prefix          string `json:"prefix,omitempty"`

	Class string `json:"class"`
}

// Placeholder returns an empty fragment used only to hold a column open
// in the day grid.
func Placeholder() *Event {
	return &Event{Untitled: true, Class: ClassNone}
}

// IsPlaceholder reports whether e only reserves a column.
func (e *Event) IsPlaceholder() bool {
	return e == nil || e.Class == ClassNone
}

// IsStart reports whether e is the first fragment of its event.
func (e *Event) IsStart() bool {
	return e.Start.Equal(e.OriginalStart)
}

// IsEnd reports whether e is the last fragment of its event.
func (e *Event) IsEnd() bool {
	return e.End.Equal(e.OriginalEnd)
}

// HasClass reports whether token is one of e's class tokens.
func (e *Event) HasClass(token string) bool {
	for _, c := range strings.Fields(e.Class) {
		if c == token {
			return true
		}
	}
	return false
}

// eventClass builds the space separated class list for a fragment.
func eventClass(e *Event, now time.Time) string {
	classes := make([]string, 0, 4)
	if e.MultiDay {
		classes = append(classes, ClassMultiDay)
		if e.IsStart() {
			classes = append(classes, ClassStart)
		}
		if e.IsEnd() {
			classes = append(classes, ClassEnd)
		}
	}
	if e.FullDay {
		classes = append(classes, ClassFullDay)
	}
	switch {
	case e.End.Before(now):
		classes = append(classes, ClassPast)
	case !e.Start.After(now) && e.End.After(now):
		classes = append(classes, ClassOngoing)
	default:
		classes = append(classes, ClassFuture)
	}
	return strings.Join(classes, " ")
}
