// Package provider fetches raw events for one calendar and time range
// from Home Assistant or an ICS feed.
package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"weekcal/internal/config"
	"weekcal/internal/model"
)

// Fetcher returns the raw events of cal overlapping [start, end).
// Recurrences are already expanded.
type Fetcher interface {
	FetchEvents(ctx context.Context, cal *config.CalendarConfig, start, end time.Time) ([]model.RawEvent, error)
}

// FetchError reports a failed fetch for one calendar.
type FetchError struct {
	Calendar string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("Error while fetching calendar %s: %s", e.Calendar, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ErrNoProvider is returned by a Router with no fetcher for a calendar.
var ErrNoProvider = errors.New("no provider configured")

// Router sends calendars with a URL to the ICS fetcher and all others to
// Home Assistant. Errors come back as *FetchError.
type Router struct {
	HomeAssistant Fetcher
	ICS           Fetcher
}

func (r *Router) FetchEvents(ctx context.Context, cal *config.CalendarConfig, start, end time.Time) ([]model.RawEvent, error) {
	f := r.HomeAssistant
	if cal.URL != "" {
		f = r.ICS
	}
	if f == nil {
		return nil, &FetchError{Calendar: cal.Entity, Err: ErrNoProvider}
	}

	events, err := f.FetchEvents(ctx, cal, start, end)
	if err != nil {
		var fe *FetchError
		if errors.As(err, &fe) {
			return nil, err
		}
		return nil, &FetchError{Calendar: cal.Entity, Err: err}
	}
	return events, nil
}
