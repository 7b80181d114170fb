package provider

import (
	"context"
	"fmt"
	"time"

	"weekcal/internal/config"
	"weekcal/internal/ics"
	appLog "weekcal/internal/log"
	"weekcal/internal/model"
)

// ICS serves calendars configured with a feed URL.
type ICS struct {
	fetcher *ics.Fetcher
}

func NewICS(cacheDir string) *ICS {
	return &ICS{fetcher: ics.NewFetcher(cacheDir)}
}

func (p *ICS) FetchEvents(ctx context.Context, cal *config.CalendarConfig, start, end time.Time) ([]model.RawEvent, error) {
	src := ics.Source{ID: cal.Entity, URL: cal.URL}

	res, err := p.fetcher.Fetch(ctx, src)
	if err != nil {
		return nil, err
	}
	parsed, err := ics.ParseICS(src, res.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	expanded, err := ics.Expand(parsed, ics.ExpandConfig{RangeStart: start, RangeEnd: end})
	if err != nil {
		return nil, err
	}

	appLog.Debug("ics events expanded", "calendar", cal.Entity, "count", len(expanded.Events), "from_cache", res.FromCache)
	return expanded.Events, nil
}
