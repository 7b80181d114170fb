// Package cycle runs the fetch → synthesize → publish loop.
package cycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"weekcal/internal/config"
	"weekcal/internal/grid"
	appLog "weekcal/internal/log"
	"weekcal/internal/model"
	"weekcal/internal/provider"
)

// Sink receives the outcome of each cycle. *grid.Publisher implements it.
type Sink interface {
	Publish(days []grid.Day) (bool, error)
	SetError(msg string)
}

// Poller runs one cycle at a time. Each cycle fetches every calendar
// concurrently, and only when all of them have answered is the grid
// synthesized and published. The first failure aborts the cycle;
// responses that arrive for an aborted or older cycle are dropped.
type Poller struct {
	cfg      *config.Config
	fetcher  provider.Fetcher
	sink     Sink
	loc      *time.Location
	schedule cron.Schedule

	// Now is the clock, replaceable in tests.
	Now func() time.Time

	mu      sync.Mutex
	current *cycleState
	nextGen uint64
}

// cycleState is guarded by Poller.mu.
type cycleState struct {
	generation  uint64
	outstanding int
	aborted     bool
	raw         map[string][]model.RawEvent
	done        chan error
}

func NewPoller(cfg *config.Config, fetcher provider.Fetcher, sink Sink, loc *time.Location, schedule cron.Schedule) *Poller {
	if loc == nil {
		loc = time.Local
	}
	return &Poller{
		cfg:      cfg,
		fetcher:  fetcher,
		sink:     sink,
		loc:      loc,
		schedule: schedule,
		Now:      time.Now,
	}
}

// NewSchedule parses a standard cron spec, or runs every interval
// seconds when spec is empty.
func NewSchedule(spec string, intervalSeconds int) (cron.Schedule, error) {
	if spec != "" {
		s, err := cron.ParseStandard(spec)
		if err != nil {
			return nil, fmt.Errorf("parse refresh spec %q: %w", spec, err)
		}
		return s, nil
	}
	if intervalSeconds <= 0 {
		intervalSeconds = config.DefaultUpdateInterval
	}
	return cron.Every(time.Duration(intervalSeconds) * time.Second), nil
}

// Run executes cycles until ctx is cancelled. The next cycle is timed
// from the end of the previous one, so cycles never overlap.
func (p *Poller) Run(ctx context.Context) error {
	for {
		if err := p.RunOnce(ctx); err != nil && ctx.Err() == nil {
			appLog.Warn("cycle failed; will retry on schedule", "err", err)
		}

		next := p.schedule.Next(p.Now())
		appLog.Debug("next cycle scheduled", "at", next.Format(time.RFC3339))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// RunOnce performs a single cycle and returns its error, which is a
// *provider.FetchError when a calendar failed.
func (p *Poller) RunOnce(ctx context.Context) error {
	now := p.Now().In(p.loc)
	start, end := p.cfg.StartDate(now), p.cfg.EndDate(now)

	p.sink.SetError("")
	st := p.begin(len(p.cfg.Calendars))

	appLog.Debug("cycle start", "generation", st.generation, "calendars", len(p.cfg.Calendars),
		"start", start.Format(time.RFC3339), "end", end.Format(time.RFC3339))

	for _, cal := range p.cfg.Calendars {
		go func(cal *config.CalendarConfig) {
			events, err := p.fetcher.FetchEvents(ctx, cal, start, end)
			p.deliver(st, cal, events, err)
		}(cal)
	}

	var err error
	select {
	case err = <-st.done:
	case <-ctx.Done():
		p.abort(st)
		return ctx.Err()
	}

	if err != nil {
		var fe *provider.FetchError
		if !errors.As(err, &fe) {
			err = &provider.FetchError{Calendar: "unknown", Err: err}
		}
		appLog.Error("cycle aborted", err, "generation", st.generation)
		p.sink.SetError(err.Error())
		return err
	}

	days := grid.ComputeGrid(p.cfg, st.raw, now, p.loc)
	changed, err := p.sink.Publish(days)
	if err != nil {
		return fmt.Errorf("publish grid: %w", err)
	}
	appLog.Info("cycle complete", "generation", st.generation, "days", len(days), "changed", changed)
	return nil
}

func (p *Poller) begin(calendars int) *cycleState {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.nextGen++
	st := &cycleState{
		generation:  p.nextGen,
		outstanding: calendars,
		raw:         make(map[string][]model.RawEvent, calendars),
		done:        make(chan error, 1),
	}
	p.current = st
	if calendars == 0 {
		st.done <- nil
	}
	return st
}

// deliver records one calendar's response. The cycle completes when the
// last outstanding response arrives, or fails on the first error.
func (p *Poller) deliver(st *cycleState, cal *config.CalendarConfig, events []model.RawEvent, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if st != p.current || st.aborted {
		appLog.Debug("dropping late response", "calendar", cal.Entity, "generation", st.generation)
		return
	}
	if err != nil {
		st.aborted = true
		st.raw = nil
		var fe *provider.FetchError
		if !errors.As(err, &fe) {
			err = &provider.FetchError{Calendar: cal.Entity, Err: err}
		}
		st.done <- err
		return
	}

	st.raw[cal.Entity] = events
	st.outstanding--
	if st.outstanding == 0 {
		st.done <- nil
	}
}

func (p *Poller) abort(st *cycleState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	st.aborted = true
	st.raw = nil
}
