package capture

import (
	"context"
	"sync"
	"time"

	appLog "weekcal/internal/log"
)

// Previewer re-captures the calendar page whenever the grid changes.
// Captures never overlap: a change that arrives while one is running is
// folded into a single follow-up capture.
type Previewer struct {
	opts    Options
	capture func(context.Context, Options) error

	mu      sync.Mutex
	running bool
	pending bool
	idle    *sync.Cond
}

func NewPreviewer(opts Options) *Previewer {
	p := &Previewer{opts: opts, capture: CalendarPNG}
	p.idle = sync.NewCond(&p.mu)
	return p
}

// Trigger requests a capture and returns immediately.
func (p *Previewer) Trigger(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		p.pending = true
		return
	}
	p.running = true
	go p.loop(ctx)
}

func (p *Previewer) loop(ctx context.Context) {
	for {
		start := time.Now()
		if err := p.capture(ctx, p.opts); err != nil {
			appLog.Error("preview capture failed", err, "url", p.opts.URL)
		} else {
			appLog.Info("preview captured", "output", p.opts.OutputPath, "took", time.Since(start).Round(time.Millisecond))
		}

		p.mu.Lock()
		if !p.pending || ctx.Err() != nil {
			p.running = false
			p.pending = false
			p.idle.Broadcast()
			p.mu.Unlock()
			return
		}
		p.pending = false
		p.mu.Unlock()
	}
}

// Wait blocks until no capture is running.
func (p *Previewer) Wait() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for p.running {
		p.idle.Wait()
	}
}
