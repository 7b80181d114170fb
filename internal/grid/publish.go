package grid

import (
	"bytes"
	"encoding/json"
	"sync"
	"time"
)

// Snapshot is what the renderers see: the latest published grid plus the
// error of the last failed cycle, if any.
type Snapshot struct {
	Days      []Day     `json:"days"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Publisher keeps the last published grid and notifies subscribers when
// it changes. A grid that serializes identically to the current one is
// not republished.
type Publisher struct {
	mu       sync.RWMutex
	snap     Snapshot
	encoded  []byte
	nextID   int
	watchers map[int]func(Snapshot)

	now func() time.Time
}

func NewPublisher() *Publisher {
	return &Publisher{
		watchers: make(map[int]func(Snapshot)),
		now:      time.Now,
	}
}

// Publish replaces the grid if it differs from the current one and
// reports whether it did.
func (p *Publisher) Publish(days []Day) (bool, error) {
	encoded, err := json.Marshal(days)
	if err != nil {
		return false, err
	}

	p.mu.Lock()
	if p.encoded != nil && bytes.Equal(p.encoded, encoded) {
		p.mu.Unlock()
		return false, nil
	}
	p.encoded = encoded
	p.snap.Days = days
	p.snap.UpdatedAt = p.now()
	snap, watchers := p.snap, p.watcherList()
	p.mu.Unlock()

	notify(watchers, snap)
	return true, nil
}

// SetError records the message of a failed cycle. An empty message clears
// it. The grid itself is left untouched.
func (p *Publisher) SetError(msg string) {
	p.mu.Lock()
	if p.snap.Error == msg {
		p.mu.Unlock()
		return
	}
	p.snap.Error = msg
	snap, watchers := p.snap, p.watcherList()
	p.mu.Unlock()

	notify(watchers, snap)
}

func (p *Publisher) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snap
}

// Subscribe registers fn to be called after every change. The returned
// function removes the subscription.
func (p *Publisher) Subscribe(fn func(Snapshot)) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.watchers[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.watchers, id)
		p.mu.Unlock()
	}
}

// watcherList must be called with p.mu held.
func (p *Publisher) watcherList() []func(Snapshot) {
	out := make([]func(Snapshot), 0, len(p.watchers))
	for _, fn := range p.watchers {
		out = append(out, fn)
	}
	return out
}

func notify(watchers []func(Snapshot), snap Snapshot) {
	for _, fn := range watchers {
		fn(snap)
	}
}
