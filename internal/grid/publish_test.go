package grid

import (
	"testing"
	"time"
)

func TestPublishSkipsIdenticalGrids(t *testing.T) {
	cfg := parseConfig(t, "weeks: 1\ncalendars:\n  - entity: calendar.home\n")
	p := NewPublisher()

	var calls int
	p.Subscribe(func(Snapshot) { calls++ })

	first := Synthesize(cfg, Index{}, refNow)
	changed, err := p.Publish(first)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if !changed {
		t.Fatalf("expected first publish to change the grid")
	}

	again := Synthesize(cfg, Index{}, refNow)
	changed, err = p.Publish(again)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if changed {
		t.Fatalf("expected identical grid not to be republished")
	}
	if calls != 1 {
		t.Fatalf("expected 1 notification, got %d", calls)
	}

	later := Synthesize(cfg, Index{}, refNow.Add(24*time.Hour))
	if changed, _ := p.Publish(later); !changed {
		t.Fatalf("expected new day classes to republish")
	}
	if calls != 2 {
		t.Fatalf("expected 2 notifications, got %d", calls)
	}
}

func TestPublisherError(t *testing.T) {
	p := NewPublisher()

	var last Snapshot
	unsubscribe := p.Subscribe(func(s Snapshot) { last = s })

	p.SetError("Error while fetching calendar calendar.home: boom")
	if last.Error != "Error while fetching calendar calendar.home: boom" {
		t.Fatalf("expected error to be delivered, got %q", last.Error)
	}
	if p.Snapshot().Error != last.Error {
		t.Fatalf("expected snapshot to carry the error")
	}

	unsubscribe()
	p.SetError("")
	if last.Error == "" {
		t.Fatalf("expected no notification after unsubscribe")
	}
	if p.Snapshot().Error != "" {
		t.Fatalf("expected error to be cleared")
	}
}
