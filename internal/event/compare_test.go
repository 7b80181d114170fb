package event

import (
	"math/rand/v2"
	"testing"
	"time"
)

func timed(day, hour int, sorting int, summary string) *Event {
	start := time.Date(2024, 10, day, hour, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	return &Event{
		Start: start, End: end,
		OriginalStart: start, OriginalEnd: end,
		Summary: summary, CalendarSorting: sorting,
	}
}

func TestCompareOrdering(t *testing.T) {
	c := NewComparator("")

	multi := timed(1, 9, 100, "b")
	multi.MultiDay = true
	fullDay := timed(1, 0, 100, "b")
	fullDay.FullDay = true
	earlyOrigin := timed(1, 12, 100, "z")
	earlyOrigin.OriginalStart = time.Date(2024, 9, 30, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		a, b *Event
	}{
		{"multi-day first", multi, timed(1, 8, 100, "a")},
		{"full-day first", fullDay, timed(1, 8, 100, "a")},
		{"earlier original day first", earlyOrigin, timed(1, 8, 100, "a")},
		{"earlier start first", timed(1, 8, 100, "z"), timed(1, 9, 0, "a")},
		{"lower sorting first", timed(1, 8, 1, "z"), timed(1, 8, 2, "a")},
		{"summary collated", timed(1, 8, 1, "apple"), timed(1, 8, 1, "Banana")},
	}

	for _, tc := range cases {
		if got := c.Compare(tc.a, tc.b); got >= 0 {
			t.Fatalf("%s: expected a < b, got %d", tc.name, got)
		}
		if got := c.Compare(tc.b, tc.a); got <= 0 {
			t.Fatalf("%s: expected b > a, got %d", tc.name, got)
		}
	}

	if got := c.Compare(timed(1, 8, 1, "same"), timed(1, 8, 1, "same")); got != 0 {
		t.Fatalf("expected equal events to compare 0, got %d", got)
	}
}

func randomEvent(rnd *rand.Rand) *Event {
	words := []string{"alpha", "Beta", "gamma", "delta", "Échecs", "zulu", ""}
	origin := time.Date(2024, 10, 1+rnd.IntN(3), rnd.IntN(24), 0, 0, 0, time.UTC)
	start := origin
	if rnd.IntN(2) == 0 {
		start = time.Date(2024, 10, 3, rnd.IntN(24), 0, 0, 0, time.UTC)
	}
	return &Event{
		Start:           start,
		End:             start.Add(time.Hour),
		OriginalStart:   origin,
		OriginalEnd:     start.Add(time.Hour),
		MultiDay:        rnd.IntN(3) == 0,
		FullDay:         rnd.IntN(3) == 0,
		CalendarSorting: rnd.IntN(3),
		Summary:         words[rnd.IntN(len(words))],
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

func TestCompareIsConsistent(t *testing.T) {
	c := NewComparator("en")

	for iter := 0; iter < 10; iter++ {
		rnd := rand.New(rand.NewPCG(uint64(iter), 42))
		events := make([]*Event, 30)
		for i := range events {
			events[i] = randomEvent(rnd)
		}

		for _, a := range events {
			if c.Compare(a, a) != 0 {
				t.Fatalf("expected event to equal itself")
			}
			for _, b := range events {
				if sign(c.Compare(a, b)) != -sign(c.Compare(b, a)) {
					t.Fatalf("comparison not antisymmetric for %+v and %+v", a, b)
				}
				for _, d := range events {
					if c.Compare(a, b) <= 0 && c.Compare(b, d) <= 0 && c.Compare(a, d) > 0 {
						t.Fatalf("comparison not transitive")
					}
				}
			}
		}

		c.Sort(events)
		for i := 1; i < len(events); i++ {
			if c.Compare(events[i-1], events[i]) > 0 {
				t.Fatalf("iteration %d: events out of order at %d", iter, i)
			}
		}
	}
}

func TestSortIsStable(t *testing.T) {
	c := NewComparator("")
	a := timed(1, 8, 1, "same")
	b := timed(1, 8, 1, "same")
	events := []*Event{a, b}
	c.Sort(events)
	if events[0] != a || events[1] != b {
		t.Fatalf("expected equal events to keep input order")
	}
}
