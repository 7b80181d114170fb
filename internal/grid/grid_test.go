package grid

import (
	"testing"
	"time"

	"weekcal/internal/config"
	"weekcal/internal/event"
	"weekcal/internal/model"
)

var refNow = time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)

func parseConfig(t *testing.T, body string) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte(body))
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	return cfg
}

func at(day, hour, minute int) model.EventTime {
	return model.DateTimeOf(time.Date(2024, 10, day, hour, minute, 0, 0, time.UTC))
}

func raw(summary string, start, end model.EventTime) model.RawEvent {
	return model.RawEvent{Summary: model.Text(summary), Start: start, End: end}
}

func columnOfSummary(d Day, summary string) int {
	for i, e := range d.Events {
		if !e.IsPlaceholder() && e.Summary == summary {
			return i
		}
	}
	return -1
}

func dayByKey(t *testing.T, days []Day, key string) Day {
	t.Helper()
	for _, d := range days {
		if DateKey(d.Date) == key {
			return d
		}
	}
	t.Fatalf("day %s not in grid", key)
	return Day{}
}

func TestComputeGridKeepsMultiDayEventInItsColumn(t *testing.T) {
	cfg := parseConfig(t, "calendars:\n  - entity: calendar.home\n")
	events := map[string][]model.RawEvent{
		"calendar.home": {
			raw("Trip", at(1, 10, 0), at(5, 18, 0)),
			raw("Conference", model.EventTime{DateTime: "2024-09-30T09:00:00Z"}, at(2, 17, 0)),
			raw("Breakfast", at(3, 8, 0), at(3, 9, 0)),
		},
	}

	days := ComputeGrid(cfg, events, refNow, time.UTC)

	for _, key := range []string{"2024-10-01", "2024-10-02", "2024-10-03", "2024-10-04", "2024-10-05"} {
		d := dayByKey(t, days, key)
		if got := columnOfSummary(d, "Trip"); got != 1 {
			t.Fatalf("%s: expected Trip in column 1, got %d (%d events)", key, got, len(d.Events))
		}
	}

	oct3 := dayByKey(t, days, "2024-10-03")
	if oct3.Events[0].Summary != "Breakfast" {
		t.Fatalf("expected Breakfast to fill column 0 on 2024-10-03, got %q", oct3.Events[0].Summary)
	}
	oct4 := dayByKey(t, days, "2024-10-04")
	if len(oct4.Events) != 2 || !oct4.Events[0].IsPlaceholder() {
		t.Fatalf("expected a placeholder to hold column 0 on 2024-10-04, got %+v", oct4.Events)
	}
}

func TestComputeGridReanchorsAtStartOfWeek(t *testing.T) {
	cfg := parseConfig(t, "startOfWeek: thursday\ncalendars:\n  - entity: calendar.home\n")
	events := map[string][]model.RawEvent{
		"calendar.home": {
			raw("Trip", at(1, 10, 0), at(5, 18, 0)),
			raw("Conference", model.EventTime{DateTime: "2024-09-30T09:00:00Z"}, at(2, 17, 0)),
		},
	}

	days := ComputeGrid(cfg, events, refNow, time.UTC)

	if got := columnOfSummary(dayByKey(t, days, "2024-10-02"), "Trip"); got != 1 {
		t.Fatalf("expected Trip in column 1 before the week boundary, got %d", got)
	}
	if got := columnOfSummary(dayByKey(t, days, "2024-10-03"), "Trip"); got != 0 {
		t.Fatalf("expected Trip to re-anchor in column 0 on the first day of the week, got %d", got)
	}
	if got := columnOfSummary(dayByKey(t, days, "2024-10-04"), "Trip"); got != 0 {
		t.Fatalf("expected Trip to stay in column 0 after re-anchoring, got %d", got)
	}
}

func TestComputeGridWindowAndEmptyDays(t *testing.T) {
	cfg := parseConfig(t, "weeks: 2\ncalendars:\n  - entity: calendar.home\n")
	events := map[string][]model.RawEvent{
		"calendar.home": {
			raw("Broken", model.EventTime{DateTime: "garbage"}, at(1, 9, 0)),
			raw("Lunch", at(1, 12, 0), at(1, 13, 0)),
		},
	}

	days := ComputeGrid(cfg, events, refNow, time.UTC)
	if len(days) != 14 {
		t.Fatalf("expected 14 days, got %d", len(days))
	}
	if DateKey(days[0].Date) != "2024-09-29" || DateKey(days[13].Date) != "2024-10-12" {
		t.Fatalf("unexpected window %s..%s", DateKey(days[0].Date), DateKey(days[13].Date))
	}
	if d := dayByKey(t, days, "2024-10-01"); len(d.Events) != 1 || d.Events[0].Summary != "Lunch" {
		t.Fatalf("expected only Lunch on 2024-10-01, got %+v", d.Events)
	}
	if d := days[0]; d.Events == nil || len(d.Events) != 0 {
		t.Fatalf("expected an empty, non-nil event list")
	}
}

func TestComputeGridIgnoresUnknownCalendars(t *testing.T) {
	cfg := parseConfig(t, "calendars:\n  - entity: calendar.home\n")
	events := map[string][]model.RawEvent{
		"calendar.other": {raw("Lunch", at(1, 12, 0), at(1, 13, 0))},
	}
	for _, d := range ComputeGrid(cfg, events, refNow, time.UTC) {
		if len(d.Events) != 0 {
			t.Fatalf("expected no events, got %+v on %s", d.Events, DateKey(d.Date))
		}
	}
}

func multi(summary string) *event.Event {
	return &event.Event{Summary: summary, MultiDay: true, Class: event.ClassMultiDay}
}

func TestAlignStopsOnDuplicateTitles(t *testing.T) {
	yesterday := []*event.Event{multi("Other"), multi("Dup")}
	first, second := multi("Dup"), multi("Dup")

	today := align([]*event.Event{first, second}, yesterday)
	if len(today) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(today))
	}
	if today[1] != first || today[0] != second {
		t.Fatalf("expected a single swap into column 1")
	}
}

func TestAlignSkipsPlaceholdersAndSingleDayEvents(t *testing.T) {
	untitled := &event.Event{Untitled: true, MultiDay: true, Class: event.ClassMultiDay}
	yesterday := []*event.Event{event.Placeholder(), untitled}

	single := &event.Event{Summary: "Single", Class: event.ClassFuture}
	today := align([]*event.Event{single}, yesterday)
	if len(today) != 1 || today[0] != single {
		t.Fatalf("expected single-day event to stay put")
	}

	next := &event.Event{Untitled: true, MultiDay: true, Class: event.ClassMultiDay}
	today = align([]*event.Event{next}, yesterday)
	if len(today) != 2 || today[1] != next || !today[0].IsPlaceholder() {
		t.Fatalf("expected untitled event to follow its column, got %+v", today)
	}
}

func TestAlignPadsToYesterdaysColumn(t *testing.T) {
	trip := multi("Trip")
	yesterday := []*event.Event{multi("A"), multi("B"), multi("C"), trip}

	today := align([]*event.Event{multi("Trip")}, yesterday)
	if len(today) != 4 {
		t.Fatalf("expected padding to 4 columns, got %d", len(today))
	}
	for i := 0; i < 3; i++ {
		if !today[i].IsPlaceholder() {
			t.Fatalf("expected placeholder at %d", i)
		}
	}
	if today[3].Summary != "Trip" {
		t.Fatalf("expected Trip in column 3")
	}
}

func TestDayClass(t *testing.T) {
	cases := map[string]string{
		"2024-10-01": "today tuesday",
		"2024-10-02": "tomorrow future wednesday",
		"2024-09-30": "yesterday past monday",
		"2024-10-05": "future saturday",
		"2024-09-29": "past sunday",
	}
	for key, want := range cases {
		date, err := time.Parse(dateKeyLayout, key)
		if err != nil {
			t.Fatalf("parse %s: %v", key, err)
		}
		if got := DayClass(date, refNow); got != want {
			t.Fatalf("%s: expected %q, got %q", key, want, got)
		}
	}
}
