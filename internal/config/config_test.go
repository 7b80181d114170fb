package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const minimalCalendars = "calendars:\n  - entity: calendar.home\n"

func mustParse(t *testing.T, doc string) *Config {
	t.Helper()
	cfg, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	return cfg
}

func expectFieldError(t *testing.T, doc, field string) {
	t.Helper()
	_, err := Parse([]byte(doc))
	if err == nil {
		t.Fatalf("expected validation error for %s", field)
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
	if verr.Field != field {
		t.Fatalf("expected error on field %q, got %q (%v)", field, verr.Field, err)
	}
}

func TestDefaults(t *testing.T) {
	cfg := mustParse(t, minimalCalendars)
	if cfg.StartOfWeek != Sunday {
		t.Fatalf("expected sunday start, got %v", cfg.StartOfWeek)
	}
	if cfg.NumberOfWeeks != 4 || cfg.UpdateInterval != 60 {
		t.Fatalf("unexpected defaults: weeks=%d interval=%d", cfg.NumberOfWeeks, cfg.UpdateInterval)
	}
	if cfg.DayFormat != "d" || cfg.TimeFormat != "HH:mm" {
		t.Fatalf("unexpected formats %q %q", cfg.DayFormat, cfg.TimeFormat)
	}
	if cfg.HidePastEvents || cfg.LongWeekdays {
		t.Fatalf("expected boolean defaults to be false")
	}
	cal := cfg.Calendars[0]
	if cal.Color != "inherit" || cal.Sorting != 100 || !cal.Prefix.IsZero() {
		t.Fatalf("unexpected calendar defaults: %+v", cal)
	}
}

func TestFieldTypesAreChecked(t *testing.T) {
	cases := []struct {
		field string
		line  string
	}{
		{"startOfWeek", "startOfWeek: 2"},
		{"startOfWeek", "startOfWeek: bar"},
		{"startOfWeek", "startOfWeek: Monday"},
		{"filter", "filter: true"},
		{"longWeekdays", "longWeekdays: twelve"},
		{"dayFormat", "dayFormat: true"},
		{"timeFormat", "timeFormat: 27"},
		{"weeks", "weeks: \"yes\""},
		{"weeks", "weeks: 0"},
		{"weeks", "weeks: 1.5"},
		{"locale", "locale: 100"},
		{"title", "title: {}"},
		{"updateInterval", "updateInterval: always"},
		{"hidePastEvents", "hidePastEvents: always"},
		{"filter", "filter: \"(\""},
	}
	for _, tc := range cases {
		expectFieldError(t, minimalCalendars+tc.line+"\n", tc.field)
	}
}

func TestValidValuesAreAccepted(t *testing.T) {
	cfg := mustParse(t, minimalCalendars+`
startOfWeek: tuesday
filter: foo
longWeekdays: true
dayFormat: dd
timeFormat: mm
weeks: 2
locale: en
title: CALENDAR
updateInterval: 20
hidePastEvents: true
somethingElse: [1, 2, 3]
`)
	if cfg.StartOfWeek != Tuesday || cfg.NumberOfWeeks != 2 || cfg.UpdateInterval != 20 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if !cfg.HidePastEvents || !cfg.LongWeekdays || cfg.Title != "CALENDAR" || cfg.Locale != "en" {
		t.Fatalf("unexpected passthrough values %+v", cfg)
	}
}

func TestCalendarsAreRequired(t *testing.T) {
	expectFieldError(t, "title: x\n", "calendars")
	expectFieldError(t, "calendars: []\n", "calendars")
	expectFieldError(t, "calendars: calendar.home\n", "calendars")
	expectFieldError(t, "calendars:\n  - color: red\n", "calendars[0].entity")
}

func TestCalendarFieldTypes(t *testing.T) {
	base := "calendars:\n  - entity: bar\n"
	expectFieldError(t, base+"    color: true\n", "calendars[0].color")
	expectFieldError(t, base+"    sorting: foo\n", "calendars[0].sorting")
	expectFieldError(t, base+"    filter: true\n", "calendars[0].filter")
	expectFieldError(t, base+"    prefix: 100\n", "calendars[0].prefix")
	expectFieldError(t, base+"    prefix:\n      en: 3\n", "calendars[0].prefix.en")

	cfg := mustParse(t, base+"    color: red\n    sorting: 7\n    filter: foo\n    prefix:\n      en: foo\n")
	cal := cfg.Calendars[0]
	if cal.Color != "red" || cal.Sorting != 7 {
		t.Fatalf("unexpected calendar %+v", cal)
	}
}

func TestShouldFilterOut(t *testing.T) {
	cfg := mustParse(t, "filter: foo\ncalendars:\n  - entity: bar\n    filter: foo\n")
	if !cfg.ShouldFilterOut("The best food event") {
		t.Fatalf("expected global filter to match")
	}
	if cfg.ShouldFilterOut("Go to a bar") {
		t.Fatalf("expected global filter not to match")
	}
	if !cfg.Calendars[0].ShouldFilterOut("The best food event") {
		t.Fatalf("expected calendar filter to match")
	}
	if cfg.Calendars[0].ShouldFilterOut("Go to a bar") {
		t.Fatalf("expected calendar filter not to match")
	}

	plain := mustParse(t, minimalCalendars)
	if plain.ShouldFilterOut("The best food event") || plain.Calendars[0].ShouldFilterOut("The best food event") {
		t.Fatalf("expected no filtering without a filter")
	}
}

func TestPrefixRulesKeepDocumentOrder(t *testing.T) {
	cfg := mustParse(t, `calendars:
  - entity: bar
    prefix:
      default: baz
      "st E": first
      "Test": second
`)
	p := cfg.Calendars[0].Prefix
	if got, _ := p.Resolve("Test Event"); got != "first" {
		t.Fatalf("expected first matching rule, got %q", got)
	}
	if got, _ := p.Resolve("Nothing"); got != "baz" {
		t.Fatalf("expected default prefix, got %q", got)
	}

	noDefault := mustParse(t, "calendars:\n  - entity: bar\n    prefix:\n      REAL: bar\n").Calendars[0].Prefix
	if _, ok := noDefault.Resolve("Test Event"); ok {
		t.Fatalf("expected no prefix")
	}

	literal := mustParse(t, "calendars:\n  - entity: bar\n    prefix: foo\n").Calendars[0].Prefix
	if got, ok := literal.Resolve("anything"); !ok || got != "foo" {
		t.Fatalf("expected literal prefix, got %q", got)
	}
}

func TestJSONConfigIsAccepted(t *testing.T) {
	cfg := mustParse(t, `{"startOfWeek": "friday", "calendars": [{"entity": "calendar.a", "prefix": {"x": "1", "default": "2"}}]}`)
	if cfg.StartOfWeek != Friday {
		t.Fatalf("expected friday, got %v", cfg.StartOfWeek)
	}
}

func TestStartDate(t *testing.T) {
	cfg := mustParse(t, minimalCalendars+"startOfWeek: tuesday\n")

	cases := []struct {
		now  time.Time
		want time.Time
	}{
		{time.Date(2025, 1, 17, 15, 35, 0, 0, time.UTC), time.Date(2025, 1, 14, 0, 0, 0, 0, time.UTC)},
		{time.Date(2025, 1, 13, 15, 35, 0, 0, time.UTC), time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC)},
		{time.Date(2025, 1, 14, 15, 35, 0, 0, time.UTC), time.Date(2025, 1, 14, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		got := cfg.StartDate(tc.now)
		if !got.Equal(tc.want) {
			t.Fatalf("now=%v: expected %v, got %v", tc.now, tc.want, got)
		}
		if !cfg.IsStartOfWeek(got) {
			t.Fatalf("expected %v to be a start of week", got)
		}
	}
}

func TestDaysWindow(t *testing.T) {
	cfg := mustParse(t, minimalCalendars+"startOfWeek: tuesday\nweeks: 2\n")
	now := time.Date(2025, 1, 17, 15, 35, 0, 0, time.UTC)

	days := cfg.Days(now)
	if len(days) != 14 {
		t.Fatalf("expected 14 days, got %d", len(days))
	}
	if !days[0].Equal(time.Date(2025, 1, 14, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected first day %v", days[0])
	}
	if !days[13].Equal(time.Date(2025, 1, 27, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected last day %v", days[13])
	}
	if !cfg.EndDate(now).Equal(time.Date(2025, 1, 28, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected end date %v", cfg.EndDate(now))
	}
}

func TestWeekdaysRotation(t *testing.T) {
	cfg := mustParse(t, minimalCalendars+"startOfWeek: thursday\n")
	want := []time.Weekday{4, 5, 6, 0, 1, 2, 3}
	got := cfg.Weekdays()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if labels := cfg.WeekdayLabels(); labels[0] != "Thu" || labels[3] != "Sun" {
		t.Fatalf("unexpected short labels %v", labels)
	}
	cfg.LongWeekdays = true
	if labels := cfg.WeekdayLabels(); labels[0] != "Thursday" {
		t.Fatalf("unexpected long labels %v", labels)
	}
}

func TestLoadWritesStarterConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "weekcal.yaml")

	f, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if f.Grid.Calendars[0].Entity != "calendar.home" {
		t.Fatalf("unexpected starter calendar %+v", f.Grid.Calendars[0])
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat starter config: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600 permissions, got %v", info.Mode().Perm())
	}
}

func TestParseFileServerBlock(t *testing.T) {
	f, err := ParseFile([]byte(minimalCalendars + `
server:
  listen: ":9999"
  timezone: UTC
  homeassistant:
    token: secret
`))
	if err != nil {
		t.Fatalf("parse file: %v", err)
	}
	if f.Server.Listen != ":9999" || f.Server.HomeAssistant.Token != "secret" {
		t.Fatalf("unexpected server block %+v", f.Server)
	}
	if f.Server.HomeAssistant.URL == "" || f.Server.CacheDir == "" || f.Server.LogLevel != "info" {
		t.Fatalf("expected normalized defaults, got %+v", f.Server)
	}
	loc, err := f.Server.Location()
	if err != nil || loc.String() != "UTC" {
		t.Fatalf("unexpected location %v (%v)", loc, err)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("WEEKCAL_HA_TOKEN", "from-env")
	t.Setenv("WEEKCAL_LISTEN", "0.0.0.0:1")
	s := DefaultServer()
	s.ApplyEnv()
	if s.HomeAssistant.Token != "from-env" || s.Listen != "0.0.0.0:1" {
		t.Fatalf("expected env overrides, got %+v", s)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	_, err := Parse([]byte(minimalCalendars + "weeks: true\n"))
	if err == nil || !strings.Contains(err.Error(), "weeks must be a number, but is a boolean") {
		t.Fatalf("unexpected error %v", err)
	}
}
