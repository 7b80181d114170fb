package config

import (
	"strings"
	"time"
)

// Weekday numbers days ISO-style: 1 is Monday, 7 is Sunday.
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = []string{
	"monday",
	"tuesday",
	"wednesday",
	"thursday",
	"friday",
	"saturday",
	"sunday",
}

// ParseWeekday accepts the lower-case English weekday names only.
func ParseWeekday(name string) (Weekday, bool) {
	for i, n := range weekdayNames {
		if n == name {
			return Weekday(i + 1), true
		}
	}
	return 0, false
}

func (w Weekday) String() string {
	if w < Monday || w > Sunday {
		return "invalid"
	}
	return weekdayNames[w-1]
}

func isoWeekday(d time.Weekday) int {
	if d == time.Sunday {
		return 7
	}
	return int(d)
}

// StartOfDay truncates t to local midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day, each in
// its own location.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func mod(n, m int) int {
	return ((n % m) + m) % m
}

// StartDate is the first day of the window containing now: the most
// recent day (possibly today) whose weekday is StartOfWeek.
func (c *Config) StartDate(now time.Time) time.Time {
	today := StartOfDay(now)
	offset := mod(isoWeekday(today.Weekday())-int(c.StartOfWeek), 7)
	return today.AddDate(0, 0, -offset)
}

// EndDate is the exclusive end of the window.
func (c *Config) EndDate(now time.Time) time.Time {
	return c.StartDate(now).AddDate(0, 0, 7*c.NumberOfWeeks)
}

// Days lists every date in [StartDate, EndDate).
func (c *Config) Days(now time.Time) []time.Time {
	start := c.StartDate(now)
	days := make([]time.Time, 0, 7*c.NumberOfWeeks)
	for i := 0; i < 7*c.NumberOfWeeks; i++ {
		days = append(days, start.AddDate(0, 0, i))
	}
	return days
}

// Weekdays is the heading rotation as time.Weekday values (Sunday = 0),
// beginning at StartOfWeek.
func (c *Config) Weekdays() []time.Weekday {
	days := make([]time.Weekday, 0, 7)
	for i := 0; i < 7; i++ {
		days = append(days, time.Weekday((int(c.StartOfWeek)+i)%7))
	}
	return days
}

// WeekdayLabels returns the heading labels for Weekdays, short or long
// depending on LongWeekdays.
func (c *Config) WeekdayLabels() []string {
	labels := make([]string, 0, 7)
	for _, d := range c.Weekdays() {
		name := d.String()
		if !c.LongWeekdays {
			name = name[:3]
		}
		labels = append(labels, name)
	}
	return labels
}

func (c *Config) IsStartOfWeek(t time.Time) bool {
	return isoWeekday(t.Weekday()) == int(c.StartOfWeek)
}

func (c *Config) FormatDay(t time.Time) string {
	return formatPattern(t, c.DayFormat)
}

// FormatTime renders t with TimeFormat and lower-cases the am/pm marker.
func (c *Config) FormatTime(t time.Time) string {
	s := formatPattern(t, c.TimeFormat)
	s = strings.Replace(s, "AM", "am", 1)
	return strings.Replace(s, "PM", "pm", 1)
}
