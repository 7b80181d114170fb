package config

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	DefaultNumberOfWeeks  = 4
	DefaultDayFormat      = "d"
	DefaultTimeFormat     = "HH:mm"
	DefaultUpdateInterval = 60
	DefaultColor          = "inherit"
	DefaultSorting        = 100

	defaultPrefixKey = "default"
)

// Config is the validated grid configuration. It is built once per
// accepted configuration and never modified afterwards.
type Config struct {
	Calendars []*CalendarConfig

	StartOfWeek    Weekday
	NumberOfWeeks  int
	LongWeekdays   bool
	DayFormat      string
	TimeFormat     string
	HidePastEvents bool

	// Passthrough display/polling settings.
	Locale         string
	Title          string
	UpdateInterval int // seconds

	filter *regexp.Regexp
}

// CalendarConfig describes one calendar source shown in the grid.
type CalendarConfig struct {
	Entity  string
	Color   string
	Sorting int
	Prefix  Prefix
	// URL, when set, is an ICS feed fetched directly instead of asking
	// Home Assistant for Entity.
	URL string

	filter *regexp.Regexp
}

// Prefix is the per-calendar summary prefix policy: a literal, an ordered
// list of pattern rules with an optional default, or nothing.
type Prefix struct {
	Literal *string
	Rules   []PrefixRule
	Default *string
}

// PrefixRule maps summaries matching Pattern to Value.
type PrefixRule struct {
	Pattern *regexp.Regexp
	Value   string
}

// Resolve returns the prefix for summary, if any.
func (p Prefix) Resolve(summary string) (string, bool) {
	if p.Literal != nil {
		return *p.Literal, true
	}
	for _, r := range p.Rules {
		if r.Pattern.MatchString(summary) {
			return r.Value, true
		}
	}
	if p.Default != nil {
		return *p.Default, true
	}
	return "", false
}

// IsZero reports whether no prefix is configured.
func (p Prefix) IsZero() bool {
	return p.Literal == nil && len(p.Rules) == 0 && p.Default == nil
}

// Parse validates a YAML or JSON configuration document.
func Parse(data []byte) (*Config, error) {
	obj, err := ParseObject(data)
	if err != nil {
		return nil, err
	}
	return New(obj)
}

// New validates a decoded configuration object. Unrecognized fields are
// ignored; the first invalid field aborts with a *ValidationError.
func New(obj Object) (*Config, error) {
	rawCalendars, _, err := lookup(obj, "", "calendars", true)
	if err != nil {
		return nil, err
	}
	list, ok := rawCalendars.([]any)
	if !ok {
		return nil, invalid("calendars", "must be an array, but is a %s", typeName(rawCalendars))
	}
	if len(list) == 0 {
		return nil, invalid("calendars", "must contain at least one calendar")
	}

	c := &Config{}
	for i, item := range list {
		path := "calendars[" + strconv.Itoa(i) + "]"
		calObj, ok := item.(Object)
		if !ok {
			return nil, invalid(path, "must be an object, but is a %s", typeName(item))
		}
		cal, err := newCalendarConfig(calObj, path)
		if err != nil {
			return nil, err
		}
		c.Calendars = append(c.Calendars, cal)
	}

	startName, err := validateString(obj, "", "startOfWeek", Sunday.String())
	if err != nil {
		return nil, err
	}
	sow, ok := ParseWeekday(startName)
	if !ok {
		return nil, invalid("startOfWeek", "%s was not one of [%s]", startName, strings.Join(weekdayNames, ", "))
	}
	c.StartOfWeek = sow

	if c.filter, err = validateRegexp(obj, "", "filter"); err != nil {
		return nil, err
	}
	if c.LongWeekdays, err = validateBoolean(obj, "", "longWeekdays", false); err != nil {
		return nil, err
	}
	if c.DayFormat, err = validateString(obj, "", "dayFormat", DefaultDayFormat); err != nil {
		return nil, err
	}
	if c.TimeFormat, err = validateString(obj, "", "timeFormat", DefaultTimeFormat); err != nil {
		return nil, err
	}
	if c.NumberOfWeeks, err = validatePositiveInteger(obj, "", "weeks", DefaultNumberOfWeeks); err != nil {
		return nil, err
	}
	if c.Locale, err = validateString(obj, "", "locale", ""); err != nil {
		return nil, err
	}
	if c.Title, err = validateString(obj, "", "title", ""); err != nil {
		return nil, err
	}
	if c.UpdateInterval, err = validatePositiveInteger(obj, "", "updateInterval", DefaultUpdateInterval); err != nil {
		return nil, err
	}
	if c.HidePastEvents, err = validateBoolean(obj, "", "hidePastEvents", false); err != nil {
		return nil, err
	}

	return c, nil
}

// ShouldFilterOut reports whether the global filter drops summary.
func (c *Config) ShouldFilterOut(summary string) bool {
	return c.filter != nil && c.filter.MatchString(summary)
}

// ShouldFilterOut reports whether this calendar's filter drops summary.
func (c *CalendarConfig) ShouldFilterOut(summary string) bool {
	return c.filter != nil && c.filter.MatchString(summary)
}

func newCalendarConfig(obj Object, path string) (*CalendarConfig, error) {
	var (
		cal CalendarConfig
		err error
	)
	if cal.Entity, err = requireString(obj, path, "entity"); err != nil {
		return nil, err
	}
	if cal.Color, err = validateString(obj, path, "color", DefaultColor); err != nil {
		return nil, err
	}
	if cal.Sorting, err = validateInteger(obj, path, "sorting", DefaultSorting); err != nil {
		return nil, err
	}
	if cal.filter, err = validateRegexp(obj, path, "filter"); err != nil {
		return nil, err
	}
	if cal.URL, err = validateString(obj, path, "url", ""); err != nil {
		return nil, err
	}
	if cal.Prefix, err = validatePrefix(obj, path); err != nil {
		return nil, err
	}
	return &cal, nil
}

func validatePrefix(obj Object, parent string) (Prefix, error) {
	field := fieldPath(parent, "prefix")
	v, ok := obj.Get("prefix")
	if !ok || v == nil {
		return Prefix{}, nil
	}

	switch p := v.(type) {
	case string:
		return Prefix{Literal: &p}, nil
	case Object:
		var out Prefix
		for _, m := range p {
			value, isString := m.Value.(string)
			if !isString {
				return Prefix{}, invalid(field+"."+m.Key, "must be a string, but is a %s", typeName(m.Value))
			}
			if m.Key == defaultPrefixKey {
				out.Default = &value
				continue
			}
			re, err := regexp.Compile(m.Key)
			if err != nil {
				return Prefix{}, invalid(field+"."+m.Key, "is not a valid regular expression: %v", err)
			}
			out.Rules = append(out.Rules, PrefixRule{Pattern: re, Value: value})
		}
		return out, nil
	default:
		return Prefix{}, invalid(field, "must be a string, or dictionary of strings, but is a %s", typeName(v))
	}
}
