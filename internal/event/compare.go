package event

import (
	"slices"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Comparator orders fragments that fall on the same day. A Comparator is
// not safe for concurrent use; create one per grid computation.
type Comparator struct {
	collator *collate.Collator
}

// NewComparator collates summaries for locale, or English when locale is
// empty or unparsable.
func NewComparator(locale string) *Comparator {
	tag := language.English
	if locale != "" {
		if t, err := language.Parse(locale); err == nil {
			tag = t
		}
	}
	return &Comparator{collator: collate.New(tag)}
}

// Compare returns a negative number when a sorts before b. The first
// differing key decides:
//
//  1. multi-day before single-day
//  2. full-day before timed
//  3. earlier original start day
//  4. earlier fragment start
//  5. lower calendar sorting
//  6. summary, collated for the locale
func (c *Comparator) Compare(a, b *Event) int {
	if a.MultiDay != b.MultiDay {
		if a.MultiDay {
			return -1
		}
		return 1
	}
	if a.FullDay != b.FullDay {
		if a.FullDay {
			return -1
		}
		return 1
	}
	if da, db := dayKey(a.OriginalStart), dayKey(b.OriginalStart); da != db {
		if da < db {
			return -1
		}
		return 1
	}
	if !a.Start.Equal(b.Start) {
		if a.Start.Before(b.Start) {
			return -1
		}
		return 1
	}
	if a.CalendarSorting != b.CalendarSorting {
		if a.CalendarSorting < b.CalendarSorting {
			return -1
		}
		return 1
	}
	return c.collator.CompareString(a.Summary, b.Summary)
}

// Sort orders events in place, keeping the input order of equal entries.
func (c *Comparator) Sort(events []*Event) {
	slices.SortStableFunc(events, c.Compare)
}

func dayKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}
