package config

import (
	"strconv"
	"strings"
	"time"
)

// formatPattern renders t using the Luxon-style token set accepted by
// dayFormat and timeFormat. Text inside single quotes is copied
// verbatim and a doubled quote is a literal quote. Any other non-letter
// is copied as-is.
// Unknown letter runs are copied unchanged.
func formatPattern(t time.Time, pattern string) string {
	var b strings.Builder
	runes := []rune(pattern)
	for i := 0; i < len(runes); {
		r := runes[i]
		if r == '\'' {
			j := i + 1
			if j < len(runes) && runes[j] == '\'' {
				b.WriteRune('\'')
				i += 2
				continue
			}
			for j < len(runes) && runes[j] != '\'' {
				b.WriteRune(runes[j])
				j++
			}
			i = j + 1
			continue
		}
		if !isLetter(r) {
			b.WriteRune(r)
			i++
			continue
		}
		j := i
		for j < len(runes) && runes[j] == r {
			j++
		}
		b.WriteString(formatToken(t, string(runes[i:j])))
		i = j
	}
	return b.String()
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func formatToken(t time.Time, tok string) string {
	switch tok {
	case "d":
		return strconv.Itoa(t.Day())
	case "dd":
		return pad2(t.Day())
	case "M":
		return strconv.Itoa(int(t.Month()))
	case "MM":
		return pad2(int(t.Month()))
	case "MMM":
		return t.Month().String()[:3]
	case "MMMM":
		return t.Month().String()
	case "y", "yyyy":
		return t.Format("2006")
	case "yy":
		return t.Format("06")
	case "H":
		return strconv.Itoa(t.Hour())
	case "HH":
		return pad2(t.Hour())
	case "h":
		return strconv.Itoa(hour12(t))
	case "hh":
		return pad2(hour12(t))
	case "m":
		return strconv.Itoa(t.Minute())
	case "mm":
		return pad2(t.Minute())
	case "s":
		return strconv.Itoa(t.Second())
	case "ss":
		return pad2(t.Second())
	case "a":
		if t.Hour() < 12 {
			return "AM"
		}
		return "PM"
	case "E", "c":
		return strconv.Itoa(isoWeekday(t.Weekday()))
	case "EEE", "ccc":
		return t.Weekday().String()[:3]
	case "EEEE", "cccc":
		return t.Weekday().String()
	case "W":
		_, w := t.ISOWeek()
		return strconv.Itoa(w)
	case "WW":
		_, w := t.ISOWeek()
		return pad2(w)
	default:
		return tok
	}
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

func hour12(t time.Time) int {
	h := t.Hour() % 12
	if h == 0 {
		return 12
	}
	return h
}
