package event

import (
	"weekcal/internal/config"
)

// Blank is shown for fragments that should not repeat their title.
const Blank = "\u00a0"

// FormatSummary renders the text shown for e in the grid.
//
// Timed single-day events read "{start} {summary}" and full-day events
// show the bare summary. For multi-day events only some fragments carry
// text: the first day shows the start time, the last day the end time,
// and the first day of a week row repeats the title because it is not
// visually joined to the previous row. Every other fragment is Blank.
func FormatSummary(e *Event, cfg *config.Config) string {
	if e.IsPlaceholder() || e.Untitled {
		return Blank
	}

	summary := e.Summary
	if e.Prefix != "" {
		summary = e.Prefix + " " + summary
	}

	if e.FullDay {
		return summary
	}

	formattedStart := cfg.FormatTime(e.Start)
	formattedEnd := cfg.FormatTime(e.End)

	if !e.MultiDay {
		return formattedStart + " " + summary
	}

	fragmentFullDay := isFullDay(e.Start, e.End, false)
	isStart := e.IsStart()
	isEnd := e.IsEnd()
	isStartOfWeek := cfg.IsStartOfWeek(e.Start)

	if (isStart && fragmentFullDay) ||
		(isStartOfWeek && !isStart && !isEnd) ||
		(isStartOfWeek && isEnd && fragmentFullDay) {
		return summary
	}

	if isStart {
		return formattedStart + " " + summary
	}

	if isEnd && !fragmentFullDay {
		if isStartOfWeek {
			return summary + " " + formattedEnd
		}
		return formattedEnd
	}

	return Blank
}
