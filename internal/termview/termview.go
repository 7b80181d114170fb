// Package termview draws the grid as a fixed-width week table for the
// terminal.
package termview

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"weekcal/internal/config"
	"weekcal/internal/event"
	"weekcal/internal/grid"
)

const DefaultCellWidth = 14

type Options struct {
	// CellWidth is the width of one day column in cells.
	CellWidth int
	// Plain disables all styling.
	Plain bool
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8C8C8C"))
	todayStyle   = lipgloss.NewStyle().Reverse(true)
	pastStyle    = lipgloss.NewStyle().Faint(true)
)

// Render lays snap out one week per block: a row of day numbers followed
// by one row per event column.
func Render(cfg *config.Config, snap grid.Snapshot, opts Options) string {
	width := opts.CellWidth
	if width <= 0 {
		width = DefaultCellWidth
	}
	r := renderer{cfg: cfg, width: width, plain: opts.Plain}

	var lines []string
	if cfg.Title != "" {
		lines = append(lines, r.style(titleStyle, cfg.Title))
	}
	if snap.Error != "" {
		lines = append(lines, r.style(errorStyle, snap.Error))
	}

	heading := make([]string, 0, 7)
	for _, label := range cfg.WeekdayLabels() {
		heading = append(heading, r.style(headingStyle, r.cell(label)))
	}
	lines = append(lines, strings.Join(heading, " "))

	for start := 0; start < len(snap.Days); start += 7 {
		week := snap.Days[start:min(start+7, len(snap.Days))]
		lines = append(lines, r.week(week)...)
	}
	return strings.Join(lines, "\n") + "\n"
}

type renderer struct {
	cfg   *config.Config
	width int
	plain bool
}

func (r renderer) week(days []grid.Day) []string {
	rows := 0
	labels := make([]string, 0, len(days))
	for _, d := range days {
		rows = max(rows, len(d.Events))
		label := r.cell(r.cfg.FormatDay(d.Date))
		switch {
		case hasToken(d.Class, "today"):
			label = r.style(todayStyle, label)
		case hasToken(d.Class, "past"):
			label = r.style(pastStyle, label)
		}
		labels = append(labels, label)
	}

	lines := []string{strings.Join(labels, " ")}
	for col := 0; col < rows; col++ {
		cells := make([]string, 0, len(days))
		for _, d := range days {
			var e *event.Event
			if col < len(d.Events) {
				e = d.Events[col]
			}
			cells = append(cells, r.event(e))
		}
		lines = append(lines, strings.Join(cells, " "))
	}
	return lines
}

func (r renderer) event(e *event.Event) string {
	if e.IsPlaceholder() {
		return r.cell("")
	}

	text := event.FormatSummary(e, r.cfg)
	if text == event.Blank {
		text = ""
		if e.MultiDay {
			text = strings.Repeat("─", r.width)
		}
	}
	out := r.cell(text)

	if (e.MultiDay || e.FullDay) && strings.HasPrefix(e.Color, "#") {
		out = r.style(lipgloss.NewStyle().Background(lipgloss.Color(e.Color)), out)
	}
	if e.HasClass(event.ClassPast) {
		out = r.style(pastStyle, out)
	}
	return out
}

// cell truncates or pads s to exactly the column width.
func (r renderer) cell(s string) string {
	return runewidth.FillRight(runewidth.Truncate(s, r.width, "…"), r.width)
}

func (r renderer) style(st lipgloss.Style, s string) string {
	if r.plain {
		return s
	}
	return st.Render(s)
}

func hasToken(class, token string) bool {
	for _, c := range strings.Fields(class) {
		if c == token {
			return true
		}
	}
	return false
}
