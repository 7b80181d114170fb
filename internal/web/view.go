package web

import (
	"time"

	"weekcal/internal/config"
	"weekcal/internal/event"
	"weekcal/internal/grid"
)

// gridView is the render-ready shape shared by /api/days, /ws and the
// /calendar template. Summaries are already formatted.
type gridView struct {
	Title     string    `json:"title,omitempty"`
	Weekdays  []string  `json:"weekdays"`
	Days      []dayView `json:"days"`
	Error     string    `json:"error,omitempty"`
	Ready     bool      `json:"ready"`
	UpdatedAt time.Time `json:"updated_at"`
}

type dayView struct {
	Date   string      `json:"date"`
	Label  string      `json:"label"`
	Class  string      `json:"class"`
	Events []eventView `json:"events"`
}

type eventView struct {
	Summary     string `json:"summary"`
	Class       string `json:"class"`
	Calendar    string `json:"calendar_entity,omitempty"`
	Color       string `json:"color,omitempty"`
	Placeholder bool   `json:"placeholder,omitempty"`
}

func buildView(cfg *config.Config, snap grid.Snapshot) gridView {
	v := gridView{
		Title:     cfg.Title,
		Weekdays:  cfg.WeekdayLabels(),
		Days:      make([]dayView, 0, len(snap.Days)),
		Error:     snap.Error,
		Ready:     snap.Days != nil,
		UpdatedAt: snap.UpdatedAt,
	}

	for _, d := range snap.Days {
		dv := dayView{
			Date:   grid.DateKey(d.Date),
			Label:  cfg.FormatDay(d.Date),
			Class:  d.Class,
			Events: make([]eventView, 0, len(d.Events)),
		}
		for _, e := range d.Events {
			ev := eventView{
				Summary:     event.FormatSummary(e, cfg),
				Class:       e.Class,
				Calendar:    e.CalendarEntity,
				Placeholder: e.IsPlaceholder(),
			}
			// 배경색은 종일/여러 날 일정에만 적용한다.
			if e.MultiDay || e.FullDay {
				ev.Color = e.Color
			}
			dv.Events = append(dv.Events, ev)
		}
		v.Days = append(v.Days, dv)
	}
	return v
}
