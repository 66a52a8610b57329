package schedule

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/careloop/visitcare-api/internal/model"
)

// monthPadding widens a month window by a week on each side so the partial
// weeks at the month boundary are covered.
const monthPadding = 7 * 24 * time.Hour

// RangeFor computes the inclusive [start, end] date window for an anchor date
// at the given granularity. Weeks start on Monday.
func RangeFor(anchor time.Time, granularity model.CalendarGranularity) (time.Time, time.Time, error) {
	day := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, time.UTC)

	switch granularity {
	case model.GranularityDay:
		return day, day, nil

	case model.GranularityWeek:
		offset := (int(day.Weekday()) + 6) % 7 // days since Monday
		start := day.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 6), nil

	case model.GranularityMonth:
		first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
		last := first.AddDate(0, 1, -1)
		return first.Add(-monthPadding), last.Add(monthPadding), nil

	default:
		return time.Time{}, time.Time{}, fmt.Errorf("unknown calendar granularity %q", granularity)
	}
}

// Colors keyed by service type category; unknown categories fall back to grey.
var categoryColors = map[string]string{
	"physical_care": "#4f86c6",
	"domestic_help": "#67b26f",
	"nursing":       "#d96c6c",
	"rehab":         "#c9a227",
}

const defaultEventColor = "#9aa0a6"

// EventsFromVisits projects visits into calendar events. It is a pure
// function over its inputs so the projection can be tested without any view
// state; the view recomputes it whenever the visit set changes.
func EventsFromVisits(visits []*model.Visit, categoryByType map[uuid.UUID]string) []model.CalendarEvent {
	events := make([]model.CalendarEvent, 0, len(visits))
	for _, v := range visits {
		color := defaultEventColor
		if v.ServiceTypeID != nil {
			if cat, ok := categoryByType[*v.ServiceTypeID]; ok {
				if c, ok := categoryColors[cat]; ok {
					color = c
				}
			}
		}
		events = append(events, model.CalendarEvent{
			VisitID:   v.ID,
			Title:     fmt.Sprintf("%s / %s", v.ClientName, v.StaffName),
			VisitDate: v.VisitDate,
			StartTime: v.StartTime,
			EndTime:   v.EndTime,
			Color:     color,
			Status:    v.Status,
		})
	}
	return events
}
