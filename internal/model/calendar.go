package model

import (
	"time"

	"github.com/google/uuid"
)

type CalendarGranularity string

const (
	GranularityDay   CalendarGranularity = "day"
	GranularityWeek  CalendarGranularity = "week"
	GranularityMonth CalendarGranularity = "month"
)

// CalendarEvent is a read-only projection of a Visit for presentation. It is
// recomputed whenever the visit set changes, never mutated in place.
type CalendarEvent struct {
	VisitID   uuid.UUID   `json:"visit_id"`
	Title     string      `json:"title"`
	VisitDate time.Time   `json:"visit_date"`
	StartTime string      `json:"start_time"`
	EndTime   string      `json:"end_time"`
	Color     string      `json:"color"`
	Status    VisitStatus `json:"status"`
}

// ScheduleChange is the payload published on a facility's schedule channel.
// It carries no data beyond "this visit changed"; receivers refetch.
type ScheduleChange struct {
	EventID       string    `json:"event_id"`
	VisitID       string    `json:"visit_id"`
	Action        string    `json:"action"`
	ActingStaffID string    `json:"acting_staff_id"`
	Timestamp     time.Time `json:"timestamp"`
}

const (
	ChangeActionCreate = "create"
	ChangeActionUpdate = "update"
	ChangeActionDelete = "delete"
)
