package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type VisitStatus string

const (
	VisitStatusScheduled VisitStatus = "scheduled"
	VisitStatusCompleted VisitStatus = "completed"
	VisitStatusCancelled VisitStatus = "cancelled"
)

// Visit is one concrete planned home visit. Visits generated together from a
// recurrence specification share a RecurrenceGroupID; a visit without one is a
// singleton and carries no group semantics even if a rule string is present.
type Visit struct {
	Base
	FacilityID        uuid.UUID   `db:"facility_id" json:"facility_id"`
	ClientID          uuid.UUID   `db:"client_id" json:"client_id"`
	ClientName        string      `db:"client_name" json:"client_name"`
	StaffID           uuid.UUID   `db:"staff_id" json:"staff_id"`
	StaffName         string      `db:"staff_name" json:"staff_name"`
	ServiceTypeID     *uuid.UUID  `db:"service_type_id" json:"service_type_id,omitempty"`
	VisitDate         time.Time   `db:"visit_date" json:"visit_date"`
	StartTime         string      `db:"start_time" json:"start_time"`
	EndTime           string      `db:"end_time" json:"end_time"`
	Status            VisitStatus `db:"status" json:"status"`
	Notes             string      `db:"notes" json:"notes,omitempty"`
	RecurrenceRule    *string     `db:"recurrence_rule" json:"recurrence_rule,omitempty"`
	RecurrenceGroupID *uuid.UUID  `db:"recurrence_group_id" json:"recurrence_group_id,omitempty"`
}

// IsRecurring reports whether the visit belongs to a scoped-edit group.
func (v *Visit) IsRecurring() bool {
	return v.RecurrenceGroupID != nil
}

// VisitDraft carries the fields needed to persist a new visit.
type VisitDraft struct {
	FacilityID        uuid.UUID
	ClientID          uuid.UUID
	StaffID           uuid.UUID
	ServiceTypeID     *uuid.UUID
	VisitDate         time.Time
	StartTime         string
	EndTime           string
	Notes             string
	RecurrenceRule    *string
	RecurrenceGroupID *uuid.UUID
}

// VisitUpdate is a partial update: only non-nil fields change.
// VisitDate is deliberately included here for single-visit reschedules; scoped
// group edits never set it (the date is occurrence-specific).
type VisitUpdate struct {
	ClientID      *uuid.UUID   `json:"client_id,omitempty"`
	StaffID       *uuid.UUID   `json:"staff_id,omitempty"`
	ServiceTypeID *uuid.UUID   `json:"service_type_id,omitempty"`
	VisitDate     *time.Time   `json:"visit_date,omitempty"`
	StartTime     *string      `json:"start_time,omitempty"`
	EndTime       *string      `json:"end_time,omitempty"`
	Status        *VisitStatus `json:"status,omitempty"`
	Notes         *string      `json:"notes,omitempty"`
}

// IsEmpty reports whether the update would change nothing.
func (u *VisitUpdate) IsEmpty() bool {
	return u.ClientID == nil && u.StaffID == nil && u.ServiceTypeID == nil &&
		u.VisitDate == nil && u.StartTime == nil && u.EndTime == nil &&
		u.Status == nil && u.Notes == nil
}

// ParseVisitTime parses an "HH:MM" local time-of-day value.
func ParseVisitTime(s string) (time.Time, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return t, nil
}

// ValidateTimeOrder checks the startTime < endTime invariant.
func ValidateTimeOrder(start, end string) error {
	s, err := ParseVisitTime(start)
	if err != nil {
		return err
	}
	e, err := ParseVisitTime(end)
	if err != nil {
		return err
	}
	if !s.Before(e) {
		return fmt.Errorf("start time %s must be before end time %s", start, end)
	}
	return nil
}

type CreateVisitRequest struct {
	ClientID      string          `json:"client_id" binding:"required,uuid"`
	StaffID       string          `json:"staff_id" binding:"required,uuid"`
	ServiceTypeID string          `json:"service_type_id" binding:"omitempty,uuid"`
	VisitDate     string          `json:"visit_date" binding:"required,datetime=2006-01-02"`
	StartTime     string          `json:"start_time" binding:"required,timeofday"`
	EndTime       string          `json:"end_time" binding:"required,timeofday"`
	Notes         string          `json:"notes" binding:"max=2000"`
	Recurrence    *RecurrenceSpec `json:"recurrence,omitempty"`
}

type ScopedEditRequest struct {
	Scope   string             `json:"scope" binding:"required,oneof=single this_and_future all"`
	Changes UpdateVisitRequest `json:"changes" binding:"required"`
}

type UpdateVisitRequest struct {
	ClientID      *string      `json:"client_id" binding:"omitempty,uuid"`
	StaffID       *string      `json:"staff_id" binding:"omitempty,uuid"`
	ServiceTypeID *string      `json:"service_type_id" binding:"omitempty,uuid"`
	VisitDate     *string      `json:"visit_date" binding:"omitempty,datetime=2006-01-02"`
	StartTime     *string      `json:"start_time" binding:"omitempty,timeofday"`
	EndTime       *string      `json:"end_time" binding:"omitempty,timeofday"`
	Status        *VisitStatus `json:"status" binding:"omitempty,oneof=scheduled completed cancelled"`
	Notes         *string      `json:"notes" binding:"omitempty,max=2000"`
}
