package model

import (
	"fmt"
	"time"
)

type RecurrenceType string

const (
	RecurrenceNone     RecurrenceType = "none"
	RecurrenceDaily    RecurrenceType = "daily"
	RecurrenceWeekly   RecurrenceType = "weekly"
	RecurrenceBiweekly RecurrenceType = "biweekly"
	RecurrenceMonthly  RecurrenceType = "monthly"
)

type Weekday string

const (
	WeekdayMonday    Weekday = "MO"
	WeekdayTuesday   Weekday = "TU"
	WeekdayWednesday Weekday = "WE"
	WeekdayThursday  Weekday = "TH"
	WeekdayFriday    Weekday = "FR"
	WeekdaySaturday  Weekday = "SA"
	WeekdaySunday    Weekday = "SU"
)

const (
	MinRepeatCount = 1
	MaxRepeatCount = 52
)

// RecurrenceEnd is either a repeat count or an explicit inclusive end date.
// Exactly one of the two is set.
type RecurrenceEnd struct {
	Count int        `json:"count,omitempty"`
	Until *time.Time `json:"until,omitempty"`
}

// RecurrenceSpec is the transient, form-only recurrence specification. It is
// consumed once to generate dates and a rule string and never persisted as a
// structured object.
type RecurrenceSpec struct {
	Type     RecurrenceType `json:"type" binding:"required,oneof=none daily weekly biweekly monthly"`
	Weekdays []Weekday      `json:"weekdays,omitempty"`
	End      RecurrenceEnd  `json:"end"`
}

// Validate enforces the form-level invariants before a series is generated.
// The recurrence engine itself assumes a spec that passed this check.
func (s *RecurrenceSpec) Validate(startDate time.Time) error {
	switch s.Type {
	case RecurrenceNone:
		return nil
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceBiweekly, RecurrenceMonthly:
	default:
		return fmt.Errorf("unknown recurrence type %q", s.Type)
	}

	if (s.Type == RecurrenceWeekly || s.Type == RecurrenceBiweekly) && len(s.Weekdays) == 0 {
		return fmt.Errorf("%s recurrence requires at least one weekday", s.Type)
	}
	for _, wd := range s.Weekdays {
		switch wd {
		case WeekdayMonday, WeekdayTuesday, WeekdayWednesday, WeekdayThursday,
			WeekdayFriday, WeekdaySaturday, WeekdaySunday:
		default:
			return fmt.Errorf("unknown weekday code %q", wd)
		}
	}

	if s.End.Until != nil {
		if s.End.Count != 0 {
			return fmt.Errorf("recurrence end must be a count or an end date, not both")
		}
		if s.End.Until.Before(startDate) {
			return fmt.Errorf("recurrence end date %s is before the series start %s",
				s.End.Until.Format("2006-01-02"), startDate.Format("2006-01-02"))
		}
		return nil
	}

	if s.End.Count < MinRepeatCount || s.End.Count > MaxRepeatCount {
		return fmt.Errorf("repeat count must be between %d and %d, got %d",
			MinRepeatCount, MaxRepeatCount, s.End.Count)
	}
	return nil
}
