// Package recurrence expands recurrence specifications into concrete visit
// dates and converts them to and from their canonical rule-string encoding.
// All functions are pure; validation of user input happens in the callers.
package recurrence

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/careloop/visitcare-api/internal/model"
)

var weekdayToRRule = map[model.Weekday]rrule.Weekday{
	model.WeekdayMonday:    rrule.MO,
	model.WeekdayTuesday:   rrule.TU,
	model.WeekdayWednesday: rrule.WE,
	model.WeekdayThursday:  rrule.TH,
	model.WeekdayFriday:    rrule.FR,
	model.WeekdaySaturday:  rrule.SA,
	model.WeekdaySunday:    rrule.SU,
}

var rruleToWeekday = map[int]model.Weekday{
	rrule.MO.Day(): model.WeekdayMonday,
	rrule.TU.Day(): model.WeekdayTuesday,
	rrule.WE.Day(): model.WeekdayWednesday,
	rrule.TH.Day(): model.WeekdayThursday,
	rrule.FR.Day(): model.WeekdayFriday,
	rrule.SA.Day(): model.WeekdaySaturday,
	rrule.SU.Day(): model.WeekdaySunday,
}

// ExpandDates expands a recurrence spec anchored at startDate into the full,
// ascending list of concrete dates. TypeNone yields exactly [startDate]. For
// the other types the first element is the first rule-satisfying date on or
// after startDate. The spec is assumed to have passed model-level validation;
// an unknown type here is a contract violation.
func ExpandDates(startDate time.Time, spec model.RecurrenceSpec) ([]time.Time, error) {
	start := truncateToDate(startDate)

	if spec.Type == model.RecurrenceNone {
		return []time.Time{start}, nil
	}

	opt := rrule.ROption{Dtstart: start}

	switch spec.Type {
	case model.RecurrenceDaily:
		opt.Freq = rrule.DAILY
	case model.RecurrenceWeekly:
		opt.Freq = rrule.WEEKLY
	case model.RecurrenceBiweekly:
		opt.Freq = rrule.WEEKLY
		opt.Interval = 2
	case model.RecurrenceMonthly:
		// Monthly keeps the anchor's day-of-month via Dtstart.
		opt.Freq = rrule.MONTHLY
	default:
		return nil, fmt.Errorf("recurrence: unknown type %q", spec.Type)
	}

	if spec.Type == model.RecurrenceWeekly || spec.Type == model.RecurrenceBiweekly {
		for _, wd := range spec.Weekdays {
			rwd, ok := weekdayToRRule[wd]
			if !ok {
				return nil, fmt.Errorf("recurrence: unknown weekday code %q", wd)
			}
			opt.Byweekday = append(opt.Byweekday, rwd)
		}
	}

	if spec.End.Until != nil {
		// Inclusive end date: extend to end of day so a date equal to Until
		// is still generated.
		u := truncateToDate(*spec.End.Until)
		opt.Until = u.Add(24*time.Hour - time.Second)
	} else {
		opt.Count = spec.End.Count
	}

	r, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, fmt.Errorf("recurrence: build rule: %w", err)
	}

	dates := r.All()
	for i := range dates {
		dates[i] = truncateToDate(dates[i])
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	if len(dates) == 0 {
		return nil, fmt.Errorf("recurrence: spec produced no dates from %s", start.Format("2006-01-02"))
	}
	return dates, nil
}

// ToRuleString encodes a spec as its canonical rule string, e.g.
// FREQ=WEEKLY;BYDAY=MO,WE;COUNT=4. TypeNone yields the empty string: no rule
// is persisted for singletons. The field order is fixed so the encoding is
// stable and machine-parseable; INTERVAL appears only for biweekly.
func ToRuleString(spec model.RecurrenceSpec) string {
	if spec.Type == model.RecurrenceNone {
		return ""
	}

	var parts []string

	switch spec.Type {
	case model.RecurrenceDaily:
		parts = append(parts, "FREQ=DAILY")
	case model.RecurrenceWeekly:
		parts = append(parts, "FREQ=WEEKLY")
	case model.RecurrenceBiweekly:
		parts = append(parts, "FREQ=WEEKLY", "INTERVAL=2")
	case model.RecurrenceMonthly:
		parts = append(parts, "FREQ=MONTHLY")
	}

	if (spec.Type == model.RecurrenceWeekly || spec.Type == model.RecurrenceBiweekly) && len(spec.Weekdays) > 0 {
		codes := make([]string, len(spec.Weekdays))
		for i, wd := range spec.Weekdays {
			codes[i] = string(wd)
		}
		parts = append(parts, "BYDAY="+strings.Join(codes, ","))
	}

	if spec.End.Until != nil {
		parts = append(parts, fmt.Sprintf("UNTIL=%sT235959Z", spec.End.Until.Format("20060102")))
	} else {
		parts = append(parts, fmt.Sprintf("COUNT=%d", spec.End.Count))
	}

	return strings.Join(parts, ";")
}

// ParseRuleString decodes a rule string produced by ToRuleString back into a
// spec. It recovers the semantic fields the string encodes: recurrence type,
// weekday set and end condition. An empty string decodes to TypeNone.
func ParseRuleString(s string) (model.RecurrenceSpec, error) {
	if s == "" {
		return model.RecurrenceSpec{Type: model.RecurrenceNone}, nil
	}

	opt, err := rrule.StrToROption(s)
	if err != nil {
		return model.RecurrenceSpec{}, fmt.Errorf("recurrence: parse rule %q: %w", s, err)
	}

	spec := model.RecurrenceSpec{}

	switch opt.Freq {
	case rrule.DAILY:
		spec.Type = model.RecurrenceDaily
	case rrule.WEEKLY:
		if opt.Interval == 2 {
			spec.Type = model.RecurrenceBiweekly
		} else {
			spec.Type = model.RecurrenceWeekly
		}
	case rrule.MONTHLY:
		spec.Type = model.RecurrenceMonthly
	default:
		return model.RecurrenceSpec{}, fmt.Errorf("recurrence: unsupported frequency in %q", s)
	}

	for _, wd := range opt.Byweekday {
		code, ok := rruleToWeekday[wd.Day()]
		if !ok {
			return model.RecurrenceSpec{}, fmt.Errorf("recurrence: unsupported weekday in %q", s)
		}
		spec.Weekdays = append(spec.Weekdays, code)
	}

	if !opt.Until.IsZero() {
		u := truncateToDate(opt.Until)
		spec.End.Until = &u
	} else {
		spec.End.Count = opt.Count
	}

	return spec, nil
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
