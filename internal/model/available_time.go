package model

import (
	"errors"
	"fmt"
)

// SlotsPerDay is the number of fixed time-of-day buckets in a timetable row.
const SlotsPerDay = 15

// Weekdays lists the timetable keys in calendar order.
var Weekdays = []string{
	"sunday",
	"monday",
	"tuesday",
	"wednesday",
	"thursday",
	"friday",
	"saturday",
}

// IsWeekday reports whether day is one of the lower-case weekday names.
func IsWeekday(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

// ErrTimetableShape is returned by Validate for any malformed grid.
var ErrTimetableShape = errors.New("each weekday must be an array of 15 boolean values")

// Timetable maps each weekday to its availability slots.
type Timetable map[string][]bool

// NewEmptyTimetable returns a 7x15 grid with every slot false.
func NewEmptyTimetable() Timetable {
	t := make(Timetable, len(Weekdays))
	for _, d := range Weekdays {
		t[d] = make([]bool, SlotsPerDay)
	}
	return t
}

// Validate checks that all seven weekdays are present, that each has exactly
// SlotsPerDay entries and that no other keys exist.
func (t Timetable) Validate() error {
	if len(t) != len(Weekdays) {
		return fmt.Errorf("%w (got %d days)", ErrTimetableShape, len(t))
	}
	for _, d := range Weekdays {
		slots, ok := t[d]
		if !ok {
			return fmt.Errorf("%w (missing %s)", ErrTimetableShape, d)
		}
		if len(slots) != SlotsPerDay {
			return fmt.Errorf("%w (%s has %d)", ErrTimetableShape, d, len(slots))
		}
	}
	return nil
}

// AvailableTime is the weekly timetable owned by exactly one counselor.
type AvailableTime struct {
	ID          uint64    `json:"id"`
	CounselorID uint64    `json:"counselorId"`
	Timetable   Timetable `json:"timetable"`
}
