package model

import (
	"regexp"
	"time"
)

// ClientStatus is the lifecycle state of a counselee.  The only transition
// is ongoing -> completed.
type ClientStatus string

const (
	StatusOngoing   ClientStatus = "ongoing"
	StatusCompleted ClientStatus = "completed"
)

// Valid reports whether s is a known status.
func (s ClientStatus) Valid() bool {
	return s == StatusOngoing || s == StatusCompleted
}

// CanTransitionTo reports whether a client in status s may move to next.
// Staying in the same status is always allowed.
func (s ClientStatus) CanTransitionTo(next ClientStatus) bool {
	if s == next {
		return next.Valid()
	}
	return s == StatusOngoing && next == StatusCompleted
}

// MaxGoalLength bounds a client's goal text, in characters.
const MaxGoalLength = 5000

var slotTime = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// ScheduleSlot is one recurring weekly session, e.g. {"monday", "15:00"}.
type ScheduleSlot struct {
	Day  string `json:"day"`
	Time string `json:"time"`
}

// Valid reports whether the slot names a weekday and a 24h HH:MM time.
func (s ScheduleSlot) Valid() bool {
	return IsWeekday(s.Day) && slotTime.MatchString(s.Time)
}

// Client extends a User with role=client.  CounselorID is nil until the
// client is linked to a counselor.
type Client struct {
	ID             uint64         `json:"id"`
	UserID         uint64         `json:"userId"`
	CounselorID    *uint64        `json:"counselorId"`
	Status         ClientStatus   `json:"status"`
	WeeklySchedule []ScheduleSlot `json:"weeklySchedule"`
	Goal           string         `json:"goal"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}
