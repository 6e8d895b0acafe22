package service

import (
	"context"
	"errors"
	"time"

	"github.com/counselnote/counsel-api/internal/apperror"
	"github.com/counselnote/counsel-api/internal/model"
	"github.com/counselnote/counsel-api/internal/repository"
)

const msgTimetableShape = "Each weekday must be an array of 15 boolean values."

type CounselorService struct {
	store CounselorStore
}

func NewCounselorService(store CounselorStore) *CounselorService {
	return &CounselorService{store: store}
}

// ClientSummary is one row of a counselor's client list.
type ClientSummary struct {
	ClientID       uint64               `json:"clientId"`
	CounselorID    *uint64              `json:"counselorId"`
	Name           string               `json:"name"`
	Status         model.ClientStatus   `json:"status"`
	CreatedAt      time.Time            `json:"createdAt"`
	Goal           string               `json:"goal"`
	WeeklySchedule []model.ScheduleSlot `json:"weeklySchedule"`
}

// CounselorFull is the composite timetable-plus-profile resource.
type CounselorFull struct {
	Timetable        model.Timetable        `json:"timetable"`
	CounselorProfile model.CounselorProfile `json:"counselorProfile"`
}

// ClientUpdate carries the fields a counselor may change on a client.  Nil
// fields are left untouched.
type ClientUpdate struct {
	Goal           *string
	WeeklySchedule []model.ScheduleSlot
	Status         *string
}

// ListClients returns the clients linked to the counselor owned by userID,
// oldest first, with each client's display name.
func (s *CounselorService) ListClients(ctx context.Context, userID uint64) ([]ClientSummary, error) {
	co, err := s.store.GetCounselorByUserID(ctx, userID)
	if err != nil {
		return nil, lookup(err, apperror.NotFound("Counselor not found"))
	}
	clients, err := s.store.ListClientsByCounselor(ctx, co.ID)
	if err != nil {
		return nil, apperror.Internal(serverError, err)
	}
	ids := make([]uint64, 0, len(clients))
	for _, c := range clients {
		ids = append(ids, c.UserID)
	}
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, apperror.Internal(serverError, err)
	}
	out := make([]ClientSummary, 0, len(clients))
	for _, c := range clients {
		out = append(out, summarize(c, users[c.UserID].Name))
	}
	return out, nil
}

func summarize(c model.Client, name string) ClientSummary {
	schedule := c.WeeklySchedule
	if schedule == nil {
		schedule = []model.ScheduleSlot{}
	}
	return ClientSummary{
		ClientID:       c.ID,
		CounselorID:    c.CounselorID,
		Name:           name,
		Status:         c.Status,
		CreatedAt:      c.CreatedAt,
		Goal:           c.Goal,
		WeeklySchedule: schedule,
	}
}

// Profile returns the public profile of a counselor.
func (s *CounselorService) Profile(ctx context.Context, counselorID uint64) (*model.CounselorProfile, error) {
	p, err := s.store.GetCounselorProfile(ctx, counselorID)
	if err != nil {
		return nil, lookup(err, apperror.NotFound("Counselor not found"))
	}
	return p, nil
}

// CreateTimetable stores an all-false timetable for a counselor that has
// none yet.
func (s *CounselorService) CreateTimetable(ctx context.Context, counselorID uint64) (*model.AvailableTime, error) {
	if _, err := s.store.GetCounselorByID(ctx, counselorID); err != nil {
		return nil, lookup(err, apperror.NotFound("Counselor not found"))
	}
	at, err := s.store.CreateAvailableTime(ctx, counselorID, model.NewEmptyTimetable())
	if err != nil {
		if errors.Is(err, repository.ErrTimetableExists) {
			return nil, apperror.Validation("Schedule already exists for this counselor.")
		}
		return nil, apperror.Internal(serverError, err)
	}
	return at, nil
}

// Timetable returns only the availability grid of a counselor.
func (s *CounselorService) Timetable(ctx context.Context, counselorID uint64) (model.Timetable, error) {
	at, err := s.store.GetAvailableTime(ctx, counselorID)
	if err != nil {
		return nil, lookup(err, apperror.NotFound("Timetable not found"))
	}
	return at.Timetable, nil
}

// Full returns the timetable together with the counselor profile.
func (s *CounselorService) Full(ctx context.Context, counselorID uint64) (*CounselorFull, error) {
	at, err := s.store.GetAvailableTime(ctx, counselorID)
	if err != nil {
		return nil, lookup(err, apperror.NotFound("Schedule not found"))
	}
	p, err := s.store.GetCounselorProfile(ctx, counselorID)
	if err != nil {
		return nil, lookup(err, apperror.NotFound("Counselor not found"))
	}
	return &CounselorFull{Timetable: at.Timetable, CounselorProfile: *p}, nil
}

// ReplaceFull validates the grid shape before touching the store, then
// replaces timetable and profile atomically.  A nil profile leaves contact
// and intro text as they are.
func (s *CounselorService) ReplaceFull(ctx context.Context, counselorID uint64, t model.Timetable, profile *repository.ProfileUpdate) (*CounselorFull, error) {
	if err := t.Validate(); err != nil {
		return nil, apperror.Validation(msgTimetableShape)
	}
	if profile != nil {
		if err := maxLength("Contact", profile.Contact, model.MaxContactLength); err != nil {
			return nil, err
		}
		if err := maxLength("Intro text", profile.IntroText, model.MaxIntroTextLength); err != nil {
			return nil, err
		}
	}
	at, p, err := s.store.ReplaceCounselorFull(ctx, counselorID, t, profile)
	if err != nil {
		return nil, lookup(err, apperror.NotFound("Counselor or timetable not found."))
	}
	return &CounselorFull{Timetable: at.Timetable, CounselorProfile: *p}, nil
}

// UpdateClient lets a counselor edit goal, schedule and status of one of
// its own clients.  Status only moves from ongoing to completed.
func (s *CounselorService) UpdateClient(ctx context.Context, userID, clientID uint64, in ClientUpdate) (*ClientSummary, error) {
	co, err := s.store.GetCounselorByUserID(ctx, userID)
	if err != nil {
		return nil, lookup(err, apperror.NotFound("Counselor not found"))
	}
	c, err := s.store.GetClientByID(ctx, clientID)
	if err != nil {
		return nil, lookup(err, apperror.NotFound("Client not found."))
	}
	if c.CounselorID == nil || *c.CounselorID != co.ID {
		return nil, apperror.Forbidden("This client is not assigned to you.")
	}

	if in.Goal != nil {
		if err := maxLength("Goal", *in.Goal, model.MaxGoalLength); err != nil {
			return nil, err
		}
		c.Goal = *in.Goal
	}
	if in.WeeklySchedule != nil {
		for _, slot := range in.WeeklySchedule {
			if !slot.Valid() {
				return nil, apperror.Validation("Each schedule slot needs a weekday and an HH:MM time.")
			}
		}
		c.WeeklySchedule = in.WeeklySchedule
	}
	if in.Status != nil {
		next := model.ClientStatus(*in.Status)
		if !next.Valid() {
			return nil, apperror.Validation("Status must be ongoing or completed.")
		}
		if !c.Status.CanTransitionTo(next) {
			return nil, apperror.Validation("A completed client cannot be reopened.")
		}
		c.Status = next
	}

	if err := s.store.UpdateClient(ctx, c); err != nil {
		return nil, lookup(err, apperror.NotFound("Client not found."))
	}
	users, err := s.store.GetUsersByIDs(ctx, []uint64{c.UserID})
	if err != nil {
		return nil, apperror.Internal(serverError, err)
	}
	sum := summarize(*c, users[c.UserID].Name)
	return &sum, nil
}
