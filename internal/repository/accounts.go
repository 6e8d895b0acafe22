package repository

import (
	"context"
	"errors"
	"time"

	"github.com/counselnote/counsel-api/internal/model"
)

// Account is everything registration creates for one person.
type Account struct {
	User          model.User
	Client        *model.Client
	Counselor     *model.Counselor
	AvailableTime *model.AvailableTime
}

// RegisterAccount creates the user and its role profile in one transaction.
// A counselor also gets an empty timetable.  Any failure rolls back every
// write, so no user is left without a profile.
func (s *Store) RegisterAccount(ctx context.Context, u model.User, counselorID *uint64) (*Account, error) {
	var acc Account
	err := s.WithTx(ctx, func(tx *Store) error {
		if err := tx.Users.Create(ctx, &u); err != nil {
			return err
		}
		acc.User = u
		switch u.Role {
		case model.RoleClient:
			c := &model.Client{UserID: u.ID, CounselorID: counselorID, Status: model.StatusOngoing}
			if err := tx.Clients.Create(ctx, c); err != nil {
				return err
			}
			acc.Client = c
		case model.RoleCounselor:
			c := &model.Counselor{UserID: u.ID}
			if err := tx.Counselors.Create(ctx, c); err != nil {
				return err
			}
			at, err := tx.AvailableTimes.Create(ctx, c.ID, model.NewEmptyTimetable())
			if err != nil {
				return err
			}
			acc.Counselor = c
			acc.AvailableTime = at
		default:
			return errors.New("repository: unknown role " + string(u.Role))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// ProfileUpdate carries the editable part of a counselor profile.
type ProfileUpdate struct {
	Contact   string
	IntroText string
}

// ReplaceCounselorFull overwrites the timetable and, when profile is not
// nil, the contact and intro text in one transaction.  If either the
// timetable or the counselor is missing nothing is written and ErrNotFound
// is returned.
func (s *Store) ReplaceCounselorFull(ctx context.Context, counselorID uint64, t model.Timetable, profile *ProfileUpdate) (*model.AvailableTime, *model.CounselorProfile, error) {
	var (
		at *model.AvailableTime
		p  *model.CounselorProfile
	)
	err := s.WithTx(ctx, func(tx *Store) error {
		if err := tx.AvailableTimes.Replace(ctx, counselorID, t); err != nil {
			return err
		}
		if profile != nil {
			if err := tx.Counselors.UpdateProfile(ctx, counselorID, profile.Contact, profile.IntroText); err != nil {
				return err
			}
		}
		var err error
		if p, err = tx.Counselors.GetProfile(ctx, counselorID); err != nil {
			return err
		}
		at, err = tx.AvailableTimes.GetByCounselorID(ctx, counselorID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return at, p, nil
}

// The methods below expose single-repository operations so services can
// depend on one narrow interface satisfied by *Store.

func (s *Store) GetUserByID(ctx context.Context, id uint64) (*model.User, error) {
	return s.Users.GetByID(ctx, id)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.Users.GetByEmail(ctx, email)
}

func (s *Store) GetUserByAuthCode(ctx context.Context, code string) (*model.User, error) {
	return s.Users.GetByAuthCode(ctx, code)
}

func (s *Store) GetUsersByIDs(ctx context.Context, ids []uint64) (map[uint64]model.User, error) {
	return s.Users.ListByIDs(ctx, ids)
}

func (s *Store) GetClientByID(ctx context.Context, id uint64) (*model.Client, error) {
	return s.Clients.GetByID(ctx, id)
}

func (s *Store) GetClientByUserID(ctx context.Context, userID uint64) (*model.Client, error) {
	return s.Clients.GetByUserID(ctx, userID)
}

func (s *Store) ListClientsByCounselor(ctx context.Context, counselorID uint64) ([]model.Client, error) {
	return s.Clients.ListByCounselor(ctx, counselorID)
}

func (s *Store) UpdateClient(ctx context.Context, c *model.Client) error {
	return s.Clients.Update(ctx, c)
}

func (s *Store) GetCounselorByID(ctx context.Context, id uint64) (*model.Counselor, error) {
	return s.Counselors.GetByID(ctx, id)
}

func (s *Store) GetCounselorByUserID(ctx context.Context, userID uint64) (*model.Counselor, error) {
	return s.Counselors.GetByUserID(ctx, userID)
}

func (s *Store) GetCounselorProfile(ctx context.Context, id uint64) (*model.CounselorProfile, error) {
	return s.Counselors.GetProfile(ctx, id)
}

func (s *Store) CreateAvailableTime(ctx context.Context, counselorID uint64, t model.Timetable) (*model.AvailableTime, error) {
	return s.AvailableTimes.Create(ctx, counselorID, t)
}

func (s *Store) GetAvailableTime(ctx context.Context, counselorID uint64) (*model.AvailableTime, error) {
	return s.AvailableTimes.GetByCounselorID(ctx, counselorID)
}

func (s *Store) EmotionRecordExists(ctx context.Context, clientID uint64, day time.Time) (bool, error) {
	return s.EmotionRecords.ExistsForDate(ctx, clientID, day)
}

func (s *Store) CreateEmotionRecord(ctx context.Context, rec *model.EmotionRecord) error {
	return s.EmotionRecords.Create(ctx, rec)
}

func (s *Store) ListEmotionRecordsBetween(ctx context.Context, clientID uint64, from, to time.Time) ([]model.EmotionRecord, error) {
	return s.EmotionRecords.ListBetween(ctx, clientID, from, to)
}

func (s *Store) ListEmotionRecordsBefore(ctx context.Context, clientID uint64, before time.Time, offset, limit int) ([]model.EmotionRecord, error) {
	return s.EmotionRecords.ListBefore(ctx, clientID, before, offset, limit)
}
