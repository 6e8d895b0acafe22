// Package service holds the business flows behind the HTTP handlers.  Every
// error leaving this package is an *apperror.AppError so handlers only have
// to translate its type into a status code.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/counselnote/counsel-api/internal/apperror"
	"github.com/counselnote/counsel-api/internal/model"
	"github.com/counselnote/counsel-api/internal/queue"
	"github.com/counselnote/counsel-api/internal/repository"
)

// EventPublisher is satisfied by *queue.Publisher.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.Event) error
}

// AccountStore is the part of *repository.Store used by AuthService.
type AccountStore interface {
	RegisterAccount(ctx context.Context, u model.User, counselorID *uint64) (*repository.Account, error)
	GetUserByID(ctx context.Context, id uint64) (*model.User, error)
	GetUserByAuthCode(ctx context.Context, code string) (*model.User, error)
	GetClientByUserID(ctx context.Context, userID uint64) (*model.Client, error)
	GetCounselorByID(ctx context.Context, id uint64) (*model.Counselor, error)
	GetCounselorByUserID(ctx context.Context, userID uint64) (*model.Counselor, error)
}

// CounselorStore is the part of *repository.Store used by CounselorService.
type CounselorStore interface {
	GetCounselorByID(ctx context.Context, id uint64) (*model.Counselor, error)
	GetCounselorByUserID(ctx context.Context, userID uint64) (*model.Counselor, error)
	GetCounselorProfile(ctx context.Context, id uint64) (*model.CounselorProfile, error)
	ListClientsByCounselor(ctx context.Context, counselorID uint64) ([]model.Client, error)
	GetUsersByIDs(ctx context.Context, ids []uint64) (map[uint64]model.User, error)
	GetClientByID(ctx context.Context, id uint64) (*model.Client, error)
	UpdateClient(ctx context.Context, c *model.Client) error
	CreateAvailableTime(ctx context.Context, counselorID uint64, t model.Timetable) (*model.AvailableTime, error)
	GetAvailableTime(ctx context.Context, counselorID uint64) (*model.AvailableTime, error)
	ReplaceCounselorFull(ctx context.Context, counselorID uint64, t model.Timetable, profile *repository.ProfileUpdate) (*model.AvailableTime, *model.CounselorProfile, error)
}

// EmotionStore is the part of *repository.Store used by EmotionService.
type EmotionStore interface {
	GetClientByID(ctx context.Context, id uint64) (*model.Client, error)
	GetClientByUserID(ctx context.Context, userID uint64) (*model.Client, error)
	GetCounselorByUserID(ctx context.Context, userID uint64) (*model.Counselor, error)
	EmotionRecordExists(ctx context.Context, clientID uint64, day time.Time) (bool, error)
	CreateEmotionRecord(ctx context.Context, rec *model.EmotionRecord) error
	ListEmotionRecordsBetween(ctx context.Context, clientID uint64, from, to time.Time) ([]model.EmotionRecord, error)
	ListEmotionRecordsBefore(ctx context.Context, clientID uint64, before time.Time, offset, limit int) ([]model.EmotionRecord, error)
}

var (
	_ AccountStore   = (*repository.Store)(nil)
	_ CounselorStore = (*repository.Store)(nil)
	_ EmotionStore   = (*repository.Store)(nil)
	_ EventPublisher = (*queue.Publisher)(nil)
)

const serverError = "Server error"

// lookup converts a repository read error: ErrNotFound becomes the given
// not-found error, everything else is internal.
func lookup(err error, notFound *apperror.AppError) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound
	}
	return apperror.Internal(serverError, err)
}

// maxLength rejects s when it has more than max characters.
func maxLength(field, s string, max int) error {
	if utf8.RuneCountInString(s) > max {
		return apperror.Validation(fmt.Sprintf("%s must be at most %d characters.", field, max))
	}
	return nil
}

func publish(ctx context.Context, p EventPublisher, ev queue.Event) {
	if p == nil {
		return
	}
	_ = p.Publish(ctx, ev)
}
