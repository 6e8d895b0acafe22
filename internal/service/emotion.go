package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/counselnote/counsel-api/internal/apperror"
	"github.com/counselnote/counsel-api/internal/model"
	"github.com/counselnote/counsel-api/internal/queue"
	"github.com/counselnote/counsel-api/internal/repository"
)

const (
	recentDays   = 7
	defaultLimit = 10
	maxLimit     = 100

	msgDuplicateRecord = "Emotion record for this date already exists."
)

type EmotionService struct {
	store  EmotionStore
	events EventPublisher
	now    func() time.Time
}

func NewEmotionService(store EmotionStore, events EventPublisher) *EmotionService {
	return &EmotionService{store: store, events: events, now: time.Now}
}

// RecordInput is the body of POST /emotion-records.
type RecordInput struct {
	Date     string
	Answer1  string
	Answer2  string
	Answer3  string
	Emotions []model.Emotion
}

// DayRecord is one entry of a history page.  Record is nil for a recent
// day without a check-in.
type DayRecord struct {
	Date   string               `json:"date"`
	Record *model.EmotionRecord `json:"record"`
}

// History is one page of a client's emotion records.
type History struct {
	ClientID uint64      `json:"clientId"`
	Page     int         `json:"page"`
	Limit    int         `json:"limit"`
	Records  []DayRecord `json:"records"`
}

// ParseRecordDate accepts YYYY-MM-DD or RFC3339 and returns the UTC day.
func ParseRecordDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return model.Day(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return model.Day(t), nil
}

// ParsePage reads the page and limit query values.  Empty values take the
// defaults; limit is capped at 100.
func ParsePage(pageStr, limitStr string) (page, limit int, err error) {
	page, limit = 1, defaultLimit
	if pageStr != "" {
		if page, err = strconv.Atoi(pageStr); err != nil || page < 1 {
			return 0, 0, apperror.Validation("page must be a positive integer")
		}
	}
	if limitStr != "" {
		if limit, err = strconv.Atoi(limitStr); err != nil || limit < 1 {
			return 0, 0, apperror.Validation("limit must be a positive integer")
		}
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit, nil
}

// Create stores the check-in of the client owned by userID for one day.
func (s *EmotionService) Create(ctx context.Context, userID uint64, in RecordInput) (*model.EmotionRecord, error) {
	c, err := s.store.GetClientByUserID(ctx, userID)
	if err != nil {
		return nil, lookup(err, apperror.NotFound("Client profile not found."))
	}
	day, err := ParseRecordDate(in.Date)
	if err != nil {
		return nil, apperror.Validation("Date must be YYYY-MM-DD or an RFC3339 timestamp.")
	}
	exists, err := s.store.EmotionRecordExists(ctx, c.ID, day)
	if err != nil {
		return nil, apperror.Internal(serverError, err)
	}
	if exists {
		return nil, apperror.Validation(msgDuplicateRecord)
	}

	rec := &model.EmotionRecord{
		ClientID: c.ID,
		Date:     day,
		Answer1:  in.Answer1,
		Answer2:  in.Answer2,
		Answer3:  in.Answer3,
		Emotions: in.Emotions,
	}
	if err := rec.Validate(); err != nil {
		if errors.Is(err, model.ErrEmotionCount) {
			return nil, apperror.Validation("Must provide 1 to 3 emotions.")
		}
		return nil, apperror.Validation("Invalid emotion record: " + err.Error())
	}
	if err := s.store.CreateEmotionRecord(ctx, rec); err != nil {
		if errors.Is(err, repository.ErrRecordExists) {
			return nil, apperror.Validation(msgDuplicateRecord)
		}
		return nil, apperror.Internal(serverError, err)
	}
	publish(ctx, s.events, queue.EmotionRecordCreated(c.ID, rec.ID, rec.Date, s.now()))
	return rec, nil
}

// History returns one page of records for clientID.  Page 1 starts with
// the last seven UTC days, today first, with a nil record for days without
// a check-in; every page then lists up to limit older records, newest
// first.  Only the client and its counselor may read them.
func (s *EmotionService) History(ctx context.Context, userID, clientID uint64, page, limit int) (*History, error) {
	c, err := s.store.GetClientByID(ctx, clientID)
	if err != nil {
		return nil, lookup(err, apperror.NotFound("Client not found."))
	}
	if err := s.authorize(ctx, userID, c); err != nil {
		return nil, err
	}

	today := model.Day(s.now())
	oldestRecent := today.AddDate(0, 0, -(recentDays - 1))
	out := &History{ClientID: c.ID, Page: page, Limit: limit, Records: []DayRecord{}}

	if page == 1 {
		recent, err := s.store.ListEmotionRecordsBetween(ctx, c.ID, oldestRecent, today)
		if err != nil {
			return nil, apperror.Internal(serverError, err)
		}
		byDay := make(map[string]*model.EmotionRecord, len(recent))
		for i := range recent {
			byDay[recent[i].Date.Format(time.DateOnly)] = &recent[i]
		}
		for d := today; !d.Before(oldestRecent); d = d.AddDate(0, 0, -1) {
			key := d.Format(time.DateOnly)
			out.Records = append(out.Records, DayRecord{Date: key, Record: byDay[key]})
		}
	}

	older, err := s.store.ListEmotionRecordsBefore(ctx, c.ID, oldestRecent, (page-1)*limit, limit)
	if err != nil {
		return nil, apperror.Internal(serverError, err)
	}
	for i := range older {
		out.Records = append(out.Records, DayRecord{Date: older[i].Date.Format(time.DateOnly), Record: &older[i]})
	}
	return out, nil
}

func (s *EmotionService) authorize(ctx context.Context, userID uint64, c *model.Client) error {
	if c.UserID == userID {
		return nil
	}
	if c.CounselorID != nil {
		co, err := s.store.GetCounselorByUserID(ctx, userID)
		switch {
		case err == nil && co.ID == *c.CounselorID:
			return nil
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return apperror.Internal(serverError, err)
		}
	}
	return apperror.Forbidden("You do not have access to these records.")
}
