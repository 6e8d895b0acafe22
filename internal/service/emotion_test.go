package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/counselnote/counsel-api/internal/apperror"
	"github.com/counselnote/counsel-api/internal/model"
	"github.com/counselnote/counsel-api/internal/queue"
	"github.com/counselnote/counsel-api/internal/repository"
)

var clock = time.Date(2026, 10, 19, 22, 15, 0, 0, time.UTC)

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func newEmotion(store *MockStore, pub *MockPublisher) *EmotionService {
	var events EventPublisher
	if pub != nil {
		events = pub
	}
	s := NewEmotionService(store, events)
	s.now = func() time.Time { return clock }
	return s
}

func validInput(date string) RecordInput {
	return RecordInput{
		Date:     date,
		Answer1:  "slept badly",
		Emotions: []model.Emotion{{Category: "sad", Subcategory: "tired", Feeling: "negative", Intensity: 3}},
	}
}

func TestParseRecordDate(t *testing.T) {
	got, err := ParseRecordDate("2026-10-19")
	require.NoError(t, err)
	assert.Equal(t, day("2026-10-19"), got)

	got, err = ParseRecordDate("2026-10-19T23:30:00-03:00")
	require.NoError(t, err)
	assert.Equal(t, day("2026-10-20"), got)

	_, err = ParseRecordDate("19/10/2026")
	assert.Error(t, err)
}

func TestParsePage(t *testing.T) {
	cases := []struct {
		page, limit       string
		wantPage, wantLim int
		wantErr           bool
	}{
		{"", "", 1, 10, false},
		{"3", "25", 3, 25, false},
		{"1", "500", 1, 100, false},
		{"0", "", 0, 0, true},
		{"x", "", 0, 0, true},
		{"", "-1", 0, 0, true},
		{"", "ten", 0, 0, true},
	}
	for _, tc := range cases {
		p, l, err := ParsePage(tc.page, tc.limit)
		if tc.wantErr {
			assert.True(t, apperror.IsType(err, apperror.TypeValidation), "page=%q limit=%q", tc.page, tc.limit)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tc.wantPage, p)
		assert.Equal(t, tc.wantLim, l)
	}
}

func TestCreateRecord(t *testing.T) {
	store := new(MockStore)
	pub := new(MockPublisher)
	store.On("GetClientByUserID", mock.Anything, uint64(9)).Return(&model.Client{ID: 3, UserID: 9}, nil)
	store.On("EmotionRecordExists", mock.Anything, uint64(3), day("2026-10-18")).Return(false, nil)
	store.On("CreateEmotionRecord", mock.Anything, mock.MatchedBy(func(r *model.EmotionRecord) bool {
		return r.ClientID == 3 && r.Date.Equal(day("2026-10-18"))
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*model.EmotionRecord).ID = 11
	}).Return(nil)
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(ev queue.Event) bool {
		return ev.Type == queue.TypeEmotionRecordCreated && ev.RecordID == 11 && ev.RecordDate == "2026-10-18"
	})).Return(nil)

	rec, err := newEmotion(store, pub).Create(context.Background(), 9, validInput("2026-10-18"))
	require.NoError(t, err)
	assert.Equal(t, uint64(11), rec.ID)
	pub.AssertExpectations(t)
}

func TestCreateRecord_Rejections(t *testing.T) {
	t.Run("no client profile", func(t *testing.T) {
		store := new(MockStore)
		store.On("GetClientByUserID", mock.Anything, uint64(1)).Return(nil, repository.ErrNotFound)
		_, err := newEmotion(store, nil).Create(context.Background(), 1, validInput("2026-10-18"))
		assert.Equal(t, "Client profile not found.", apperror.As(err).Message)
	})

	t.Run("duplicate date", func(t *testing.T) {
		store := new(MockStore)
		store.On("GetClientByUserID", mock.Anything, uint64(9)).Return(&model.Client{ID: 3}, nil)
		store.On("EmotionRecordExists", mock.Anything, uint64(3), day("2026-10-18")).Return(true, nil)
		_, err := newEmotion(store, nil).Create(context.Background(), 9, validInput("2026-10-18T09:00:00Z"))
		ae := apperror.As(err)
		assert.Equal(t, apperror.TypeValidation, ae.Type)
		assert.Equal(t, "Emotion record for this date already exists.", ae.Message)
	})

	t.Run("racing duplicate", func(t *testing.T) {
		store := new(MockStore)
		store.On("GetClientByUserID", mock.Anything, uint64(9)).Return(&model.Client{ID: 3}, nil)
		store.On("EmotionRecordExists", mock.Anything, uint64(3), mock.Anything).Return(false, nil)
		store.On("CreateEmotionRecord", mock.Anything, mock.Anything).Return(repository.ErrRecordExists)
		_, err := newEmotion(store, nil).Create(context.Background(), 9, validInput("2026-10-18"))
		assert.Equal(t, "Emotion record for this date already exists.", apperror.As(err).Message)
	})

	t.Run("emotion count", func(t *testing.T) {
		store := new(MockStore)
		store.On("GetClientByUserID", mock.Anything, uint64(9)).Return(&model.Client{ID: 3}, nil)
		store.On("EmotionRecordExists", mock.Anything, uint64(3), mock.Anything).Return(false, nil)
		in := validInput("2026-10-18")
		in.Emotions = nil
		_, err := newEmotion(store, nil).Create(context.Background(), 9, in)
		assert.Equal(t, "Must provide 1 to 3 emotions.", apperror.As(err).Message)
		store.AssertNotCalled(t, "CreateEmotionRecord", mock.Anything, mock.Anything)
	})

	t.Run("bad date", func(t *testing.T) {
		store := new(MockStore)
		store.On("GetClientByUserID", mock.Anything, uint64(9)).Return(&model.Client{ID: 3}, nil)
		_, err := newEmotion(store, nil).Create(context.Background(), 9, validInput(""))
		assert.True(t, apperror.IsType(err, apperror.TypeValidation))
	})
}

func TestHistory_FirstPage(t *testing.T) {
	store := new(MockStore)
	store.On("GetClientByID", mock.Anything, uint64(3)).Return(&model.Client{ID: 3, UserID: 9}, nil)
	store.On("ListEmotionRecordsBetween", mock.Anything, uint64(3), day("2026-10-13"), day("2026-10-19")).
		Return([]model.EmotionRecord{
			{ID: 20, ClientID: 3, Date: day("2026-10-19")},
			{ID: 17, ClientID: 3, Date: day("2026-10-16")},
		}, nil)
	store.On("ListEmotionRecordsBefore", mock.Anything, uint64(3), day("2026-10-13"), 0, 10).
		Return([]model.EmotionRecord{{ID: 5, ClientID: 3, Date: day("2026-10-01")}}, nil)

	h, err := newEmotion(store, nil).History(context.Background(), 9, 3, 1, 10)
	require.NoError(t, err)
	require.Len(t, h.Records, 8)

	assert.Equal(t, "2026-10-19", h.Records[0].Date)
	require.NotNil(t, h.Records[0].Record)
	assert.Equal(t, uint64(20), h.Records[0].Record.ID)
	assert.Nil(t, h.Records[1].Record)
	assert.Equal(t, "2026-10-16", h.Records[3].Date)
	assert.Equal(t, uint64(17), h.Records[3].Record.ID)
	assert.Equal(t, "2026-10-13", h.Records[6].Date)
	assert.Nil(t, h.Records[6].Record)
	assert.Equal(t, "2026-10-01", h.Records[7].Date)
	assert.Equal(t, 1, h.Page)
	assert.Equal(t, 10, h.Limit)
}

func TestHistory_LaterPageByCounselor(t *testing.T) {
	store := new(MockStore)
	store.On("GetClientByID", mock.Anything, uint64(3)).Return(&model.Client{ID: 3, UserID: 9, CounselorID: u64(4)}, nil)
	store.On("GetCounselorByUserID", mock.Anything, uint64(1)).Return(&model.Counselor{ID: 4, UserID: 1}, nil)
	store.On("ListEmotionRecordsBefore", mock.Anything, uint64(3), day("2026-10-13"), 5, 5).
		Return([]model.EmotionRecord{}, nil)

	h, err := newEmotion(store, nil).History(context.Background(), 1, 3, 2, 5)
	require.NoError(t, err)
	assert.Empty(t, h.Records)
	assert.NotNil(t, h.Records)
	store.AssertNotCalled(t, "ListEmotionRecordsBetween", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHistory_Forbidden(t *testing.T) {
	store := new(MockStore)
	store.On("GetClientByID", mock.Anything, uint64(3)).Return(&model.Client{ID: 3, UserID: 9, CounselorID: u64(4)}, nil)
	store.On("GetCounselorByUserID", mock.Anything, uint64(50)).Return(nil, repository.ErrNotFound)
	store.On("GetCounselorByUserID", mock.Anything, uint64(51)).Return(&model.Counselor{ID: 8}, nil)
	s := newEmotion(store, nil)

	_, err := s.History(context.Background(), 50, 3, 1, 10)
	assert.True(t, apperror.IsType(err, apperror.TypeForbidden))
	_, err = s.History(context.Background(), 51, 3, 1, 10)
	assert.True(t, apperror.IsType(err, apperror.TypeForbidden))
}
