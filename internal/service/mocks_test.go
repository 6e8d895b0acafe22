package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/counselnote/counsel-api/internal/model"
	"github.com/counselnote/counsel-api/internal/queue"
	"github.com/counselnote/counsel-api/internal/repository"
)

// MockStore implements AccountStore, CounselorStore and EmotionStore.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) RegisterAccount(ctx context.Context, u model.User, counselorID *uint64) (*repository.Account, error) {
	args := m.Called(ctx, u, counselorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Account), args.Error(1)
}

func (m *MockStore) GetUserByID(ctx context.Context, id uint64) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockStore) GetUserByAuthCode(ctx context.Context, code string) (*model.User, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockStore) GetUsersByIDs(ctx context.Context, ids []uint64) (map[uint64]model.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uint64]model.User), args.Error(1)
}

func (m *MockStore) GetClientByID(ctx context.Context, id uint64) (*model.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Client), args.Error(1)
}

func (m *MockStore) GetClientByUserID(ctx context.Context, userID uint64) (*model.Client, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Client), args.Error(1)
}

func (m *MockStore) ListClientsByCounselor(ctx context.Context, counselorID uint64) ([]model.Client, error) {
	args := m.Called(ctx, counselorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Client), args.Error(1)
}

func (m *MockStore) UpdateClient(ctx context.Context, c *model.Client) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockStore) GetCounselorByID(ctx context.Context, id uint64) (*model.Counselor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Counselor), args.Error(1)
}

func (m *MockStore) GetCounselorByUserID(ctx context.Context, userID uint64) (*model.Counselor, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Counselor), args.Error(1)
}

func (m *MockStore) GetCounselorProfile(ctx context.Context, id uint64) (*model.CounselorProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CounselorProfile), args.Error(1)
}

func (m *MockStore) CreateAvailableTime(ctx context.Context, counselorID uint64, t model.Timetable) (*model.AvailableTime, error) {
	args := m.Called(ctx, counselorID, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AvailableTime), args.Error(1)
}

func (m *MockStore) GetAvailableTime(ctx context.Context, counselorID uint64) (*model.AvailableTime, error) {
	args := m.Called(ctx, counselorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AvailableTime), args.Error(1)
}

func (m *MockStore) ReplaceCounselorFull(ctx context.Context, counselorID uint64, t model.Timetable, profile *repository.ProfileUpdate) (*model.AvailableTime, *model.CounselorProfile, error) {
	args := m.Called(ctx, counselorID, t, profile)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.AvailableTime), args.Get(1).(*model.CounselorProfile), args.Error(2)
}

func (m *MockStore) EmotionRecordExists(ctx context.Context, clientID uint64, day time.Time) (bool, error) {
	args := m.Called(ctx, clientID, day)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) CreateEmotionRecord(ctx context.Context, rec *model.EmotionRecord) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *MockStore) ListEmotionRecordsBetween(ctx context.Context, clientID uint64, from, to time.Time) ([]model.EmotionRecord, error) {
	args := m.Called(ctx, clientID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.EmotionRecord), args.Error(1)
}

func (m *MockStore) ListEmotionRecordsBefore(ctx context.Context, clientID uint64, before time.Time, offset, limit int) ([]model.EmotionRecord, error) {
	args := m.Called(ctx, clientID, before, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.EmotionRecord), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, ev queue.Event) error {
	return m.Called(ctx, ev).Error(0)
}

func u64(v uint64) *uint64 { return &v }

func str(v string) *string { return &v }
