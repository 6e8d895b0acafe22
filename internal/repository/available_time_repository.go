package repository

import (
	"context"
	"encoding/json"

	"github.com/counselnote/counsel-api/internal/model"
)

type AvailableTimeRepo struct{ DB DBTX }

func NewAvailableTimeRepo(db DBTX) *AvailableTimeRepo { return &AvailableTimeRepo{DB: db} }

// Create stores a timetable for a counselor.  A second timetable for the same
// counselor yields ErrTimetableExists.
func (r *AvailableTimeRepo) Create(ctx context.Context, counselorID uint64, t model.Timetable) (*model.AvailableTime, error) {
	raw, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO available_times (counselor_id, timetable) VALUES (?,?)", counselorID, string(raw))
	if err != nil {
		return nil, mapDuplicate(err, map[string]error{"uq_available_times_counselor": ErrTimetableExists})
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.AvailableTime{ID: uint64(id), CounselorID: counselorID, Timetable: t}, nil
}

// GetByCounselorID returns the counselor's timetable or ErrNotFound.
func (r *AvailableTimeRepo) GetByCounselorID(ctx context.Context, counselorID uint64) (*model.AvailableTime, error) {
	var (
		at  model.AvailableTime
		raw []byte
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, counselor_id, timetable FROM available_times WHERE counselor_id=? LIMIT 1", counselorID).
		Scan(&at.ID, &at.CounselorID, &raw)
	if err != nil {
		return nil, notFound(err)
	}
	if err := json.Unmarshal(raw, &at.Timetable); err != nil {
		return nil, err
	}
	return &at, nil
}

// Replace overwrites the whole timetable.  It returns ErrNotFound when the
// counselor has none.
func (r *AvailableTimeRepo) Replace(ctx context.Context, counselorID uint64, t model.Timetable) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE available_times SET timetable=? WHERE counselor_id=?", string(raw), counselorID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
