package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/counselnote/counsel-api/internal/model"
)

type EmotionRecordRepo struct{ DB DBTX }

func NewEmotionRecordRepo(db DBTX) *EmotionRecordRepo { return &EmotionRecordRepo{DB: db} }

const emotionRecordColumns = "id,client_id,record_date,answer1,answer2,answer3,emotions,created_at"

// Create inserts a record.  The (client_id, record_date) unique key turns a
// racing duplicate into ErrRecordExists.
func (r *EmotionRecordRepo) Create(ctx context.Context, rec *model.EmotionRecord) error {
	rec.Date = model.Day(rec.Date)
	raw, err := json.Marshal(rec.Emotions)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO emotion_records (client_id, record_date, answer1, answer2, answer3, emotions)
		 VALUES (?,?,?,?,?,?)`,
		rec.ClientID, rec.Date.Format(time.DateOnly), rec.Answer1, rec.Answer2, rec.Answer3, string(raw))
	if err != nil {
		return mapDuplicate(err, map[string]error{"uq_emotion_records_client_date": ErrRecordExists})
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rec.ID = uint64(id)
	return nil
}

// ExistsForDate reports whether the client already has a record on day.
func (r *EmotionRecordRepo) ExistsForDate(ctx context.Context, clientID uint64, day time.Time) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM emotion_records WHERE client_id=? AND record_date=?",
		clientID, model.Day(day).Format(time.DateOnly)).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListBetween returns records dated from..to inclusive, newest first.
func (r *EmotionRecordRepo) ListBetween(ctx context.Context, clientID uint64, from, to time.Time) ([]model.EmotionRecord, error) {
	return r.list(ctx,
		"SELECT "+emotionRecordColumns+` FROM emotion_records
		  WHERE client_id=? AND record_date BETWEEN ? AND ?
		  ORDER BY record_date DESC`,
		clientID, model.Day(from).Format(time.DateOnly), model.Day(to).Format(time.DateOnly))
}

// ListBefore returns one page of records dated strictly before the given day,
// newest first.
func (r *EmotionRecordRepo) ListBefore(ctx context.Context, clientID uint64, before time.Time, offset, limit int) ([]model.EmotionRecord, error) {
	return r.list(ctx,
		"SELECT "+emotionRecordColumns+` FROM emotion_records
		  WHERE client_id=? AND record_date < ?
		  ORDER BY record_date DESC
		  LIMIT ? OFFSET ?`,
		clientID, model.Day(before).Format(time.DateOnly), limit, offset)
}

func (r *EmotionRecordRepo) list(ctx context.Context, q string, args ...any) ([]model.EmotionRecord, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.EmotionRecord{}
	for rows.Next() {
		var (
			rec model.EmotionRecord
			raw []byte
		)
		if err := rows.Scan(&rec.ID, &rec.ClientID, &rec.Date, &rec.Answer1, &rec.Answer2, &rec.Answer3, &raw, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Date = model.Day(rec.Date)
		if err := json.Unmarshal(raw, &rec.Emotions); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
