package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/counselnote/counsel-api/internal/model"
)

type ClientRepo struct{ DB DBTX }

func NewClientRepo(db DBTX) *ClientRepo { return &ClientRepo{DB: db} }

const clientColumns = "id,user_id,counselor_id,status,weekly_schedule,goal,created_at,updated_at"

// Create inserts a client profile.  Status defaults to ongoing.
func (r *ClientRepo) Create(ctx context.Context, c *model.Client) error {
	if c.Status == "" {
		c.Status = model.StatusOngoing
	}
	schedule, err := marshalSchedule(c.WeeklySchedule)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO clients (user_id, counselor_id, status, weekly_schedule, goal) VALUES (?,?,?,?,?)",
		c.UserID, nullableID(c.CounselorID), string(c.Status), schedule, c.Goal)
	if err != nil {
		return mapDuplicate(err, map[string]error{"uq_clients_user": ErrConflict})
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*c = *created
	return nil
}

func (r *ClientRepo) GetByID(ctx context.Context, id uint64) (*model.Client, error) {
	return r.getOne(ctx, "SELECT "+clientColumns+" FROM clients WHERE id=? LIMIT 1", id)
}

func (r *ClientRepo) GetByUserID(ctx context.Context, userID uint64) (*model.Client, error) {
	return r.getOne(ctx, "SELECT "+clientColumns+" FROM clients WHERE user_id=? LIMIT 1", userID)
}

// ListByCounselor returns every client linked to the counselor, oldest first.
func (r *ClientRepo) ListByCounselor(ctx context.Context, counselorID uint64) ([]model.Client, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+clientColumns+" FROM clients WHERE counselor_id=? ORDER BY created_at ASC, id ASC", counselorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// Update writes the mutable fields of a client (counselor link, status,
// schedule and goal).
func (r *ClientRepo) Update(ctx context.Context, c *model.Client) error {
	schedule, err := marshalSchedule(c.WeeklySchedule)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE clients SET counselor_id=?, status=?, weekly_schedule=?, goal=? WHERE id=?",
		nullableID(c.CounselorID), string(c.Status), schedule, c.Goal, c.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *ClientRepo) getOne(ctx context.Context, q string, arg any) (*model.Client, error) {
	c, err := scanClient(r.DB.QueryRowContext(ctx, q, arg))
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (*model.Client, error) {
	var (
		c         model.Client
		counselor sql.NullInt64
		status    string
		schedule  []byte
		goal      sql.NullString
	)
	if err := row.Scan(&c.ID, &c.UserID, &counselor, &status, &schedule, &goal, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if counselor.Valid {
		id := uint64(counselor.Int64)
		c.CounselorID = &id
	}
	c.Status = model.ClientStatus(status)
	c.Goal = goal.String
	c.WeeklySchedule = []model.ScheduleSlot{}
	if len(schedule) > 0 {
		if err := json.Unmarshal(schedule, &c.WeeklySchedule); err != nil {
			return nil, err
		}
	}
	return &c, nil
}

func marshalSchedule(slots []model.ScheduleSlot) (any, error) {
	if len(slots) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(slots)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func nullableID(id *uint64) any {
	if id == nil {
		return nil
	}
	return *id
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
