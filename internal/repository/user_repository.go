package repository

import (
	"context"
	"strings"

	"github.com/counselnote/counsel-api/internal/model"
)

type UserRepo struct{ DB DBTX }

func NewUserRepo(db DBTX) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,name,role,email,auth_code,created_at,updated_at"

// Create inserts the user and fills in its ID and timestamps.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, role, email, auth_code) VALUES (?,?,?,?)",
		u.Name, string(u.Role), u.Email, u.AuthCode)
	if err != nil {
		return mapDuplicate(err, map[string]error{
			"uq_users_email":     ErrEmailExists,
			"uq_users_auth_code": ErrAuthCodeTaken,
		})
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*u = *created
	return nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
}

// GetByAuthCode fetches the user owning an access code.
func (r *UserRepo) GetByAuthCode(ctx context.Context, code string) (*model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE auth_code=? LIMIT 1", code)
}

// ListByIDs returns the users with the given ids keyed by id.  Missing ids
// are simply absent from the map.
func (r *UserRepo) ListByIDs(ctx context.Context, ids []uint64) (map[uint64]model.User, error) {
	out := make(map[uint64]model.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	q := "SELECT " + userColumns + " FROM users WHERE id IN (" + placeholders(len(ids)) + ")"
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var u model.User
		var role string
		if err := rows.Scan(&u.ID, &u.Name, &role, &u.Email, &u.AuthCode, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		u.Role = model.Role(role)
		out[u.ID] = u
	}
	return out, rows.Err()
}

func (r *UserRepo) getOne(ctx context.Context, q string, arg any) (*model.User, error) {
	var u model.User
	var role string
	err := r.DB.QueryRowContext(ctx, q, arg).
		Scan(&u.ID, &u.Name, &role, &u.Email, &u.AuthCode, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	u.Role = model.Role(role)
	return &u, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
