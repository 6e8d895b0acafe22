package repository

import (
	"context"
	"database/sql"

	"github.com/counselnote/counsel-api/internal/model"
)

type CounselorRepo struct{ DB DBTX }

func NewCounselorRepo(db DBTX) *CounselorRepo { return &CounselorRepo{DB: db} }

const counselorColumns = "id,user_id,contact,intro_text,created_at,updated_at"

// Create inserts a counselor profile and fills in its ID and timestamps.
func (r *CounselorRepo) Create(ctx context.Context, c *model.Counselor) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO counselors (user_id, contact, intro_text) VALUES (?,?,?)",
		c.UserID, c.Contact, c.IntroText)
	if err != nil {
		return mapDuplicate(err, map[string]error{"uq_counselors_user": ErrConflict})
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

func (r *CounselorRepo) GetByID(ctx context.Context, id uint64) (*model.Counselor, error) {
	return r.getOne(ctx, "SELECT "+counselorColumns+" FROM counselors WHERE id=? LIMIT 1", id)
}

func (r *CounselorRepo) GetByUserID(ctx context.Context, userID uint64) (*model.Counselor, error) {
	return r.getOne(ctx, "SELECT "+counselorColumns+" FROM counselors WHERE user_id=? LIMIT 1", userID)
}

// GetProfile returns the public profile of a counselor, joining the owning
// user for the display name.
func (r *CounselorRepo) GetProfile(ctx context.Context, id uint64) (*model.CounselorProfile, error) {
	var (
		p     model.CounselorProfile
		intro sql.NullString
	)
	err := r.DB.QueryRowContext(ctx,
		`SELECT u.name, c.contact, c.intro_text
		   FROM counselors c JOIN users u ON u.id = c.user_id
		  WHERE c.id=? LIMIT 1`, id).Scan(&p.Name, &p.Contact, &intro)
	if err != nil {
		return nil, notFound(err)
	}
	p.IntroText = intro.String
	return &p, nil
}

// UpdateProfile replaces contact and intro text.  It returns ErrNotFound when
// no counselor has the id.
func (r *CounselorRepo) UpdateProfile(ctx context.Context, id uint64, contact, introText string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE counselors SET contact=?, intro_text=? WHERE id=?", contact, introText, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *CounselorRepo) getOne(ctx context.Context, q string, arg any) (*model.Counselor, error) {
	var (
		c     model.Counselor
		intro sql.NullString
	)
	err := r.DB.QueryRowContext(ctx, q, arg).
		Scan(&c.ID, &c.UserID, &c.Contact, &intro, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	c.IntroText = intro.String
	return &c, nil
}
