package repository

import (
	"context"
	"database/sql"
	"errors"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so every repository can run
// inside or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store bundles the repositories over one connection pool (or one
// transaction) and exposes the lookups and multi-step writes the services
// need.
type Store struct {
	db             *sql.DB
	Users          *UserRepo
	Clients        *ClientRepo
	Counselors     *CounselorRepo
	AvailableTimes *AvailableTimeRepo
	EmotionRecords *EmotionRecordRepo
}

// NewStore constructs a Store backed by the given pool.
func NewStore(db *sql.DB) *Store {
	s := newStore(db)
	s.db = db
	return s
}

func newStore(q DBTX) *Store {
	return &Store{
		Users:          NewUserRepo(q),
		Clients:        NewClientRepo(q),
		Counselors:     NewCounselorRepo(q),
		AvailableTimes: NewAvailableTimeRepo(q),
		EmotionRecords: NewEmotionRecordRepo(q),
	}
}

var errNestedTx = errors.New("repository: nested transactions are not supported")

// WithTx runs fn against a Store bound to a fresh transaction.  The
// transaction commits when fn returns nil and rolls back otherwise.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) (err error) {
	if s.db == nil {
		return errNestedTx
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()
	return fn(newStore(tx))
}
