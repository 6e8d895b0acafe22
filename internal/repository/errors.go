// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services to distinguish between different failure scenarios without
// inspecting driver errors themselves.
package repository

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a lookup or update matches no row.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when users.email is already taken.
var ErrEmailExists = errors.New("email already exists")

// ErrAuthCodeTaken is returned when a generated access code collides with
// an existing one.  Registration regenerates the code and retries.
var ErrAuthCodeTaken = errors.New("auth code already taken")

// ErrTimetableExists is returned when a counselor already owns a timetable.
var ErrTimetableExists = errors.New("timetable already exists")

// ErrRecordExists is returned when a client already has an emotion record
// for the same day.
var ErrRecordExists = errors.New("emotion record already exists for date")

// ErrConflict is returned for any other unique key violation.
var ErrConflict = errors.New("conflict")

const mysqlDuplicateEntry = 1062

// duplicateKey reports whether err is a MySQL duplicate entry error and, if
// so, returns the driver message that names the violated key.
func duplicateKey(err error) (string, bool) {
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
		return me.Message, true
	}
	return "", false
}

// mapDuplicate translates a duplicate-key error into the sentinel registered
// for the violated key.  Other errors pass through unchanged.
func mapDuplicate(err error, byKey map[string]error) error {
	msg, ok := duplicateKey(err)
	if !ok {
		return err
	}
	for key, sentinel := range byKey {
		if strings.Contains(msg, key) {
			return sentinel
		}
	}
	return ErrConflict
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
