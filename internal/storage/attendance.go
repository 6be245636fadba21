package storage

import (
	"context"
	"errors"
	"time"
)

const attendanceColumns = `id, user_id, day, check_in_time, check_out_time, created_at, updated_at`

func (p *SQLProvider) GetAttendance(ctx context.Context, userID string, day string) (*Attendance, error) {
	var rec Attendance
	err := p.getOne(ctx, &rec, `SELECT `+attendanceColumns+` FROM attendance WHERE user_id = ? AND day = ?`, userID, day)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreateAttendance inserts a new day record. The (user_id, day) unique
// constraint turns a concurrent second check-in into ErrDuplicate.
func (p *SQLProvider) CreateAttendance(ctx context.Context, rec *Attendance) error {
	return p.insert(ctx, `INSERT INTO attendance (`+attendanceColumns+`)
		VALUES (:id, :user_id, :day, :check_in_time, :check_out_time, :created_at, :updated_at)`, rec)
}

// SetCheckOut closes a record that is still open. ErrStale means the record
// is gone or was already closed.
func (p *SQLProvider) SetCheckOut(ctx context.Context, id string, at time.Time) error {
	err := p.execOne(ctx, `UPDATE attendance SET check_out_time = ?, updated_at = ? WHERE id = ? AND check_out_time IS NULL`,
		at.UTC(), at.UTC(), id)
	if errors.Is(err, ErrNotFound) {
		return ErrStale
	}
	return err
}
