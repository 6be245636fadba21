// Package attendance tracks one check-in/check-out pair per user per UTC day.
//
// A day can only be checked into once, and a new day can only be started
// after the previous day was checked out of.
package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"daybook/internal/activity"
	"daybook/internal/storage"
	"daybook/internal/utils"
)

var (
	ErrAlreadyCheckedIn  = errors.New("already checked in today")
	ErrPriorDayUnclosed  = errors.New("previous day has not been checked out")
	ErrNotCheckedIn      = errors.New("not checked in today")
	ErrAlreadyCheckedOut = errors.New("already checked out today")
)

type Store interface {
	GetAttendance(ctx context.Context, userID string, day string) (*storage.Attendance, error)
	CreateAttendance(ctx context.Context, rec *storage.Attendance) error
	SetCheckOut(ctx context.Context, id string, at time.Time) error
	ListTodosDue(ctx context.Context, userID string, from, to time.Time, incompleteOnly bool) ([]storage.Todo, error)
}

// Result is returned from both check-in and check-out. IncompleteTodos are
// yesterday's leftovers on check-in and today's on check-out.
type Result struct {
	CheckInOut      *storage.Attendance `json:"checkInOut"`
	IncompleteTodos []storage.Todo      `json:"incompleteTodos"`
}

type Status struct {
	HasCheckedIn  bool       `json:"hasCheckedIn"`
	HasCheckedOut bool       `json:"hasCheckedOut"`
	CheckInTime   *time.Time `json:"checkInTime"`
	CheckOutTime  *time.Time `json:"checkOutTime"`
}

type Tracker struct {
	store    Store
	recorder activity.Recorder
	now      func() time.Time
	logger   *slog.Logger
}

func NewTracker(store Store, recorder activity.Recorder) *Tracker {
	return &Tracker{
		store:    store,
		recorder: recorder,
		now:      time.Now,
		logger:   slog.With("component", "attendance"),
	}
}

// WithClock replaces the tracker's notion of "now".
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

func (t *Tracker) CheckIn(ctx context.Context, userID string) (*Result, error) {
	now := t.now().UTC()
	today := utils.StartOfDay(now)
	yesterday := today.AddDate(0, 0, -1)

	existing, err := t.find(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyCheckedIn
	}

	previous, err := t.find(ctx, userID, yesterday)
	if err != nil {
		return nil, err
	}
	if previous != nil && previous.CheckOutTime == nil {
		return nil, ErrPriorDayUnclosed
	}

	todos, err := t.IncompleteWorkItems(ctx, userID, yesterday)
	if err != nil {
		return nil, err
	}

	rec := &storage.Attendance{
		ID:          uuid.NewString(),
		UserID:      userID,
		Day:         utils.DayKey(today),
		CheckInTime: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := t.store.CreateAttendance(ctx, rec); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			// Lost a race against a concurrent check-in.
			return nil, ErrAlreadyCheckedIn
		}
		return nil, fmt.Errorf("failed to create attendance record: %w", err)
	}

	t.audit(ctx, userID, activity.ActionCheckIn, rec.ID, "Check-in")
	t.logger.Info("Checked in", "user_id", userID, "day", rec.Day)

	return &Result{CheckInOut: rec, IncompleteTodos: todos}, nil
}

func (t *Tracker) CheckOut(ctx context.Context, userID string) (*Result, error) {
	now := t.now().UTC()
	today := utils.StartOfDay(now)

	rec, err := t.find(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotCheckedIn
	}
	if rec.CheckOutTime != nil {
		return nil, ErrAlreadyCheckedOut
	}

	todos, err := t.IncompleteWorkItems(ctx, userID, today)
	if err != nil {
		return nil, err
	}

	if err := t.store.SetCheckOut(ctx, rec.ID, now); err != nil {
		if errors.Is(err, storage.ErrStale) {
			return nil, ErrAlreadyCheckedOut
		}
		return nil, fmt.Errorf("failed to update attendance record: %w", err)
	}
	rec.CheckOutTime = &now
	rec.UpdatedAt = now

	t.audit(ctx, userID, activity.ActionCheckOut, rec.ID, "Check-out")
	t.logger.Info("Checked out", "user_id", userID, "day", rec.Day)

	return &Result{CheckInOut: rec, IncompleteTodos: todos}, nil
}

// Status reports attendance for the UTC day containing date.
func (t *Tracker) Status(ctx context.Context, userID string, date time.Time) (*Status, error) {
	rec, err := t.find(ctx, userID, utils.StartOfDay(date))
	if err != nil {
		return nil, err
	}

	status := &Status{}
	if rec != nil {
		checkIn := rec.CheckInTime
		status.HasCheckedIn = true
		status.CheckInTime = &checkIn
		status.HasCheckedOut = rec.CheckOutTime != nil
		status.CheckOutTime = rec.CheckOutTime
	}
	return status, nil
}

// IncompleteWorkItems lists todos due on day's UTC calendar day that are not completed.
func (t *Tracker) IncompleteWorkItems(ctx context.Context, userID string, day time.Time) ([]storage.Todo, error) {
	from := utils.StartOfDay(day)
	todos, err := t.store.ListTodosDue(ctx, userID, from, from.AddDate(0, 0, 1), true)
	if err != nil {
		return nil, fmt.Errorf("failed to list incomplete todos: %w", err)
	}
	return todos, nil
}

func (t *Tracker) IncompleteYesterday(ctx context.Context, userID string) ([]storage.Todo, error) {
	return t.IncompleteWorkItems(ctx, userID, utils.StartOfDay(t.now()).AddDate(0, 0, -1))
}

func (t *Tracker) IncompleteToday(ctx context.Context, userID string) ([]storage.Todo, error) {
	return t.IncompleteWorkItems(ctx, userID, t.now())
}

// find returns nil without error when the user has no record for day.
func (t *Tracker) find(ctx context.Context, userID string, day time.Time) (*storage.Attendance, error) {
	rec, err := t.store.GetAttendance(ctx, userID, utils.DayKey(day))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load attendance record: %w", err)
	}
	return rec, nil
}

func (t *Tracker) audit(ctx context.Context, userID string, action activity.ActionType, id, title string) {
	if t.recorder == nil {
		return
	}
	t.recorder.Record(ctx, activity.Entry{
		UserID:      userID,
		Action:      action,
		Entity:      activity.EntityCheckInOut,
		EntityID:    id,
		EntityTitle: title,
	})
}
