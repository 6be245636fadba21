// Package journal stores free-form notes attached to a UTC day.
package journal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"daybook/internal/activity"
	"daybook/internal/storage"
	"daybook/internal/utils"
)

var ErrInvalidEntry = errors.New("invalid journal entry")

type Store interface {
	ListJournalEntries(ctx context.Context, userID string, day string) ([]storage.JournalEntry, error)
	CreateJournalEntry(ctx context.Context, entry *storage.JournalEntry) error
	DeleteJournalEntry(ctx context.Context, id string, userID string, at time.Time) (bool, error)
}

type CreateInput struct {
	Description string `json:"description"`
	// Optional YYYY-MM-DD; defaults to today.
	Date string `json:"date"`
}

type Service struct {
	store    Store
	recorder activity.Recorder
	now      func() time.Time
}

func NewService(store Store, recorder activity.Recorder) *Service {
	return &Service{store: store, recorder: recorder, now: time.Now}
}

func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*storage.JournalEntry, error) {
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, fmt.Errorf("%w: description is required", ErrInvalidEntry)
	}

	now := s.now().UTC()
	day := utils.StartOfDay(now)
	if in.Date != "" {
		parsed, err := time.Parse(utils.DayLayout, in.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidEntry)
		}
		day = parsed
	}

	entry := &storage.JournalEntry{
		ID:          uuid.NewString(),
		UserID:      userID,
		Description: description,
		Day:         utils.DayKey(day),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateJournalEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create journal entry: %w", err)
	}

	s.audit(ctx, userID, activity.ActionCreate, entry.ID, entry.Description)
	return entry, nil
}

// List returns the entries for date's UTC day, newest first.
func (s *Service) List(ctx context.Context, userID string, date time.Time) ([]storage.JournalEntry, error) {
	return s.store.ListJournalEntries(ctx, userID, utils.DayKey(date))
}

// Delete soft deletes an entry. Deleting a missing or already deleted entry
// succeeds without side effects.
func (s *Service) Delete(ctx context.Context, id, userID string) error {
	found, err := s.store.DeleteJournalEntry(ctx, id, userID, s.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to delete journal entry: %w", err)
	}
	if found {
		s.audit(ctx, userID, activity.ActionDelete, id, "")
	}
	return nil
}

func (s *Service) audit(ctx context.Context, userID string, action activity.ActionType, id, description string) {
	if s.recorder == nil {
		return
	}
	title := description
	if r := []rune(title); len(r) > 80 {
		title = string(r[:77]) + "..."
	}
	s.recorder.Record(ctx, activity.Entry{
		UserID:      userID,
		Action:      action,
		Entity:      activity.EntityJournal,
		EntityID:    id,
		EntityTitle: title,
	})
}
