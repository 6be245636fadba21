// Package activity keeps the per-user audit trail of actions taken through
// the API.
package activity

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"daybook/internal/storage"
	"daybook/internal/utils"
)

type ActionType string

const (
	ActionCreate     ActionType = "CREATE"
	ActionUpdate     ActionType = "UPDATE"
	ActionDelete     ActionType = "DELETE"
	ActionComplete   ActionType = "COMPLETE"
	ActionUncomplete ActionType = "UNCOMPLETE"
	ActionCheckIn    ActionType = "CHECK_IN"
	ActionCheckOut   ActionType = "CHECK_OUT"
	ActionConnect    ActionType = "CONNECT"
	ActionDisconnect ActionType = "DISCONNECT"
)

type EntityType string

const (
	EntityTodo        EntityType = "TODO"
	EntityJournal     EntityType = "JOURNAL"
	EntityCheckInOut  EntityType = "CHECK_IN_OUT"
	EntityIntegration EntityType = "INTEGRATION"
)

type Entry struct {
	UserID      string
	Action      ActionType
	Entity      EntityType
	EntityID    string
	EntityTitle string
	Metadata    map[string]any
}

// Recorder is what other services use to leave an audit trail. Recording
// never fails the caller's operation.
type Recorder interface {
	Record(ctx context.Context, entry Entry)
}

type Store interface {
	CreateActivityLog(ctx context.Context, entry *storage.ActivityLog) error
	ListActivityLogs(ctx context.Context, userID string, from, to time.Time) ([]storage.ActivityLog, error)
}

// Publisher fans recorded entries out to other consumers.
type Publisher interface {
	Publish(ctx context.Context, log storage.ActivityLog) error
}

type Service struct {
	store     Store
	publisher Publisher
	now       func() time.Time
	logger    *slog.Logger
}

func NewService(store Store, publisher Publisher) *Service {
	return &Service{
		store:     store,
		publisher: publisher,
		now:       time.Now,
		logger:    slog.With("component", "activity"),
	}
}

func (s *Service) Record(ctx context.Context, e Entry) {
	log := storage.ActivityLog{
		ID:          uuid.NewString(),
		UserID:      e.UserID,
		ActionType:  string(e.Action),
		EntityType:  string(e.Entity),
		EntityID:    optional(e.EntityID),
		EntityTitle: optional(e.EntityTitle),
		Metadata:    e.Metadata,
		CreatedAt:   s.now().UTC(),
	}

	if err := s.store.CreateActivityLog(ctx, &log); err != nil {
		s.logger.Error("Failed to record activity", "user_id", e.UserID, "action", e.Action, "error", err)
		return
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, log); err != nil {
			s.logger.Warn("Failed to publish activity", "id", log.ID, "error", err)
		}
	}
}

// List returns the user's entries created on the UTC day of date, newest first.
func (s *Service) List(ctx context.Context, userID string, date time.Time) ([]storage.ActivityLog, error) {
	from := utils.StartOfDay(date)
	return s.store.ListActivityLogs(ctx, userID, from, from.AddDate(0, 0, 1))
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
