// Package settings holds a user's preferred working hours.
package settings

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"daybook/internal/storage"
)

const (
	DefaultCheckInTime  = "09:00"
	DefaultCheckOutTime = "17:00"
)

var ErrInvalidTime = errors.New("time must be in HH:mm format")

var reClock = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

type Store interface {
	GetUserSettings(ctx context.Context, userID string) (*storage.UserSettings, error)
	CreateUserSettings(ctx context.Context, settings *storage.UserSettings) error
	UpdateUserSettings(ctx context.Context, settings *storage.UserSettings) error
}

type UpdateInput struct {
	PreferredCheckInTime  *string `json:"preferredCheckInTime"`
	PreferredCheckOutTime *string `json:"preferredCheckOutTime"`
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Get returns the user's settings, creating the defaults on first access.
func (s *Service) Get(ctx context.Context, userID string) (*storage.UserSettings, error) {
	current, err := s.store.GetUserSettings(ctx, userID)
	if err == nil {
		return current, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	now := s.now().UTC()
	defaults := &storage.UserSettings{
		ID:                    uuid.NewString(),
		UserID:                userID,
		PreferredCheckInTime:  DefaultCheckInTime,
		PreferredCheckOutTime: DefaultCheckOutTime,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	err = s.store.CreateUserSettings(ctx, defaults)
	if errors.Is(err, storage.ErrDuplicate) {
		return s.store.GetUserSettings(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create settings: %w", err)
	}
	return defaults, nil
}

func (s *Service) Update(ctx context.Context, userID string, in UpdateInput) (*storage.UserSettings, error) {
	for _, v := range []*string{in.PreferredCheckInTime, in.PreferredCheckOutTime} {
		if v != nil && !reClock.MatchString(*v) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTime, *v)
		}
	}

	current, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.PreferredCheckInTime != nil {
		current.PreferredCheckInTime = *in.PreferredCheckInTime
	}
	if in.PreferredCheckOutTime != nil {
		current.PreferredCheckOutTime = *in.PreferredCheckOutTime
	}
	current.UpdatedAt = s.now().UTC()

	if err := s.store.UpdateUserSettings(ctx, current); err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}
	return current, nil
}
