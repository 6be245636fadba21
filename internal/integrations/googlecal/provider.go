package googlecal

import (
	"context"
	"time"

	"google.golang.org/api/calendar/v3"
)

// Token is what a successful authorization code exchange yields.
type Token struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
	Scopes       []string
}

type EventQuery struct {
	TimeMin    time.Time
	TimeMax    time.Time
	MaxResults int64
}

// CalendarClient reads a single user's calendar. Access tokens are refreshed
// by the client itself.
type CalendarClient interface {
	ListEvents(ctx context.Context, q EventQuery) ([]*calendar.Event, error)
}

// CalendarProvider is the OAuth and API surface of a calendar vendor.
type CalendarProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*Token, error)
	Client(ctx context.Context, refreshToken string) (CalendarClient, error)
	Revoke(ctx context.Context, token string) error
}
