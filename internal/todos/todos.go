// Package todos manages per-day to-do items.
package todos

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"daybook/internal/activity"
	"daybook/internal/storage"
	"daybook/internal/utils"
)

var (
	ErrTodoNotFound = errors.New("todo not found")
	ErrInvalidTodo  = errors.New("invalid todo")
)

type Store interface {
	ListTodosDue(ctx context.Context, userID string, from, to time.Time, incompleteOnly bool) ([]storage.Todo, error)
	GetTodo(ctx context.Context, id string, userID string) (*storage.Todo, error)
	CreateTodo(ctx context.Context, todo *storage.Todo) error
	UpdateTodo(ctx context.Context, todo *storage.Todo) error
}

type CreateInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	// YYYY-MM-DD or RFC 3339; stored as the last millisecond of that UTC day.
	DueDate  string `json:"dueDate"`
	LinkURL  string `json:"linkUrl"`
	LinkType string `json:"linkType"`
}

type UpdateInput struct {
	Completed *bool   `json:"completed"`
	DueDate   *string `json:"dueDate"`
}

type Service struct {
	store    Store
	recorder activity.Recorder
	now      func() time.Time
	logger   *slog.Logger
}

func NewService(store Store, recorder activity.Recorder) *Service {
	return &Service{
		store:    store,
		recorder: recorder,
		now:      time.Now,
		logger:   slog.With("component", "todos"),
	}
}

// List returns todos due on the UTC day of date.
func (s *Service) List(ctx context.Context, userID string, date time.Time) ([]storage.Todo, error) {
	from := utils.StartOfDay(date)
	return s.store.ListTodosDue(ctx, userID, from, from.AddDate(0, 0, 1), false)
}

func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*storage.Todo, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidTodo)
	}
	if description == "" {
		return nil, fmt.Errorf("%w: description is required", ErrInvalidTodo)
	}

	due, err := normalizeDueDate(in.DueDate)
	if err != nil {
		return nil, err
	}

	linkURL, linkType, err := resolveLink(in.LinkURL, in.LinkType)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	todo := &storage.Todo{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       title,
		Description: description,
		Completed:   in.Completed,
		DueDate:     due,
		LinkURL:     linkURL,
		LinkType:    linkType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateTodo(ctx, todo); err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	s.audit(ctx, todo, activity.ActionCreate, nil)
	return todo, nil
}

func (s *Service) Update(ctx context.Context, id, userID string, in UpdateInput) (*storage.Todo, error) {
	todo, err := s.store.GetTodo(ctx, id, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrTodoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load todo: %w", err)
	}

	var actions []activity.ActionType
	if in.Completed != nil && *in.Completed != todo.Completed {
		todo.Completed = *in.Completed
		if todo.Completed {
			actions = append(actions, activity.ActionComplete)
		} else {
			actions = append(actions, activity.ActionUncomplete)
		}
	}
	if in.DueDate != nil {
		due, err := normalizeDueDate(*in.DueDate)
		if err != nil {
			return nil, err
		}
		if !due.Equal(todo.DueDate) {
			todo.DueDate = due
			actions = append(actions, activity.ActionUpdate)
		}
	}

	if len(actions) == 0 {
		return todo, nil
	}

	todo.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateTodo(ctx, todo); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}

	for _, action := range actions {
		var meta map[string]any
		if action == activity.ActionUpdate {
			meta = map[string]any{"dueDate": todo.DueDate.Format(time.RFC3339Nano)}
		}
		s.audit(ctx, todo, action, meta)
	}
	return todo, nil
}

func (s *Service) audit(ctx context.Context, todo *storage.Todo, action activity.ActionType, meta map[string]any) {
	if s.recorder == nil {
		return
	}
	s.recorder.Record(ctx, activity.Entry{
		UserID:      todo.UserID,
		Action:      action,
		Entity:      activity.EntityTodo,
		EntityID:    todo.ID,
		EntityTitle: todo.Title,
		Metadata:    meta,
	})
}

func normalizeDueDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: dueDate is required", ErrInvalidTodo)
	}
	day, err := utils.ParseDay(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: dueDate must be a date", ErrInvalidTodo)
	}
	return utils.EndOfDay(day), nil
}

var linkHosts = map[string]storage.LinkType{
	"figma.com":   storage.LinkFigma,
	"linear.app":  storage.LinkLinear,
	"notion.so":   storage.LinkNotion,
	"notion.site": storage.LinkNotion,
	"slack.com":   storage.LinkSlack,
	"github.com":  storage.LinkGithub,
}

func resolveLink(rawURL, rawType string) (*string, *storage.LinkType, error) {
	rawURL = strings.TrimSpace(rawURL)
	rawType = strings.ToLower(strings.TrimSpace(rawType))

	if rawURL == "" {
		if rawType != "" {
			return nil, nil, fmt.Errorf("%w: linkType requires linkUrl", ErrInvalidTodo)
		}
		return nil, nil, nil
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, nil, fmt.Errorf("%w: linkUrl must be an http(s) URL", ErrInvalidTodo)
	}

	var lt storage.LinkType
	if rawType != "" {
		lt = storage.LinkType(rawType)
		if !validLinkType(lt) {
			return nil, nil, fmt.Errorf("%w: unknown linkType %q", ErrInvalidTodo, rawType)
		}
	} else {
		lt = InferLinkType(u.Hostname())
	}
	return &rawURL, &lt, nil
}

// InferLinkType guesses the tool a link points to from its host name.
func InferLinkType(host string) storage.LinkType {
	host = strings.ToLower(host)
	for suffix, lt := range linkHosts {
		if host == suffix || strings.HasSuffix(host, "."+suffix) {
			return lt
		}
	}
	return storage.LinkUnknown
}

func validLinkType(lt storage.LinkType) bool {
	switch lt {
	case storage.LinkFigma, storage.LinkLinear, storage.LinkNotion, storage.LinkSlack, storage.LinkGithub, storage.LinkUnknown:
		return true
	}
	return false
}
