// Package report summarises a user's day: attendance, to-dos, journal and
// activity.
package report

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"daybook/internal/activity"
	"daybook/internal/attendance"
	"daybook/internal/email"
	"daybook/internal/journal"
	"daybook/internal/storage"
	"daybook/internal/todos"
	"daybook/internal/utils"
	"daybook/web"
)

type DailyReport struct {
	UserID   string                 `json:"userId" yaml:"userId"`
	Day      string                 `json:"date" yaml:"date"`
	Status   *attendance.Status     `json:"status" yaml:"status"`
	Todos    []storage.Todo         `json:"todos" yaml:"todos"`
	Journal  []storage.JournalEntry `json:"journal" yaml:"journal"`
	Activity []storage.ActivityLog  `json:"activity" yaml:"activity"`
}

// Completed counts the finished to-dos.
func (r *DailyReport) Completed() int {
	n := 0
	for _, t := range r.Todos {
		if t.Completed {
			n++
		}
	}
	return n
}

type Builder struct {
	tracker  *attendance.Tracker
	todos    *todos.Service
	journal  *journal.Service
	activity *activity.Service
}

func NewBuilder(tracker *attendance.Tracker, todos *todos.Service, journal *journal.Service, activity *activity.Service) *Builder {
	return &Builder{tracker: tracker, todos: todos, journal: journal, activity: activity}
}

func (b *Builder) Build(ctx context.Context, userID string, date time.Time) (*DailyReport, error) {
	status, err := b.tracker.Status(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load attendance: %w", err)
	}
	items, err := b.todos.List(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load todos: %w", err)
	}
	entries, err := b.journal.List(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load journal: %w", err)
	}
	logs, err := b.activity.List(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load activity: %w", err)
	}

	return &DailyReport{
		UserID:   userID,
		Day:      utils.DayKey(date),
		Status:   status,
		Todos:    items,
		Journal:  entries,
		Activity: logs,
	}, nil
}

var reportTemplate = template.Must(template.New("report.html.tmpl").Funcs(template.FuncMap{
	"clock": clock,
	"deref": deref,
}).ParseFS(web.Templates, "templates/report.html.tmpl"))

func clock(v any) string {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format("15:04")
	case *time.Time:
		if t == nil {
			return ""
		}
		return t.UTC().Format("15:04")
	}
	return ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// HTML renders the report for email.
func (r *DailyReport) HTML() (string, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, r); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return buf.String(), nil
}

// Message wraps the rendered report into an email to the given address.
func (r *DailyReport) Message(to string) (*email.Message, error) {
	if err := email.ValidAddress(to); err != nil {
		return nil, err
	}
	body, err := r.HTML()
	if err != nil {
		return nil, err
	}
	return &email.Message{
		To:      []string{to},
		Subject: fmt.Sprintf("Daily report %s: %d/%d to-dos done", r.Day, r.Completed(), len(r.Todos)),
		HTML:    body,
	}, nil
}
