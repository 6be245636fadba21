package todos

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/encoding/unicode"

	"daybook/internal/activity"
	"daybook/internal/storage"
	"daybook/internal/storage/storagetest"
)

type recorder struct{ entries []activity.Entry }

func (r *recorder) Record(ctx context.Context, e activity.Entry) { r.entries = append(r.entries, e) }

func newService(t *testing.T) (*Service, *recorder) {
	t.Helper()
	rec := &recorder{}
	s := NewService(storagetest.New(t), rec)
	s.now = func() time.Time { return time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC) }
	return s, rec
}

func TestCreate_NormalizesDueDate(t *testing.T) {
	s, rec := newService(t)
	ctx := context.Background()

	todo, err := s.Create(ctx, "u1", CreateInput{
		Title: "Ship", Description: "Release notes", DueDate: "2024-01-05T08:00:00Z",
		LinkURL: "https://github.com/org/repo/pull/1",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	want := time.Date(2024, 1, 5, 23, 59, 59, 999_000_000, time.UTC)
	if !todo.DueDate.Equal(want) {
		t.Fatalf("expected due %v, got %v", want, todo.DueDate)
	}
	if todo.LinkType == nil || *todo.LinkType != storage.LinkGithub {
		t.Fatalf("expected inferred github link type, got %v", todo.LinkType)
	}
	if len(rec.entries) != 1 || rec.entries[0].Action != activity.ActionCreate {
		t.Fatalf("expected create audit entry, got %+v", rec.entries)
	}

	listed, err := s.List(ctx, "u1", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	if err != nil || len(listed) != 1 {
		t.Fatalf("List: %+v %v", listed, err)
	}
}

func TestCreate_Validation(t *testing.T) {
	s, _ := newService(t)
	cases := []CreateInput{
		{Description: "d", DueDate: "2024-01-01"},
		{Title: "t", DueDate: "2024-01-01"},
		{Title: "t", Description: "d"},
		{Title: "t", Description: "d", DueDate: "tomorrow"},
		{Title: "t", Description: "d", DueDate: "2024-01-01", LinkURL: "ftp://x"},
		{Title: "t", Description: "d", DueDate: "2024-01-01", LinkURL: "https://x.com", LinkType: "jira"},
		{Title: "t", Description: "d", DueDate: "2024-01-01", LinkType: "figma"},
	}
	for i, in := range cases {
		if _, err := s.Create(context.Background(), "u1", in); !errors.Is(err, ErrInvalidTodo) {
			t.Fatalf("case %d: expected ErrInvalidTodo, got %v", i, err)
		}
	}
}

func TestUpdate(t *testing.T) {
	s, rec := newService(t)
	ctx := context.Background()

	todo, err := s.Create(ctx, "u1", CreateInput{Title: "t", Description: "d", DueDate: "2024-01-01"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	done := true
	next := "2024-01-02"
	updated, err := s.Update(ctx, todo.ID, "u1", UpdateInput{Completed: &done, DueDate: &next})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !updated.Completed || !updated.DueDate.Equal(time.Date(2024, 1, 2, 23, 59, 59, 999_000_000, time.UTC)) {
		t.Fatalf("unexpected update result: %+v", updated)
	}
	// create + complete + update
	if len(rec.entries) != 3 || rec.entries[1].Action != activity.ActionComplete || rec.entries[2].Action != activity.ActionUpdate {
		t.Fatalf("unexpected audit entries: %+v", rec.entries)
	}

	if _, err := s.Update(ctx, todo.ID, "intruder", UpdateInput{Completed: &done}); !errors.Is(err, ErrTodoNotFound) {
		t.Fatalf("expected ErrTodoNotFound for another user, got %v", err)
	}
	if _, err := s.Update(ctx, "missing", "u1", UpdateInput{Completed: &done}); !errors.Is(err, ErrTodoNotFound) {
		t.Fatalf("expected ErrTodoNotFound, got %v", err)
	}
}

func TestInferLinkType(t *testing.T) {
	cases := map[string]storage.LinkType{
		"www.figma.com":    storage.LinkFigma,
		"linear.app":       storage.LinkLinear,
		"acme.notion.site": storage.LinkNotion,
		"acme.slack.com":   storage.LinkSlack,
		"github.com":       storage.LinkGithub,
		"notgithub.com":    storage.LinkUnknown,
	}
	for host, want := range cases {
		if got := InferLinkType(host); got != want {
			t.Fatalf("InferLinkType(%q) = %q, want %q", host, got, want)
		}
	}
}

func TestImport_UTF8BOM(t *testing.T) {
	s, _ := newService(t)
	data := "\xEF\xBB\xBFTitle,Description,Due_Date,Completed\n" +
		"Write,Draft intro,2024-01-03,false\n" +
		"Review,,2024-01-03,true\n" +
		"Publish,Post it,2024-01-04,yes\n"

	res, err := s.Import(context.Background(), "u1", strings.NewReader(data))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Imported != 1 || len(res.Errors) != 2 {
		t.Fatalf("expected 1 imported and 2 errors, got %d / %v", res.Imported, res.Errors)
	}
}

func TestImport_UTF16TabSeparated(t *testing.T) {
	s, _ := newService(t)
	plain := "otsikko\tkuvaus\teräpäivä\n" + "Siivoa\tTyöpöytä\t2024-01-03\n"

	var buf bytes.Buffer
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	encoded, err := enc.String(plain)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	buf.WriteString(encoded)

	res, err := s.Import(context.Background(), "u1", &buf)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Imported != 1 || len(res.Errors) != 0 {
		t.Fatalf("expected 1 imported row, got %d / %v", res.Imported, res.Errors)
	}

	listed, _ := s.List(context.Background(), "u1", time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC))
	if len(listed) != 1 || listed[0].Title != "Siivoa" || listed[0].Description != "Työpöytä" {
		t.Fatalf("unexpected imported todo: %+v", listed)
	}
}

func TestImport_MissingColumns(t *testing.T) {
	s, _ := newService(t)
	if _, err := s.Import(context.Background(), "u1", strings.NewReader("title,notes\nA,B\n")); err == nil {
		t.Fatalf("expected error for missing columns")
	}
}
