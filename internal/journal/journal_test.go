package journal

import (
	"context"
	"errors"
	"testing"
	"time"

	"daybook/internal/activity"
	"daybook/internal/storage/storagetest"
)

type recorder struct{ entries []activity.Entry }

func (r *recorder) Record(ctx context.Context, e activity.Entry) { r.entries = append(r.entries, e) }

func TestJournal_CreateListDelete(t *testing.T) {
	rec := &recorder{}
	s := NewService(storagetest.New(t), rec)
	now := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	first, err := s.Create(ctx, "u1", CreateInput{Description: "first"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.Day != "2024-01-02" {
		t.Fatalf("expected today's day, got %s", first.Day)
	}

	now = now.Add(time.Minute)
	second, err := s.Create(ctx, "u1", CreateInput{Description: "second", Date: "2024-01-02"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.Create(ctx, "u1", CreateInput{Description: "other day", Date: "2024-01-01"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	entries, err := s.List(ctx, "u1", time.Date(2024, 1, 2, 23, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 || entries[0].ID != second.ID || entries[1].ID != first.ID {
		t.Fatalf("expected newest first, got %+v", entries)
	}

	if err := s.Delete(ctx, first.ID, "u1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, first.ID, "u1"); err != nil {
		t.Fatalf("second Delete should succeed: %v", err)
	}
	entries, _ = s.List(ctx, "u1", now)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry after delete, got %d", len(entries))
	}

	deletes := 0
	for _, e := range rec.entries {
		if e.Action == activity.ActionDelete {
			deletes++
		}
	}
	if deletes != 1 {
		t.Fatalf("expected exactly one delete audit entry, got %d", deletes)
	}
}

func TestJournal_Validation(t *testing.T) {
	s := NewService(storagetest.New(t), nil)
	for _, in := range []CreateInput{{}, {Description: "  "}, {Description: "x", Date: "02/01/2024"}} {
		if _, err := s.Create(context.Background(), "u1", in); !errors.Is(err, ErrInvalidEntry) {
			t.Fatalf("%+v: expected ErrInvalidEntry, got %v", in, err)
		}
	}
}
