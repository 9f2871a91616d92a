package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"daygrid/internal/drag"
	"daygrid/internal/model"
)

func open(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAddGet_RoundTripsPersistedFields(t *testing.T) {
	s := open(t)
	ctx := context.Background()
	want := model.Task{
		ID:        "task-a",
		Text:      "water the plants",
		Date:      "2024-01-01",
		Category:  model.CategoryLife,
		State:     model.StateActive,
		Order:     "i0i",
		CreatedAt: time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC),
	}
	if err := s.AddTask(ctx, want); err != nil {
		t.Fatalf("add: %v", err)
	}
	got, err := s.GetTask(ctx, "task-a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Order != want.Order || got.Date != want.Date || got.Category != want.Category || got.State != want.State {
		t.Fatalf("persisted fields must round-trip unchanged: got %+v", got)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Fatalf("createdAt mismatch: %v vs %v", got.CreatedAt, want.CreatedAt)
	}
}

func TestGetTask_NotFound(t *testing.T) {
	s := open(t)
	if _, err := s.GetTask(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestPersistReorder_WritesOnlyChangedFields(t *testing.T) {
	s := open(t)
	ctx := context.Background()
	if err := s.AddTask(ctx, model.Task{ID: "task-a", Text: "x", Date: "2024-01-01", Category: model.CategoryLife, State: model.StateActive, Order: "g", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("add: %v", err)
	}

	st := model.StateCompleted
	date := "2024-01-02"
	err := s.PersistReorder(ctx, "task-a", "p", drag.ChangedFields{Date: &date, State: &st})
	if err != nil {
		t.Fatalf("persist reorder: %v", err)
	}
	got, err := s.GetTask(ctx, "task-a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Order != "p" || got.Date != "2024-01-02" || got.State != model.StateCompleted || !got.Completed {
		t.Fatalf("reorder not applied: %+v", got)
	}
	if got.Category != model.CategoryLife {
		t.Fatalf("unchanged category must stay as stored, got %q", got.Category)
	}
}

func TestPersistReorder_UnknownTask(t *testing.T) {
	s := open(t)
	if err := s.PersistReorder(context.Background(), "nope", "p", drag.ChangedFields{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestGraveyardTransferAndResurrection(t *testing.T) {
	s := open(t)
	ctx := context.Background()
	if err := s.AddTask(ctx, model.Task{ID: "task-a", Text: "x", Date: "2024-01-01", Category: model.CategoryWork, State: model.StateFailed, Order: "g", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := s.PersistGraveyardTransfer(ctx, "task-a", "2024-01-01"); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	got, err := s.GetTask(ctx, "task-a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Date != "" {
		t.Fatalf("buried task must have no date, got %q", got.Date)
	}

	if err := s.PersistResurrection(ctx, "task-a", "2024-01-05", "x"); err != nil {
		t.Fatalf("resurrection: %v", err)
	}
	got, err = s.GetTask(ctx, "task-a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Date != "2024-01-05" || got.State != model.StateActive || got.Completed {
		t.Fatalf("revived task should be active on the target day, got %+v", got)
	}
	if got.Order != "x" {
		t.Fatalf("resurrection should store the new order key, got %q", got.Order)
	}
}

func TestLoad_GroupsDaysAndGraveyard(t *testing.T) {
	s := open(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	add := func(id, date, key string, created time.Time) {
		t.Helper()
		if err := s.AddTask(ctx, model.Task{ID: id, Text: id, Date: date, Category: model.CategoryLife, State: model.StateActive, Order: key, CreatedAt: created}); err != nil {
			t.Fatalf("add %s: %v", id, err)
		}
	}
	add("task-a", "2024-01-01", "m", base)
	add("task-b", "2024-01-01", "g", base.Add(time.Minute))
	add("task-old", "", "", base)
	add("task-new", "", "", base.Add(time.Hour))

	snap, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	day := snap.TasksIn(model.DayID("2024-01-01", model.CategoryLife, model.StateActive))
	if len(day) != 2 || day[0].ID != "task-b" || day[1].ID != "task-a" {
		t.Fatalf("day container should sort by key, got %v", day)
	}
	if len(snap.Graveyard) != 2 || snap.Graveyard[0].ID != "task-new" {
		t.Fatalf("graveyard should be newest first, got %v", snap.Graveyard)
	}
}
