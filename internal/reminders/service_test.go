package reminders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tillview/tillview-backend/pkg/db/models"
	pkgerrors "github.com/tillview/tillview-backend/pkg/errors"
)

type fakeStore struct {
	created   []*models.Reminder
	open      []models.Reminder
	completed map[uuid.UUID]bool
}

func (f *fakeStore) CreateReminder(_ context.Context, reminder *models.Reminder) error {
	f.created = append(f.created, reminder)
	return nil
}

func (f *fakeStore) ListOpen(_ context.Context, _ time.Time) ([]models.Reminder, error) {
	return f.open, nil
}

func (f *fakeStore) MarkCompleted(_ context.Context, id uuid.UUID) (int64, error) {
	if f.completed[id] {
		return 1, nil
	}
	return 0, nil
}

func TestCreateReminderValidation(t *testing.T) {
	svc, err := NewService(&fakeStore{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if err := svc.CreateReminder(context.Background(), &models.Reminder{}); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("missing title accepted: %v", err)
	}
	if err := svc.CreateReminder(context.Background(), &models.Reminder{Title: "Payment Due: Jamie"}); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("missing due date accepted: %v", err)
	}
	if err := svc.CreateReminder(context.Background(), &models.Reminder{
		Title: "Payment Due: Jamie",
		DueAt: time.Now().Add(24 * time.Hour),
	}); err != nil {
		t.Fatalf("valid reminder rejected: %v", err)
	}
}

func TestCompleteUnknownReminder(t *testing.T) {
	svc, err := NewService(&fakeStore{completed: map[uuid.UUID]bool{}})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if err := svc.Complete(context.Background(), uuid.New()); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestCompleteKnownReminder(t *testing.T) {
	id := uuid.New()
	svc, err := NewService(&fakeStore{completed: map[uuid.UUID]bool{id: true}})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if err := svc.Complete(context.Background(), id); err != nil {
		t.Fatalf("Complete: %v", err)
	}
}
