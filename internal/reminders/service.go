// Package reminders records follow-up tasks, most importantly the payment
// reminders that partial settlements schedule.
package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tillview/tillview-backend/pkg/db/models"
	pkgerrors "github.com/tillview/tillview-backend/pkg/errors"
)

// Service exposes reminder creation and the follow-up worklist.
type Service interface {
	CreateReminder(ctx context.Context, reminder *models.Reminder) error
	ListOpen(ctx context.Context, horizon time.Time) ([]models.Reminder, error)
	Complete(ctx context.Context, id uuid.UUID) error
}

type reminderStore interface {
	CreateReminder(ctx context.Context, reminder *models.Reminder) error
	ListOpen(ctx context.Context, horizon time.Time) ([]models.Reminder, error)
	MarkCompleted(ctx context.Context, id uuid.UUID) (int64, error)
}

type service struct {
	repo reminderStore
}

// NewService constructs a reminders service instance.
func NewService(repo reminderStore) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reminders repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateReminder(ctx context.Context, reminder *models.Reminder) error {
	if reminder == nil || reminder.Title == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "reminder title is required")
	}
	if reminder.DueAt.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "reminder due date is required")
	}
	if err := s.repo.CreateReminder(ctx, reminder); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create reminder")
	}
	return nil
}

func (s *service) ListOpen(ctx context.Context, horizon time.Time) ([]models.Reminder, error) {
	reminders, err := s.repo.ListOpen(ctx, horizon)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list reminders")
	}
	return reminders, nil
}

func (s *service) Complete(ctx context.Context, id uuid.UUID) error {
	affected, err := s.repo.MarkCompleted(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "complete reminder")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "reminder not found or already completed")
	}
	return nil
}
