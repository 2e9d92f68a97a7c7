package reminders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tillview/tillview-backend/pkg/db/models"
)

// Repository owns reminder persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// CreateReminder inserts a reminder row.
func (r *Repository) CreateReminder(ctx context.Context, reminder *models.Reminder) error {
	return r.db.WithContext(ctx).Create(reminder).Error
}

// FindByID loads one reminder.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Reminder, error) {
	var reminder models.Reminder
	if err := r.db.WithContext(ctx).First(&reminder, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &reminder, nil
}

// ListOpen returns incomplete reminders due before the horizon, soonest
// first.
func (r *Repository) ListOpen(ctx context.Context, horizon time.Time) ([]models.Reminder, error) {
	var reminders []models.Reminder
	err := r.db.WithContext(ctx).
		Where("completed = false AND due_at <= ?", horizon).
		Order("due_at ASC").
		Find(&reminders).
		Error
	if err != nil {
		return nil, err
	}
	return reminders, nil
}

// MarkCompleted flips the completed flag. Returns the number of rows
// touched so callers can distinguish a missing id.
func (r *Repository) MarkCompleted(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Reminder{}).
		Where("id = ? AND completed = false", id).
		UpdateColumn("completed", true)
	return result.RowsAffected, result.Error
}
