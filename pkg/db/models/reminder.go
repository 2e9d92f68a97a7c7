package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Reminder is a follow-up task. Partial settlements create one per unpaid
// remainder; the task subsystem owns everything after insertion.
type Reminder struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title     string          `gorm:"column:title;not null"`
	Body      string          `gorm:"column:body;not null"`
	DueAt     time.Time       `gorm:"column:due_at;not null"`
	SaleID    *uuid.UUID      `gorm:"column:sale_id;type:uuid"`
	AmountDue decimal.Decimal `gorm:"column:amount_due;type:numeric(12,4);not null;default:0"`
	Completed bool            `gorm:"column:completed;not null;default:false"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
