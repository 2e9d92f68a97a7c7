package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer is a lightweight record created on demand when a cashier names
// the buyer at settlement time.
type Customer struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	PhoneNumber *string   `gorm:"column:phone_number"`
	Email       *string   `gorm:"column:email"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
