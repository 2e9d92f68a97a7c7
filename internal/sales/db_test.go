package sales

import (
	"os"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TILLVIEW_DB_DSN")
	if dsn == "" {
		t.Skip("TILLVIEW_DB_DSN is not set")
	}

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	return conn
}

// withRollback runs fn inside a transaction that is always rolled back so
// repository tests leave no rows behind.
func withRollback(t *testing.T, conn *gorm.DB, fn func(tx *gorm.DB)) {
	t.Helper()
	tx := conn.Begin()
	if tx.Error != nil {
		t.Fatalf("begin: %v", tx.Error)
	}
	defer tx.Rollback()
	fn(tx)
}
