package services

import (
	"fmt"
	"strings"
	"testing"
	"vmp-callback/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// newTestDB opens a per-test in-memory SQLite database with the same
// naming strategy as production and migrates the callback schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Transaction{},
		&models.Product{},
		&models.User{},
		&models.Setting{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}
