package services

import (
	"path/filepath"
	"testing"

	"github.com/itwoqa/bugtracker/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens a throwaway sqlite database with the full schema and
// the ticket sequence seeded. A single connection keeps concurrent test
// writers serialized the way the production drivers do with row locks.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.User{}, &models.Bug{}, &models.Comment{}, &models.TicketSequence{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	if err := models.SeedTicketSequence(db); err != nil {
		t.Fatalf("failed to seed ticket sequence: %v", err)
	}

	return db
}

// newBugService wires a BugService with default ticket config and a
// fresh hub on the given database.
func newBugService(db *gorm.DB) (*BugService, *EventHub) {
	hub := NewEventHub()
	tickets := newTicketService(db)
	return NewBugService(db, tickets, hub), hub
}

func newTicketService(db *gorm.DB) *TicketService {
	return NewTicketService(db, &testTicketConfig)
}
