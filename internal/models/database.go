package models

import (
	"errors"
	"fmt"

	"github.com/itwoqa/bugtracker/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func InitDB(cfg *config.DatabaseConfig) error {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	DB = db
	return nil
}

func AutoMigrate() error {
	return DB.AutoMigrate(
		&User{},
		&Bug{},
		&Comment{},
		&TicketSequence{},
	)
}

func GetDB() *gorm.DB {
	return DB
}

// SeedDefaultData creates required rows if not present. The ticket sequence
// must exist before the first bug is filed.
func SeedDefaultData() error {
	return SeedTicketSequence(DB)
}

// SeedTicketSequence inserts the single counter row when missing.
func SeedTicketSequence(db *gorm.DB) error {
	var seq TicketSequence
	err := db.First(&seq, 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Create(&TicketSequence{ID: 1, LastValue: 0}).Error
	}
	return err
}
