package services

import (
	"errors"
	"fmt"

	"github.com/itwoqa/bugtracker/internal/config"
	"github.com/itwoqa/bugtracker/internal/models"
	"gorm.io/gorm"
)

// TicketService issues human-facing ticket numbers from a single-row
// database counter. Numbers are unique and strictly increasing; gaps can
// appear when a creation rolls back after the counter moved.
type TicketService struct {
	db     *gorm.DB
	prefix string
	width  int
}

func NewTicketService(db *gorm.DB, cfg *config.TicketConfig) *TicketService {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "ITWO-QA"
	}
	width := cfg.Width
	if width <= 0 {
		width = 4
	}
	return &TicketService{db: db, prefix: prefix, width: width}
}

// NextNumber issues the next ticket number in its own transaction.
func (s *TicketService) NextNumber() (string, error) {
	var number string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		n, err := s.NextNumberTx(tx)
		if err != nil {
			return err
		}
		number = n
		return nil
	})
	return number, err
}

// NextNumberTx issues the next ticket number inside the caller's
// transaction, so a failed bug insert rolls the counter back too.
// The UPDATE takes the row lock on every supported driver before the
// read-back, which keeps concurrent issuers serialized.
func (s *TicketService) NextNumberTx(tx *gorm.DB) (string, error) {
	result := tx.Model(&models.TicketSequence{}).
		Where("id = ?", 1).
		Update("last_value", gorm.Expr("last_value + ?", 1))
	if result.Error != nil {
		return "", result.Error
	}
	if result.RowsAffected == 0 {
		return "", errors.New("ticket sequence not initialized")
	}

	var seq models.TicketSequence
	if err := tx.First(&seq, 1).Error; err != nil {
		return "", err
	}

	return s.Format(seq.LastValue), nil
}

// Format renders a raw counter value as a display ticket number.
func (s *TicketService) Format(n int64) string {
	return fmt.Sprintf("%s-%0*d", s.prefix, s.width, n)
}
