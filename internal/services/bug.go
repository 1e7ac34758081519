package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/itwoqa/bugtracker/internal/models"
	"github.com/itwoqa/bugtracker/pkg/logger"
	"github.com/itwoqa/bugtracker/pkg/response"
	"gorm.io/gorm"
)

type BugService struct {
	db      *gorm.DB
	tickets *TicketService
	hub     *EventHub
}

func NewBugService(db *gorm.DB, tickets *TicketService, hub *EventHub) *BugService {
	return &BugService{db: db, tickets: tickets, hub: hub}
}

type CreateBugRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    string   `json:"priority"`
	Assignee    string   `json:"assignee"`
	Screenshots []string `json:"screenshots"`
}

// UpdateBugRequest replaces the mutable fields of a bug wholesale.
// Whatever the client sends becomes the new truth; concurrent editors
// follow last-write-wins.
type UpdateBugRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Status      string `json:"status" binding:"required"`
	Assignee    string `json:"assignee"`
	Priority    string `json:"priority" binding:"required"`
}

// Create validates and persists a new bug. The ticket number is issued
// inside the same transaction as the insert, so a failed insert never
// burns a visible number on a half-created bug.
func (s *BugService) Create(req *CreateBugRequest, reporterName, reporterEmail string) (*models.Bug, error) {
	if req.Title == "" {
		return nil, response.NewBadRequest("Title is required")
	}
	if reporterName == "" || reporterEmail == "" {
		return nil, response.NewBadRequest("Reporter identity is required")
	}

	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !models.ValidPriority(priority) {
		return nil, response.NewBadRequest(fmt.Sprintf("Invalid priority: %s", priority))
	}

	screenshots := req.Screenshots
	if screenshots == nil {
		screenshots = []string{}
	}

	bug := &models.Bug{
		ID:            uuid.New().String(),
		Title:         req.Title,
		Description:   req.Description,
		Status:        models.StatusReported,
		Priority:      priority,
		ReporterName:  reporterName,
		ReporterEmail: reporterEmail,
		Assignee:      req.Assignee,
		Screenshots:   screenshots,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		number, err := s.tickets.NextNumberTx(tx)
		if err != nil {
			return err
		}
		bug.TicketNumber = number
		return tx.Create(bug).Error
	})
	if err != nil {
		return nil, err
	}

	logger.Info().Str("bug_id", bug.ID).Str("ticket", bug.TicketNumber).Msg("Bug created")
	s.hub.Publish(Event{Type: EventBugCreated, Data: bug})
	return bug, nil
}

// List returns all bugs, newest first.
func (s *BugService) List() ([]models.Bug, error) {
	var bugs []models.Bug
	if err := s.db.Order("created_at DESC").Find(&bugs).Error; err != nil {
		return nil, err
	}
	return bugs, nil
}

// GetByID returns a bug by its immutable ID.
func (s *BugService) GetByID(id string) (*models.Bug, error) {
	var bug models.Bug
	if err := s.db.Where("id = ?", id).First(&bug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("Bug not found")
		}
		return nil, err
	}
	return &bug, nil
}

// Update replaces a bug's mutable fields. Resolved bugs reject every
// edit, and status changes must follow the workflow.
func (s *BugService) Update(id string, req *UpdateBugRequest) (*models.Bug, error) {
	bug, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if !CanEditBug(bug.Status) {
		return nil, response.NewForbidden("Cannot edit a resolved bug")
	}

	if req.Title == "" {
		return nil, response.NewBadRequest("Title is required")
	}
	if !models.ValidStatus(req.Status) {
		return nil, response.NewBadRequest(fmt.Sprintf("Invalid status: %s", req.Status))
	}
	if !models.ValidPriority(req.Priority) {
		return nil, response.NewBadRequest(fmt.Sprintf("Invalid priority: %s", req.Priority))
	}
	if !CanTransition(bug.Status, req.Status) {
		return nil, response.NewBadRequest(
			fmt.Sprintf("Invalid status transition from %s to %s", bug.Status, req.Status))
	}

	bug.Title = req.Title
	bug.Description = req.Description
	bug.Status = req.Status
	bug.Assignee = req.Assignee
	bug.Priority = req.Priority

	if err := s.db.Save(bug).Error; err != nil {
		return nil, err
	}

	s.hub.Publish(Event{Type: EventBugUpdated, Data: bug})
	return bug, nil
}

// Delete removes a bug and its comments. Only bugs that nobody has
// started working on may be deleted.
func (s *BugService) Delete(id string) error {
	bug, err := s.GetByID(id)
	if err != nil {
		return err
	}

	if !CanDeleteBug(bug.Status) {
		return response.NewForbidden("Can only delete bugs in Reported or Returned status")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bug_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Bug{}, "id = ?", id).Error
	})
	if err != nil {
		return err
	}

	logger.Info().Str("bug_id", id).Str("ticket", bug.TicketNumber).Msg("Bug deleted")
	s.hub.Publish(Event{Type: EventBugDeleted, Data: map[string]string{"id": id}})
	return nil
}
