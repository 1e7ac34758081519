package services

import (
	"errors"

	"github.com/google/uuid"
	"github.com/itwoqa/bugtracker/internal/models"
	"github.com/itwoqa/bugtracker/pkg/response"
	"gorm.io/gorm"
)

type CommentService struct {
	db  *gorm.DB
	hub *EventHub
}

func NewCommentService(db *gorm.DB, hub *EventHub) *CommentService {
	return &CommentService{db: db, hub: hub}
}

// List returns a bug's comments in chronological order.
func (s *CommentService) List(bugID string) ([]models.Comment, error) {
	if err := s.requireBug(bugID); err != nil {
		return nil, err
	}

	var comments []models.Comment
	if err := s.db.Where("bug_id = ?", bugID).Order("created_at ASC").Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// Add appends a comment to a bug. Commenting stays open in every
// status, including resolved.
func (s *CommentService) Add(bugID, author, content string) (*models.Comment, error) {
	if content == "" {
		return nil, response.NewBadRequest("Comment content is required")
	}
	if err := s.requireBug(bugID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ID:      uuid.New().String(),
		BugID:   bugID,
		Author:  author,
		Content: content,
	}
	if err := s.db.Create(comment).Error; err != nil {
		return nil, err
	}

	s.hub.Publish(Event{Type: EventCommentAdded, Data: comment})
	return comment, nil
}

// Edit updates a comment's content. Only the original author may edit,
// and comments on a resolved bug are frozen with the bug.
func (s *CommentService) Edit(bugID, commentID, principalName, content string) (*models.Comment, error) {
	var bug models.Bug
	if err := s.db.Where("id = ?", bugID).First(&bug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("Bug not found")
		}
		return nil, err
	}

	var comment models.Comment
	if err := s.db.Where("id = ? AND bug_id = ?", commentID, bugID).First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("Comment not found")
		}
		return nil, err
	}

	if comment.Author != principalName {
		return nil, response.NewForbidden("You can only edit your own comments")
	}
	if bug.Status == models.StatusResolved {
		return nil, response.NewForbidden("Cannot edit comments on a resolved bug")
	}
	if content == "" {
		return nil, response.NewBadRequest("Comment content is required")
	}

	comment.Content = content
	if err := s.db.Save(&comment).Error; err != nil {
		return nil, err
	}

	s.hub.Publish(Event{Type: EventCommentUpdated, Data: &comment})
	return &comment, nil
}

func (s *CommentService) requireBug(bugID string) error {
	var count int64
	if err := s.db.Model(&models.Bug{}).Where("id = ?", bugID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return response.NewNotFound("Bug not found")
	}
	return nil
}
