package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/itwoqa/bugtracker/internal/services"
	"github.com/itwoqa/bugtracker/pkg/logger"
	"github.com/itwoqa/bugtracker/pkg/response"
)

// TeamsHandler receives chat-platform traffic: direct bot activities
// and change-notification webhooks.
type TeamsHandler struct {
	teams *services.TeamsService
	queue services.TaskQueue
}

func NewTeamsHandler(teams *services.TeamsService, queue services.TaskQueue) *TeamsHandler {
	return &TeamsHandler{teams: teams, queue: queue}
}

// botActivity is the subset of a Bot Framework activity we consume.
type botActivity struct {
	Type string `json:"type"`
	Text string `json:"text"`
	From struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"from"`
	Attachments []struct {
		Name        string `json:"name"`
		ContentType string `json:"contentType"`
		ContentURL  string `json:"contentUrl"`
	} `json:"attachments"`
}

// HandleMessages processes a bot activity synchronously and replies
// with a filing confirmation.
// POST /api/teams/messages
func (h *TeamsHandler) HandleMessages(c *gin.Context) {
	var activity botActivity
	if err := c.ShouldBindJSON(&activity); err != nil {
		response.BadRequest(c, "Invalid activity payload")
		return
	}

	if activity.Type != "message" {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	msg := &services.IncomingMessage{
		Text:        activity.Text,
		SenderName:  activity.From.Name,
		SenderEmail: activity.From.Email,
	}
	for _, att := range activity.Attachments {
		msg.Attachments = append(msg.Attachments, services.MessageAttachment{
			Name:        att.Name,
			ContentType: att.ContentType,
			ContentURL:  att.ContentURL,
		})
	}

	bug, err := h.teams.ProcessMessage(msg)
	if errors.Is(err, services.ErrNotAddressed) {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}
	if err != nil {
		logger.Error().Err(err).Msg("Failed to file bug from Teams message")
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"type": "message",
		"text": services.ConfirmationText(bug),
	})
}

// HandleWebhook answers the Graph subscription validation handshake and
// queues message notifications for out-of-band processing.
// POST /api/teams/webhook
func (h *TeamsHandler) HandleWebhook(c *gin.Context) {
	// Subscription validation handshake: echo the token back as plain text
	if token := c.Query("validationToken"); token != "" {
		c.String(http.StatusOK, token)
		return
	}

	var notification struct {
		Value []struct {
			SenderName  string                       `json:"sender_name"`
			SenderEmail string                       `json:"sender_email"`
			Text        string                       `json:"text"`
			Attachments []services.MessageAttachment `json:"attachments"`
		} `json:"value"`
	}
	if err := c.ShouldBindJSON(&notification); err != nil {
		response.BadRequest(c, "Invalid notification payload")
		return
	}

	for _, item := range notification.Value {
		task := &services.IngestionTask{
			SenderName:  item.SenderName,
			SenderEmail: item.SenderEmail,
			Text:        item.Text,
			Attachments: item.Attachments,
		}
		if err := h.queue.Enqueue(task); err != nil {
			logger.Error().Err(err).Msg("Failed to enqueue ingestion task")
			response.Error(c, err)
			return
		}
	}

	c.JSON(http.StatusAccepted, gin.H{"queued": len(notification.Value)})
}
