package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/itwoqa/bugtracker/internal/config"
	"github.com/itwoqa/bugtracker/internal/models"
	"github.com/itwoqa/bugtracker/pkg/logger"
)

// ErrNotAddressed is returned when a chat message does not mention the
// tracker's target address and should be silently ignored.
var ErrNotAddressed = errors.New("message does not mention the tracker address")

// MessageAttachment is a file attached to a chat message.
type MessageAttachment struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	ContentURL  string `json:"content_url"`
}

// IncomingMessage is the platform-independent shape of a chat message
// the bot received.
type IncomingMessage struct {
	Text        string              `json:"text"`
	SenderName  string              `json:"sender_name"`
	SenderEmail string              `json:"sender_email"`
	Attachments []MessageAttachment `json:"attachments,omitempty"`
}

// TeamsService turns chat messages addressed to the tracker into bug
// tickets.
type TeamsService struct {
	cfg     *config.TeamsConfig
	bugs    *BugService
	storage *Storage
	client  *http.Client
}

func NewTeamsService(cfg *config.TeamsConfig, bugs *BugService, storage *Storage) *TeamsService {
	return &TeamsService{
		cfg:     cfg,
		bugs:    bugs,
		storage: storage,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

var (
	mentionTagRe    = regexp.MustCompile(`(?s)<at>.*?</at>`)
	titlePrefixRe   = regexp.MustCompile(`(?im)^\s*(?:bug|issue|problem|title)\s*:\s*(.+)$`)
	priorityFieldRe = regexp.MustCompile(`(?i)priority\s*:\s*(low|medium|high|critical)`)
)

// MentionsTarget reports whether the message text references the
// configured target email.
func (s *TeamsService) MentionsTarget(text string) bool {
	if s.cfg.TargetEmail == "" {
		return false
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(s.cfg.TargetEmail))
}

// StripMentionTags removes chat mention markup from message text.
func StripMentionTags(text string) string {
	return strings.TrimSpace(mentionTagRe.ReplaceAllString(text, ""))
}

// ExtractTitle pulls a bug title out of free-form message text: an
// explicit "bug:"/"issue:"/"problem:"/"title:" line wins, otherwise the
// first non-empty line is used, truncated to 100 characters.
func ExtractTitle(text string) string {
	if m := titlePrefixRe.FindStringSubmatch(text); m != nil {
		return truncate(strings.TrimSpace(m[1]), 100)
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			return truncate(line, 100)
		}
	}
	return "Untitled bug report"
}

// ExtractPriority reads an explicit "priority: x" field or falls back
// to urgency keywords anywhere in the text.
func ExtractPriority(text string) string {
	if m := priorityFieldRe.FindStringSubmatch(text); m != nil {
		return strings.ToLower(m[1])
	}
	lower := strings.ToLower(text)
	for _, kw := range []string{"urgent", "critical", "blocker", "asap"} {
		if strings.Contains(lower, kw) {
			return models.PriorityCritical
		}
	}
	for _, kw := range []string{"high", "important"} {
		if strings.Contains(lower, kw) {
			return models.PriorityHigh
		}
	}
	return models.PriorityMedium
}

// ProcessMessage files a bug from a chat message. The full cleaned text
// becomes the description; image attachments are downloaded into
// storage and linked as screenshots.
func (s *TeamsService) ProcessMessage(msg *IncomingMessage) (*models.Bug, error) {
	if !s.MentionsTarget(msg.Text) {
		return nil, ErrNotAddressed
	}

	text := StripMentionTags(msg.Text)
	if text == "" {
		return nil, ErrNotAddressed
	}

	reporterName := msg.SenderName
	if reporterName == "" {
		reporterName = "Teams User"
	}
	reporterEmail := msg.SenderEmail
	if reporterEmail == "" {
		reporterEmail = "teams@unknown"
	}

	var screenshots []string
	for _, att := range msg.Attachments {
		uri, err := s.downloadAttachment(&att)
		if err != nil {
			logger.Warn().Err(err).Str("attachment", att.Name).Msg("Skipping attachment")
			continue
		}
		if uri != "" {
			screenshots = append(screenshots, uri)
		}
	}

	req := &CreateBugRequest{
		Title:       ExtractTitle(text),
		Description: text,
		Priority:    ExtractPriority(text),
		Screenshots: screenshots,
	}
	bug, err := s.bugs.Create(req, reporterName, reporterEmail)
	if err != nil {
		return nil, err
	}

	logger.Info().Str("ticket", bug.TicketNumber).Str("reporter", reporterName).Msg("Bug filed from Teams message")
	return bug, nil
}

// ProcessTask adapts queued ingestion tasks to ProcessMessage. Messages
// that turn out not to be addressed to the tracker are dropped without
// error so the queue does not retry them.
func (s *TeamsService) ProcessTask(ctx context.Context, task *IngestionTask) error {
	_, err := s.ProcessMessage(&IncomingMessage{
		Text:        task.Text,
		SenderName:  task.SenderName,
		SenderEmail: task.SenderEmail,
		Attachments: task.Attachments,
	})
	if errors.Is(err, ErrNotAddressed) {
		return nil
	}
	return err
}

// ConfirmationText is the bot's reply after filing a ticket.
func ConfirmationText(bug *models.Bug) string {
	return fmt.Sprintf("Bug report %s created: %s (priority: %s)",
		bug.TicketNumber, bug.Title, bug.Priority)
}

// downloadAttachment fetches an image attachment into storage and
// returns its public URI. Non-image attachments are skipped.
func (s *TeamsService) downloadAttachment(att *MessageAttachment) (string, error) {
	if att.ContentURL == "" {
		return "", nil
	}
	if att.ContentType != "" && !strings.HasPrefix(att.ContentType, "image/") {
		return "", nil
	}

	resp, err := s.client.Get(att.ContentURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("attachment download returned %d", resp.StatusCode)
	}

	name := s.storage.GenerateName(att.Name)
	return s.storage.Save(name, resp.Body)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
