package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

// Bug statuses. A bug starts as reported and moves through the workflow
// until resolved, which is terminal.
const (
	StatusReported   = "reported"
	StatusReturned   = "returned"
	StatusInProgress = "in-progress"
	StatusTesting    = "testing"
	StatusResolved   = "resolved"
)

// Bug priorities
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// StringList is a JSON-encoded list of strings stored in a text column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("unsupported type for StringList")
	}
	if len(data) == 0 {
		*l = StringList{}
		return nil
	}
	return json.Unmarshal(data, l)
}

// User represents a system user
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Password  string         `gorm:"size:255" json:"-"` // Hashed password, empty for LDAP users
	Email     string         `gorm:"size:255" json:"email"`
	Nickname  string         `gorm:"size:100" json:"nickname"`
	Role      string         `gorm:"size:50;default:user" json:"role"`       // admin, user
	AuthType  string         `gorm:"size:20;default:local" json:"auth_type"` // local, ldap
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	LastLogin *time.Time     `json:"last_login"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// DisplayName returns the name shown as reporter/author for this user.
func (u *User) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Username
}

// Bug represents a tracked bug report
type Bug struct {
	ID            string     `gorm:"primaryKey;size:36" json:"id"`
	TicketNumber  string     `gorm:"uniqueIndex;size:20;not null" json:"ticket_number"`
	Title         string     `gorm:"type:text;not null" json:"title"`
	Description   string     `gorm:"type:text" json:"description"` // markdown, may embed image URIs
	Status        string     `gorm:"size:20;default:reported;index" json:"status"`
	Priority      string     `gorm:"size:20;default:medium" json:"priority"`
	ReporterName  string     `gorm:"size:255;not null" json:"reporter_name"`
	ReporterEmail string     `gorm:"size:255;not null" json:"reporter_email"`
	Assignee      string     `gorm:"size:255" json:"assignee"`
	Screenshots   StringList `gorm:"type:text" json:"screenshots"`
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Comment belongs to exactly one bug and is removed with it.
type Comment struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	BugID     string    `gorm:"size:36;index;not null" json:"bug_id"`
	Bug       *Bug      `gorm:"foreignKey:BugID;constraint:OnDelete:CASCADE" json:"-"`
	Author    string    `gorm:"size:255;not null" json:"author"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Edited reports whether the comment has been modified since creation.
func (c *Comment) Edited() bool {
	return !c.UpdatedAt.Equal(c.CreatedAt) && c.UpdatedAt.After(c.CreatedAt)
}

// TicketSequence is the single-row counter behind ticket numbering.
// LastValue is the most recently issued number; it only ever increases.
type TicketSequence struct {
	ID        uint  `gorm:"primaryKey" json:"id"`
	LastValue int64 `gorm:"not null;default:0" json:"last_value"`
}

// TableName overrides
func (User) TableName() string           { return "users" }
func (Bug) TableName() string            { return "bugs" }
func (Comment) TableName() string        { return "comments" }
func (TicketSequence) TableName() string { return "ticket_sequences" }

// ValidStatus reports whether s is a known bug status.
func ValidStatus(s string) bool {
	switch s {
	case StatusReported, StatusReturned, StatusInProgress, StatusTesting, StatusResolved:
		return true
	}
	return false
}

// ValidPriority reports whether p is a known priority.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}
