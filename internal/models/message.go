package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	DefaultSubject = "No Subject"
	DefaultContent = "No content"
	DefaultPreview = "No preview"
)

// Message is a normalized provider message.
// (AccountID, MessageID) identifies a message across repeated syncs.
type Message struct {
	ID          uuid.UUID `json:"-" db:"id"`
	MessageID   string    `json:"id" db:"message_id"`
	AccountID   string    `json:"accountId" db:"account_id"`
	Email       string    `json:"email" db:"email"`
	Provider    Provider  `json:"provider" db:"provider"`
	Sender      string    `json:"sender" db:"sender"`
	Subject     string    `json:"subject" db:"subject"`
	Content     string    `json:"content" db:"content"`
	Preview     string    `json:"preview" db:"preview"`
	Date        string    `json:"date" db:"date"`
	DateUnix    int64     `json:"dateUnix" db:"date_unix"` // epoch millis, used for ordering
	Unread      bool      `json:"unread" db:"unread"`
	ReceivedAt  time.Time `json:"receivedAt" db:"received_at"`
	LastChecked time.Time `json:"lastChecked" db:"last_checked"`
}

// ApplyDefaults fills empty text fields with their placeholders.
func (m *Message) ApplyDefaults() {
	if m.Subject == "" {
		m.Subject = DefaultSubject
	}
	if m.Content == "" {
		m.Content = DefaultContent
	}
	if m.Preview == "" {
		m.Preview = DefaultPreview
	}
}
