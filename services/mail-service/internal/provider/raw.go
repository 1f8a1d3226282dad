package provider

import (
	"bytes"
	"encoding/json"
	"time"
)

// RawMessage is a provider payload before normalization.
// The set of implementations is closed: *MailTMMessage, *GuerrillaMessage and GenericMessage.
type RawMessage interface {
	RawID() string
	isRawMessage()
}

// MailTMAddress is a sender or recipient in mail.tm payloads.
type MailTMAddress struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

// MailTMMessage covers both the list item and the full message of the mail.tm API.
// Text and HTML are only populated by the single-message endpoint.
type MailTMMessage struct {
	ID             string          `json:"id"`
	From           MailTMAddress   `json:"from"`
	To             []MailTMAddress `json:"to"`
	Subject        string          `json:"subject"`
	Intro          string          `json:"intro"`
	Text           string          `json:"text"`
	HTML           []string        `json:"html"`
	Seen           bool            `json:"seen"`
	HasAttachments bool            `json:"hasAttachments"`
	CreatedAt      time.Time       `json:"createdAt"`
}

func (m *MailTMMessage) RawID() string { return m.ID }
func (m *MailTMMessage) isRawMessage() {}

// GuerrillaMessage covers get_email_list items and fetch_email responses.
type GuerrillaMessage struct {
	MailID        FlexString `json:"mail_id"`
	MailFrom      string     `json:"mail_from"`
	MailSubject   string     `json:"mail_subject"`
	MailExcerpt   string     `json:"mail_excerpt"`
	MailBody      string     `json:"mail_body"`
	MailTimestamp FlexString `json:"mail_timestamp"`
	MailRead      FlexString `json:"mail_read"`
	MailDate      string     `json:"mail_date"`
}

func (m *GuerrillaMessage) RawID() string { return string(m.MailID) }
func (m *GuerrillaMessage) isRawMessage() {}

// GenericMessage holds a payload from a provider shape outside the known set.
type GenericMessage map[string]any

func (m GenericMessage) RawID() string {
	for _, key := range []string{"id", "message_id", "messageId", "mail_id"} {
		if v, ok := m[key]; ok && v != nil {
			if s, ok := v.(string); ok {
				return s
			}
			b, _ := json.Marshal(v)
			return string(b)
		}
	}
	return ""
}
func (m GenericMessage) isRawMessage() {}

// FlexString accepts both JSON strings and bare scalars (GuerrillaMail mixes them).
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	*f = FlexString(data)
	return nil
}
