// Package normalize turns provider-specific payloads into models.Message.
package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/stoik/tempmail/internal/models"
	"github.com/stoik/tempmail/services/mail-service/internal/provider"
)

const (
	// DisplayLayout is the format of Message.Date. It round-trips through ParseDisplayDate.
	DisplayLayout = "2006-01-02 15:04:05"

	PreviewLength = 120
	Ellipsis      = "..."

	unknownSender = "Unknown Sender"
)

// ErrEmptyContent marks a message that synthesizes to no content; such messages are dropped.
var ErrEmptyContent = errors.New("message has no content")

var blankLines = regexp.MustCompile(`\n\s*\n`)

// Normalizer converts raw provider messages. It is safe for concurrent use.
type Normalizer struct {
	now        func() time.Time
	newID      func() string
	loc        *time.Location
	textPolicy *bluemonday.Policy
	htmlPolicy *bluemonday.Policy
}

type Option func(*Normalizer)

// WithClock sets the clock used for processing and received timestamps.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) { n.now = now }
}

// WithIDFunc sets the generator of correlation identifiers.
func WithIDFunc(f func() string) Option {
	return func(n *Normalizer) { n.newID = f }
}

// WithLocation sets the time zone of display dates.
func WithLocation(loc *time.Location) Option {
	return func(n *Normalizer) {
		if loc != nil {
			n.loc = loc
		}
	}
}

func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		now:        time.Now,
		newID:      uuid.NewString,
		loc:        time.UTC,
		textPolicy: bluemonday.StrictPolicy(),
		htmlPolicy: bluemonday.UGCPolicy(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize converts raw into a message owned by account.
// It returns ErrEmptyContent when there is nothing to show.
func (n *Normalizer) Normalize(raw provider.RawMessage, p models.Provider, account *models.Account) (*models.Message, error) {
	f, err := n.extract(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s message: %w", p, err)
	}
	if f.id == "" {
		return nil, fmt.Errorf("%s message has no id", p)
	}

	now := n.now()
	date := f.date
	if date.IsZero() {
		date = now
	}
	display := date.In(n.loc).Format(DisplayLayout)

	content := n.synthesize(f, p, display, now)
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	sender := f.sender
	if sender == "" {
		sender = unknownSender
	}

	msg := &models.Message{
		ID:          uuid.New(),
		MessageID:   f.id,
		AccountID:   account.AccountID,
		Email:       account.Email,
		Provider:    p,
		Sender:      sender,
		Subject:     strings.TrimSpace(f.subject),
		Content:     content,
		Preview:     Preview(content),
		Date:        display,
		DateUnix:    date.UnixMilli(),
		Unread:      f.unread,
		ReceivedAt:  now,
		LastChecked: now,
	}
	msg.ApplyDefaults()
	return msg, nil
}

// ParseDisplayDate parses a Message.Date produced in loc.
func ParseDisplayDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(DisplayLayout, s, loc)
}

// Preview collapses blank lines, trims, and cuts content to PreviewLength runes plus Ellipsis.
func Preview(content string) string {
	collapsed := strings.TrimSpace(blankLines.ReplaceAllString(content, "\n"))
	if utf8.RuneCountInString(collapsed) <= PreviewLength {
		return collapsed
	}
	runes := []rune(collapsed)
	return string(runes[:PreviewLength]) + Ellipsis
}
