package normalize

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/stoik/tempmail/internal/models"
)

const rule = "----------------------------------------"

// synthesize builds the stored content block: header, metadata, bodies and a technical footer.
// A message with no sender, subject or body yields "".
func (n *Normalizer) synthesize(f fields, p models.Provider, displayDate string, processedAt time.Time) string {
	text := strings.TrimSpace(f.text)
	body := strings.TrimSpace(f.html)
	if f.sender == "" && strings.TrimSpace(f.subject) == "" && text == "" && body == "" {
		return ""
	}

	subject := strings.TrimSpace(f.subject)
	if subject == "" {
		subject = models.DefaultSubject
	}
	sender := f.sender
	if sender == "" {
		sender = unknownSender
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Subject: %s\n", subject)
	fmt.Fprintf(&b, "From: %s\n", sender)
	fmt.Fprintf(&b, "Date: %s\n", displayDate)
	fmt.Fprintf(&b, "Provider: %s\n", p)

	b.WriteString("\n" + rule + "\nMESSAGE\n" + rule + "\n")
	if text != "" {
		b.WriteString(text)
	} else {
		b.WriteString("(no text body)")
	}
	b.WriteString("\n")

	if body != "" {
		b.WriteString("\n" + rule + "\nHTML\n" + rule + "\n")
		b.WriteString(strings.TrimSpace(n.htmlPolicy.Sanitize(body)))
		b.WriteString("\n")
	}

	b.WriteString("\n" + rule + "\n")
	fmt.Fprintf(&b, "Processed: %s\n", processedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Length: %d chars\n", utf8.RuneCountInString(text)+utf8.RuneCountInString(body))
	fmt.Fprintf(&b, "Provider: %s\n", p)
	fmt.Fprintf(&b, "Ref: %s\n", n.newID())

	return b.String()
}

const bodyMarker = rule + "\nMESSAGE\n" + rule + "\n"

// Body returns the MESSAGE section of synthesized content.
// Content without that section is returned unchanged.
func Body(content string) string {
	_, rest, ok := strings.Cut(content, bodyMarker)
	if !ok {
		return content
	}
	body, _, _ := strings.Cut(rest, "\n"+rule)
	return strings.TrimSpace(body)
}
