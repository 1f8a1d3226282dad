package normalize

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/stoik/tempmail/services/mail-service/internal/provider"
)

// fields is the provider-independent view of a raw message.
type fields struct {
	id      string
	sender  string
	subject string
	text    string
	html    string
	date    time.Time
	unread  bool
}

var spaceRun = regexp.MustCompile(`[ \t]+`)

// extract maps a raw payload onto fields. Known provider shapes get their own
// mapping; GenericMessage probes common field aliases.
func (n *Normalizer) extract(raw provider.RawMessage) (fields, error) {
	switch m := raw.(type) {
	case *provider.MailTMMessage:
		return n.fromMailTM(m), nil
	case *provider.GuerrillaMessage:
		return n.fromGuerrilla(m), nil
	case provider.GenericMessage:
		return n.fromGeneric(m), nil
	case nil:
		return fields{}, fmt.Errorf("nil message")
	default:
		return fields{}, fmt.Errorf("unsupported payload %T", raw)
	}
}

func (n *Normalizer) fromMailTM(m *provider.MailTMMessage) fields {
	sender := m.From.Address
	if m.From.Name != "" && m.From.Address != "" {
		sender = fmt.Sprintf("%s <%s>", m.From.Name, m.From.Address)
	} else if sender == "" {
		sender = m.From.Name
	}

	text := m.Text
	if text == "" {
		text = m.Intro
	}
	body := strings.Join(m.HTML, "\n")
	if text == "" && body != "" {
		text = n.plainText(body)
	}

	return fields{
		id:      m.ID,
		sender:  sender,
		subject: m.Subject,
		text:    text,
		html:    body,
		date:    m.CreatedAt,
		unread:  !m.Seen,
	}
}

func (n *Normalizer) fromGuerrilla(m *provider.GuerrillaMessage) fields {
	var date time.Time
	if secs, err := strconv.ParseInt(string(m.MailTimestamp), 10, 64); err == nil && secs > 0 {
		date = time.Unix(secs, 0)
	}

	text := m.MailExcerpt
	if m.MailBody != "" {
		text = n.plainText(m.MailBody)
	}

	return fields{
		id:      m.RawID(),
		sender:  m.MailFrom,
		subject: m.MailSubject,
		text:    text,
		html:    m.MailBody,
		date:    date,
		unread:  string(m.MailRead) != "1",
	}
}

func (n *Normalizer) fromGeneric(m provider.GenericMessage) fields {
	f := fields{
		id:      m.RawID(),
		sender:  firstString(m, "from", "sender"),
		subject: firstString(m, "subject"),
		text:    firstString(m, "text", "body", "content", "intro"),
		html:    firstString(m, "html"),
		unread:  m["unread"] != false,
	}
	if f.text == "" && f.html != "" {
		f.text = n.plainText(f.html)
	}

	for _, key := range []string{"date", "createdAt", "timestamp"} {
		if t, ok := parseAnyTime(m[key]); ok {
			f.date = t
			break
		}
	}
	return f
}

// plainText strips markup and collapses horizontal whitespace.
func (n *Normalizer) plainText(markup string) string {
	stripped := html.UnescapeString(n.textPolicy.Sanitize(markup))
	lines := strings.Split(stripped, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRun.ReplaceAllString(line, " "))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func firstString(m provider.GenericMessage, keys ...string) string {
	for _, key := range keys {
		switch v := m[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case map[string]any:
			if addr, ok := v["address"].(string); ok && addr != "" {
				return addr
			}
		case []any:
			parts := make([]string, 0, len(v))
			for _, item := range v {
				if s, ok := item.(string); ok {
					parts = append(parts, s)
				}
			}
			if len(parts) > 0 {
				return strings.Join(parts, "\n")
			}
		}
	}
	return ""
}

func parseAnyTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case string:
		if t == "" {
			return time.Time{}, false
		}
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed, true
		}
		if secs, err := strconv.ParseInt(t, 10, 64); err == nil {
			return time.Unix(secs, 0), true
		}
	case float64:
		if t > 1e12 {
			return time.UnixMilli(int64(t)), true
		}
		return time.Unix(int64(t), 0), true
	case time.Time:
		return t, !t.IsZero()
	}
	return time.Time{}, false
}
