package normalize

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stoik/tempmail/internal/models"
	"github.com/stoik/tempmail/services/mail-service/internal/provider"
)

var processedAt = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestNormalizer() *Normalizer {
	return New(
		WithClock(func() time.Time { return processedAt }),
		WithIDFunc(func() string { return "ref-1" }),
	)
}

func testAccount(p models.Provider) *models.Account {
	return models.NewAccount(p, "session", "brave_owl_1234@mail.test", "pw", "tok", "acct-1", processedAt)
}

func TestNormalize_MailTM(t *testing.T) {
	n := newTestNormalizer()
	created := time.Date(2026, 4, 30, 8, 15, 30, 0, time.UTC)
	raw := &provider.MailTMMessage{
		ID:        "m1",
		From:      provider.MailTMAddress{Address: "noreply@github.com", Name: "GitHub"},
		Subject:   "Your code",
		Text:      "Code: 123456",
		HTML:      []string{"<p>Code: <b>123456</b></p><script>alert(1)</script>"},
		Seen:      false,
		CreatedAt: created,
	}

	msg, err := n.Normalize(raw, models.ProviderMailTM, testAccount(models.ProviderMailTM))
	require.NoError(t, err)

	assert.Equal(t, "m1", msg.MessageID)
	assert.Equal(t, "acct-1", msg.AccountID)
	assert.Equal(t, "brave_owl_1234@mail.test", msg.Email)
	assert.Equal(t, models.ProviderMailTM, msg.Provider)
	assert.Equal(t, "GitHub <noreply@github.com>", msg.Sender)
	assert.Equal(t, "Your code", msg.Subject)
	assert.Equal(t, "2026-04-30 08:15:30", msg.Date)
	assert.Equal(t, created.UnixMilli(), msg.DateUnix)
	assert.True(t, msg.Unread)
	assert.Equal(t, processedAt, msg.ReceivedAt)
	assert.Equal(t, processedAt, msg.LastChecked)

	assert.Contains(t, msg.Content, "Subject: Your code")
	assert.Contains(t, msg.Content, "From: GitHub <noreply@github.com>")
	assert.Contains(t, msg.Content, "Code: 123456")
	assert.Contains(t, msg.Content, "<b>123456</b>")
	assert.NotContains(t, msg.Content, "<script>")
	assert.Contains(t, msg.Content, "Processed: 2026-05-01T12:00:00Z")
	assert.Contains(t, msg.Content, "Ref: ref-1")
}

func TestNormalize_MailTMSeenIsRead(t *testing.T) {
	n := newTestNormalizer()
	raw := &provider.MailTMMessage{ID: "m1", From: provider.MailTMAddress{Address: "a@b.test"}, Intro: "hi", Seen: true}

	msg, err := n.Normalize(raw, models.ProviderMailTM, testAccount(models.ProviderMailTM))
	require.NoError(t, err)
	assert.False(t, msg.Unread)
	assert.Equal(t, "a@b.test", msg.Sender)
	assert.Equal(t, models.DefaultSubject, msg.Subject)
	assert.Contains(t, msg.Content, "hi")
}

func TestNormalize_Guerrilla(t *testing.T) {
	n := newTestNormalizer()
	raw := &provider.GuerrillaMessage{
		MailID:        "77",
		MailFrom:      "no-reply@guerrillamail.com",
		MailSubject:   "Welcome",
		MailBody:      "<p>Hello &amp; welcome</p>",
		MailTimestamp: "1777536000",
		MailRead:      "0",
	}

	msg, err := n.Normalize(raw, models.ProviderGuerrilla, testAccount(models.ProviderGuerrilla))
	require.NoError(t, err)

	assert.Equal(t, "77", msg.MessageID)
	assert.Equal(t, "no-reply@guerrillamail.com", msg.Sender)
	assert.True(t, msg.Unread)
	assert.Equal(t, time.Unix(1777536000, 0).UTC().Format(DisplayLayout), msg.Date)
	assert.Contains(t, msg.Content, "Hello & welcome")
}

func TestNormalize_GuerrillaReadFlag(t *testing.T) {
	n := newTestNormalizer()
	for flag, unread := range map[provider.FlexString]bool{"1": false, "0": true, "": true} {
		raw := &provider.GuerrillaMessage{MailID: "1", MailFrom: "x@y.test", MailRead: flag}
		msg, err := n.Normalize(raw, models.ProviderGuerrilla, testAccount(models.ProviderGuerrilla))
		require.NoError(t, err)
		assert.Equal(t, unread, msg.Unread, "mail_read=%q", flag)
	}
}

func TestNormalize_GenericFallback(t *testing.T) {
	n := newTestNormalizer()
	raw := provider.GenericMessage{
		"id":      "g1",
		"sender":  "someone@else.test",
		"subject": "Generic",
		"body":    "plain body",
		"date":    "2026-04-01T10:00:00Z",
		"unread":  false,
	}

	msg, err := n.Normalize(raw, models.Provider("other"), testAccount(models.ProviderMailTM))
	require.NoError(t, err)
	assert.Equal(t, "someone@else.test", msg.Sender)
	assert.Equal(t, "Generic", msg.Subject)
	assert.Equal(t, "2026-04-01 10:00:00", msg.Date)
	assert.False(t, msg.Unread)
	assert.Contains(t, msg.Content, "plain body")
}

func TestNormalize_GenericUnreadUnlessLiteralFalse(t *testing.T) {
	n := newTestNormalizer()
	for _, v := range []any{nil, "false", 0, true} {
		raw := provider.GenericMessage{"id": "g", "from": "a@b.test", "unread": v}
		msg, err := n.Normalize(raw, models.Provider("other"), testAccount(models.ProviderMailTM))
		require.NoError(t, err)
		assert.True(t, msg.Unread, "unread=%v", v)
	}
}

func TestNormalize_MissingDateUsesProcessingTime(t *testing.T) {
	n := newTestNormalizer()
	raw := provider.GenericMessage{"id": "g", "from": "a@b.test"}

	msg, err := n.Normalize(raw, models.Provider("other"), testAccount(models.ProviderMailTM))
	require.NoError(t, err)
	assert.Equal(t, "2026-05-01 12:00:00", msg.Date)
	assert.Equal(t, processedAt.UnixMilli(), msg.DateUnix)
}

func TestNormalize_MissingSenderGetsPlaceholder(t *testing.T) {
	n := newTestNormalizer()
	raw := provider.GenericMessage{"id": "g", "subject": "Only a subject"}

	msg, err := n.Normalize(raw, models.Provider("other"), testAccount(models.ProviderMailTM))
	require.NoError(t, err)
	assert.Equal(t, "Unknown Sender", msg.Sender)
	assert.Contains(t, msg.Content, "(no text body)")
}

func TestNormalize_EmptyMessageIsDropped(t *testing.T) {
	n := newTestNormalizer()

	_, err := n.Normalize(provider.GenericMessage{"id": "g"}, models.Provider("other"), testAccount(models.ProviderMailTM))
	assert.ErrorIs(t, err, ErrEmptyContent)

	_, err = n.Normalize(&provider.MailTMMessage{ID: "m"}, models.ProviderMailTM, testAccount(models.ProviderMailTM))
	assert.ErrorIs(t, err, ErrEmptyContent)
}

func TestNormalize_MissingIDIsAnError(t *testing.T) {
	n := newTestNormalizer()
	_, err := n.Normalize(provider.GenericMessage{"subject": "x"}, models.Provider("other"), testAccount(models.ProviderMailTM))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmptyContent)
}

func TestNormalize_DisplayDateRoundTrips(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	n := New(WithLocation(loc))
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	raw := &provider.MailTMMessage{ID: "m", From: provider.MailTMAddress{Address: "a@b.test"}, CreatedAt: created}

	msg, err := n.Normalize(raw, models.ProviderMailTM, testAccount(models.ProviderMailTM))
	require.NoError(t, err)
	assert.Equal(t, "2026-01-02 06:04:05", msg.Date)

	parsed, err := ParseDisplayDate(msg.Date, loc)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(created))
	assert.Equal(t, created.UnixMilli(), msg.DateUnix)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "a\nb", Preview("  a\n\n\n   \nb  "))
	assert.Equal(t, "short", Preview("short"))

	long := strings.Repeat("x", 200)
	p := Preview(long)
	assert.Equal(t, strings.Repeat("x", PreviewLength)+Ellipsis, p)

	exact := strings.Repeat("y", PreviewLength)
	assert.Equal(t, exact, Preview(exact))
}

func TestPreview_LengthAndPrefixInvariant(t *testing.T) {
	n := newTestNormalizer()
	bodies := []string{
		"",
		"one line",
		strings.Repeat("word ", 100),
		"line one\n\n\n\nline two\n \n\t\nline three",
		strings.Repeat("é", 300),
	}
	for _, body := range bodies {
		raw := &provider.MailTMMessage{ID: "m", From: provider.MailTMAddress{Address: "a@b.test"}, Text: body}
		msg, err := n.Normalize(raw, models.ProviderMailTM, testAccount(models.ProviderMailTM))
		require.NoError(t, err)

		assert.LessOrEqual(t, utf8.RuneCountInString(msg.Preview), PreviewLength+len(Ellipsis))
		collapsed := strings.TrimSpace(blankLines.ReplaceAllString(msg.Content, "\n"))
		assert.True(t, strings.HasPrefix(collapsed, strings.TrimSuffix(msg.Preview, Ellipsis)))
	}
}

func TestBody(t *testing.T) {
	n := newTestNormalizer()
	raw := provider.GenericMessage{
		"id":      "g1",
		"from":    "a@example.com",
		"subject": "Login",
		"text":    "line one\nline two: 5555",
		"html":    "<p>ignored</p>",
	}

	msg, err := n.Normalize(raw, models.ProviderMailTM, testAccount(models.ProviderMailTM))
	require.NoError(t, err)

	assert.Equal(t, "line one\nline two: 5555", Body(msg.Content))
	assert.Equal(t, "plain text", Body("plain text"))
}
