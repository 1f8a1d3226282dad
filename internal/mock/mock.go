// Package mock emulates the mail.tm and GuerrillaMail wire formats in memory.
package mock

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stoik/tempmail/internal/models"
)

var (
	senders  = []string{"noreply@github.com", "security@bank.example", "hello@newsletter.io", "team@slack.example", "verify@accounts.example"}
	subjects = []string{
		"Verify your email",
		"Your login code",
		"Welcome aboard",
		"Password reset",
		"Confirm your subscription",
		"Security alert",
	}
	// DefaultDomains are the domains served by /mailtm/domains.
	DefaultDomains = []string{"mock-mail.test", "disposable.test"}
)

var (
	ErrMailboxNotFound = errors.New("mailbox not found")
	ErrAddressTaken    = errors.New("address already used")
)

// Message is a message held in a fake mailbox.
type Message struct {
	ID        string
	Seq       int
	From      string
	FromName  string
	Subject   string
	Text      string
	HTML      string
	Seen      bool
	CreatedAt time.Time
}

// Mailbox is a fake provider-side account.
type Mailbox struct {
	ID        string
	Provider  models.Provider
	Address   string
	Password  string
	Token     string
	CreatedAt time.Time
	Messages  []*Message
}

type fault struct {
	status    int
	remaining int
}

// Server holds the fake provider state.
type Server struct {
	mu        sync.RWMutex
	domains   []string
	mailboxes map[string]*Mailbox // by address
	byToken   map[string]*Mailbox
	seq       int
	faults    map[string]*fault
	calls     map[string]int
}

// NewServer creates an empty fake provider. With no domains, DefaultDomains are served.
func NewServer(domains ...string) *Server {
	if len(domains) == 0 {
		domains = DefaultDomains
	}
	return &Server{
		domains:   append([]string(nil), domains...),
		mailboxes: make(map[string]*Mailbox),
		byToken:   make(map[string]*Mailbox),
		faults:    make(map[string]*fault),
		calls:     make(map[string]int),
	}
}

// Fail makes the next times requests to route answer with status.
// Routes are named "<provider>.<operation>", e.g. "mailtm.domains" or "guerrilla.fetch_email".
func (s *Server) Fail(route string, status, times int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[route] = &fault{status: status, remaining: times}
}

// Calls returns how many requests reached route.
func (s *Server) Calls(route string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls[route]
}

// hit records a call and returns a pending fault status, or 0.
func (s *Server) hit(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[route]++
	f, ok := s.faults[route]
	if !ok || f.remaining == 0 {
		return 0
	}
	f.remaining--
	return f.status
}

// Domains returns the served domains.
func (s *Server) Domains() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.domains...)
}

// CreateMailTM registers a password-protected mailbox.
func (s *Server) CreateMailTM(address, password string) (*Mailbox, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	address = strings.ToLower(address)
	if _, exists := s.mailboxes[address]; exists {
		return nil, ErrAddressTaken
	}
	domain := address[strings.LastIndex(address, "@")+1:]
	known := false
	for _, d := range s.domains {
		if d == domain {
			known = true
			break
		}
	}
	if !known {
		return nil, fmt.Errorf("unknown domain %q", domain)
	}

	mb := &Mailbox{
		ID:        uuid.NewString(),
		Provider:  models.ProviderMailTM,
		Address:   address,
		Password:  password,
		CreatedAt: time.Now(),
	}
	s.mailboxes[address] = mb
	return mb, nil
}

// IssueToken returns a bearer token for valid mail.tm credentials.
func (s *Server) IssueToken(address, password string) (*Mailbox, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mb, ok := s.mailboxes[strings.ToLower(address)]
	if !ok || mb.Password != password {
		return nil, ErrMailboxNotFound
	}
	if mb.Token == "" {
		mb.Token = uuid.NewString()
		s.byToken[mb.Token] = mb
	}
	return mb, nil
}

// CreateGuerrilla registers a session mailbox with a random address.
func (s *Server) CreateGuerrilla() *Mailbox {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	mb := &Mailbox{
		ID:        uuid.NewString(),
		Provider:  models.ProviderGuerrilla,
		Address:   fmt.Sprintf("guerrilla%d@sharklasers.test", s.seq),
		Password:  models.PasswordNotRequired,
		Token:     uuid.NewString(),
		CreatedAt: time.Now(),
	}
	s.mailboxes[mb.Address] = mb
	s.byToken[mb.Token] = mb
	return mb
}

// ByToken resolves a mailbox from its bearer or session token.
func (s *Server) ByToken(token string) (*Mailbox, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mb, ok := s.byToken[token]
	return mb, ok
}

// Deliver appends msg to the mailbox at address and returns its id.
func (s *Server) Deliver(address string, msg Message) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mb, ok := s.mailboxes[strings.ToLower(address)]
	if !ok {
		return "", ErrMailboxNotFound
	}
	s.seq++
	msg.Seq = s.seq
	if msg.ID == "" {
		if mb.Provider == models.ProviderGuerrilla {
			msg.ID = fmt.Sprintf("%d", msg.Seq)
		} else {
			msg.ID = uuid.NewString()
		}
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	m := msg
	mb.Messages = append(mb.Messages, &m)
	return m.ID, nil
}

// Messages returns copies of a mailbox's messages, newest first.
func (s *Server) Messages(mb *Mailbox) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Message, 0, len(mb.Messages))
	for _, m := range mb.Messages {
		out = append(out, *m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Open returns one message and marks it seen when markSeen is set.
func (s *Server) Open(mb *Mailbox, id string, markSeen bool) (Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range mb.Messages {
		if m.ID == id {
			snapshot := *m
			if markSeen {
				m.Seen = true
			}
			return snapshot, true
		}
	}
	return Message{}, false
}

// MailboxCount returns the number of mailboxes created.
func (s *Server) MailboxCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.mailboxes)
}

// GenerateMessages delivers 0-2 random messages to every mailbox.
func (s *Server) GenerateMessages() int {
	s.mu.RLock()
	addresses := make([]string, 0, len(s.mailboxes))
	for addr := range s.mailboxes {
		addresses = append(addresses, addr)
	}
	s.mu.RUnlock()

	delivered := 0
	for _, addr := range addresses {
		n := rand.Intn(3)
		for i := 0; i < n; i++ {
			if _, err := s.Deliver(addr, randomMessage()); err == nil {
				delivered++
			}
		}
	}
	return delivered
}

func randomMessage() Message {
	subject := subjects[rand.Intn(len(subjects))]
	code := 100000 + rand.Intn(900000)
	return Message{
		From:     senders[rand.Intn(len(senders))],
		FromName: "Mock Sender",
		Subject:  subject,
		Text:     fmt.Sprintf("%s\n\nYour verification code: %d\n\nIf you did not request this, ignore this message.", subject, code),
		HTML:     fmt.Sprintf("<p>%s</p><p>Your verification code: <b>%d</b></p>", subject, code),
	}
}
