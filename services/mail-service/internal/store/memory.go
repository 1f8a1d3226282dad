package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stoik/tempmail/internal/models"
)

type messageKey struct {
	accountID string
	messageID string
}

// Memory is an in-process Store. Writes to the same key are serialized; the last writer wins.
type Memory struct {
	mu       sync.RWMutex
	accounts map[string]*models.Account // by AccountID
	messages map[messageKey]*models.Message
	now      func() time.Time
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty store. now decides expiry at read time; nil means time.Now.
func NewMemory(now func() time.Time) *Memory {
	if now == nil {
		now = time.Now
	}
	return &Memory{
		accounts: make(map[string]*models.Account),
		messages: make(map[messageKey]*models.Message),
		now:      now,
	}
}

func (m *Memory) CreateAccount(_ context.Context, account *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.accounts[account.AccountID]; exists {
		return ErrDuplicate
	}
	email := strings.ToLower(account.Email)
	for _, a := range m.accounts {
		if strings.ToLower(a.Email) == email {
			return ErrDuplicate
		}
	}

	stored := *account
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	m.accounts[account.AccountID] = &stored
	return nil
}

func (m *Memory) GetAccount(_ context.Context, accountID string) (*models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.accounts[accountID]
	if !ok || a.Expired(m.now()) {
		return nil, ErrNotFound
	}
	out := *a
	return &out, nil
}

func (m *Memory) ListSessionAccounts(_ context.Context, sessionID string) ([]models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := m.now()
	var out []models.Account
	for _, a := range m.accounts {
		if a.SessionID == sessionID && !a.Expired(now) {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Memory) TouchAccount(_ context.Context, accountID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[accountID]
	if !ok {
		return ErrNotFound
	}
	a.LastChecked = at
	return nil
}

func (m *Memory) DeleteMailbox(_ context.Context, email string) (Deleted, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var d Deleted
	for id, a := range m.accounts {
		if strings.EqualFold(a.Email, email) {
			delete(m.accounts, id)
			d.Accounts++
		}
	}
	for key, msg := range m.messages {
		if strings.EqualFold(msg.Email, email) {
			delete(m.messages, key)
			d.Messages++
		}
	}
	return d, nil
}

func (m *Memory) UpsertMessage(_ context.Context, msg *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := messageKey{accountID: msg.AccountID, messageID: msg.MessageID}
	stored := *msg
	if existing, ok := m.messages[key]; ok {
		stored.ID = existing.ID
		stored.ReceivedAt = existing.ReceivedAt
	} else if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	m.messages[key] = &stored
	return nil
}

func (m *Memory) ListMessages(_ context.Context, accountID string) ([]models.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Message
	for key, msg := range m.messages {
		if key.accountID == accountID {
			out = append(out, *msg)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DateUnix != out[j].DateUnix {
			return out[i].DateUnix > out[j].DateUnix
		}
		return out[i].MessageID < out[j].MessageID
	})
	return out, nil
}

func (m *Memory) Counts(_ context.Context) (Counts, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Counts{Accounts: int64(len(m.accounts)), Messages: int64(len(m.messages))}, nil
}

func (m *Memory) PurgeExpired(_ context.Context, now time.Time) (Deleted, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var d Deleted
	expired := make(map[string]bool)
	for id, a := range m.accounts {
		if a.Expired(now) {
			expired[id] = true
			delete(m.accounts, id)
			d.Accounts++
		}
	}
	for key := range m.messages {
		if expired[key.accountID] {
			delete(m.messages, key)
			d.Messages++
		}
	}
	return d, nil
}

func (m *Memory) Close() {}
