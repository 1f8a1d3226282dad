// Package mailbox creates disposable accounts across providers and syncs their messages into the store.
package mailbox

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/stoik/tempmail/internal/models"
	"github.com/stoik/tempmail/services/mail-service/internal/codes"
	"github.com/stoik/tempmail/services/mail-service/internal/normalize"
	"github.com/stoik/tempmail/services/mail-service/internal/provider"
	"github.com/stoik/tempmail/services/mail-service/internal/store"
)

// ErrAllProvidersFailed is returned when no provider could create an account.
var ErrAllProvidersFailed = errors.New("all services failed")

// ShuffleFunc permutes n items through swap, like rand.Shuffle.
type ShuffleFunc func(n int, swap func(i, j int))

type Service struct {
	registry   *provider.Registry
	store      store.Store
	normalizer *normalize.Normalizer
	shuffle    ShuffleFunc
	now        func() time.Time
	log        zerolog.Logger
}

type Option func(*Service)

// WithShuffle fixes the fallback ordering, e.g. to a no-op in tests.
func WithShuffle(f ShuffleFunc) Option {
	return func(s *Service) { s.shuffle = f }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) { s.log = log }
}

func NewService(registry *provider.Registry, st store.Store, normalizer *normalize.Normalizer, opts ...Option) *Service {
	s := &Service{
		registry:   registry,
		store:      st,
		normalizer: normalizer,
		shuffle:    rand.Shuffle,
		now:        time.Now,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultSessionID is used when a client creates an account without a session.
func DefaultSessionID(now time.Time) string {
	return "session_" + strconv.FormatInt(now.UnixMilli(), 10)
}

// CreateAccount provisions an address and persists it.
// A requested, registered provider is tried first; on failure, or when providerName is empty
// or unknown, every registered provider is tried in shuffled order.
func (s *Service) CreateAccount(ctx context.Context, sessionID, providerName string) (*models.Account, error) {
	if sessionID == "" {
		sessionID = DefaultSessionID(s.now())
	}

	if providerName != "" {
		if adapter, ok := s.registry.Lookup(providerName); ok {
			account, err := s.createWith(ctx, adapter, sessionID)
			if err == nil {
				return s.persist(ctx, account)
			}
			s.log.Warn().Err(err).Str("provider", providerName).Msg("requested provider failed, falling back")
		} else {
			s.log.Warn().Str("provider", providerName).Msg("requested provider not configured, falling back")
		}
	}

	order := s.registry.Providers()
	s.shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	for _, p := range order {
		adapter, _ := s.registry.Get(p)
		account, err := s.createWith(ctx, adapter, sessionID)
		if err != nil {
			s.log.Warn().Err(err).Str("provider", p.String()).Msg("provider failed to create account")
			continue
		}
		return s.persist(ctx, account)
	}

	return nil, ErrAllProvidersFailed
}

func (s *Service) createWith(ctx context.Context, adapter provider.Adapter, sessionID string) (*models.Account, error) {
	s.log.Debug().Str("provider", adapter.Name().String()).Msg("creating account")

	account, err := adapter.CreateAccount(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("provider", adapter.Name().String()).
		Str("email", account.Email).
		Msg("account created")
	return account, nil
}

func (s *Service) persist(ctx context.Context, account *models.Account) (*models.Account, error) {
	if err := s.store.CreateAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to save account %s: %w", account.Email, err)
	}
	return account, nil
}

// ListSessionAccounts returns the live accounts of a session, newest first.
func (s *Service) ListSessionAccounts(ctx context.Context, sessionID string) ([]models.Account, error) {
	accounts, err := s.store.ListSessionAccounts(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list session accounts: %w", err)
	}
	return accounts, nil
}

// DeleteAccount removes the account with this email and all of its messages.
// Deleting an address that does not exist is not an error.
func (s *Service) DeleteAccount(ctx context.Context, email string) error {
	d, err := s.store.DeleteMailbox(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to delete mailbox %s: %w", email, err)
	}
	s.log.Info().
		Str("email", email).
		Int64("accounts", d.Accounts).
		Int64("messages", d.Messages).
		Msg("mailbox deleted")
	return nil
}

// StoredMessages returns persisted messages of an account, newest first.
func (s *Service) StoredMessages(ctx context.Context, accountID string) ([]models.Message, error) {
	msgs, err := s.store.ListMessages(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stored messages: %w", err)
	}
	return msgs, nil
}

func (s *Service) adapterFor(name string) (provider.Adapter, error) {
	adapter, ok := s.registry.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", provider.ErrUnknownProvider, name)
	}
	return adapter, nil
}

// MessageCode is a verification code found in a stored message.
type MessageCode struct {
	codes.Code
	MessageID string `json:"messageId"`
	Subject   string `json:"subject"`
}

// Codes extracts verification codes from an account's stored messages, newest message first.
// Only the subject and message body are searched, not the synthesized metadata.
func (s *Service) Codes(ctx context.Context, accountID string) ([]MessageCode, error) {
	msgs, err := s.StoredMessages(ctx, accountID)
	if err != nil {
		return nil, err
	}

	found := []MessageCode{}
	for _, m := range msgs {
		for _, c := range codes.Extract(m.Subject + "\n" + normalize.Body(m.Content)) {
			found = append(found, MessageCode{Code: c, MessageID: m.MessageID, Subject: m.Subject})
		}
	}
	return found, nil
}
