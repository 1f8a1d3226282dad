package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/stoik/tempmail/internal/models"
	"github.com/stoik/tempmail/services/mail-service/internal/retry"
)

const (
	DefaultMailTMURL = "https://api.mail.tm"
	mailTMAccept     = "application/ld+json, application/json"
)

// FallbackMailTMDomains is used whenever the live domain list cannot be fetched.
var FallbackMailTMDomains = []string{"mail.tm", "bugfoo.com", "dcctb.com"}

type hydraCollection[T any] struct {
	Members []T `json:"hydra:member"`
}

type mailTMDomain struct {
	Domain   string `json:"domain"`
	IsActive *bool  `json:"isActive"`
}

type mailTMCredentials struct {
	Address  string `json:"address"`
	Password string `json:"password"`
}

type mailTMAccount struct {
	ID      string `json:"id"`
	Address string `json:"address"`
}

type mailTMToken struct {
	ID    string `json:"id"`
	Token string `json:"token"`
}

// MailTM implements the Adapter interface for the mail.tm REST API.
// Accounts need a password; reading requires a bearer token obtained from it.
type MailTM struct {
	http *httpClient
	opts Options
}

// NewMailTM creates a new mail.tm adapter
func NewMailTM(opts Options) *MailTM {
	opts = opts.withDefaults(DefaultMailTMURL)
	return &MailTM{
		http: newHTTPClient(opts.BaseURL, mailTMAccept, opts),
		opts: opts,
	}
}

// Name implements Adapter.Name
func (m *MailTM) Name() models.Provider {
	return models.ProviderMailTM
}

// Domains returns the active domains, or FallbackMailTMDomains if they cannot be listed.
func (m *MailTM) Domains(ctx context.Context) []string {
	domains, err := m.listDomains(ctx)
	if err != nil || len(domains) == 0 {
		return append([]string(nil), FallbackMailTMDomains...)
	}
	return domains
}

func (m *MailTM) listDomains(ctx context.Context) ([]string, error) {
	collection, err := retry.Do(ctx, m.opts.RetryAttempts, m.opts.RetryDelay, func(ctx context.Context) (hydraCollection[mailTMDomain], error) {
		var out hydraCollection[mailTMDomain]
		err := m.http.do(ctx, "list domains", http.MethodGet, "/domains", nil, "", nil, &out)
		return out, err
	})
	if err != nil {
		return nil, err
	}

	domains := make([]string, 0, len(collection.Members))
	for _, d := range collection.Members {
		if d.Domain == "" || (d.IsActive != nil && !*d.IsActive) {
			continue
		}
		domains = append(domains, d.Domain)
	}
	return domains, nil
}

// CreateAccount implements Adapter.CreateAccount.
// It registers address+password, then exchanges them for a bearer token; both steps must succeed.
func (m *MailTM) CreateAccount(ctx context.Context, sessionID string) (*models.Account, error) {
	domain := m.opts.Generator.Pick(m.Domains(ctx))
	creds := mailTMCredentials{
		Address:  fmt.Sprintf("%s@%s", m.opts.Generator.Username(), domain),
		Password: m.opts.Generator.Password(),
	}

	created, err := retry.Do(ctx, m.opts.RetryAttempts, m.opts.RetryDelay, func(ctx context.Context) (mailTMAccount, error) {
		var out mailTMAccount
		err := m.http.do(ctx, "create account", http.MethodPost, "/accounts", nil, "", creds, &out)
		return out, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create mail.tm account: %w", err)
	}
	if created.ID == "" {
		return nil, errors.New("failed to create mail.tm account: response carried no id")
	}

	token, err := retry.Do(ctx, m.opts.RetryAttempts, m.opts.RetryDelay, func(ctx context.Context) (mailTMToken, error) {
		var out mailTMToken
		err := m.http.do(ctx, "get token", http.MethodPost, "/token", nil, "", creds, &out)
		return out, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get mail.tm token: %w", err)
	}
	if token.Token == "" {
		return nil, errors.New("failed to get mail.tm token: empty token")
	}

	address := creds.Address
	if created.Address != "" {
		address = created.Address
	}
	return models.NewAccount(models.ProviderMailTM, sessionID, address, creds.Password, token.Token, created.ID, m.opts.Now()), nil
}

// FetchMessageList implements Adapter.FetchMessageList
func (m *MailTM) FetchMessageList(ctx context.Context, auth AuthContext) ([]RawMessage, error) {
	if auth.Token == "" {
		return nil, errors.New("mail.tm: missing bearer token")
	}

	var out hydraCollection[MailTMMessage]
	query := url.Values{"page": {"1"}}
	if err := m.http.do(ctx, "list messages", http.MethodGet, "/messages", query, auth.Token, nil, &out); err != nil {
		return nil, fmt.Errorf("failed to get mail.tm messages: %w", err)
	}

	messages := make([]RawMessage, 0, len(out.Members))
	for i := range out.Members {
		messages = append(messages, &out.Members[i])
	}
	return messages, nil
}

// FetchFullMessage implements Adapter.FetchFullMessage
func (m *MailTM) FetchFullMessage(ctx context.Context, auth AuthContext, messageID string) (RawMessage, error) {
	if auth.Token == "" {
		return nil, errors.New("mail.tm: missing bearer token")
	}

	var out MailTMMessage
	path := "/messages/" + url.PathEscape(messageID)
	if err := m.http.do(ctx, "get message", http.MethodGet, path, nil, auth.Token, nil, &out); err != nil {
		return nil, fmt.Errorf("failed to get mail.tm message %s: %w", messageID, err)
	}
	return &out, nil
}

// Probe implements Adapter.Probe
func (m *MailTM) Probe(ctx context.Context) error {
	_, err := m.listDomains(ctx)
	return err
}
