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
	DefaultGuerrillaURL = "https://www.guerrillamail.com/ajax.php"
	guerrillaAccept     = "application/json, text/javascript, */*; q=0.01"
)

type guerrillaAddress struct {
	EmailAddr      string     `json:"email_addr"`
	EmailTimestamp FlexString `json:"email_timestamp"`
	Alias          string     `json:"alias"`
	SidToken       string     `json:"sid_token"`
	EmailToken     string     `json:"email_token"`
}

type guerrillaList struct {
	List  []GuerrillaMessage `json:"list"`
	Count FlexString         `json:"count"`
}

// Guerrilla implements the Adapter interface for GuerrillaMail's ajax API.
// Addresses need no password; the session token returned with the address authorizes reads.
type Guerrilla struct {
	http *httpClient
	opts Options
}

// NewGuerrilla creates a new GuerrillaMail adapter
func NewGuerrilla(opts Options) *Guerrilla {
	opts = opts.withDefaults(DefaultGuerrillaURL)
	return &Guerrilla{
		http: newHTTPClient(opts.BaseURL, guerrillaAccept, opts),
		opts: opts,
	}
}

// Name implements Adapter.Name
func (g *Guerrilla) Name() models.Provider {
	return models.ProviderGuerrilla
}

func (g *Guerrilla) getAddress(ctx context.Context) (guerrillaAddress, error) {
	query := url.Values{
		"f":     {"get_email_address"},
		"ip":    {"127.0.0.1"},
		"agent": {"Mozilla_foo_bar"},
	}
	return retry.Do(ctx, g.opts.RetryAttempts, g.opts.RetryDelay, func(ctx context.Context) (guerrillaAddress, error) {
		var out guerrillaAddress
		err := g.http.do(ctx, "get address", http.MethodGet, "", query, "", nil, &out)
		return out, err
	})
}

// CreateAccount implements Adapter.CreateAccount.
// One call yields both the address and the session token.
func (g *Guerrilla) CreateAccount(ctx context.Context, sessionID string) (*models.Account, error) {
	addr, err := g.getAddress(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get guerrillamail address: %w", err)
	}
	if addr.EmailAddr == "" {
		return nil, errors.New("failed to get guerrillamail address: empty address")
	}

	token := addr.SidToken
	if token == "" {
		token = addr.EmailToken
	}
	return models.NewAccount(models.ProviderGuerrilla, sessionID, addr.EmailAddr, models.PasswordNotRequired, token, addr.EmailAddr, g.opts.Now()), nil
}

// FetchMessageList implements Adapter.FetchMessageList
func (g *Guerrilla) FetchMessageList(ctx context.Context, auth AuthContext) ([]RawMessage, error) {
	if auth.Token == "" {
		return nil, errors.New("guerrillamail: missing session token")
	}

	query := url.Values{
		"f":         {"get_email_list"},
		"offset":    {"0"},
		"sid_token": {auth.Token},
	}
	var out guerrillaList
	if err := g.http.do(ctx, "list messages", http.MethodGet, "", query, "", nil, &out); err != nil {
		return nil, fmt.Errorf("failed to get guerrillamail messages: %w", err)
	}

	messages := make([]RawMessage, 0, len(out.List))
	for i := range out.List {
		messages = append(messages, &out.List[i])
	}
	return messages, nil
}

// FetchFullMessage implements Adapter.FetchFullMessage
func (g *Guerrilla) FetchFullMessage(ctx context.Context, auth AuthContext, messageID string) (RawMessage, error) {
	if auth.Token == "" {
		return nil, errors.New("guerrillamail: missing session token")
	}

	query := url.Values{
		"f":         {"fetch_email"},
		"email_id":  {messageID},
		"sid_token": {auth.Token},
	}
	var out GuerrillaMessage
	if err := g.http.do(ctx, "get message", http.MethodGet, "", query, "", nil, &out); err != nil {
		return nil, fmt.Errorf("failed to get guerrillamail message %s: %w", messageID, err)
	}
	if out.MailID == "" {
		return nil, fmt.Errorf("guerrillamail message %s not found", messageID)
	}
	return &out, nil
}

// Probe implements Adapter.Probe
func (g *Guerrilla) Probe(ctx context.Context) error {
	addr, err := g.getAddress(ctx)
	if err != nil {
		return err
	}
	if addr.EmailAddr == "" {
		return errors.New("guerrillamail returned no address")
	}
	return nil
}
