package provider

import (
	"context"
	"errors"

	"github.com/stoik/tempmail/internal/models"
)

// ErrUnknownProvider is returned when no adapter is registered under a name.
var ErrUnknownProvider = errors.New("unknown provider")

// AuthContext carries whatever a provider needs to read a mailbox:
// a bearer token for mail.tm, a session token for GuerrillaMail.
type AuthContext struct {
	Token   string
	Address string
}

// AuthFor builds the AuthContext stored on an account.
func AuthFor(account *models.Account) AuthContext {
	return AuthContext{Token: account.AuthToken(), Address: account.Email}
}

// Adapter defines the interface for temporary-mail provider clients (mail.tm, GuerrillaMail, etc.)
type Adapter interface {
	// Name returns the provider this adapter talks to
	Name() models.Provider

	// CreateAccount provisions a new address for the given session.
	// The returned account is not yet persisted.
	CreateAccount(ctx context.Context, sessionID string) (*models.Account, error)

	// FetchMessageList returns the mailbox listing in provider order
	FetchMessageList(ctx context.Context, auth AuthContext) ([]RawMessage, error)

	// FetchFullMessage returns one message including its body
	FetchFullMessage(ctx context.Context, auth AuthContext, messageID string) (RawMessage, error)

	// Probe performs a cheap live call to check the provider is reachable
	Probe(ctx context.Context) error
}
