// Package store persists accounts and messages.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/stoik/tempmail/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Store is the persistence boundary used by the mailbox service.
// Accounts past their expiry are invisible to reads even before they are purged.
type Store interface {
	// CreateAccount inserts a new account; ErrDuplicate if the email or provider account id exists
	CreateAccount(ctx context.Context, account *models.Account) error

	// GetAccount finds a live account by its provider-side identifier
	GetAccount(ctx context.Context, accountID string) (*models.Account, error)

	// ListSessionAccounts returns live accounts of a session, newest first
	ListSessionAccounts(ctx context.Context, sessionID string) ([]models.Account, error)

	// TouchAccount sets the account's last-checked time
	TouchAccount(ctx context.Context, accountID string, at time.Time) error

	// DeleteMailbox removes the account with this email and every message addressed to it
	DeleteMailbox(ctx context.Context, email string) (Deleted, error)

	// UpsertMessage inserts or refreshes a message keyed by (AccountID, MessageID)
	UpsertMessage(ctx context.Context, msg *models.Message) error

	// ListMessages returns stored messages of an account, newest first by DateUnix
	ListMessages(ctx context.Context, accountID string) ([]models.Message, error)

	// Counts returns the number of stored accounts and messages
	Counts(ctx context.Context) (Counts, error)

	// PurgeExpired deletes accounts expired at now together with their messages
	PurgeExpired(ctx context.Context, now time.Time) (Deleted, error)

	Close()
}

// Deleted reports how many records a removal touched.
type Deleted struct {
	Accounts int64
	Messages int64
}

// Counts summarizes stored records.
type Counts struct {
	Accounts int64 `json:"accounts"`
	Messages int64 `json:"messages"`
}
