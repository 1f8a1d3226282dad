package models

import (
	"time"

	"github.com/google/uuid"
)

// PasswordNotRequired is stored for providers that hand out addresses without credentials.
const PasswordNotRequired = "not_required"

// Account is a provisioned disposable address.
// AccountID is the provider-side identifier; messages reference the account through it.
type Account struct {
	ID          uuid.UUID `json:"-" db:"id"`
	Email       string    `json:"email" db:"email"`
	Password    string    `json:"password" db:"password"`
	Provider    Provider  `json:"provider" db:"provider"`
	SessionID   string    `json:"sessionId" db:"session_id"`
	Token       *string   `json:"-" db:"token"`
	AccountID   string    `json:"accountId" db:"account_id"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	ExpiresAt   time.Time `json:"expiresAt" db:"expires_at"`
	LastChecked time.Time `json:"lastChecked" db:"last_checked"`
	Active      bool      `json:"active" db:"is_active"`
}

// NewAccount builds an active account created at now, expiring after the provider's lifetime.
func NewAccount(p Provider, sessionID, email, password, token, accountID string, now time.Time) *Account {
	a := &Account{
		ID:          uuid.New(),
		Email:       email,
		Password:    password,
		Provider:    p,
		SessionID:   sessionID,
		AccountID:   accountID,
		CreatedAt:   now,
		ExpiresAt:   now.Add(p.Lifetime()),
		LastChecked: now,
		Active:      true,
	}
	if token != "" {
		a.Token = &token
	}
	return a
}

// AuthToken returns the provider token, or "" when none was issued.
func (a *Account) AuthToken() string {
	if a.Token == nil {
		return ""
	}
	return *a.Token
}

// Expired reports whether the account is past its expiry at t.
func (a *Account) Expired(t time.Time) bool {
	return !t.Before(a.ExpiresAt)
}
