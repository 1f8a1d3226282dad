package models

import (
	"fmt"
	"time"
)

// Provider identifies an external temporary-mail service.
type Provider string

const (
	ProviderMailTM    Provider = "mail.tm"
	ProviderGuerrilla Provider = "guerrillamail"
)

// Providers lists every supported provider in declaration order.
var Providers = []Provider{ProviderMailTM, ProviderGuerrilla}

// ParseProvider returns the Provider named by s.
func ParseProvider(s string) (Provider, error) {
	p := Provider(s)
	if !p.Valid() {
		return "", fmt.Errorf("unsupported provider %q", s)
	}
	return p, nil
}

// Valid reports whether p is one of the supported providers.
func (p Provider) Valid() bool {
	switch p {
	case ProviderMailTM, ProviderGuerrilla:
		return true
	}
	return false
}

// Lifetime is how long an address from p stays usable after creation.
// Token-based providers keep addresses for a day, session-based ones for an hour.
func (p Provider) Lifetime() time.Duration {
	switch p {
	case ProviderGuerrilla:
		return time.Hour
	default:
		return 24 * time.Hour
	}
}

func (p Provider) String() string {
	return string(p)
}
