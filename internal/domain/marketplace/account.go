package marketplace

import (
	"strings"
	"time"
)

// Account identifies one seller credential set on the marketplace.
// It is a tag on every order, token and shipment query, not a stored entity.
type Account string

// String returns the account name
func (a Account) String() string {
	return string(a)
}

// IsBlank reports whether the account is empty or whitespace
func (a Account) IsBlank() bool {
	return strings.TrimSpace(string(a)) == ""
}

// AccessToken is a bearer token issued for one account.
// Tokens live only in the token cache and are never persisted.
type AccessToken struct {
	Token     string
	Account   Account
	FetchedAt time.Time
}
