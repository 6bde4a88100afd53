package users

import (
	"strings"
	"time"
)

// NormalizeEmail folds an email to the form accounts are stored and looked up
// by. Emails compare case-insensitively, so "Ali@Example.com" and
// "ali@example.com" are the same account.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Account is a registered storefront identity, either local (email + password)
// or federated (email + provider subject, no password).
type Account struct {
	ID           string    `json:"id,omitempty"`         // Store-assigned identifier, immutable
	FirstName    string    `json:"firstName,omitempty"`  // Required for local registration
	LastName     string    `json:"lastName,omitempty"`   // Required for local registration
	Username     string    `json:"username,omitempty"`   // Required for local registration
	Email        string    `json:"email,omitempty"`      // Unique lookup key
	PasswordHash string    `json:"-"`                    // Empty for federated-only accounts - never serialize
	FederatedID  string    `json:"-"`                    // Identity provider subject, empty for local accounts
	DateJoined   time.Time `json:"dateJoined,omitempty"` // Date and time when the account was created
}

// HasPassword reports whether the account can log in with a password
func (a *Account) HasPassword() bool {
	return a.PasswordHash != ""
}

// IsFederated reports whether the account is linked to an identity provider
func (a *Account) IsFederated() bool {
	return a.FederatedID != ""
}

// Profile is the public view of an account returned to clients
type Profile struct {
	ID         string    `json:"id"`
	FirstName  string    `json:"firstName,omitempty"`
	LastName   string    `json:"lastName,omitempty"`
	Username   string    `json:"username,omitempty"`
	Email      string    `json:"email"`
	Federated  bool      `json:"federated"`
	DateJoined time.Time `json:"dateJoined"`
}

func (a *Account) Profile() Profile {
	return Profile{
		ID:         a.ID,
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		Username:   a.Username,
		Email:      a.Email,
		Federated:  a.IsFederated(),
		DateJoined: a.DateJoined,
	}
}
