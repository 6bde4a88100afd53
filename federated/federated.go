// Package federated verifies identity tokens issued by an external provider (Google).
package federated

import (
	"context"

	"github.com/jrsteele09/storefront-api/internal/errors"
)

// Identity is what a verified provider token tells us about the user
type Identity struct {
	Subject       string // Provider's stable user id
	Email         string
	EmailVerified bool
	Name          string
}

// Verifier checks a provider-issued ID token. Every failure wraps errors.ErrInvalidFederatedToken.
type Verifier interface {
	Verify(ctx context.Context, idToken string) (*Identity, error)
}

// CodeExchanger redeems an OAuth2 authorization code for a verified identity
type CodeExchanger interface {
	Exchange(ctx context.Context, code string) (*Identity, error)
}

// Disabled rejects every token. Used when no provider is configured.
type Disabled struct{}

func (Disabled) Verify(context.Context, string) (*Identity, error) {
	return nil, errors.Wrapf(errors.ErrInvalidFederatedToken, "federated login is not configured")
}

func (Disabled) Exchange(context.Context, string) (*Identity, error) {
	return nil, errors.Wrapf(errors.ErrInvalidFederatedToken, "federated login is not configured")
}

func checkIdentity(id *Identity) (*Identity, error) {
	if id.Subject == "" {
		return nil, errors.Wrapf(errors.ErrInvalidFederatedToken, "token has no subject")
	}
	if id.Email == "" {
		return nil, errors.Wrapf(errors.ErrInvalidFederatedToken, "token has no email")
	}
	return id, nil
}
