package federated

import (
	"context"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	pkgerrors "github.com/pkg/errors"
	"golang.org/x/oauth2"

	"github.com/jrsteele09/storefront-api/internal/errors"
)

// GoogleIssuer is Google's OpenID Connect issuer
const GoogleIssuer = "https://accounts.google.com"

type OIDCConfig struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// KeySet and TokenURL replace provider discovery when set
	KeySet   oidc.KeySet
	TokenURL string
	Now      func() time.Time
}

// OIDCVerifier verifies Google ID tokens against the provider's published keys
// and exchanges authorization codes for them.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
	oauth2   *oauth2.Config
}

var (
	_ Verifier      = (*OIDCVerifier)(nil)
	_ CodeExchanger = (*OIDCVerifier)(nil)
)

func NewOIDCVerifier(ctx context.Context, cfg OIDCConfig) (*OIDCVerifier, error) {
	if cfg.Issuer == "" {
		cfg.Issuer = GoogleIssuer
	}
	if cfg.ClientID == "" {
		return nil, pkgerrors.New("[NewOIDCVerifier] client id is required")
	}

	verifierConfig := &oidc.Config{ClientID: cfg.ClientID, Now: cfg.Now}
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}

	if cfg.KeySet != nil {
		oauthConfig.Endpoint = oauth2.Endpoint{TokenURL: cfg.TokenURL}
		return &OIDCVerifier{
			verifier: oidc.NewVerifier(cfg.Issuer, cfg.KeySet, verifierConfig),
			oauth2:   oauthConfig,
		}, nil
	}

	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "[NewOIDCVerifier] discover %s", cfg.Issuer)
	}
	oauthConfig.Endpoint = provider.Endpoint()
	return &OIDCVerifier{
		verifier: provider.Verifier(verifierConfig),
		oauth2:   oauthConfig,
	}, nil
}

func (v *OIDCVerifier) Verify(ctx context.Context, rawIDToken string) (*Identity, error) {
	if rawIDToken == "" {
		return nil, errors.Wrapf(errors.ErrInvalidFederatedToken, "empty id token")
	}

	idToken, err := v.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, errors.Kind(errors.ErrInvalidFederatedToken, err)
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, errors.Kind(errors.ErrInvalidFederatedToken, err)
	}

	return checkIdentity(&Identity{
		Subject:       idToken.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
	})
}

func (v *OIDCVerifier) Exchange(ctx context.Context, code string) (*Identity, error) {
	if code == "" {
		return nil, errors.Wrapf(errors.ErrInvalidFederatedToken, "empty authorization code")
	}

	oauth2Token, err := v.oauth2.Exchange(ctx, code)
	if err != nil {
		return nil, errors.Kind(errors.ErrInvalidFederatedToken, err)
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidFederatedToken, "no id_token in token response")
	}
	return v.Verify(ctx, rawIDToken)
}
