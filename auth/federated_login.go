package auth

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/storefront-api/federated"
	"github.com/jrsteele09/storefront-api/internal/errors"
	"github.com/jrsteele09/storefront-api/internal/metrics"
	"github.com/jrsteele09/storefront-api/token"
	"github.com/jrsteele09/storefront-api/users"
)

// LinkPolicy decides what a Google login does when an account with the same
// email already exists and is not yet linked to that Google identity.
type LinkPolicy string

const (
	// LinkPolicyLink attaches the federated id to an unlinked account with a verified email
	LinkPolicyLink LinkPolicy = "link"
	// LinkPolicyReject refuses the login with ErrFederatedAccountConflict
	LinkPolicyReject LinkPolicy = "reject"
	// LinkPolicyLoginOnly issues a token for the existing account and leaves it unlinked
	LinkPolicyLoginOnly LinkPolicy = "login_only"
)

func (p LinkPolicy) Valid() bool {
	switch p {
	case LinkPolicyLink, LinkPolicyReject, LinkPolicyLoginOnly:
		return true
	}
	return false
}

// LoginWithGoogle verifies a Google ID token (or redeems an authorization
// code), finds or provisions the account for its email and issues a session
// token bound to the account id.
func (s *Service) LoginWithGoogle(ctx context.Context, req GoogleLoginRequest) (*token.SessionToken, error) {
	session, err := s.loginWithGoogle(ctx, req)
	s.metrics.RecordLogin(metrics.MethodGoogle, outcome(err))
	return session, err
}

func (s *Service) loginWithGoogle(ctx context.Context, req GoogleLoginRequest) (*token.SessionToken, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	identity, err := s.identify(ctx, req)
	if err != nil {
		log.Warn().Err(err).Msg("federated token rejected")
		return nil, err
	}
	folded := *identity
	folded.Email = users.NormalizeEmail(identity.Email)
	if folded.Email == "" {
		return nil, errors.Wrapf(errors.ErrInvalidFederatedToken, "identity has no email")
	}
	identity = &folded

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	account, err := s.repos.Accounts.GetByEmail(ctx, identity.Email)
	switch {
	case errors.Is(err, errors.ErrNotFound):
		account, err = s.provision(ctx, identity)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, s.persistenceFailure("login-with-google", identity.Email, err)
	default:
		if err := s.reconcile(ctx, account, identity); err != nil {
			return nil, err
		}
	}

	return s.issue(account)
}

func (s *Service) identify(ctx context.Context, req GoogleLoginRequest) (*federated.Identity, error) {
	if req.IDToken != "" {
		return s.verifier.Verify(ctx, req.IDToken)
	}
	if s.exchanger == nil {
		return nil, errors.Wrapf(errors.ErrInvalidFederatedToken, "authorization code login is not configured")
	}
	return s.exchanger.Exchange(ctx, req.Code)
}

// provision creates a password-less account for a first federated login. A
// concurrent first login for the same email loses the insert and falls back to
// reconciling against the winner's account.
func (s *Service) provision(ctx context.Context, identity *federated.Identity) (*users.Account, error) {
	account := &users.Account{
		Email:       identity.Email,
		FederatedID: identity.Subject,
	}
	err := s.repos.Accounts.Create(ctx, account)
	if err == nil {
		log.Info().Str("account_id", account.ID).Msg("federated account provisioned")
		return account, nil
	}
	if !errors.Is(err, errors.ErrDuplicateAccount) {
		return nil, s.persistenceFailure("login-with-google", identity.Email, err)
	}

	existing, err := s.repos.Accounts.GetByEmail(ctx, identity.Email)
	if err != nil {
		return nil, s.persistenceFailure("login-with-google", identity.Email, err)
	}
	if err := s.reconcile(ctx, existing, identity); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *Service) reconcile(ctx context.Context, account *users.Account, identity *federated.Identity) error {
	if account.FederatedID == identity.Subject {
		return nil
	}
	if s.linkPolicy == LinkPolicyLoginOnly {
		return nil
	}
	if account.FederatedID != "" {
		return errors.Wrapf(errors.ErrFederatedAccountConflict, "account is linked to another identity")
	}
	if s.linkPolicy == LinkPolicyReject {
		return errors.Wrapf(errors.ErrFederatedAccountConflict, "account exists and is not linked")
	}
	if !identity.EmailVerified {
		return errors.Wrapf(errors.ErrFederatedAccountConflict, "provider email is not verified")
	}

	if err := s.repos.Accounts.LinkFederatedID(ctx, account.ID, identity.Subject); err != nil {
		if errors.Is(err, errors.ErrDuplicateAccount) {
			return errors.Wrapf(errors.ErrFederatedAccountConflict, "identity is linked to another account")
		}
		return s.persistenceFailure("link-federated-id", account.ID, err)
	}
	account.FederatedID = identity.Subject
	log.Info().Str("account_id", account.ID).Msg("federated identity linked")
	return nil
}
