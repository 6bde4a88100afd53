package auth

import (
	"context"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/storefront-api/federated"
	"github.com/jrsteele09/storefront-api/internal/errors"
	"github.com/jrsteele09/storefront-api/internal/metrics"
	"github.com/jrsteele09/storefront-api/token"
	"github.com/jrsteele09/storefront-api/users"
)

// DefaultOperationTimeout bounds every store and hash operation
const DefaultOperationTimeout = 5 * time.Second

// Repos holds all repository dependencies for the Service
type Repos struct {
	Accounts users.AccountRepo
}

// Service implements registration, password login, federated login and
// session token checks for the storefront.
type Service struct {
	repos      Repos
	issuer     *token.Issuer
	hasher     users.PasswordHasher
	verifier   federated.Verifier
	exchanger  federated.CodeExchanger
	linkPolicy LinkPolicy
	timeout    time.Duration
	metrics    metrics.AuthRecorder
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

func WithHasher(hasher users.PasswordHasher) ServiceOption {
	return func(s *Service) { s.hasher = hasher }
}

func WithFederatedVerifier(verifier federated.Verifier) ServiceOption {
	return func(s *Service) { s.verifier = verifier }
}

func WithCodeExchanger(exchanger federated.CodeExchanger) ServiceOption {
	return func(s *Service) { s.exchanger = exchanger }
}

func WithLinkPolicy(policy LinkPolicy) ServiceOption {
	return func(s *Service) { s.linkPolicy = policy }
}

func WithOperationTimeout(timeout time.Duration) ServiceOption {
	return func(s *Service) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

func WithMetrics(recorder metrics.AuthRecorder) ServiceOption {
	return func(s *Service) { s.metrics = recorder }
}

func NewService(repos Repos, issuer *token.Issuer, options ...ServiceOption) (*Service, error) {
	if repos.Accounts == nil {
		return nil, pkgerrors.New("[NewService] Accounts repo is required")
	}
	if issuer == nil {
		return nil, pkgerrors.New("[NewService] token issuer is required")
	}

	s := &Service{
		repos:      repos,
		issuer:     issuer,
		hasher:     users.NewBcryptHasher(users.DefaultCost),
		verifier:   federated.Disabled{},
		linkPolicy: LinkPolicyLink,
		timeout:    DefaultOperationTimeout,
		metrics:    metrics.Nop{},
	}
	for _, opt := range options {
		opt(s)
	}

	if !s.linkPolicy.Valid() {
		return nil, pkgerrors.Errorf("[NewService] unknown federated link policy %q", s.linkPolicy)
	}
	return s, nil
}

// Register creates a local account. No token is issued.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*users.Account, error) {
	account, err := s.register(ctx, req)
	s.metrics.RecordRegistration(outcome(err))
	return account, err
}

func (s *Service) register(ctx context.Context, req RegisterRequest) (*users.Account, error) {
	req.Email = users.NormalizeEmail(req.Email)
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// Fast path only; the store's unique constraint decides.
	if _, err := s.repos.Accounts.GetByEmail(ctx, req.Email); err == nil {
		return nil, errors.ErrDuplicateAccount
	} else if !errors.Is(err, errors.ErrNotFound) {
		return nil, s.persistenceFailure("register", req.Email, err)
	}

	hash, err := s.hash(ctx, req.Password)
	if err != nil {
		return nil, s.persistenceFailure("register", req.Email, err)
	}

	account := &users.Account{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := s.repos.Accounts.Create(ctx, account); err != nil {
		if errors.Is(err, errors.ErrDuplicateAccount) {
			return nil, errors.ErrDuplicateAccount
		}
		return nil, s.persistenceFailure("register", req.Email, err)
	}

	log.Info().Str("account_id", account.ID).Msg("account registered")
	return account, nil
}

// Login checks an email and password and issues a session token. An unknown
// email, a federated-only account and a wrong password all fail with the same
// ErrInvalidCredentials after the same amount of hashing work.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*token.SessionToken, error) {
	session, err := s.login(ctx, req)
	s.metrics.RecordLogin(metrics.MethodPassword, outcome(err))
	return session, err
}

func (s *Service) login(ctx context.Context, req LoginRequest) (*token.SessionToken, error) {
	req.Email = users.NormalizeEmail(req.Email)
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	account, err := s.repos.Accounts.GetByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, errors.ErrNotFound) {
		return nil, s.persistenceFailure("login", req.Email, err)
	}

	storedHash := users.DummyHash()
	if account != nil && account.HasPassword() {
		storedHash = account.PasswordHash
	}

	match, err := s.verify(ctx, req.Password, storedHash)
	if err != nil {
		return nil, s.persistenceFailure("login", req.Email, err)
	}
	if !match || account == nil || !account.HasPassword() {
		return nil, errors.ErrInvalidCredentials
	}

	return s.issue(account)
}

// Authenticate verifies a bearer token. Failures are ErrTokenExpired or ErrTokenInvalid.
func (s *Service) Authenticate(ctx context.Context, rawToken string) (*token.SessionToken, error) {
	return s.issuer.Verify(ctx, rawToken)
}

// Logout revokes a verified session token until it expires.
func (s *Service) Logout(ctx context.Context, session *token.SessionToken) error {
	if err := s.issuer.Revoke(ctx, session); err != nil {
		return pkgerrors.Wrap(err, "[Logout] revoke")
	}
	log.Info().Str("account_id", session.Subject).Msg("session revoked")
	return nil
}

// Account returns the account a session token is bound to.
func (s *Service) Account(ctx context.Context, id string) (*users.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	account, err := s.repos.Accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.ErrNotFound
		}
		return nil, s.persistenceFailure("account", id, err)
	}
	return account, nil
}

func (s *Service) issue(account *users.Account) (*token.SessionToken, error) {
	session, err := s.issuer.Issue(account.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[issue] failed to issue session token")
	}
	return session, nil
}

// hash runs the hasher under ctx. bcrypt cannot be interrupted, so on timeout
// the result is abandoned.
func (s *Service) hash(ctx context.Context, password string) (string, error) {
	type result struct {
		hash string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		h, err := s.hasher.Hash(password)
		done <- result{h, err}
	}()

	select {
	case <-ctx.Done():
		return "", pkgerrors.Wrap(ctx.Err(), "[hash] timed out")
	case r := <-done:
		return r.hash, r.err
	}
}

func (s *Service) verify(ctx context.Context, password, hash string) (bool, error) {
	type result struct {
		match bool
		err   error
	}
	done := make(chan result, 1)
	go func() {
		ok, err := s.hasher.Verify(password, hash)
		done <- result{ok, err}
	}()

	select {
	case <-ctx.Done():
		return false, pkgerrors.Wrap(ctx.Err(), "[verify] timed out")
	case r := <-done:
		return r.match, r.err
	}
}

func (s *Service) persistenceFailure(operation, key string, err error) error {
	log.Error().Err(err).Str("operation", operation).Str("key", key).Msg("auth operation failed")
	return errors.Kind(errors.ErrPersistence, err)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, errors.ErrDuplicateAccount):
		return metrics.OutcomeDuplicate
	case errors.Is(err, errors.ErrFederatedAccountConflict):
		return metrics.OutcomeConflict
	case errors.Is(err, errors.ErrValidation),
		errors.Is(err, errors.ErrInvalidCredentials),
		errors.Is(err, errors.ErrInvalidFederatedToken):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeError
	}
}
