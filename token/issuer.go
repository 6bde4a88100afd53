package token

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"github.com/jrsteele09/storefront-api/internal/errors"
)

// DefaultExpiry is the validity window of a session token
const DefaultExpiry = time.Hour

// SessionToken is a signed bearer token bound to an account id
type SessionToken struct {
	Raw       string    `json:"token"`
	ID        string    `json:"-"` // jti
	Subject   string    `json:"-"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Issuer mints and verifies session tokens. The server-side expiresAt is the
// only expiry that counts; there is no leeway.
type Issuer struct {
	signer  Signer
	issuer  string
	expiry  time.Duration
	revoked RevokedTokenCache
	nowFunc func() time.Time
}

type IssuerOption func(*Issuer)

func WithIssuerName(name string) IssuerOption {
	return func(i *Issuer) { i.issuer = name }
}

func WithExpiry(expiry time.Duration) IssuerOption {
	return func(i *Issuer) {
		if expiry > 0 {
			i.expiry = expiry
		}
	}
}

func WithRevocation(cache RevokedTokenCache) IssuerOption {
	return func(i *Issuer) { i.revoked = cache }
}

func WithNowTime(nowFunc func() time.Time) IssuerOption {
	return func(i *Issuer) { i.nowFunc = nowFunc }
}

func NewIssuer(signer Signer, opts ...IssuerOption) *Issuer {
	i := &Issuer{
		signer:  signer,
		expiry:  DefaultExpiry,
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Issue signs {sub, iat, exp, jti} for subject with exp = iat + expiry.
func (i *Issuer) Issue(subject string) (*SessionToken, error) {
	if subject == "" {
		return nil, errors.Wrapf(errors.ErrValidation, "[Issuer.Issue] empty subject")
	}

	issuedAt := i.nowFunc().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(i.expiry)
	jti := uuid.New().String()

	claims := jwt.MapClaims{
		"sub": subject,
		"iat": issuedAt.Unix(),
		"exp": expiresAt.Unix(),
		"jti": jti,
	}
	if i.issuer != "" {
		claims["iss"] = i.issuer
	}

	raw, err := i.signer.Sign(claims)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[Issuer.Issue] sign")
	}

	return &SessionToken{
		Raw:       raw,
		ID:        jti,
		Subject:   subject,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

// Verify checks signature, expiry and revocation, returning the token's claims.
// Failures are errors.ErrTokenExpired or errors.ErrTokenInvalid.
func (i *Issuer) Verify(ctx context.Context, raw string) (*SessionToken, error) {
	if raw == "" {
		return nil, errors.ErrTokenInvalid
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{i.signer.GetSigningMethod().Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(i.nowFunc),
	}
	if i.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(i.issuer))
	}

	claims := jwt.MapClaims{}
	if _, err := jwt.NewParser(parserOpts...).ParseWithClaims(raw, claims, i.signer.GetVerificationKey); err != nil {
		return nil, mapJWTError(err)
	}

	session, err := sessionFromClaims(raw, claims)
	if err != nil {
		return nil, err
	}

	if i.revoked != nil && session.ID != "" {
		revoked, err := i.revoked.IsRevoked(ctx, session.ID)
		if err != nil {
			return nil, errors.Kind(errors.ErrPersistence, err)
		}
		if revoked {
			return nil, errors.Wrapf(errors.ErrTokenInvalid, "token revoked")
		}
	}
	return session, nil
}

// Revoke blocks a verified token until its expiry.
func (i *Issuer) Revoke(ctx context.Context, session *SessionToken) error {
	if i.revoked == nil {
		return errors.New("token revocation not configured")
	}
	if session.ID == "" {
		return errors.Wrapf(errors.ErrTokenInvalid, "token has no jti")
	}
	if err := i.revoked.Add(ctx, session.ID, session.ExpiresAt); err != nil {
		return errors.Kind(errors.ErrPersistence, err)
	}
	return nil
}

func sessionFromClaims(raw string, claims jwt.MapClaims) (*SessionToken, error) {
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, errors.Wrapf(errors.ErrTokenInvalid, "missing subject")
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, errors.Wrapf(errors.ErrTokenInvalid, "missing expiry")
	}
	session := &SessionToken{
		Raw:       raw,
		Subject:   sub,
		ExpiresAt: exp.Time.UTC(),
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		session.IssuedAt = iat.Time.UTC()
	}
	if jti, ok := claims["jti"].(string); ok {
		session.ID = jti
	}
	return session, nil
}

func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return errors.Kind(errors.ErrTokenExpired, err)
	default:
		return errors.Kind(errors.ErrTokenInvalid, err)
	}
}
