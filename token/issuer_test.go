package token_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/storefront-api/internal/errors"
	"github.com/jrsteele09/storefront-api/token"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type testFixture struct {
	now     time.Time
	issuer  *token.Issuer
	revoked *token.InMemoryRevokedTokenCache
}

func (f *testFixture) advance(d time.Duration) { f.now = f.now.Add(d) }

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	f := &testFixture{
		now:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		revoked: token.NewInMemoryRevokedTokenCache(),
	}
	f.issuer = token.NewIssuer(token.NewHMACSigner(testSecret),
		token.WithIssuerName("storefront-api"),
		token.WithRevocation(f.revoked),
		token.WithNowTime(func() time.Time { return f.now }),
	)
	return f
}

func TestIssue(t *testing.T) {
	f := setupTestFixture(t)

	session, err := f.issuer.Issue("account-1")
	require.NoError(t, err)
	require.NotEmpty(t, session.Raw)
	require.NotEmpty(t, session.ID)
	require.Equal(t, f.now, session.IssuedAt)
	require.Equal(t, f.now.Add(time.Hour), session.ExpiresAt)

	_, err = f.issuer.Issue("")
	require.ErrorIs(t, err, errors.ErrValidation)
}

func TestVerify_ExpiryWindow(t *testing.T) {
	f := setupTestFixture(t)
	session, err := f.issuer.Issue("account-1")
	require.NoError(t, err)

	f.advance(59 * time.Minute)
	verified, err := f.issuer.Verify(context.Background(), session.Raw)
	require.NoError(t, err)
	require.Equal(t, "account-1", verified.Subject)
	require.Equal(t, session.ID, verified.ID)

	f.advance(2 * time.Minute)
	_, err = f.issuer.Verify(context.Background(), session.Raw)
	require.ErrorIs(t, err, errors.ErrTokenExpired)
}

func TestVerify_Invalid(t *testing.T) {
	f := setupTestFixture(t)
	session, err := f.issuer.Issue("account-1")
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "garbage", raw: "not.a.jwt"},
		{name: "signature from another token", raw: func() string {
			other, err := f.issuer.Issue("account-2")
			require.NoError(t, err)
			parts := strings.Split(session.Raw, ".")
			otherParts := strings.Split(other.Raw, ".")
			return strings.Join([]string{otherParts[0], otherParts[1], parts[2]}, ".")
		}()},
		{name: "other secret", raw: func() string {
			other := token.NewIssuer(token.NewHMACSigner(strings.Repeat("z", 32)),
				token.WithIssuerName("storefront-api"),
				token.WithNowTime(func() time.Time { return f.now }))
			s, err := other.Issue("account-1")
			require.NoError(t, err)
			return s.Raw
		}()},
		{name: "alg none", raw: func() string {
			raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
				"sub": "account-1",
				"exp": f.now.Add(time.Hour).Unix(),
				"iss": "storefront-api",
			}).SignedString(jwt.UnsafeAllowNoneSignatureType)
			require.NoError(t, err)
			return raw
		}()},
		{name: "missing expiry", raw: func() string {
			raw, err := token.NewHMACSigner(testSecret).Sign(jwt.MapClaims{"sub": "account-1", "iss": "storefront-api"})
			require.NoError(t, err)
			return raw
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.issuer.Verify(context.Background(), tt.raw)
			require.ErrorIs(t, err, errors.ErrTokenInvalid)
		})
	}
}

func TestRevoke(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	session, err := f.issuer.Issue("account-1")
	require.NoError(t, err)

	verified, err := f.issuer.Verify(ctx, session.Raw)
	require.NoError(t, err)
	require.NoError(t, f.issuer.Revoke(ctx, verified))

	_, err = f.issuer.Verify(ctx, session.Raw)
	require.ErrorIs(t, err, errors.ErrTokenInvalid)

	other, err := f.issuer.Issue("account-1")
	require.NoError(t, err)
	_, err = f.issuer.Verify(ctx, other.Raw)
	require.NoError(t, err)
}

func TestRevoke_NotConfigured(t *testing.T) {
	issuer := token.NewIssuer(token.NewHMACSigner(testSecret))
	session, err := issuer.Issue("account-1")
	require.NoError(t, err)
	require.Error(t, issuer.Revoke(context.Background(), session))
}
