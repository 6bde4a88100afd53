package federated_test

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jrsteele09/storefront-api/internal/errors"
	"github.com/jrsteele09/storefront-api/federated"
)

const (
	testClientID = "storefront-web.apps.googleusercontent.com"
	testIssuer   = "https://accounts.google.com"
)

type testFixture struct {
	key      *rsa.PrivateKey
	now      time.Time
	verifier *federated.OIDCVerifier
}

func setupTestFixture(t *testing.T, tokenURL string) *testFixture {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	f := &testFixture{key: key, now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	f.verifier, err = federated.NewOIDCVerifier(context.Background(), federated.OIDCConfig{
		Issuer:       testIssuer,
		ClientID:     testClientID,
		ClientSecret: "client-secret",
		KeySet:       &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&key.PublicKey}},
		TokenURL:     tokenURL,
		Now:          func() time.Time { return f.now },
	})
	require.NoError(t, err)
	return f
}

func (f *testFixture) idToken(t *testing.T, overrides jwt.MapClaims) string {
	t.Helper()
	claims := jwt.MapClaims{
		"iss":            testIssuer,
		"aud":            testClientID,
		"sub":            "google-uid-1",
		"email":          "ali@example.com",
		"email_verified": true,
		"iat":            f.now.Unix(),
		"exp":            f.now.Add(time.Hour).Unix(),
	}
	for k, v := range overrides {
		if v == nil {
			delete(claims, k)
			continue
		}
		claims[k] = v
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(f.key)
	require.NoError(t, err)
	return raw
}

func TestOIDCVerifier_Verify(t *testing.T) {
	f := setupTestFixture(t, "")

	id, err := f.verifier.Verify(context.Background(), f.idToken(t, nil))
	require.NoError(t, err)
	require.Equal(t, "google-uid-1", id.Subject)
	require.Equal(t, "ali@example.com", id.Email)
	require.True(t, id.EmailVerified)
}

func TestOIDCVerifier_Rejects(t *testing.T) {
	f := setupTestFixture(t, "")
	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  func() string
	}{
		{name: "empty", raw: func() string { return "" }},
		{name: "expired", raw: func() string {
			return f.idToken(t, jwt.MapClaims{"exp": f.now.Add(-time.Minute).Unix()})
		}},
		{name: "wrong audience", raw: func() string {
			return f.idToken(t, jwt.MapClaims{"aud": "someone-else"})
		}},
		{name: "wrong issuer", raw: func() string {
			return f.idToken(t, jwt.MapClaims{"iss": "https://evil.example.com"})
		}},
		{name: "missing email", raw: func() string {
			return f.idToken(t, jwt.MapClaims{"email": nil})
		}},
		{name: "foreign key", raw: func() string {
			raw, err := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
				"iss": testIssuer, "aud": testClientID, "sub": "x", "email": "x@example.com",
				"exp": f.now.Add(time.Hour).Unix(),
			}).SignedString(otherKey)
			require.NoError(t, err)
			return raw
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.verifier.Verify(context.Background(), tt.raw())
			require.ErrorIs(t, err, apperrors.ErrInvalidFederatedToken)
		})
	}
}

func TestOIDCVerifier_Exchange(t *testing.T) {
	var f *testFixture
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.PostForm.Get("code") != "good-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "access",
			"token_type":   "Bearer",
			"expires_in":   3600,
			"id_token":     f.idToken(t, nil),
		})
	}))
	defer srv.Close()
	f = setupTestFixture(t, srv.URL)

	id, err := f.verifier.Exchange(context.Background(), "good-code")
	require.NoError(t, err)
	require.Equal(t, "ali@example.com", id.Email)

	_, err = f.verifier.Exchange(context.Background(), "bad-code")
	require.ErrorIs(t, err, apperrors.ErrInvalidFederatedToken)

	_, err = f.verifier.Exchange(context.Background(), "")
	require.ErrorIs(t, err, apperrors.ErrInvalidFederatedToken)
}

func TestNewOIDCVerifier_RequiresClientID(t *testing.T) {
	_, err := federated.NewOIDCVerifier(context.Background(), federated.OIDCConfig{
		KeySet: &oidc.StaticKeySet{},
	})
	require.Error(t, err)
}

type fakeFirebase struct {
	token *auth.Token
	err   error
}

func (f fakeFirebase) VerifyIDToken(context.Context, string) (*auth.Token, error) {
	return f.token, f.err
}

func TestFirebaseVerifier(t *testing.T) {
	t.Run("verified", func(t *testing.T) {
		v := federated.NewFirebaseVerifierWithClient(fakeFirebase{token: &auth.Token{
			UID:    "firebase-uid",
			Claims: map[string]interface{}{"email": "ali@example.com", "email_verified": true, "name": "Ali"},
		}})
		id, err := v.Verify(context.Background(), "id-token")
		require.NoError(t, err)
		require.Equal(t, "firebase-uid", id.Subject)
		require.Equal(t, "ali@example.com", id.Email)
		require.Equal(t, "Ali", id.Name)
	})

	t.Run("rejected", func(t *testing.T) {
		v := federated.NewFirebaseVerifierWithClient(fakeFirebase{err: errors.New("ID token has expired")})
		_, err := v.Verify(context.Background(), "id-token")
		require.ErrorIs(t, err, apperrors.ErrInvalidFederatedToken)
	})

	t.Run("no email", func(t *testing.T) {
		v := federated.NewFirebaseVerifierWithClient(fakeFirebase{token: &auth.Token{UID: "firebase-uid"}})
		_, err := v.Verify(context.Background(), "id-token")
		require.ErrorIs(t, err, apperrors.ErrInvalidFederatedToken)
	})
}

func TestDisabled(t *testing.T) {
	_, err := federated.Disabled{}.Verify(context.Background(), "anything")
	require.ErrorIs(t, err, apperrors.ErrInvalidFederatedToken)
}
