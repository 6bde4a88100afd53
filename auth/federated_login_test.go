package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/storefront-api/auth"
	"github.com/jrsteele09/storefront-api/federated"
	"github.com/jrsteele09/storefront-api/internal/errors"
	"github.com/jrsteele09/storefront-api/users"
)

const googleToken = "google-id-token"

func (f *testFixture) googleIdentity(subject, email string, verified bool) {
	f.verifier.identities[googleToken] = &federated.Identity{Subject: subject, Email: email, EmailVerified: verified}
}

func TestLoginWithGoogle_ProvisionsAccount(t *testing.T) {
	f := setupTestFixture(t)
	f.googleIdentity("google-uid-1", "new@example.com", true)
	ctx := context.Background()

	session, err := f.service.LoginWithGoogle(ctx, auth.GoogleLoginRequest{IDToken: googleToken})
	require.NoError(t, err)

	account, err := f.userRepo.GetByEmail(ctx, "new@example.com")
	require.NoError(t, err)
	require.False(t, account.HasPassword())
	require.Equal(t, "google-uid-1", account.FederatedID)

	verified, err := f.service.Authenticate(ctx, session.Raw)
	require.NoError(t, err)
	require.Equal(t, account.ID, verified.Subject, "token must be bound to the account id, not the provider subject")

	_, err = f.service.LoginWithGoogle(ctx, auth.GoogleLoginRequest{IDToken: googleToken})
	require.NoError(t, err)
	require.Equal(t, 1, f.userRepo.Count())
}

func TestLoginWithGoogle_InvalidToken(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.service.LoginWithGoogle(context.Background(), auth.GoogleLoginRequest{IDToken: "forged"})
	require.ErrorIs(t, err, errors.ErrInvalidFederatedToken)
	require.Zero(t, f.userRepo.Count())

	_, err = f.service.LoginWithGoogle(context.Background(), auth.GoogleLoginRequest{})
	require.ErrorIs(t, err, errors.ErrValidation)
}

func TestLoginWithGoogle_ExistingLocalAccount(t *testing.T) {
	tests := []struct {
		name       string
		policy     auth.LinkPolicy
		verified   bool
		wantErr    error
		wantLinked bool
	}{
		{name: "link", policy: auth.LinkPolicyLink, verified: true, wantLinked: true},
		{name: "link unverified email", policy: auth.LinkPolicyLink, verified: false, wantErr: errors.ErrFederatedAccountConflict},
		{name: "reject", policy: auth.LinkPolicyReject, verified: true, wantErr: errors.ErrFederatedAccountConflict},
		{name: "login only", policy: auth.LinkPolicyLoginOnly, verified: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupTestFixture(t, auth.WithLinkPolicy(tt.policy))
			local := f.register(t)
			f.googleIdentity("google-uid-1", testUserEmail, tt.verified)
			ctx := context.Background()

			session, err := f.service.LoginWithGoogle(ctx, auth.GoogleLoginRequest{IDToken: googleToken})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			verified, err := f.service.Authenticate(ctx, session.Raw)
			require.NoError(t, err)
			require.Equal(t, local.ID, verified.Subject)

			stored, err := f.userRepo.GetByID(ctx, local.ID)
			require.NoError(t, err)
			require.Equal(t, tt.wantLinked, stored.IsFederated())
			require.True(t, stored.HasPassword())
			require.Equal(t, 1, f.userRepo.Count())
		})
	}
}

func TestLoginWithGoogle_AccountLinkedToOtherIdentity(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	require.NoError(t, f.userRepo.Create(ctx, &users.Account{Email: testUserEmail, FederatedID: "google-uid-1"}))
	f.googleIdentity("google-uid-2", testUserEmail, true)

	_, err := f.service.LoginWithGoogle(ctx, auth.GoogleLoginRequest{IDToken: googleToken})
	require.ErrorIs(t, err, errors.ErrFederatedAccountConflict)
}

func TestLoginWithGoogle_AuthorizationCode(t *testing.T) {
	f := setupTestFixture(t)
	exchanger := &fakeVerifier{identities: map[string]*federated.Identity{
		"auth-code": {Subject: "google-uid-7", Email: "code@example.com", EmailVerified: true},
	}}
	service, err := auth.NewService(auth.Repos{Accounts: f.userRepo}, f.issuer, auth.WithCodeExchanger(exchanger))
	require.NoError(t, err)

	session, err := service.LoginWithGoogle(context.Background(), auth.GoogleLoginRequest{Code: "auth-code"})
	require.NoError(t, err)
	require.NotEmpty(t, session.Raw)

	_, err = f.service.LoginWithGoogle(context.Background(), auth.GoogleLoginRequest{Code: "auth-code"})
	require.ErrorIs(t, err, errors.ErrInvalidFederatedToken, "no exchanger configured")
}

func TestLoginWithGoogle_Metrics(t *testing.T) {
	f := setupTestFixture(t)
	f.googleIdentity("google-uid-1", "new@example.com", true)

	_, err := f.service.LoginWithGoogle(context.Background(), auth.GoogleLoginRequest{IDToken: googleToken})
	require.NoError(t, err)
	_, err = f.service.LoginWithGoogle(context.Background(), auth.GoogleLoginRequest{IDToken: "bad"})
	require.Error(t, err)

	require.Equal(t, []string{"google/success", "google/invalid"}, f.recorder.logins)
}
