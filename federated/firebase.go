package federated

import (
	"context"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	pkgerrors "github.com/pkg/errors"
	"google.golang.org/api/option"

	"github.com/jrsteele09/storefront-api/internal/errors"
)

// FirebaseTokenVerifier is the part of *auth.Client used here
type FirebaseTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

var _ FirebaseTokenVerifier = (*auth.Client)(nil)

// FirebaseVerifier verifies Firebase Authentication ID tokens (Google sign-in through Firebase)
type FirebaseVerifier struct {
	client FirebaseTokenVerifier
}

var _ Verifier = (*FirebaseVerifier)(nil)

// NewFirebaseVerifier initialises the Firebase Admin SDK from a service account file.
func NewFirebaseVerifier(ctx context.Context, credentialsFile, projectID string) (*FirebaseVerifier, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	var cfg *firebase.Config
	if projectID != "" {
		cfg = &firebase.Config{ProjectID: projectID}
	}

	app, err := firebase.NewApp(ctx, cfg, opts...)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[NewFirebaseVerifier] init app")
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[NewFirebaseVerifier] auth client")
	}
	return NewFirebaseVerifierWithClient(client), nil
}

func NewFirebaseVerifierWithClient(client FirebaseTokenVerifier) *FirebaseVerifier {
	return &FirebaseVerifier{client: client}
}

func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (*Identity, error) {
	if idToken == "" {
		return nil, errors.Wrapf(errors.ErrInvalidFederatedToken, "empty id token")
	}

	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, errors.Kind(errors.ErrInvalidFederatedToken, err)
	}

	id := &Identity{Subject: token.UID}
	if id.Subject == "" {
		id.Subject = token.Subject
	}
	if email, ok := token.Claims["email"].(string); ok {
		id.Email = email
	}
	if verified, ok := token.Claims["email_verified"].(bool); ok {
		id.EmailVerified = verified
	}
	if name, ok := token.Claims["name"].(string); ok {
		id.Name = name
	}
	return checkIdentity(id)
}
