package config

import "github.com/knadh/koanf/v2"

type GoogleConfig interface {
	GetGoogleVerifier() string
	GetGoogleClientID() string
	GetGoogleClientSecret() string
	GetGoogleRedirectURL() string
	GetFirebaseCredentialsFile() string
	GetFirebaseProjectID() string
}

type Google struct {
	k *koanf.Koanf
}

var _ GoogleConfig = Google{}

// GetGoogleVerifier selects the ID token verifier: "oidc", "firebase" or "none"
func (g Google) GetGoogleVerifier() string {
	return g.k.String("google.verifier")
}

func (g Google) GetGoogleClientID() string {
	return g.k.String("google.client_id")
}

func (g Google) GetGoogleClientSecret() string {
	return g.k.String("google.client_secret")
}

func (g Google) GetGoogleRedirectURL() string {
	return g.k.String("google.redirect_url")
}

func (g Google) GetFirebaseCredentialsFile() string {
	return g.k.String("google.firebase_credentials_file")
}

func (g Google) GetFirebaseProjectID() string {
	return g.k.String("google.firebase_project_id")
}
