package config

import (
	"time"

	"github.com/knadh/koanf/v2"
)

type TokenConfig interface {
	GetTokenSecret() string
	GetTokenExpiry() time.Duration
	GetTokenIssuer() string
}

type Token struct {
	k *koanf.Koanf
}

var _ TokenConfig = Token{}

func (t Token) GetTokenSecret() string {
	return t.k.String("token.secret")
}

func (t Token) GetTokenExpiry() time.Duration {
	if d := t.k.Duration("token.expiry"); d > 0 {
		return d
	}
	return time.Hour
}

func (t Token) GetTokenIssuer() string {
	return t.k.String("token.issuer")
}
