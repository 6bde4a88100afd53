package config

import (
	"time"

	"github.com/knadh/koanf/v2"
)

type SecurityConfig interface {
	GetBcryptCost() int
	GetOperationTimeout() time.Duration
	GetEnableRateLimiting() bool
	GetRateLimitPerMinute() int
	GetRateLimitBurst() int
	GetFederatedLinkPolicy() string
}

type Security struct {
	k *koanf.Koanf
}

var _ SecurityConfig = Security{}

func (s Security) GetBcryptCost() int {
	return s.k.Int("security.bcrypt_cost")
}

// GetOperationTimeout bounds each store and hash operation of a request
func (s Security) GetOperationTimeout() time.Duration {
	return s.k.Duration("security.operation_timeout")
}

func (s Security) GetEnableRateLimiting() bool {
	return s.k.Bool("security.rate_limit.enabled")
}

func (s Security) GetRateLimitPerMinute() int {
	return s.k.Int("security.rate_limit.per_min")
}

func (s Security) GetRateLimitBurst() int {
	return s.k.Int("security.rate_limit.burst")
}

// GetFederatedLinkPolicy is one of "link", "reject" or "login_only"
func (s Security) GetFederatedLinkPolicy() string {
	return s.k.String("auth.federated_link_policy")
}
