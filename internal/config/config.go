package config

import (
	"fmt"
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const minSecretLength = 32

type Config interface {
	EnvConfig
	CorsConfig
	TokenConfig
	SecurityConfig
	DatabaseConfig
	GoogleConfig
	RedisConfig
	Validate() error
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Token
	Security
	Database
	Google
	Redis
}

// defaults are applied before the config file, environment and flags.
var defaults = map[string]any{
	"app.name":  "Storefront API",
	"app.env":   "DEV",
	"log.level": "info",

	"server.port": "3003",

	"cors.allowed_origins": []string{"*"},
	"cors.allowed_methods": "GET, POST, PUT, DELETE",
	"cors.allowed_headers": "Content-Type, Authorization",

	"token.secret": "",
	"token.expiry": time.Hour,
	"token.issuer": "storefront-api",

	"security.bcrypt_cost":        10,
	"security.operation_timeout":  5 * time.Second,
	"security.rate_limit.enabled": true,
	"security.rate_limit.per_min": 30,
	"security.rate_limit.burst":   10,

	"database.url":              "",
	"database.max_conns":        10,
	"database.connect_attempts": 5,

	"auth.federated_link_policy": "link",

	"google.verifier":                  "oidc",
	"google.client_id":                 "",
	"google.client_secret":             "",
	"google.redirect_url":              "",
	"google.firebase_credentials_file": "",
	"google.firebase_project_id":       "",

	"redis.addr":     "",
	"redis.password": "",
	"redis.db":       0,
}

// envBindings maps environment variables onto config keys.
var envBindings = map[string]string{
	"APP_NAME":                  "app.name",
	"ENV":                       "app.env",
	"LOG_LEVEL":                 "log.level",
	"PORT":                      "server.port",
	"JWT_SECRET":                "token.secret",
	"DATABASE_URL":              "database.url",
	"FEDERATED_LINK_POLICY":     "auth.federated_link_policy",
	"GOOGLE_VERIFIER":           "google.verifier",
	"GOOGLE_CLIENT_ID":          "google.client_id",
	"GOOGLE_CLIENT_SECRET":      "google.client_secret",
	"GOOGLE_REDIRECT_URL":       "google.redirect_url",
	"FIREBASE_CREDENTIALS_FILE": "google.firebase_credentials_file",
	"FIREBASE_PROJECT_ID":       "google.firebase_project_id",
	"REDIS_ADDR":                "redis.addr",
	"REDIS_PASSWORD":            "redis.password",
}

// Load builds the process configuration from defaults, an optional YAML file,
// environment variables and command line flags, in that order of precedence.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")
	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("config default %s: %w", key, err)
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	for envVar, key := range envBindings {
		if value := os.Getenv(envVar); value != "" {
			if err := k.Set(key, value); err != nil {
				return nil, fmt.Errorf("config env %s: %w", envVar, err)
			}
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, fmt.Errorf("config flags: %w", err)
		}
	}

	return newMainConfig(k), nil
}

// FromValues builds a Config from defaults overlaid with values. Intended for tests.
func FromValues(values map[string]any) (Config, error) {
	k := koanf.New(".")
	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return nil, err
		}
	}
	for key, value := range values {
		if err := k.Set(key, value); err != nil {
			return nil, err
		}
	}
	return newMainConfig(k), nil
}

func newMainConfig(k *koanf.Koanf) mainConfig {
	return mainConfig{
		EnvVars:  EnvVars{k: k},
		Cors:     Cors{k: k},
		Token:    Token{k: k},
		Security: Security{k: k},
		Database: Database{k: k},
		Google:   Google{k: k},
		Redis:    Redis{k: k},
	}
}

// Validate checks the settings the process cannot start without.
func (c mainConfig) Validate() error {
	if len(c.GetTokenSecret()) < minSecretLength {
		return fmt.Errorf("token secret must be at least %d bytes (set JWT_SECRET)", minSecretLength)
	}
	if c.GetBcryptCost() < 4 || c.GetBcryptCost() > 31 {
		return fmt.Errorf("bcrypt cost %d out of range", c.GetBcryptCost())
	}
	switch c.GetFederatedLinkPolicy() {
	case "link", "reject", "login_only":
	default:
		return fmt.Errorf("unknown federated link policy %q", c.GetFederatedLinkPolicy())
	}
	return nil
}
