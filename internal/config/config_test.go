package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/storefront-api/internal/config"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoad_Defaults(t *testing.T) {
	c, err := config.Load("", nil)
	require.NoError(t, err)

	require.Equal(t, ":3003", c.GetPort())
	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, time.Hour, c.GetTokenExpiry())
	require.Equal(t, 10, c.GetBcryptCost())
	require.Equal(t, "link", c.GetFederatedLinkPolicy())
	require.True(t, c.GetAllowedOrigins().IsAllowedOrigin("*"))
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "storefront.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "8081"
token:
  secret: file-secret-file-secret-file-secret
  expiry: 30m
`), 0o600))

	t.Setenv("JWT_SECRET", testSecret)

	c, err := config.Load(path, nil)
	require.NoError(t, err)

	require.Equal(t, ":8081", c.GetPort())
	require.Equal(t, testSecret, c.GetTokenSecret())
	require.Equal(t, 30*time.Minute, c.GetTokenExpiry())
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("PORT", "9000")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("server.port", "3003", "listen port")
	require.NoError(t, flags.Parse([]string{"--server.port=9100"}))

	c, err := config.Load("", flags)
	require.NoError(t, err)
	require.Equal(t, ":9100", c.GetPort())
}

func TestValidate(t *testing.T) {
	t.Run("short secret", func(t *testing.T) {
		c, err := config.FromValues(map[string]any{"token.secret": "short"})
		require.NoError(t, err)
		require.Error(t, c.Validate())
	})

	t.Run("unknown link policy", func(t *testing.T) {
		c, err := config.FromValues(map[string]any{
			"token.secret":               testSecret,
			"auth.federated_link_policy": "merge",
		})
		require.NoError(t, err)
		require.ErrorContains(t, c.Validate(), "federated link policy")
	})

	t.Run("valid", func(t *testing.T) {
		c, err := config.FromValues(map[string]any{"token.secret": testSecret})
		require.NoError(t, err)
		require.NoError(t, c.Validate())
	})
}
