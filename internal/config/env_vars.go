package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/v2"
)

type EnvVars struct {
	k *koanf.Koanf
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := e.k.String("server.port")
	if port != "" && !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.k.String("app.name")
}

func (e EnvVars) GetEnv() string {
	env := e.k.String("app.env")
	if env == "" {
		return "DEV"
	}
	return strings.ToUpper(env)
}

func (e EnvVars) GetLogLevel() string {
	return e.k.String("log.level")
}
