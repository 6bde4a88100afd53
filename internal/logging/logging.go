// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New builds a logger for env at level. DEV gets a human readable console
// writer, every other environment gets JSON lines.
func New(w io.Writer, env, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	if strings.EqualFold(env, "DEV") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// Setup installs the logger as log.Logger so package code can use zerolog/log directly.
func Setup(env, level string) {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = New(os.Stderr, env, level)
}
