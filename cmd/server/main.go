package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jrsteele09/storefront-api/internal/logging"
)

// Version information set at build time.
var version = "dev"

func main() {
	cmd := NewRootCmd()
	cmd.Version = version

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// NewServeCmd creates the serve subcommand, which is also the root default.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the storefront API server",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	c, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return pkgerrors.Wrap(err, "[serve] invalid configuration")
	}
	logging.Setup(c.GetEnv(), c.GetLogLevel())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	displayAppname(c.GetAppName())
	a, err := newApp(ctx, c)
	if err != nil {
		return err
	}
	defer a.Close()

	return run(&http.Server{
		Addr:              c.GetPort(),
		Handler:           a.server,
		ReadHeaderTimeout: 10 * time.Second,
	})
}

func run(server *http.Server) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("recovered from panic")
			returnError = pkgerrors.New("panic recovered")
		}
	}()

	serveErr := make(chan error, 1)
	go func() { serveErr <- listenAndServe(server) }()

	if err := waitForStopSignal(serveErr); err != nil {
		return err
	}
	returnError = shutdown(server)
	log.Info().Msg("Server stopped")
	return returnError
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

// waitForStopSignal blocks until SIGINT/SIGTERM, or returns early if the
// listener fails.
func waitForStopSignal(serveErr <-chan error) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case <-stop:
		return nil
	case err := <-serveErr:
		return err
	}
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
