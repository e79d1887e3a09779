package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-plaid-link/aggregator"
	"github.com/jrsteele09/go-plaid-link/identity"
	"github.com/jrsteele09/go-plaid-link/internal/config"
	applog "github.com/jrsteele09/go-plaid-link/internal/log"
	"github.com/jrsteele09/go-plaid-link/server"
	"github.com/jrsteele09/go-plaid-link/sessions"
	"github.com/rs/zerolog"
)

func main() {
	logger := applog.New("main", config.EnvVars{}.GetEnv())
	if err := run(logger); err != nil {
		logger.Fatal().Err(err).Msg("Error running server")
	}
	logger.Info().Msg("Server stopped")
}

func run(logger zerolog.Logger) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.New()
	if err != nil {
		return fmt.Errorf("config.New: %w", err)
	}
	displayAppname(c.GetAppName())

	provider, err := identity.NewStaticProvider(c.GetLoginUsername(), c.GetLoginPassword())
	if err != nil {
		return fmt.Errorf("identity.NewStaticProvider: %w", err)
	}

	repo := sessions.NewInMemoryRepo()
	client := aggregator.NewPlaidClient(aggregator.PlaidConfigFrom(c), nil, applog.New("aggregator", c.GetEnv()))

	handler, err := server.New(c, server.Dependencies{
		Sessions:   repo,
		Identity:   provider,
		Aggregator: client,
	}, applog.New("server", c.GetEnv()))
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sessions.RunExpirySweep(ctx, repo, c.GetSessionSweepInterval(), applog.New("sessions", c.GetEnv()))

	srv := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() { serveErr <- listenAndServe(srv, logger) }()

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(srv)
}

func listenAndServe(server *http.Server, logger zerolog.Logger) error {
	logger.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
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
