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
	"github.com/jrsteele09/go-session-gateway/internal/config"
	"github.com/jrsteele09/go-session-gateway/internal/fakebackend"
	"github.com/jrsteele09/go-session-gateway/internal/logging"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// apiPrefix matches the path of the default API_BASE_URL.
const apiPrefix = "/api"

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running fake backend")
	}
	log.Info().Msg("Fake backend stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Msgf("Recovered from panic: %v", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := logging.New(os.Stderr, c.GetLogLevel(), c.GetEnv())
	if err != nil {
		return err
	}
	displayAppname("Fake Backend")

	backend, err := fakebackend.New(
		fakebackend.WithSecret(c.GetFakeBackendSecret()),
		fakebackend.WithAccessTTL(c.GetFakeBackendAccessTTL()),
		fakebackend.WithLogger(logger),
		fakebackend.WithEnv(c.GetEnv()),
	)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle(apiPrefix+"/", http.StripPrefix(apiPrefix, backend))
	server := &http.Server{
		Addr:              c.GetFakeBackendPort(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() { errs <- listenAndServe(logger, server) }()
	select {
	case err := <-errs:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(server)
}

func listenAndServe(logger zerolog.Logger, server *http.Server) error {
	logger.Info().Str("addr", server.Addr).Str("prefix", apiPrefix).Msg("Fake backend listening")
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
