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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/mkobayashi/summarize-portal/identity"
	"github.com/mkobayashi/summarize-portal/internal/config"
	"github.com/mkobayashi/summarize-portal/internal/metrics"
	"github.com/mkobayashi/summarize-portal/oauthflow"
	"github.com/mkobayashi/summarize-portal/server"
	"github.com/mkobayashi/summarize-portal/serving"
	"github.com/mkobayashi/summarize-portal/sessions"
	"github.com/mkobayashi/summarize-portal/summarizer"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.New()
	if err != nil {
		return fmt.Errorf("config.New: %w", err)
	}
	displayAppname(c.GetAppName())

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	flow := oauthflow.New(oauthflow.Config{
		ProviderHost: c.GetProviderHost(),
		ClientID:     c.GetClientID(),
		ClientSecret: c.GetClientSecret(),
		RedirectURI:  c.GetRedirectURI(),
		Scopes:       c.GetScopes(),
	})

	extractor, err := buildExtractor(c)
	if err != nil {
		return err
	}

	invoker := serving.NewClient(c.GetProviderHost(), c.GetServingEndpoint(), c.GetInvocationTimeout())
	svc := summarizer.New(sessions.NewInMemoryRepo(), flow, extractor, invoker, m, log.Logger)

	srv, err := server.New(c, svc, registry, log.Logger)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: srv}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

// buildExtractor selects the identity extraction strategy. The default
// decodes claims without verification; setting VERIFY_ID_TOKENS enables the
// discovery-backed verifier.
func buildExtractor(c config.Config) (identity.Extractor, error) {
	if !c.VerifyIDTokens() {
		return identity.NewUnverified(log.Logger), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	extractor, err := identity.NewVerifying(ctx, c.GetProviderHost()+"/oidc", c.GetClientID())
	if err != nil {
		return nil, fmt.Errorf("buildExtractor: %w", err)
	}
	return extractor, nil
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
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
