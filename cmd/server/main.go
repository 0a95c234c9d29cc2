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
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/terrafusion/auth-gateway/internal/config"
	"github.com/terrafusion/auth-gateway/provider"
	"github.com/terrafusion/auth-gateway/server"
	"github.com/terrafusion/auth-gateway/session"
	"github.com/terrafusion/auth-gateway/token"
	"github.com/terrafusion/auth-gateway/token/servicetoken"
	"github.com/terrafusion/auth-gateway/users/sqlite"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatal().Err(err).Msg("Error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Any("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	_ = godotenv.Load()

	c := config.New()
	setupLogging(c)
	displayAppname(c.GetAppName())

	srv, closeFn, err := buildServer(c)
	if err != nil {
		return err
	}
	defer closeFn()

	httpServer := &http.Server{Addr: c.GetPort(), Handler: srv}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

func buildServer(c config.Config) (*server.Server, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	idp, err := provider.New(ctx, provider.Config{
		IssuerURL:    c.GetIssuerURL(),
		ClientID:     c.GetClientID(),
		ClientSecret: c.GetClientSecret(),
		RedirectURL:  c.GetBaseURL() + server.RouteCallback,
		Scopes:       c.GetScopes(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("provider setup: %w", err)
	}

	userStore, err := sqlite.Open(c.GetUsersDBPath())
	if err != nil {
		return nil, nil, fmt.Errorf("user store setup: %w", err)
	}

	srv := server.New(c,
		idp,
		token.NewDecoder(idp.Verifier()),
		session.NewStore(c.GetCookieName(), c.GetCookieSecret(), c.GetSessionTTL()),
		userStore,
		servicetoken.NewManager(c.GetServiceTokenSecret()),
	)

	return srv, func() { _ = userStore.Close() }, nil
}

func setupLogging(c config.Config) {
	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
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
