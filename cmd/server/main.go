package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/studyhub/studyhub-auth/auth"
	"github.com/studyhub/studyhub-auth/identity"
	"github.com/studyhub/studyhub-auth/internal/config"
	"github.com/studyhub/studyhub-auth/internal/postgres"
	"github.com/studyhub/studyhub-auth/keyexchange"
	memberspg "github.com/studyhub/studyhub-auth/members/postgres"
	"github.com/studyhub/studyhub-auth/migrations"
	"github.com/studyhub/studyhub-auth/server"
	"github.com/studyhub/studyhub-auth/token"
	refreshpg "github.com/studyhub/studyhub-auth/token/refresh/postgres"
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

	c := config.New()
	setupLogging(c.GetEnv())
	displayAppname(c.GetAppName())

	secret := c.GetJWTSecret()
	if secret == "" {
		return errors.New("JWT_SECRET must be set")
	}

	ctx := context.Background()

	if err := runMigrations(c.GetDatabaseURL()); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	db, err := postgres.New(ctx, postgres.Config{
		URL:          c.GetDatabaseURL(),
		QueryTimeout: 3 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer db.Close()

	codec := token.NewCodec(secret)
	validator := token.NewValidator(codec)
	memberRepo := memberspg.NewMemberRepo(db)

	sessions, err := auth.NewSessionService(auth.Deps{
		Codec:         codec,
		Validator:     validator,
		RefreshTokens: refreshpg.NewRefreshRepo(db),
		Members:       memberRepo,
	}, auth.WithTokenTTLs(c.GetAccessTokenTTL(), c.GetRefreshTokenTTL(), c.GetVerificationTokenTTL()))
	if err != nil {
		return fmt.Errorf("session service: %w", err)
	}

	deps := server.Deps{
		Sessions:    sessions,
		Validator:   validator,
		Members:     memberRepo,
		KeyExchange: keyexchange.NewService(),
	}

	if c.GetOIDCClientID() != "" {
		verifier, err := identity.NewOIDCVerifier(ctx, c)
		if err != nil {
			return fmt.Errorf("oidc verifier: %w", err)
		}
		deps.Identity = verifier
	}

	srv, err := server.New(c, deps)
	if err != nil {
		return fmt.Errorf("server: %w", err)
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: srv}
	go listenAndServe(httpServer)
	waitForStopSignal()
	return shutdown(httpServer)
}

func runMigrations(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("sql.Open: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.Up(db, ".")
}

func listenAndServe(httpServer *http.Server) {
	log.Info().Str("addr", httpServer.Addr).Msg("Server listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server.ListenAndServe")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(httpServer *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func setupLogging(env string) {
	if env == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
