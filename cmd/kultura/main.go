package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/noah-isme/kultura-go/internal/app"
	"github.com/noah-isme/kultura-go/internal/config"
	"github.com/noah-isme/kultura-go/internal/dto"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(cfg.LogLevel).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := app.New(ctx, cfg, app.WithLogger(logger))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build client")
	}
	defer client.Close()

	email := os.Getenv("KULTURA_DEMO_EMAIL")
	password := os.Getenv("KULTURA_DEMO_PASSWORD")
	if email == "" || password == "" {
		logger.Fatal().Msg("KULTURA_DEMO_EMAIL and KULTURA_DEMO_PASSWORD must be set")
	}

	user, err := client.Login(ctx, dto.LoginRequest{Email: email, Password: password})
	if err != nil {
		logger.Fatal().Err(err).Msg("login failed")
	}
	logger.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("signed in")

	if err := client.LoadHome(ctx); err != nil {
		logger.Error().Err(err).Msg("home screen did not load completely")
	}

	events := client.Events.State()
	logger.Info().
		Int("events", len(events.Events)).
		Int64("events_total", events.Pagination.Total).
		Int("trending", len(events.Trending)).
		Int("provinces", len(client.Provinces.Items())).
		Int("badges", len(client.Badges.State().Catalog)).
		Msg("home loaded")

	if err := client.Logout(ctx); err != nil {
		logger.Warn().Err(err).Msg("logout did not reach the server")
	}
}
