package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/kultura-go/internal/config"
	"github.com/noah-isme/kultura-go/internal/database"
	"github.com/noah-isme/kultura-go/internal/router"
	"github.com/noah-isme/kultura-go/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).Level(cfg.LogLevel).With().Timestamp().Str("service", cfg.AppName).Logger()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	if err := database.Seed(context.Background(), db, database.SeedOptions{
		DemoEmail:    os.Getenv("KULTURA_DEMO_EMAIL"),
		DemoPassword: os.Getenv("KULTURA_DEMO_PASSWORD"),
	}); err != nil {
		log.Fatalf("failed to seed database: %v", err)
	}

	responder, err := newResponder(cfg, logger)
	if err != nil {
		log.Fatalf("failed to create ai responder: %v", err)
	}

	app := router.NewServer(cfg, db, logger, router.ServerOptions{
		Responder: responder,
		AccessLog: cfg.AppEnv == "development",
	})

	go func() {
		logger.Info().Str("address", cfg.HTTPAddress()).Msg("dev backend listening")
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, logger)
}

func newResponder(cfg config.Config, logger zerolog.Logger) (ai.Responder, error) {
	if cfg.AIProvider != "openai" {
		return ai.NewEchoResponder(), nil
	}
	return ai.NewOpenAIResponder(ai.OpenAIConfig{
		APIKey: cfg.OpenAIAPIKey,
		Model:  cfg.AIModel,
		Logger: logger,
	})
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
