package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Token store backends.
const (
	TokenStoreMemory = "memory"
	TokenStoreRedis  = "redis"
)

// Config holds runtime configuration values for the client and the dev backend.
type Config struct {
	AppName        string
	AppEnv         string
	AppPort        string
	APIBaseURL     string
	RequestTimeout time.Duration
	StrictEnvelope bool
	TokenStore     string
	TokenKey       string
	TokenTTL       time.Duration
	RedisURL       string
	LogLevel       zerolog.Level
	DatabaseURL    string
	JWTSecret      string
	AIProvider     string
	AIModel        string
	OpenAIAPIKey   string
}

// HTTPAddress returns the address the dev backend should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("KULTURA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	v.SetDefault("app.name", "Kultura")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("api.base_url", "http://localhost:8080/api/v1")
	v.SetDefault("api.timeout", "15s")
	v.SetDefault("api.strict_envelope", false)
	v.SetDefault("token.store", TokenStoreMemory)
	v.SetDefault("token.key", "auth_token")
	v.SetDefault("token.ttl", "720h")
	v.SetDefault("log.level", "info")
	v.SetDefault("jwt.secret", "kultura-dev-secret")
	v.SetDefault("ai.provider", "echo")
	v.SetDefault("ai.model", "gpt-4o-mini")

	timeout, err := time.ParseDuration(v.GetString("api.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid api timeout: %w", err)
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	ttl, err := time.ParseDuration(v.GetString("token.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid token ttl: %w", err)
	}

	level, err := zerolog.ParseLevel(strings.ToLower(v.GetString("log.level")))
	if err != nil {
		return Config{}, fmt.Errorf("invalid log level: %w", err)
	}

	cfg := Config{
		AppName:        v.GetString("app.name"),
		AppEnv:         v.GetString("app.env"),
		AppPort:        v.GetString("app.port"),
		APIBaseURL:     strings.TrimRight(v.GetString("api.base_url"), "/"),
		RequestTimeout: timeout,
		StrictEnvelope: v.GetBool("api.strict_envelope"),
		TokenStore:     strings.ToLower(v.GetString("token.store")),
		TokenKey:       v.GetString("token.key"),
		TokenTTL:       ttl,
		RedisURL:       v.GetString("redis.url"),
		LogLevel:       level,
		DatabaseURL:    v.GetString("database.url"),
		JWTSecret:      v.GetString("jwt.secret"),
		AIProvider:     strings.ToLower(v.GetString("ai.provider")),
		AIModel:        v.GetString("ai.model"),
		OpenAIAPIKey:   v.GetString("openai_api_key"),
	}

	if cfg.APIBaseURL == "" {
		return Config{}, fmt.Errorf("api base url must be provided")
	}

	switch cfg.TokenStore {
	case TokenStoreMemory:
	case TokenStoreRedis:
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("redis url must be provided for redis token store")
		}
	default:
		return Config{}, fmt.Errorf("unknown token store %q", cfg.TokenStore)
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	return cfg, nil
}
