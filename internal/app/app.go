// Package app wires the API client, services and state containers into one
// client application and owns the session lifecycle.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/kultura-go/internal/apiclient"
	"github.com/noah-isme/kultura-go/internal/apperror"
	"github.com/noah-isme/kultura-go/internal/config"
	"github.com/noah-isme/kultura-go/internal/database"
	"github.com/noah-isme/kultura-go/internal/discussion"
	"github.com/noah-isme/kultura-go/internal/dto"
	"github.com/noah-isme/kultura-go/internal/models"
	"github.com/noah-isme/kultura-go/internal/service"
	"github.com/noah-isme/kultura-go/internal/store"
	"github.com/noah-isme/kultura-go/internal/tokenstore"
)

// Services groups the domain services.
type Services struct {
	Auth      service.AuthService
	Users     service.UserService
	Events    service.EventService
	Provinces service.ProvinceService
	Cities    service.CityService
	Locations service.LocationService
	Threads   service.ThreadService
	Messages  service.MessageService
	Badges    service.BadgeService
	Search    service.SearchService
	Ai        service.AiService
}

// App is the client application. It is built once and holds every container.
type App struct {
	Client   *apiclient.Client
	Tokens   tokenstore.Store
	Services Services

	Auth      *store.AuthStore
	Profile   *store.ProfileStore
	Events    *store.EventStore
	Provinces *store.ListStore[models.Province]
	Cities    *store.ListStore[models.City]
	Locations *store.ListStore[models.Location]
	Badges    *store.BadgeStore
	Search    *store.SearchStore
	Ai        *store.AiStore
	Gate      *discussion.Gate
	Room      *discussion.Room

	notifier store.Notifier
	redis    *redis.Client
	logger   zerolog.Logger
}

type options struct {
	tokens     tokenstore.Store
	httpClient *http.Client
	auth       func(api apiclient.Requester, tokens tokenstore.Store) service.AuthService
	notifier   store.Notifier
	logger     zerolog.Logger
}

// Option customises New.
type Option func(*options)

// WithTokenStore overrides the token store selected by configuration.
func WithTokenStore(tokens tokenstore.Store) Option {
	return func(o *options) {
		o.tokens = tokens
	}
}

// WithHTTPClient sets the HTTP client used by the API client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithAuthService replaces the REST auth service, e.g. with service.NewMemoryAuthService.
func WithAuthService(build func(api apiclient.Requester, tokens tokenstore.Store) service.AuthService) Option {
	return func(o *options) {
		o.auth = build
	}
}

// WithNotifier sets where store errors are surfaced. The default logs them.
func WithNotifier(notifier store.Notifier) Option {
	return func(o *options) {
		o.notifier = notifier
	}
}

// WithLogger sets the root logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New builds the App from configuration.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{logger: o.logger.With().Str("component", "app").Logger()}

	tokens := o.tokens
	if tokens == nil {
		switch cfg.TokenStore {
		case config.TokenStoreRedis:
			client, err := database.ConnectRedis(ctx, cfg.RedisURL)
			if err != nil {
				return nil, fmt.Errorf("token store: %w", err)
			}
			a.redis = client
			tokens = tokenstore.NewRedisStore(client, cfg.TokenKey, cfg.TokenTTL, o.logger)
		default:
			tokens = tokenstore.NewMemoryStore()
		}
	}
	a.Tokens = tokens

	client, err := apiclient.New(apiclient.Options{
		BaseURL:        cfg.APIBaseURL,
		Timeout:        cfg.RequestTimeout,
		Tokens:         tokens,
		HTTPClient:     o.httpClient,
		StrictEnvelope: cfg.StrictEnvelope,
		Logger:         o.logger,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Client = client

	validate := service.NewValidator()
	auth := service.NewAuthService(client, tokens, validate, o.logger)
	if o.auth != nil {
		auth = o.auth(client, tokens)
	}
	a.Services = Services{
		Auth:      auth,
		Users:     service.NewUserService(client, validate, o.logger),
		Events:    service.NewEventService(client, validate, o.logger),
		Provinces: service.NewProvinceService(client),
		Cities:    service.NewCityService(client),
		Locations: service.NewLocationService(client, validate, o.logger),
		Threads:   service.NewThreadService(client, validate, o.logger),
		Messages:  service.NewMessageService(client, validate, o.logger),
		Badges:    service.NewBadgeService(client),
		Search:    service.NewSearchService(client, validate),
		Ai:        service.NewAiService(client, validate, o.logger),
	}

	notifier := o.notifier
	if notifier == nil {
		notifier = store.LogNotifier(o.logger)
	}
	a.notifier = notifier

	svc := a.Services
	a.Auth = store.NewAuthStore(svc.Auth, notifier, o.logger)
	a.Profile = store.NewProfileStore(svc.Users, notifier, o.logger)
	a.Events = store.NewEventStore(svc.Events, notifier, o.logger)
	a.Provinces = store.NewListStore[models.Province]("provinces", func(ctx context.Context, _ string) ([]models.Province, error) {
		return svc.Provinces.List(ctx)
	}, notifier, o.logger)
	a.Cities = store.NewListStore[models.City]("cities", svc.Cities.List, notifier, o.logger)
	a.Locations = store.NewListStore[models.Location]("locations", svc.Locations.List, notifier, o.logger)
	a.Badges = store.NewBadgeStore(svc.Badges, notifier, o.logger)
	a.Search = store.NewSearchStore(svc.Search, notifier, o.logger)
	a.Ai = store.NewAiStore(svc.Ai, notifier, o.logger)
	a.Gate = discussion.NewGate(svc.Threads, notifier, o.logger)
	a.Room = discussion.NewRoom(a.Gate, svc.Messages, notifier, o.logger)

	return a, nil
}

// Close releases connections opened by New.
func (a *App) Close() error {
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}

// Login signs in and loads the profile. A profile failure is reported but does not fail the login.
func (a *App) Login(ctx context.Context, payload dto.LoginRequest) (models.User, error) {
	user, err := a.Auth.Login(ctx, payload)
	if err != nil {
		return models.User{}, err
	}
	a.loadProfile(ctx)
	return user, nil
}

// Register creates an account and loads its profile.
func (a *App) Register(ctx context.Context, payload dto.RegisterRequest) (models.User, error) {
	user, err := a.Auth.Register(ctx, payload)
	if err != nil {
		return models.User{}, err
	}
	a.loadProfile(ctx)
	return user, nil
}

// Logout ends the session, clears the token and resets every container.
// Responses still in flight are discarded when they arrive.
func (a *App) Logout(ctx context.Context) error {
	err := a.Auth.Logout(ctx)
	a.resetAll()
	a.logger.Info().Msg("signed out")
	return err
}

// LoadHome fetches the home screen data concurrently. The fetches are
// independent: a failure in one does not cancel the others.
func (a *App) LoadHome(ctx context.Context) error {
	var group errgroup.Group
	groupCtx := ctx
	group.Go(func() error {
		_, err := a.Events.FetchEvents(groupCtx, dto.EventQuery{})
		return err
	})
	group.Go(func() error {
		_, err := a.Events.FetchTrending(groupCtx)
		return err
	})
	group.Go(func() error {
		_, err := a.Provinces.Fetch(groupCtx, "")
		return err
	})
	group.Go(func() error {
		_, err := a.Badges.FetchCatalog(groupCtx)
		return err
	})
	return group.Wait()
}

// Resume refreshes the session when the app returns to the foreground.
// A rejected session signs the user out locally.
func (a *App) Resume(ctx context.Context) error {
	token, err := a.Tokens.Get(ctx)
	if err != nil {
		return apperror.From(fmt.Errorf("read token: %w", err))
	}
	if token == "" {
		return nil
	}

	if _, err := a.Auth.Refresh(ctx); err != nil {
		if apperror.IsKind(err, apperror.KindAuth) {
			if clearErr := a.Tokens.Clear(ctx); clearErr != nil {
				a.logger.Warn().Err(clearErr).Msg("failed to clear rejected token")
			}
			a.resetAll()
		}
		return err
	}
	return nil
}

func (a *App) loadProfile(ctx context.Context) {
	if _, err := a.Profile.FetchMyProfile(ctx); err != nil {
		a.logger.Debug().Err(err).Msg("profile not loaded")
	}
}

func (a *App) resetAll() {
	a.Auth.Reset()
	a.Profile.Reset()
	a.Events.Reset()
	a.Provinces.Reset()
	a.Cities.Reset()
	a.Locations.Reset()
	a.Badges.Reset()
	a.Search.Reset()
	a.Ai.Reset()
	a.Room.Reset()
	a.Gate.Reset()
}
