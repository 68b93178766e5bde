package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/kultura-go/internal/apperror"
	"github.com/noah-isme/kultura-go/internal/observability"
	"github.com/noah-isme/kultura-go/internal/tokenstore"
)

const (
	defaultTimeout  = 15 * time.Second
	maxResponseSize = 8 << 20
)

// Requester is the single entry point services use to reach the backend.
type Requester interface {
	Do(ctx context.Context, method, path string, body any, opts ...RequestOption) Envelope
}

type requestOptions struct {
	query    url.Values
	headers  map[string]string
	skipAuth bool
}

// RequestOption customises a single request.
type RequestOption func(*requestOptions)

// WithQuery appends query parameters to the request URL.
func WithQuery(values url.Values) RequestOption {
	return func(o *requestOptions) {
		o.query = values
	}
}

// WithHeader sets an additional request header.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		if o.headers == nil {
			o.headers = map[string]string{}
		}
		o.headers[key] = value
	}
}

// WithoutAuth skips the bearer token, for login and registration.
func WithoutAuth() RequestOption {
	return func(o *requestOptions) {
		o.skipAuth = true
	}
}

// Options configures a Client.
type Options struct {
	BaseURL        string
	Timeout        time.Duration
	Tokens         tokenstore.Store
	HTTPClient     *http.Client
	StrictEnvelope bool
	Logger         zerolog.Logger
}

// Client performs single-attempt JSON requests against the backend and always returns an Envelope.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	tokens  tokenstore.Store
	strict  bool
	logger  zerolog.Logger
	tracer  trace.Tracer
}

// New builds a Client. The timeout applies to every request made through it.
func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, fmt.Errorf("api base url is required")
	}
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if httpClient.Timeout == 0 {
		clone := *httpClient
		clone.Timeout = timeout
		httpClient = &clone
	}

	tokens := opts.Tokens
	if tokens == nil {
		tokens = tokenstore.NewMemoryStore()
	}

	return &Client{
		baseURL: base,
		http:    httpClient,
		tokens:  tokens,
		strict:  opts.StrictEnvelope,
		logger:  opts.Logger.With().Str("component", "api_client").Logger(),
		tracer:  otel.Tracer("github.com/noah-isme/kultura-go/internal/apiclient"),
	}, nil
}

// Tokens returns the token store the client reads from.
func (c *Client) Tokens() tokenstore.Store {
	return c.tokens
}

// Do sends one request. HTTP and transport failures are reported inside the returned Envelope.
func (c *Client) Do(ctx context.Context, method, path string, body any, opts ...RequestOption) Envelope {
	options := requestOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	correlationID := uuid.NewString()
	ctx, span := c.tracer.Start(ctx, "apiclient.request", trace.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.path", path),
		attribute.String("correlation_id", correlationID),
	))
	defer span.End()

	start := time.Now()
	env := c.do(ctx, method, path, body, options, correlationID)
	duration := time.Since(start)

	statusLabel := "network"
	if env.Status != 0 {
		statusLabel = strconv.Itoa(env.Status)
	}
	observability.ClientRequests().WithLabelValues(method, statusLabel).Inc()
	observability.ClientLatency().WithLabelValues(method).Observe(duration.Seconds())

	span.SetAttributes(attribute.Int("http.status_code", env.Status))
	logEvent := c.logger.Debug()
	if !env.Success {
		span.SetStatus(codes.Error, env.Message)
		logEvent = c.logger.Warn().Str("error", env.Error)
	}
	logEvent.
		Str("method", method).
		Str("path", path).
		Int("status", env.Status).
		Str("correlation_id", correlationID).
		Dur("latency", duration).
		Msg("api request completed")

	return env
}

func (c *Client) do(ctx context.Context, method, path string, body any, options requestOptions, correlationID string) Envelope {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return failureEnvelope(0, apperror.KindValidation, CodeInvalidRequest, "failed to encode request", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path, options.query), reader)
	if err != nil {
		return failureEnvelope(0, apperror.KindValidation, CodeInvalidRequest, "failed to build request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Correlation-ID", correlationID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range options.headers {
		req.Header.Set(key, value)
	}

	if !options.skipAuth {
		token, err := c.tokens.Get(ctx)
		if err != nil {
			c.logger.Warn().Err(err).Msg("failed to read auth token, sending request anonymously")
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return networkEnvelope(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return networkEnvelope(err)
		}
		return failureEnvelope(resp.StatusCode, apperror.KindAPI, CodeInvalidEnvelope, "failed to read response", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if err := c.tokens.Clear(ctx); err != nil {
			c.logger.Warn().Err(err).Msg("failed to clear auth token after 401")
		}
	}

	return parseEnvelope(resp.StatusCode, raw, c.strict)
}

func (c *Client) resolve(path string, query url.Values) string {
	target := *c.baseURL
	target.Path = strings.TrimRight(c.baseURL.Path, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}
	return target.String()
}
