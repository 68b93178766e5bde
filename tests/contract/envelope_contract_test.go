package contract_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kultura-go/internal/apiclient"
	"github.com/noah-isme/kultura-go/internal/config"
	"github.com/noah-isme/kultura-go/internal/database"
	"github.com/noah-isme/kultura-go/internal/router"
)

type rawEnvelope struct {
	Success  bool            `json:"success"`
	Data     json.RawMessage `json:"data"`
	Message  string          `json:"message"`
	Error    string          `json:"error"`
	Metadata *struct {
		Pagination json.RawMessage `json:"pagination"`
	} `json:"metadata"`
}

func setupServer(t *testing.T) *fiber.App {
	t.Helper()
	db, err := database.ConnectSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.Seed(context.Background(), db, database.SeedOptions{
		DemoEmail:    "demo@kultura.id",
		DemoPassword: "sekaten2026",
	}))

	cfg := config.Config{AppName: "Kultura", AppEnv: "test", JWTSecret: "contract-secret", TokenTTL: time.Hour}
	return router.NewServer(cfg, db, zerolog.Nop(), router.ServerOptions{})
}

func call(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func assertEnvelope(t *testing.T, method, path string, status int, raw []byte) rawEnvelope {
	t.Helper()
	require.NoError(t, apiclient.ValidateEnvelope(raw), "%s %s returned %s", method, path, raw)

	var env rawEnvelope
	require.NoError(t, json.Unmarshal(raw, &env))
	if status >= 200 && status < 300 {
		require.True(t, env.Success, "%s %s", method, path)
		require.NotEqual(t, "null", string(env.Data), "%s %s", method, path)
	} else {
		require.False(t, env.Success, "%s %s", method, path)
		require.True(t, len(env.Data) == 0 || string(env.Data) == "null", "%s %s", method, path)
		require.NotEmpty(t, env.Error, "%s %s", method, path)
		require.NotEmpty(t, env.Message, "%s %s", method, path)
	}
	return env
}

func TestEveryEndpointReturnsTheEnvelope(t *testing.T) {
	app := setupServer(t)

	status, raw := call(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "demo@kultura.id",
		"password": "sekaten2026",
	})
	require.Equal(t, fiber.StatusOK, status)
	env := assertEnvelope(t, http.MethodPost, "/api/v1/auth/login", status, raw)
	var auth struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &auth))
	require.NotEmpty(t, auth.Token)

	status, raw = call(t, app, http.MethodGet, "/api/v1/events?per_page=1", "", nil)
	env = assertEnvelope(t, http.MethodGet, "/api/v1/events", status, raw)
	require.NotNil(t, env.Metadata)
	var events []struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &events))
	require.Len(t, events, 1)
	eventID := events[0].ID

	cases := []struct {
		method string
		path   string
		token  string
		body   interface{}
		status int
	}{
		{http.MethodGet, "/health", "", nil, fiber.StatusOK},
		{http.MethodGet, "/api/v1/auth/me", auth.Token, nil, fiber.StatusOK},
		{http.MethodGet, "/api/v1/auth/me", "", nil, fiber.StatusUnauthorized},
		{http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "demo@kultura.id", "password": "nope-nope"}, fiber.StatusUnauthorized},
		{http.MethodPost, "/api/v1/auth/register", "", map[string]string{"email": "not-an-email"}, fiber.StatusBadRequest},
		{http.MethodGet, "/api/v1/profile/me", auth.Token, nil, fiber.StatusOK},
		{http.MethodGet, "/api/v1/events/trending", "", nil, fiber.StatusOK},
		{http.MethodGet, "/api/v1/events/" + eventID, "", nil, fiber.StatusOK},
		{http.MethodGet, "/api/v1/events/missing", "", nil, fiber.StatusNotFound},
		{http.MethodGet, "/api/v1/events?page=abc", "", nil, fiber.StatusBadRequest},
		{http.MethodGet, "/api/v1/provinces", "", nil, fiber.StatusOK},
		{http.MethodGet, "/api/v1/cities", "", nil, fiber.StatusOK},
		{http.MethodGet, "/api/v1/locations", "", nil, fiber.StatusOK},
		{http.MethodGet, "/api/v1/badges", "", nil, fiber.StatusOK},
		{http.MethodGet, "/api/v1/search?q=kecak", "", nil, fiber.StatusOK},
		{http.MethodGet, "/api/v1/search", "", nil, fiber.StatusBadRequest},
		{http.MethodGet, "/api/v1/threads/event/" + eventID, auth.Token, nil, fiber.StatusNotFound},
		{http.MethodPost, "/api/v1/threads", auth.Token, map[string]string{"event_id": eventID}, fiber.StatusCreated},
		{http.MethodGet, "/api/v1/threads/event/" + eventID, auth.Token, nil, fiber.StatusOK},
		{http.MethodPost, "/api/v1/messages", auth.Token, map[string]string{"thread_id": "missing", "content": "halo"}, fiber.StatusNotFound},
		{http.MethodDelete, "/api/v1/messages/missing", auth.Token, nil, fiber.StatusNotFound},
		{http.MethodPost, "/api/v1/badges/award", auth.Token, map[string]string{"user_id": "x", "badge_id": "explorer"}, fiber.StatusForbidden},
		{http.MethodPost, "/api/v1/auth/logout", auth.Token, nil, fiber.StatusOK},
		{http.MethodGet, "/api/v1/unknown", "", nil, fiber.StatusNotFound},
	}

	for _, tc := range cases {
		status, raw := call(t, app, tc.method, tc.path, tc.token, tc.body)
		require.Equal(t, tc.status, status, "%s %s returned %s", tc.method, tc.path, raw)
		assertEnvelope(t, tc.method, tc.path, status, raw)
	}
}

func TestMissingThreadIsReportedAsNotFound(t *testing.T) {
	app := setupServer(t)

	status, raw := call(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "demo@kultura.id",
		"password": "sekaten2026",
	})
	require.Equal(t, fiber.StatusOK, status)
	var env struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &env))

	status, raw = call(t, app, http.MethodGet, "/api/v1/threads/event/nope", env.Data.Token, nil)
	require.Equal(t, fiber.StatusNotFound, status)

	var failure rawEnvelope
	require.NoError(t, json.Unmarshal(raw, &failure))
	require.Equal(t, "NOT_FOUND", failure.Error)
	require.Equal(t, "Thread not found", failure.Message)
}
