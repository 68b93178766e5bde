package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kultura-go/internal/apperror"
	"github.com/noah-isme/kultura-go/internal/models"
	"github.com/noah-isme/kultura-go/internal/tokenstore"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, strict bool) (*Client, *tokenstore.MemoryStore) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	tokens := tokenstore.NewMemoryStore()
	client, err := New(Options{
		BaseURL:        server.URL + "/api/v1",
		Timeout:        time.Second,
		Tokens:         tokens,
		StrictEnvelope: strict,
		Logger:         zerolog.Nop(),
	})
	require.NoError(t, err)
	return client, tokens
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestDoAttachesBearerTokenAndDecodes(t *testing.T) {
	var seen *http.Request
	client, tokens := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = r
		writeJSON(w, http.StatusOK, `{"success":true,"data":[{"id":"e1","name":"Festival"}],"metadata":{"pagination":{"total":1,"page":1,"per_page":20,"total_pages":1,"has_next_page":false}}}`)
	}, false)
	require.NoError(t, tokens.Set(context.Background(), "t1"))

	env := client.Do(context.Background(), http.MethodGet, "/events", nil, WithQuery(url.Values{"page": {"1"}}))
	require.True(t, env.Success)
	require.Equal(t, http.StatusOK, env.Status)
	require.NotNil(t, env.Pagination())
	require.Equal(t, int64(1), env.Pagination().Total)

	events, err := Decode[[]models.Event](env)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "Festival", events[0].Name)

	require.Equal(t, "/api/v1/events", seen.URL.Path)
	require.Equal(t, "1", seen.URL.Query().Get("page"))
	require.Equal(t, "Bearer t1", seen.Header.Get("Authorization"))
	require.NotEmpty(t, seen.Header.Get("X-Correlation-ID"))
}

func TestDoWithoutAuthSkipsToken(t *testing.T) {
	var authHeader string
	var payload map[string]string
	client, tokens := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&payload)
		writeJSON(w, http.StatusOK, `{"success":true,"data":{"token":"t2"}}`)
	}, false)
	require.NoError(t, tokens.Set(context.Background(), "t1"))

	env := client.Do(context.Background(), http.MethodPost, "auth/login", map[string]string{"email": "a@b.com"}, WithoutAuth())
	require.True(t, env.Success)
	require.Empty(t, authHeader)
	require.Equal(t, "a@b.com", payload["email"])
}

func TestDoClearsTokenOnUnauthorized(t *testing.T) {
	client, tokens := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"success":false,"data":null,"message":"invalid token","error":"UNAUTHORIZED"}`)
	}, false)
	ctx := context.Background()
	require.NoError(t, tokens.Set(ctx, "expired"))

	env := client.Do(ctx, http.MethodGet, "/profile/me", nil)
	require.False(t, env.Success)

	err := env.Err()
	require.True(t, apperror.IsKind(err, apperror.KindAuth))
	require.Equal(t, "invalid token", apperror.Message(err))

	token, err := tokens.Get(ctx)
	require.NoError(t, err)
	require.Empty(t, token)
}

func TestDoNetworkErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	client, err := New(Options{BaseURL: baseURL, Logger: zerolog.Nop()})
	require.NoError(t, err)

	env := client.Do(context.Background(), http.MethodGet, "/events", nil)
	require.False(t, env.Success)
	require.Equal(t, 0, env.Status)
	require.Equal(t, "Network error", env.Message)
	require.Equal(t, "Network error", env.Error)
	require.Nil(t, env.Data)
	require.True(t, apperror.IsKind(env.Err(), apperror.KindNetwork))
}

func TestDoTimeoutIsNetworkError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
		writeJSON(w, http.StatusOK, `{"success":true,"data":{}}`)
	}, false)

	env := client.Do(context.Background(), http.MethodGet, "/slow", nil)
	require.True(t, apperror.IsKind(env.Err(), apperror.KindNetwork))
}

func TestDoClassifiesNotFound(t *testing.T) {
	cases := map[string]struct {
		status int
		body   string
	}{
		"status":         {http.StatusNotFound, `{"success":false,"data":null,"message":"Thread not found","error":"NOT_FOUND"}`},
		"code":           {http.StatusBadRequest, `{"success":false,"data":null,"message":"nothing here","error":"NOT_FOUND"}`},
		"legacy message": {http.StatusBadRequest, `{"success":false,"data":null,"message":"Thread not found"}`},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tc.status, tc.body)
			}, false)

			env := client.Do(context.Background(), http.MethodGet, "/threads/event/e1", nil)
			require.True(t, apperror.IsKind(env.Err(), apperror.KindNotFound))
		})
	}
}

func TestDoEchoesServerErrorFields(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, `{"success":false,"data":{"leak":true},"message":"name is required","error":"VALIDATION_ERROR","details":{"field":"name"}}`)
	}, false)

	env := client.Do(context.Background(), http.MethodPost, "/events", map[string]string{})
	require.False(t, env.Success)
	require.Nil(t, env.Data)

	appErr := apperror.From(env.Err())
	require.Equal(t, apperror.KindAPI, appErr.Kind)
	require.Equal(t, "VALIDATION_ERROR", appErr.Code)
	require.Equal(t, http.StatusUnprocessableEntity, appErr.Status)
	require.JSONEq(t, `{"field":"name"}`, string(appErr.Details))
}

func TestEnvelopeInvariantSuccessRequiresData(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true,"data":null}`)
	}, false)

	env := client.Do(context.Background(), http.MethodGet, "/events/e1", nil)
	require.False(t, env.Success)
	require.Equal(t, CodeInvalidEnvelope, env.Error)
}

func TestEnvelopeNon2xxIsNeverSuccess(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, `{"success":true,"data":{"id":"x"}}`)
	}, false)

	env := client.Do(context.Background(), http.MethodGet, "/events/e1", nil)
	require.False(t, env.Success)
	require.Nil(t, env.Data)
}

func TestEnvelopeGarbageBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}, false)

	env := client.Do(context.Background(), http.MethodGet, "/events", nil)
	require.False(t, env.Success)
	require.Equal(t, http.StatusBadGateway, env.Status)
	require.Equal(t, "Bad Gateway", env.Message)
	require.True(t, apperror.IsKind(env.Err(), apperror.KindAPI))
}

func TestStrictEnvelopeRejectsMalformedPagination(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true,"data":[],"metadata":{"pagination":{"page":0}}}`)
	}, true)

	env := client.Do(context.Background(), http.MethodGet, "/events", nil)
	require.False(t, env.Success)
	require.Equal(t, CodeInvalidEnvelope, env.Error)
}

func TestStrictEnvelopeAcceptsWellFormed(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true,"data":[],"message":"events"}`)
	}, true)

	env := client.Do(context.Background(), http.MethodGet, "/events", nil)
	require.True(t, env.Success)
}

func TestDecodeReportsPayloadMismatch(t *testing.T) {
	env := Envelope{Success: true, Data: json.RawMessage(`"not an object"`), Status: http.StatusOK}
	_, err := Decode[models.Event](env)
	require.Error(t, err)
	require.Equal(t, CodeInvalidEnvelope, apperror.From(err).Code)
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
}
