package utils_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kultura-go/internal/models"
	"github.com/noah-isme/kultura-go/internal/utils"
)

func TestPaginatedIncludesMetadata(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return utils.Paginated(c, []string{"a"}, models.NewPagination(3, 1, 1), "")
	})

	resp := performRequest(t, app, http.MethodGet, "/")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Success  bool     `json:"success"`
		Message  string   `json:"message"`
		Data     []string `json:"data"`
		Metadata struct {
			Pagination models.Pagination `json:"pagination"`
		} `json:"metadata"`
	}
	decode(t, resp, &payload)

	require.True(t, payload.Success)
	require.Equal(t, "success", payload.Message)
	require.Equal(t, []string{"a"}, payload.Data)
	require.Equal(t, 3, payload.Metadata.Pagination.TotalPages)
	require.True(t, payload.Metadata.Pagination.HasNextPage)
}

func TestFailIncludesCodeAndNullData(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		details := map[string]string{"field": "content"}
		return utils.Fail(c, fiber.StatusBadRequest, utils.CodeValidation, "invalid payload", details)
	})
	app.Get("/missing", func(c *fiber.Ctx) error {
		return utils.SendError(c, fiber.StatusNotFound, "Thread not found")
	})

	resp := performRequest(t, app, http.MethodGet, "/")
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var payload map[string]interface{}
	decode(t, resp, &payload)
	require.Equal(t, false, payload["success"])
	require.Equal(t, "VALIDATION_ERROR", payload["error"])
	require.Equal(t, "content", payload["details"].(map[string]interface{})["field"])
	require.Contains(t, payload, "data")
	require.Nil(t, payload["data"])

	resp = performRequest(t, app, http.MethodGet, "/missing")
	payload = nil
	decode(t, resp, &payload)
	require.Equal(t, "NOT_FOUND", payload["error"])
}

func performRequest(t *testing.T, app *fiber.App, method, path string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}
