package router

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type healthBody struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func getHealth(t *testing.T, checks map[string]HealthCheck) (int, healthBody) {
	t.Helper()
	app := fiber.New()
	setup(app, NewSystemRouter(checks, nil))

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/system/health", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var body healthBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestHealth(t *testing.T) {
	ok := func() error { return nil }

	status, body := getHealth(t, map[string]HealthCheck{"database": ok, "cache": ok})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "ok", body.Checks["cache"])

	status, body = getHealth(t, map[string]HealthCheck{
		"database": ok,
		"cache":    func() error { return errors.New("dial tcp: connection refused") },
	})
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "ok", body.Checks["database"])
	assert.Equal(t, "dial tcp: connection refused", body.Checks["cache"])
}

func TestMetrics_BasicAuth(t *testing.T) {
	app := fiber.New()
	setup(app, NewSystemRouter(nil, map[string]string{"prom": "secret"}))

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(fiber.MethodGet, "/metrics", nil)
	req.SetBasicAuth("prom", "secret")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
