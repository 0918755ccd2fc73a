package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fleetwatch/safety-alerts-api/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopDispatcher struct{}

func (noopDispatcher) Dispatch(raw json.RawMessage) error { return nil }

func TestCreateFiberApp_ServiceRoutes(t *testing.T) {
	t.Parallel()

	settings := &config.Settings{
		ServiceName:   "safety-alerts-api",
		WebhookSecret: "secret",
	}
	app, err := CreateFiberApp(zerolog.Nop(), noopDispatcher{}, settings)
	require.NoError(t, err)

	t.Run("root reports the service", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "ok", body["status"])
		assert.Equal(t, "safety-alerts-api", body["service"])
	})

	t.Run("health endpoint", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("webhook route rejects unsigned requests", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/webhook/motive", nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
