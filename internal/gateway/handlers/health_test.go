package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readiness(t *testing.T, widgetsURL string) int {
	t.Helper()
	app := fiber.New()
	app.Get("/health/ready", ReadinessProbe(widgetsURL))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	return resp.StatusCode
}

func TestReadinessProbe(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health/ready", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer healthy.Close()
	assert.Equal(t, http.StatusOK, readiness(t, healthy.URL))

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer failing.Close()
	assert.Equal(t, http.StatusServiceUnavailable, readiness(t, failing.URL))

	down := httptest.NewServer(http.NotFoundHandler())
	down.Close()
	assert.Equal(t, http.StatusServiceUnavailable, readiness(t, down.URL))
}
