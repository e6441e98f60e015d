package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func okPing(context.Context) error { return nil }

func TestHealth_AllUp(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	hc := NewHealthChecker(pingFunc(okPing), client, pingFunc(okPing))
	rec := httptest.NewRecorder()
	hc.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var status HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "up", status.Checks["redis"].Status)
	assert.Equal(t, "up", status.Checks["store"].Status)
	assert.Equal(t, "up", status.Checks["archive"].Status)
}

func TestReadiness_StoreDown(t *testing.T) {
	hc := NewHealthChecker(pingFunc(func(context.Context) error { return errors.New("table missing") }), nil, nil)
	rec := httptest.NewRecorder()
	hc.HandleReadiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ready":false`)
}

func TestDetermineOverallStatus(t *testing.T) {
	assert.Equal(t, "healthy", determineOverallStatus(map[string]ComponentCheck{
		"store": {Status: "up"},
		"redis": {Status: "down", Message: notConfigured},
	}))
	assert.Equal(t, "degraded", determineOverallStatus(map[string]ComponentCheck{
		"store":   {Status: "up"},
		"archive": {Status: "down", Message: "ping failed: denied"},
	}))
	assert.Equal(t, "unhealthy", determineOverallStatus(map[string]ComponentCheck{
		"store": {Status: "down", Message: "ping failed"},
	}))
}

func TestSafeErrorMessage(t *testing.T) {
	assert.Equal(t, "Service temporarily unavailable", safeErrorMessage(500, errors.New("dial tcp 10.0.0.1:6379: connection refused")))
	assert.Equal(t, "A storage error occurred", safeErrorMessage(500, errors.New("pq: relation missing")))
	assert.Equal(t, "Internal server error", safeErrorMessage(500, errors.New("boom")))
	assert.Equal(t, "bad field", safeErrorMessage(400, errors.New("bad field")))
}

func TestFormatUptime(t *testing.T) {
	assert.Equal(t, "5s", formatUptime(5e9))
	assert.Equal(t, "2m 5s", formatUptime(125e9))
}
