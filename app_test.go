package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkpoint-rewards/config"
	"checkpoint-rewards/observability"
	"checkpoint-rewards/services"
	"checkpoint-rewards/storage/memory"
)

func testServices(t *testing.T) appServices {
	t.Helper()
	stores := memory.NewStores()
	metrics := observability.NewMetrics("test", prometheus.NewRegistry())

	transfers, err := services.NewTransferService(nil, "", "", nil, metrics)
	require.NoError(t, err)
	cache := services.NewEventCache(nil, common.Address{})

	return appServices{
		players:     services.NewPlayerService(stores.Players),
		checkins:    services.NewCheckinService(stores.Players, stores.Activities, services.WithCheckinMetrics(metrics)),
		checkpoints: services.NewCheckpointService(stores.Checkpoints),
		rewards:     services.NewEventRewardService(stores.EventRewards, stores.Players, stores.Activities, metrics),
		events:      services.NewEventQueryService(cache, nil, nil, nil),
		transfers:   transfers,
		metrics:     metrics,
	}
}

func testConfig(token string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			AllowedOrigins: []string{"*"},
			GatewayToken:   token,
			BodyLimit:      1 << 20,
		},
		Admin: config.AdminConfig{Emails: []string{"boss@example.com"}},
	}
}

func get(t *testing.T, app interface {
	Test(*http.Request, ...int) (*http.Response, error)
}, path string, headers ...string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestNewApp_GatewayToken(t *testing.T) {
	app := newApp(testConfig("s3cret"), testServices(t))

	status, _ := get(t, app, "/api/player?walletAddress=0x00000000000000000000000000000000000000a1")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = get(t, app, "/api/player?walletAddress=0x00000000000000000000000000000000000000a1",
		"Authorization", "Bearer wrong")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = get(t, app, "/api/player?walletAddress=0x00000000000000000000000000000000000000a1",
		"Authorization", "Bearer s3cret")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestNewApp_ProbesSkipGateway(t *testing.T) {
	app := newApp(testConfig("s3cret"), testServices(t))

	status, body := get(t, app, "/health")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body)

	status, body = get(t, app, "/metrics")
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, strings.Contains(body, "test_event_cache_events"), "expected namespaced metrics")
}

func TestNewApp_AdminGroup(t *testing.T) {
	app := newApp(testConfig(""), testServices(t))

	status, _ := get(t, app, "/api/admin/checkpoints")
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = get(t, app, "/api/admin/checkpoints", "X-User-Email", "boss@example.com")
	assert.Equal(t, http.StatusOK, status)
}

func TestNewApp_EventsWithoutRPC(t *testing.T) {
	app := newApp(testConfig(""), testServices(t))

	status, body := get(t, app, "/api/checkin-events")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Contains(t, body, "Failed to fetch CheckIn events")
}

func TestContainsWildcard(t *testing.T) {
	assert.True(t, containsWildcard([]string{"https://a.example", "*"}))
	assert.False(t, containsWildcard([]string{"https://a.example"}))
	assert.False(t, containsWildcard(nil))
}
