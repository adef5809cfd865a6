package api

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traceview/traceview-backend/internal/config"
	"github.com/traceview/traceview-backend/internal/models"
	"github.com/traceview/traceview-backend/internal/services"
)

const testTranscript = `{"timestamp":"2024-03-01T10:00:00Z","type":"session_meta","payload":{"id":"abc","timestamp":"2024-03-01T10:00:00Z","cwd":"/tmp","originator":"cli"}}
{"timestamp":"2024-03-01T10:00:01Z","type":"response_item","payload":{"type":"message","role":"user","content":[{"type":"input_text","text":"hello"}]}}
{"timestamp":"2024-03-01T10:00:02Z","type":"response_item","payload":{"type":"function_call","name":"shell","arguments":"{}","call_id":"1"}}
`

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	logDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(logDir, "abc.jsonl"), []byte(testTranscript), 0o644))

	log := logrus.New()
	log.SetOutput(io.Discard)

	cfg := &config.Config{
		Logs:  config.LogsConfig{Dir: logDir},
		Cache: config.CacheConfig{Dir: filepath.Join(t.TempDir(), "cache")},
	}
	svc := services.New(cfg, log)

	app := fiber.New()
	SetupRoutes(app, svc)
	return app
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestSnapshotEndpoint(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/snapshot", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var snap models.IndexSnapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Equal(t, 1, snap.Totals.Sessions)
	assert.Equal(t, 1, snap.Totals.Messages)
	assert.Equal(t, 1, snap.Totals.ToolCalls)
}

func TestSessionsEndpoint(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/sessions", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Sessions []models.SessionSummary `json:"sessions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Sessions, 1)
	assert.Equal(t, "abc", body.Sessions[0].ID)
}

func TestTimelineEndpoint(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/sessions/abc/timeline", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body models.SessionTimelineResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "abc", body.Summary.ID)
	assert.Len(t, body.Events, 2)
}

func TestTimelineEndpointUnknownSession(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/sessions/ghost/timeline", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, "unknown sessions are responses, not failures")

	var body models.SessionTimelineResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 1, body.Summary.ErrorCount)
	require.Len(t, body.Events, 1)
	assert.Equal(t, models.EventError, body.Events[0].Kind)
}

func TestReindexEndpoint(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("POST", "/api/v1/reindex", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Totals models.Totals `json:"totals"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 1, body.Totals.Sessions)
}

func TestStatsEndpoint(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/stats", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Totals models.Totals  `json:"totals"`
		Tools  map[string]int `json:"tools"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 1, body.Tools["shell"])
}
