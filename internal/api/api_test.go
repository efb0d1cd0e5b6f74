package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dlsl-isg/reaction-ring/internal/api"
	"github.com/dlsl-isg/reaction-ring/internal/api/response"
	"github.com/dlsl-isg/reaction-ring/internal/factory"
	"github.com/dlsl-isg/reaction-ring/internal/model"
	"github.com/dlsl-isg/reaction-ring/internal/testutil"
)

// testServer wires the router over a fully in-memory application
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	app := factory.NewTestApp()
	app.Start(context.Background())
	t.Cleanup(func() { _ = app.Close() })

	router := api.NewRouter(api.RouterConfig{
		Logger:            testutil.NopLogger(),
		Cache:             app.Cache,
		SessionController: app.SessionController,
		ScanBuffer:        app.ScanBuffer,
		Importer:          app.Importer,
		Hub:               app.Hub,
		Clock:             app.Clock,
	})

	return &testServer{handler: router, app: app}
}

func (ts *testServer) request(method, path string, body any) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

// startSession scans a registered badge and waits for the session to open
func (ts *testServer) startSession(t *testing.T, id, name string) {
	t.Helper()
	ts.app.FakeResolver.Register(model.Identity{
		ID:       model.PlayerID(id),
		Email:    name + "@dlsl.edu.ph",
		Name:     name,
		Eligible: true,
	})

	rr := ts.request(http.MethodPost, "/api/v1/scan", map[string]string{"candidate": id})
	require.Equal(t, http.StatusAccepted, rr.Code)

	require.Eventually(t, func() bool {
		return ts.app.Cache.Session().Status == model.StatusActive
	}, time.Second, 5*time.Millisecond)
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestLeaderboardEmptyByDefault(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/leaderboard", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.Leaderboard
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Empty(t, resp.Entries)
}

func TestSessionDefaultsToInactive(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/session", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.Session
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "inactive", resp.Status)
}

func TestScanStartsSession(t *testing.T) {
	ts := newTestServer(t)
	ts.startSession(t, "2021001", "Juan")

	rr := ts.request(http.MethodGet, "/api/v1/session", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.Session
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "2021001", resp.PlayerID)
	assert.Equal(t, "Juan", resp.Name)
	assert.Equal(t, "active", resp.Status)
}

func TestScanRequiresCandidate(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/scan", map[string]string{"candidate": "  "})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "INVALID_REQUEST")
}

func TestScoreRoundTrip(t *testing.T) {
	ts := newTestServer(t)
	ts.startSession(t, "2021001", "Juan")

	rr := ts.request(http.MethodPost, "/api/v1/session/scoring", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/session/score", map[string]int{"caught": 4})
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/leaderboard", nil)
	var board response.Leaderboard
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &board))
	require.Len(t, board.Entries, 1)
	assert.Equal(t, 4, board.Entries[0].Score)
	assert.Equal(t, 1, board.Entries[0].Attempts)

	rr = ts.request(http.MethodGet, "/api/v1/session", nil)
	var session response.Session
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &session))
	assert.Equal(t, "inactive", session.Status)
}

func TestScoreOutOfRangeRejected(t *testing.T) {
	ts := newTestServer(t)
	ts.startSession(t, "2021001", "Juan")

	rr := ts.request(http.MethodPost, "/api/v1/session/score", map[string]int{"caught": 7})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "CATCH_OUT_OF_RANGE")
}

func TestResetEndsSession(t *testing.T) {
	ts := newTestServer(t)
	ts.startSession(t, "2021001", "Juan")

	rr := ts.request(http.MethodPost, "/api/v1/session/reset", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/session", nil)
	var session response.Session
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &session))
	assert.Equal(t, "inactive", session.Status)
}

func TestRosterLookup(t *testing.T) {
	ts := newTestServer(t)
	ts.startSession(t, "2021001", "Juan")

	rr := ts.request(http.MethodGet, "/api/v1/roster/2021001", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	var player response.Player
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &player))
	assert.Equal(t, "Juan", player.Name)

	rr = ts.request(http.MethodGet, "/api/v1/roster/nope", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "PLAYER_NOT_FOUND")
}

func TestImportExportRoundTrip(t *testing.T) {
	ts := newTestServer(t)

	importBody := json.RawMessage(`{"players": {
		"a": {"name": "Low", "score": 2},
		"b": {"name": "High", "score": 9}
	}}`)
	rr := ts.request(http.MethodPost, "/api/v1/import", importBody)
	assert.Equal(t, http.StatusOK, rr.Code)

	var result response.ImportResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.Equal(t, 2, result.Imported)

	rr = ts.request(http.MethodGet, "/api/v1/export", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, rr.Body.String(), `"High"`)
}

func TestImportMalformedRejected(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/import", json.RawMessage(`{"players": {"a": 5}}`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "IMPORT_MALFORMED")
}

func TestEventsStreamsSnapshots(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	req = req.WithContext(ctx)

	rr := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		ts.handler.ServeHTTP(rr, req)
		close(done)
	}()

	// Wait for the display to register, then trigger a state change
	require.Eventually(t, func() bool {
		return ts.app.Hub.ClientCount() == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, ts.app.Storage.WritePlayer(context.Background(),
		model.Player{ID: "a", Name: "Juan", Score: 3}))

	<-done
	body := rr.Body.String()
	assert.Contains(t, body, "event: connected")
	assert.Contains(t, body, "event: leaderboard")
	assert.Contains(t, body, `"Juan"`)
}
