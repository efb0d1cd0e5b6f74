package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dlsl-isg/reaction-ring/internal/api/handler"
	"github.com/dlsl-isg/reaction-ring/internal/api/middleware"
	"github.com/dlsl-isg/reaction-ring/internal/api/sse"
	"github.com/dlsl-isg/reaction-ring/internal/dependencies/clock"
	"github.com/dlsl-isg/reaction-ring/internal/services/roster"
	"github.com/dlsl-isg/reaction-ring/internal/services/scan"
	"github.com/dlsl-isg/reaction-ring/internal/services/session"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger            *slog.Logger
	Cache             *roster.Cache
	SessionController *session.Controller
	ScanBuffer        *scan.Buffer
	Importer          *roster.Importer
	Hub               *sse.Hub
	Clock             clock.Clock
	LeaderboardSize   int
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	leaderboardHandler := handler.NewLeaderboardHandler(cfg.Cache, cfg.LeaderboardSize)
	sessionHandler := handler.NewSessionHandler(cfg.SessionController, cfg.ScanBuffer)
	transferHandler := handler.NewTransferHandler(cfg.Importer, cfg.Cache, cfg.Clock)

	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Read-only projections for the displays
	api.HandleFunc("/leaderboard", leaderboardHandler.Leaderboard).Methods(http.MethodGet)
	api.HandleFunc("/roster", leaderboardHandler.Roster).Methods(http.MethodGet)
	api.HandleFunc("/roster/{id}", leaderboardHandler.Player).Methods(http.MethodGet)

	// Session state machine, driven by the admin display
	api.HandleFunc("/session", sessionHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/session/scoring", sessionHandler.BeginScoring).Methods(http.MethodPost)
	api.HandleFunc("/session/score", sessionHandler.Score).Methods(http.MethodPost)
	api.HandleFunc("/session/reset", sessionHandler.Reset).Methods(http.MethodPost)
	api.HandleFunc("/scan", sessionHandler.Scan).Methods(http.MethodPost)

	// Bulk roster transfer
	api.HandleFunc("/import", transferHandler.Import).Methods(http.MethodPost)
	api.HandleFunc("/export", transferHandler.Export).Methods(http.MethodGet)

	// Event stream for live display updates
	api.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		sse.ServeSSE(w, r, cfg.Hub)
	}).Methods(http.MethodGet)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
