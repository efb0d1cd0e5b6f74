package sse

import (
	"encoding/json"
	"log/slog"

	"github.com/dlsl-isg/reaction-ring/internal/api/response"
	"github.com/dlsl-isg/reaction-ring/internal/model"
)

// Broadcaster pushes state snapshots to the displays as named SSE events.
// Both screens get full snapshots rather than deltas; the payloads are
// small and replacing the whole view keeps late joiners correct for free.
type Broadcaster struct {
	hub    *Hub
	logger *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hub *Hub, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hub:    hub,
		logger: logger.With(slog.String("component", "sse-broadcaster")),
	}
}

// BroadcastLeaderboard pushes the ranked projection as a "leaderboard" event
func (b *Broadcaster) BroadcastLeaderboard(ranked []model.Player) {
	data, err := json.Marshal(response.LeaderboardFromModel(ranked))
	if err != nil {
		b.logger.Error("sse failed to encode leaderboard", slog.Any("error", err))
		return
	}
	b.hub.BroadcastEvent("leaderboard", string(data))
}

// BroadcastSession pushes the session record as a "session" event
func (b *Broadcaster) BroadcastSession(session model.Session) {
	data, err := json.Marshal(response.SessionFromModel(session))
	if err != nil {
		b.logger.Error("sse failed to encode session", slog.Any("error", err))
		return
	}
	b.hub.BroadcastEvent("session", string(data))
}

// BroadcastScanRejected tells the admin display a scan failed, with the
// rejection reason
func (b *Broadcaster) BroadcastScanRejected(err error) {
	payload, encErr := json.Marshal(map[string]string{"error": err.Error()})
	if encErr != nil {
		return
	}
	b.hub.BroadcastEvent("scan-rejected", string(payload))
}
