package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dlsl-isg/reaction-ring/internal/api/response"
	"github.com/dlsl-isg/reaction-ring/internal/model"
	"github.com/dlsl-isg/reaction-ring/internal/services/roster"
)

// LeaderboardHandler serves the read-only roster projections
type LeaderboardHandler struct {
	cache *roster.Cache
	size  int
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(cache *roster.Cache, size int) *LeaderboardHandler {
	if size <= 0 {
		size = roster.DefaultLeaderboardSize
	}
	return &LeaderboardHandler{cache: cache, size: size}
}

// Leaderboard handles GET /api/v1/leaderboard
func (h *LeaderboardHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.LeaderboardFromModel(h.cache.Top(h.size)))
}

// Roster handles GET /api/v1/roster
func (h *LeaderboardHandler) Roster(w http.ResponseWriter, r *http.Request) {
	players := h.cache.Players()
	out := make([]response.Player, len(players))
	for i, p := range players {
		out[i] = response.PlayerFromModel(p)
	}
	response.JSON(w, http.StatusOK, out)
}

// Player handles GET /api/v1/roster/{id}
func (h *LeaderboardHandler) Player(w http.ResponseWriter, r *http.Request) {
	id := model.PlayerID(mux.Vars(r)["id"])

	player, ok := h.cache.Player(id)
	if !ok {
		WriteError(w, model.ErrPlayerNotFound)
		return
	}
	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}
