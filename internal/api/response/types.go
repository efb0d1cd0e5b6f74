package response

import (
	"time"

	"github.com/dlsl-isg/reaction-ring/internal/model"
)

// Player represents a roster record in API responses
type Player struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Score      int       `json:"score"`
	Attempts   int       `json:"attempts"`
	LastPlayed time.Time `json:"last_played"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p model.Player) Player {
	return Player{
		ID:         string(p.ID),
		Name:       p.Name,
		Score:      p.Score,
		Attempts:   p.Attempts,
		LastPlayed: p.LastPlayed,
	}
}

// Leaderboard is the ranked public display projection
type Leaderboard struct {
	Entries []Player `json:"entries"`
}

// LeaderboardFromModel converts a ranked player slice
func LeaderboardFromModel(players []model.Player) Leaderboard {
	entries := make([]Player, len(players))
	for i, p := range players {
		entries[i] = PlayerFromModel(p)
	}
	return Leaderboard{Entries: entries}
}

// Session represents the singleton session record
type Session struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Status   string `json:"status"`
}

// SessionFromModel converts a model.Session
func SessionFromModel(s model.Session) Session {
	return Session{
		PlayerID: string(s.PlayerID),
		Name:     s.Name,
		Status:   string(s.Status),
	}
}

// ImportResult reports a completed or aborted bulk import
type ImportResult struct {
	Imported int `json:"imported"`
}
