package model

import "time"

// PlayerID uniquely identifies a player across the system.
// In the reference deployment this is the scanned institutional ID.
type PlayerID string

// Player is one roster record: a contestant and their cumulative state.
// The record is created implicitly on a player's first session start and
// updated on every accepted score entry.
type Player struct {
	ID         PlayerID  `json:"id"`
	Name       string    `json:"name"`
	Score      int       `json:"score"`
	Attempts   int       `json:"attempts"`
	LastPlayed time.Time `json:"last_played"`
}
