package scoring

import (
	"time"

	"github.com/dlsl-isg/reaction-ring/internal/model"
)

// DefaultMaxCatch is the number of sticks thrown per attempt in the
// deployed game configuration
const DefaultMaxCatch = 6

// Engine converts a raw per-attempt catch count into an updated cumulative
// score and attempt count
type Engine struct {
	maxCatch int
}

// New creates an Engine for a game where maxCatch sticks are thrown per
// attempt. Non-positive values fall back to DefaultMaxCatch.
func New(maxCatch int) *Engine {
	if maxCatch <= 0 {
		maxCatch = DefaultMaxCatch
	}
	return &Engine{maxCatch: maxCatch}
}

// MaxCatch returns the per-attempt catch ceiling
func (e *Engine) MaxCatch() int {
	return e.maxCatch
}

// Apply returns the player with one scoring event applied. The first attempt
// only adds the catches; every later attempt also subtracts that attempt's
// misses, i.e. the delta is 2*caught - maxCatch. A caught value outside
// [0, maxCatch] returns ErrCatchOutOfRange and the player unchanged.
func (e *Engine) Apply(player model.Player, caught int, now time.Time) (model.Player, error) {
	if caught < 0 || caught > e.maxCatch {
		return player, model.ErrCatchOutOfRange
	}

	if player.Attempts > 0 {
		missed := e.maxCatch - caught
		player.Score = player.Score - missed + caught
	} else {
		player.Score += caught
	}
	player.Attempts++
	player.LastPlayed = now

	return player, nil
}
