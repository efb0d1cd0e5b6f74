package redis

import (
	"fmt"

	"github.com/dlsl-isg/reaction-ring/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "ring"

// playerKey returns the Redis key for a roster record
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// rosterIndexKey returns the Redis key for the SET of known player IDs
func rosterIndexKey() string {
	return fmt.Sprintf("%s:idx:players", keyPrefix)
}

// sessionKey returns the Redis key for the singleton session record
func sessionKey() string {
	return fmt.Sprintf("%s:session", keyPrefix)
}

// rosterFeedChannel is the pub/sub channel carrying roster change events
func rosterFeedChannel() string {
	return fmt.Sprintf("%s:feed:roster", keyPrefix)
}

// sessionFeedChannel is the pub/sub channel carrying session change events
func sessionFeedChannel() string {
	return fmt.Sprintf("%s:feed:session", keyPrefix)
}
