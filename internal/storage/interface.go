package storage

import (
	"context"

	"github.com/dlsl-isg/reaction-ring/internal/model"
)

// RosterFunc receives roster change-feed events
type RosterFunc func(model.RosterChange)

// SessionFunc receives session change-feed events
type SessionFunc func(model.SessionChange)

// Store is the shared state store observed by every view instance: the
// roster of players and the singleton session record, with point reads,
// point writes and a push change feed.
//
// Both records are independently eventually-consistent: a write to one is
// never ordered with respect to a write to the other, and callers must not
// assume atomic cross-record snapshots. Writes are last-write-wins at record
// granularity.
type Store interface {
	// Roster operations
	ReadRoster(ctx context.Context) ([]model.Player, error)
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	WritePlayer(ctx context.Context, player model.Player) error
	// UpsertPlayers writes a batch of players in one round trip.
	// Used by the bulk import path.
	UpsertPlayers(ctx context.Context, players []model.Player) error
	DeletePlayer(ctx context.Context, id model.PlayerID) error

	// Session operations
	ReadSession(ctx context.Context) (model.Session, error)
	WriteSession(ctx context.Context, session model.Session) error

	// Subscribe registers change-feed callbacks and returns an unsubscribe
	// function. Callbacks may be invoked from a backend-owned goroutine and
	// must not block.
	Subscribe(onRoster RosterFunc, onSession SessionFunc) (unsubscribe func())

	Close() error
}
