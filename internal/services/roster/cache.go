package roster

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/dlsl-isg/reaction-ring/internal/model"
	"github.com/dlsl-isg/reaction-ring/internal/storage"
)

// DefaultLeaderboardSize is how many entries the public display shows
const DefaultLeaderboardSize = 10

// Cache is one view instance's continuously-refreshed copy of the shared
// state: the roster keyed by player ID plus the session record. It applies
// change-feed events idempotently, so replays and reordered deliveries from
// a polling producer are harmless, and it never writes through its copy;
// all mutation goes through the store.
//
// The roster and session are independent records; the cache deliberately
// tolerates observing a new score with the old session (or the reverse)
// until the second notification lands.
type Cache struct {
	storage storage.Store
	logger  *slog.Logger

	mu      sync.RWMutex
	players map[model.PlayerID]model.Player
	order   []model.PlayerID // arrival order, breaks score ties
	session model.Session

	onChange    func()
	unsubscribe func()
}

// NewCache creates a cache over the store. onChange (optional) fires after
// every applied update and is used to push re-renders to the views.
func NewCache(store storage.Store, logger *slog.Logger, onChange func()) *Cache {
	return &Cache{
		storage:  store,
		logger:   logger.With(slog.String("component", "roster-cache")),
		players:  make(map[model.PlayerID]model.Player),
		session:  model.InactiveSession(),
		onChange: onChange,
	}
}

// Start performs the initial read and subscribes to the change feed. A
// failed initial read is logged and the cache starts empty; the next
// notification or poll fills it in.
func (c *Cache) Start(ctx context.Context) {
	if roster, err := c.storage.ReadRoster(ctx); err != nil {
		c.logger.Error("initial roster read failed", slog.String("error", err.Error()))
	} else {
		c.mu.Lock()
		for _, player := range roster {
			c.upsertLocked(player)
		}
		c.mu.Unlock()
	}

	if session, err := c.storage.ReadSession(ctx); err != nil {
		c.logger.Error("initial session read failed", slog.String("error", err.Error()))
	} else {
		c.mu.Lock()
		c.session = session
		c.mu.Unlock()
	}

	c.unsubscribe = c.storage.Subscribe(c.ApplyRoster, c.ApplySession)
	c.notify()
}

// Stop detaches the cache from the change feed
func (c *Cache) Stop() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
}

// ApplyRoster merges one roster change-feed event into the cached copy
func (c *Cache) ApplyRoster(change model.RosterChange) {
	c.mu.Lock()
	switch change.Kind {
	case model.ChangeInsert, model.ChangeUpdate:
		c.upsertLocked(change.Player)
	case model.ChangeDelete:
		c.removeLocked(change.Player.ID)
	default:
		c.mu.Unlock()
		c.logger.Warn("unknown roster change kind", slog.String("kind", string(change.Kind)))
		return
	}
	c.mu.Unlock()
	c.notify()
}

// ApplySession replaces the cached session from one change-feed event. A
// delete of the singleton record means no one is playing.
func (c *Cache) ApplySession(change model.SessionChange) {
	c.mu.Lock()
	switch change.Kind {
	case model.ChangeInsert, model.ChangeUpdate:
		c.session = change.Session
	case model.ChangeDelete:
		c.session = model.InactiveSession()
	default:
		c.mu.Unlock()
		c.logger.Warn("unknown session change kind", slog.String("kind", string(change.Kind)))
		return
	}
	c.mu.Unlock()
	c.notify()
}

// Session returns the cached session record
func (c *Cache) Session() model.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// Player returns the cached record for the given ID, if known
func (c *Cache) Player(id model.PlayerID) (model.Player, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	player, ok := c.players[id]
	return player, ok
}

// Players returns all cached records in arrival order
func (c *Cache) Players() []model.Player {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Player, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.players[id])
	}
	return out
}

// Top returns the leaderboard projection: at most n players ordered by
// score descending, ties broken by arrival order (stable sort, no explicit
// tie-break field).
func (c *Cache) Top(n int) []model.Player {
	if n <= 0 {
		n = DefaultLeaderboardSize
	}

	ranked := c.Players()
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func (c *Cache) upsertLocked(player model.Player) {
	if _, ok := c.players[player.ID]; !ok {
		c.order = append(c.order, player.ID)
	}
	c.players[player.ID] = player
}

func (c *Cache) removeLocked(id model.PlayerID) {
	if _, ok := c.players[id]; !ok {
		return
	}
	delete(c.players, id)
	for i, pid := range c.order {
		if pid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *Cache) notify() {
	if c.onChange != nil {
		c.onChange()
	}
}
