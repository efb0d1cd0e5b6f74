package memory

import (
	"context"
	"sync"

	"github.com/dlsl-isg/reaction-ring/internal/model"
	"github.com/dlsl-isg/reaction-ring/internal/storage"
)

// Store is an in-process implementation of the shared state store. Change
// notifications are delivered synchronously to subscribers, which makes it
// the backend of choice for tests and single-process deployments.
type Store struct {
	mu      sync.RWMutex
	players map[model.PlayerID]model.Player
	order   []model.PlayerID // insertion order, kept for deterministic reads
	session model.Session

	subMu  sync.Mutex
	nextID int
	subs   map[int]subscriber
}

type subscriber struct {
	onRoster  storage.RosterFunc
	onSession storage.SessionFunc
}

// New creates a new in-memory store with an inactive session
func New() *Store {
	return &Store{
		players: make(map[model.PlayerID]model.Player),
		session: model.InactiveSession(),
		subs:    make(map[int]subscriber),
	}
}

// Ensure Store implements the interface
var _ storage.Store = (*Store)(nil)

func (s *Store) ReadRoster(ctx context.Context) ([]model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	roster := make([]model.Player, 0, len(s.order))
	for _, id := range s.order {
		roster = append(roster, s.players[id])
	}
	return roster, nil
}

func (s *Store) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return &player, nil
}

func (s *Store) WritePlayer(ctx context.Context, player model.Player) error {
	s.mu.Lock()
	kind := model.ChangeUpdate
	if _, ok := s.players[player.ID]; !ok {
		kind = model.ChangeInsert
		s.order = append(s.order, player.ID)
	}
	s.players[player.ID] = player
	s.mu.Unlock()

	s.notifyRoster(model.RosterChange{Kind: kind, Player: player})
	return nil
}

func (s *Store) UpsertPlayers(ctx context.Context, players []model.Player) error {
	for _, p := range players {
		if err := s.WritePlayer(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	s.mu.Lock()
	if _, ok := s.players[id]; !ok {
		s.mu.Unlock()
		return nil
	}
	delete(s.players, id)
	for i, pid := range s.order {
		if pid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.notifyRoster(model.RosterChange{Kind: model.ChangeDelete, Player: model.Player{ID: id}})
	return nil
}

func (s *Store) ReadSession(ctx context.Context) (model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session, nil
}

func (s *Store) WriteSession(ctx context.Context, session model.Session) error {
	s.mu.Lock()
	s.session = session
	s.mu.Unlock()

	s.notifySession(model.SessionChange{Kind: model.ChangeUpdate, Session: session})
	return nil
}

func (s *Store) Subscribe(onRoster storage.RosterFunc, onSession storage.SessionFunc) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = subscriber{onRoster: onRoster, onSession: onSession}

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) notifyRoster(change model.RosterChange) {
	s.subMu.Lock()
	subs := make([]subscriber, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.subMu.Unlock()

	for _, sub := range subs {
		if sub.onRoster != nil {
			sub.onRoster(change)
		}
	}
}

func (s *Store) notifySession(change model.SessionChange) {
	s.subMu.Lock()
	subs := make([]subscriber, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.subMu.Unlock()

	for _, sub := range subs {
		if sub.onSession != nil {
			sub.onSession(change)
		}
	}
}
