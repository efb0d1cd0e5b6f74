package file

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dlsl-isg/reaction-ring/internal/model"
	"github.com/dlsl-isg/reaction-ring/internal/storage"
)

const (
	rosterFile  = "roster.json"
	sessionFile = "session.json"
)

// Config holds file store settings
type Config struct {
	// Dir is the shared directory holding roster.json and session.json
	Dir string

	// PollInterval is how often the store re-reads the files as a backstop
	// for missed filesystem notifications
	PollInterval time.Duration
}

// DefaultConfig returns sensible defaults for the file store
func DefaultConfig() Config {
	return Config{
		Dir:          "data",
		PollInterval: time.Second,
	}
}

// Store is a local-shared implementation of the shared state store for
// single-machine, multi-process setups. State lives in two JSON files in a
// shared directory; change detection is fed by two independent producers, a
// filesystem watch and a fixed-interval poll, both funnelled through the
// same idempotent sync step so duplicate or reordered triggers are harmless.
type Store struct {
	cfg     Config
	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup

	// syncMu serializes sync and protects the last-observed snapshot
	syncMu      sync.Mutex
	lastRoster  map[model.PlayerID]model.Player
	lastSession model.Session

	subMu  sync.Mutex
	nextID int
	subs   map[int]subscriber
}

type subscriber struct {
	onRoster  storage.RosterFunc
	onSession storage.SessionFunc
}

// New creates a file store, baselining on the current file contents
func New(cfg Config) (*Store, error) {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(cfg.Dir); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	s := &Store{
		cfg:     cfg,
		watcher: watcher,
		done:    make(chan struct{}),
		subs:    make(map[int]subscriber),
	}

	// Baseline so subscribers only see changes made after construction
	roster, _ := s.loadRoster()
	session, _ := s.loadSession()
	s.lastRoster = indexByID(roster)
	s.lastSession = session

	s.wg.Add(1)
	go s.watch()

	return s, nil
}

// Ensure Store implements the interface
var _ storage.Store = (*Store)(nil)

// Close stops the watcher and poll loop
func (s *Store) Close() error {
	close(s.done)
	err := s.watcher.Close()
	s.wg.Wait()
	return err
}

// Roster operations

// ReadRoster returns players in the order the file holds them, which is
// arrival order. Leaderboard ties stay stable across a process restart
// because the order is persisted, not reconstructed.
func (s *Store) ReadRoster(ctx context.Context) ([]model.Player, error) {
	return s.loadRoster()
}

func (s *Store) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	roster, err := s.loadRoster()
	if err != nil {
		return nil, err
	}
	for _, player := range roster {
		if player.ID == id {
			return &player, nil
		}
	}
	return nil, model.ErrPlayerNotFound
}

func (s *Store) WritePlayer(ctx context.Context, player model.Player) error {
	return s.UpsertPlayers(ctx, []model.Player{player})
}

func (s *Store) UpsertPlayers(ctx context.Context, players []model.Player) error {
	s.syncMu.Lock()
	roster, err := s.loadRoster()
	if err != nil {
		s.syncMu.Unlock()
		return err
	}

	// Existing players are updated in place; new players append, so the
	// persisted order stays arrival order
	pos := make(map[model.PlayerID]int, len(roster))
	for i, p := range roster {
		pos[p.ID] = i
	}
	for _, p := range players {
		if i, ok := pos[p.ID]; ok {
			roster[i] = p
		} else {
			pos[p.ID] = len(roster)
			roster = append(roster, p)
		}
	}

	if err := s.saveRoster(roster); err != nil {
		s.syncMu.Unlock()
		return err
	}
	changes := s.diffRosterLocked(indexByID(roster))
	s.syncMu.Unlock()

	// Notify same-process subscribers directly; the watcher and poll loop
	// cover other processes
	s.dispatchRoster(changes)
	return nil
}

func (s *Store) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	s.syncMu.Lock()
	roster, err := s.loadRoster()
	if err != nil {
		s.syncMu.Unlock()
		return err
	}
	kept := roster[:0]
	for _, p := range roster {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(roster) {
		s.syncMu.Unlock()
		return nil
	}
	if err := s.saveRoster(kept); err != nil {
		s.syncMu.Unlock()
		return err
	}
	changes := s.diffRosterLocked(indexByID(kept))
	s.syncMu.Unlock()

	s.dispatchRoster(changes)
	return nil
}

// Session operations

func (s *Store) ReadSession(ctx context.Context) (model.Session, error) {
	return s.loadSession()
}

func (s *Store) WriteSession(ctx context.Context, session model.Session) error {
	s.syncMu.Lock()
	data, err := json.Marshal(session)
	if err != nil {
		s.syncMu.Unlock()
		return err
	}
	if err := s.writeAtomic(sessionFile, data); err != nil {
		s.syncMu.Unlock()
		return err
	}
	changed := session != s.lastSession
	s.lastSession = session
	s.syncMu.Unlock()

	if changed {
		s.dispatchSession(model.SessionChange{Kind: model.ChangeUpdate, Session: session})
	}
	return nil
}

// Change feed

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

// watch runs the two change producers: filesystem notifications and the
// poll ticker. Both call sync, which is idempotent.
func (s *Store) watch() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			name := filepath.Base(event.Name)
			if name == rosterFile || name == sessionFile {
				s.sync()
			}
		case _, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			// Watcher errors are non-fatal; polling still converges
		case <-ticker.C:
			s.sync()
		case <-s.done:
			return
		}
	}
}

// sync re-reads both files, diffs against the last-observed snapshot and
// emits the resulting change events
func (s *Store) sync() {
	s.syncMu.Lock()
	var rosterChanges []model.RosterChange
	if roster, err := s.loadRoster(); err == nil {
		rosterChanges = s.diffRosterLocked(indexByID(roster))
	}
	var sessionChange *model.SessionChange
	if session, err := s.loadSession(); err == nil && session != s.lastSession {
		s.lastSession = session
		sessionChange = &model.SessionChange{Kind: model.ChangeUpdate, Session: session}
	}
	s.syncMu.Unlock()

	s.dispatchRoster(rosterChanges)
	if sessionChange != nil {
		s.dispatchSession(*sessionChange)
	}
}

// diffRosterLocked computes changes relative to the last-observed roster
// and replaces the snapshot. Caller must hold syncMu.
func (s *Store) diffRosterLocked(byID map[model.PlayerID]model.Player) []model.RosterChange {
	var changes []model.RosterChange

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)

	for _, raw := range ids {
		id := model.PlayerID(raw)
		player := byID[id]
		prev, ok := s.lastRoster[id]
		if !ok {
			changes = append(changes, model.RosterChange{Kind: model.ChangeInsert, Player: player})
		} else if prev != player {
			changes = append(changes, model.RosterChange{Kind: model.ChangeUpdate, Player: player})
		}
	}
	for id := range s.lastRoster {
		if _, ok := byID[id]; !ok {
			changes = append(changes, model.RosterChange{
				Kind:   model.ChangeDelete,
				Player: model.Player{ID: id},
			})
		}
	}

	s.lastRoster = byID
	return changes
}

func (s *Store) dispatchRoster(changes []model.RosterChange) {
	if len(changes) == 0 {
		return
	}
	s.subMu.Lock()
	subs := make([]subscriber, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.subMu.Unlock()

	for _, change := range changes {
		for _, sub := range subs {
			if sub.onRoster != nil {
				sub.onRoster(change)
			}
		}
	}
}

func (s *Store) dispatchSession(change model.SessionChange) {
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

// File helpers

// loadRoster reads the roster file, a JSON array in arrival order
func (s *Store) loadRoster() ([]model.Player, error) {
	data, err := os.ReadFile(filepath.Join(s.cfg.Dir, rosterFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var roster []model.Player
	if err := json.Unmarshal(data, &roster); err != nil {
		return nil, err
	}
	return roster, nil
}

func (s *Store) saveRoster(roster []model.Player) error {
	if roster == nil {
		roster = []model.Player{}
	}
	data, err := json.Marshal(roster)
	if err != nil {
		return err
	}
	return s.writeAtomic(rosterFile, data)
}

func indexByID(roster []model.Player) map[model.PlayerID]model.Player {
	byID := make(map[model.PlayerID]model.Player, len(roster))
	for _, p := range roster {
		byID[p.ID] = p
	}
	return byID
}

func (s *Store) loadSession() (model.Session, error) {
	data, err := os.ReadFile(filepath.Join(s.cfg.Dir, sessionFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.InactiveSession(), nil
		}
		return model.Session{}, err
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return model.Session{}, err
	}
	return session, nil
}

// writeAtomic writes via a temp file and rename so readers in other
// processes never observe a partial file
func (s *Store) writeAtomic(name string, data []byte) error {
	tmp, err := os.CreateTemp(s.cfg.Dir, name+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(s.cfg.Dir, name))
}
