package file

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/dlsl-isg/reaction-ring/internal/model"
)

type StoreSuite struct {
	suite.Suite
	dir     string
	storage *Store
	ctx     context.Context
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.dir = s.T().TempDir()
	s.storage = s.open()
	s.ctx = context.Background()
}

func (s *StoreSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
}

// open creates a store over the shared test directory with a short poll
// interval so convergence does not depend on filesystem notifications
func (s *StoreSuite) open() *Store {
	store, err := New(Config{Dir: s.dir, PollInterval: 20 * time.Millisecond})
	s.Require().NoError(err)
	return store
}

func (s *StoreSuite) TestWriteAndGetPlayer() {
	player := model.Player{
		ID:         "2021001",
		Name:       "Juan Dela Cruz",
		Score:      5,
		Attempts:   1,
		LastPlayed: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}

	err := s.storage.WritePlayer(s.ctx, player)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetPlayer(s.ctx, "2021001")
	s.Require().NoError(err)
	s.Equal(player.Name, retrieved.Name)
	s.Equal(player.Score, retrieved.Score)
	s.True(player.LastPlayed.Equal(retrieved.LastPlayed))
}

func (s *StoreSuite) TestGetPlayerNotFound() {
	_, err := s.storage.GetPlayer(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StoreSuite) TestReadRosterEmptyWithoutFile() {
	roster, err := s.storage.ReadRoster(s.ctx)
	s.Require().NoError(err)
	s.Empty(roster)
}

func (s *StoreSuite) TestDeletePlayer() {
	err := s.storage.WritePlayer(s.ctx, model.Player{ID: "a"})
	s.Require().NoError(err)

	err = s.storage.DeletePlayer(s.ctx, "a")
	s.Require().NoError(err)

	_, err = s.storage.GetPlayer(s.ctx, "a")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StoreSuite) TestSessionDefaultsToInactive() {
	session, err := s.storage.ReadSession(s.ctx)
	s.Require().NoError(err)
	s.True(session.Idle())
}

func (s *StoreSuite) TestWriteAndReadSession() {
	session := model.Session{PlayerID: "a", Name: "A", Status: model.StatusActive}

	err := s.storage.WriteSession(s.ctx, session)
	s.Require().NoError(err)

	retrieved, err := s.storage.ReadSession(s.ctx)
	s.Require().NoError(err)
	s.Equal(session, retrieved)
}

func (s *StoreSuite) TestStatePersistsAcrossReopen() {
	err := s.storage.WritePlayer(s.ctx, model.Player{ID: "a", Score: 3})
	s.Require().NoError(err)
	s.Require().NoError(s.storage.Close())

	s.storage = s.open()
	player, err := s.storage.GetPlayer(s.ctx, "a")
	s.Require().NoError(err)
	s.Equal(3, player.Score)
}

func (s *StoreSuite) TestRosterOrderSurvivesReopen() {
	s.Require().NoError(s.storage.WritePlayer(s.ctx, model.Player{ID: "b", Score: 5}))
	s.Require().NoError(s.storage.WritePlayer(s.ctx, model.Player{ID: "a", Score: 5}))
	s.Require().NoError(s.storage.WritePlayer(s.ctx, model.Player{ID: "b", Score: 6}))
	s.Require().NoError(s.storage.Close())

	// Arrival order is persisted, so leaderboard tie-breaks are stable
	// across a restart and an update does not move a player
	s.storage = s.open()
	roster, err := s.storage.ReadRoster(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(roster, 2)
	s.Equal(model.PlayerID("b"), roster[0].ID)
	s.Equal(6, roster[0].Score)
	s.Equal(model.PlayerID("a"), roster[1].ID)
}

func (s *StoreSuite) TestLocalWritesNotifySubscribers() {
	var mu sync.Mutex
	var kinds []model.ChangeKind
	unsubscribe := s.storage.Subscribe(func(c model.RosterChange) {
		mu.Lock()
		defer mu.Unlock()
		kinds = append(kinds, c.Kind)
	}, nil)
	defer unsubscribe()

	err := s.storage.WritePlayer(s.ctx, model.Player{ID: "a"})
	s.Require().NoError(err)
	err = s.storage.WritePlayer(s.ctx, model.Player{ID: "a", Score: 1})
	s.Require().NoError(err)
	err = s.storage.DeletePlayer(s.ctx, "a")
	s.Require().NoError(err)

	mu.Lock()
	defer mu.Unlock()
	s.Equal([]model.ChangeKind{model.ChangeInsert, model.ChangeUpdate, model.ChangeDelete}, kinds)
}

func (s *StoreSuite) TestChangesPropagateBetweenStores() {
	other := s.open()
	defer func() { _ = other.Close() }()

	var mu sync.Mutex
	var seen []model.RosterChange
	unsubscribe := other.Subscribe(func(c model.RosterChange) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, c)
	}, nil)
	defer unsubscribe()

	err := s.storage.WritePlayer(s.ctx, model.Player{ID: "a", Score: 4})
	s.Require().NoError(err)

	s.Require().Eventually(func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 1
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	s.Equal(model.ChangeInsert, seen[0].Kind)
	s.Equal(4, seen[0].Player.Score)
}

func (s *StoreSuite) TestSessionPropagatesBetweenStores() {
	other := s.open()
	defer func() { _ = other.Close() }()

	var mu sync.Mutex
	var seen []model.SessionChange
	unsubscribe := other.Subscribe(nil, func(c model.SessionChange) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, c)
	})
	defer unsubscribe()

	err := s.storage.WriteSession(s.ctx, model.Session{PlayerID: "a", Status: model.StatusActive})
	s.Require().NoError(err)

	s.Require().Eventually(func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func (s *StoreSuite) TestDuplicateSyncTriggersAreHarmless() {
	err := s.storage.WritePlayer(s.ctx, model.Player{ID: "a"})
	s.Require().NoError(err)

	var mu sync.Mutex
	count := 0
	unsubscribe := s.storage.Subscribe(func(model.RosterChange) {
		mu.Lock()
		defer mu.Unlock()
		count++
	}, nil)
	defer unsubscribe()

	// The watcher and the poll loop both re-read the unchanged files;
	// neither produces an event
	s.storage.sync()
	s.storage.sync()
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	s.Zero(count)
}
