package roster

import (
	"context"
	"fmt"
	"testing"

	"github.com/dlsl-isg/reaction-ring/internal/model"
	"github.com/dlsl-isg/reaction-ring/internal/storage/memory"
	"github.com/dlsl-isg/reaction-ring/internal/testutil"
	"github.com/stretchr/testify/suite"
)

type CacheSuite struct {
	suite.Suite
	storage *memory.Store
	cache   *Cache
	changes int
	ctx     context.Context
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheSuite))
}

func (s *CacheSuite) SetupTest() {
	s.storage = memory.New()
	s.changes = 0
	s.cache = NewCache(s.storage, testutil.NopLogger(), func() { s.changes++ })
	s.ctx = context.Background()
}

func (s *CacheSuite) TearDownTest() {
	s.cache.Stop()
}

func (s *CacheSuite) write(id string, score int) {
	err := s.storage.WritePlayer(s.ctx, model.Player{ID: model.PlayerID(id), Name: id, Score: score})
	s.Require().NoError(err)
}

func (s *CacheSuite) ids(players []model.Player) []string {
	out := make([]string, 0, len(players))
	for _, p := range players {
		out = append(out, string(p.ID))
	}
	return out
}

func (s *CacheSuite) TestStartLoadsExistingState() {
	s.write("a", 3)
	s.write("b", 5)
	err := s.storage.WriteSession(s.ctx, model.Session{PlayerID: "b", Name: "b", Status: model.StatusActive})
	s.Require().NoError(err)

	s.cache.Start(s.ctx)

	s.Equal([]string{"a", "b"}, s.ids(s.cache.Players()))
	s.Equal(model.StatusActive, s.cache.Session().Status)
	s.Positive(s.changes)
}

func (s *CacheSuite) TestTracksWritesThroughTheFeed() {
	s.cache.Start(s.ctx)

	s.write("a", 3)
	player, ok := s.cache.Player("a")
	s.Require().True(ok)
	s.Equal(3, player.Score)

	s.write("a", 7)
	player, _ = s.cache.Player("a")
	s.Equal(7, player.Score)

	err := s.storage.DeletePlayer(s.ctx, "a")
	s.Require().NoError(err)
	_, ok = s.cache.Player("a")
	s.False(ok)
}

func (s *CacheSuite) TestSessionDeleteMeansInactive() {
	s.cache.Start(s.ctx)

	s.cache.ApplySession(model.SessionChange{Kind: model.ChangeUpdate, Session: model.Session{PlayerID: "a", Status: model.StatusActive}})
	s.Equal(model.StatusActive, s.cache.Session().Status)

	s.cache.ApplySession(model.SessionChange{Kind: model.ChangeDelete})
	s.True(s.cache.Session().Idle())
}

func (s *CacheSuite) TestReplayedChangeIsIdempotent() {
	s.cache.Start(s.ctx)

	change := model.RosterChange{Kind: model.ChangeInsert, Player: model.Player{ID: "a", Score: 3}}
	s.cache.ApplyRoster(change)
	s.cache.ApplyRoster(change)

	s.Len(s.cache.Players(), 1)
}

func (s *CacheSuite) TestDeleteForUnknownPlayerIsIgnored() {
	s.cache.Start(s.ctx)

	s.cache.ApplyRoster(model.RosterChange{Kind: model.ChangeDelete, Player: model.Player{ID: "ghost"}})
	s.Empty(s.cache.Players())
}

func (s *CacheSuite) TestTopOrdersByScoreDescending() {
	s.cache.Start(s.ctx)
	s.write("low", 2)
	s.write("high", 9)
	s.write("mid", 5)

	s.Equal([]string{"high", "mid", "low"}, s.ids(s.cache.Top(10)))
}

func (s *CacheSuite) TestTopBreaksTiesByArrivalOrder() {
	s.cache.Start(s.ctx)
	s.write("first", 5)
	s.write("second", 5)
	s.write("third", 7)

	s.Equal([]string{"third", "first", "second"}, s.ids(s.cache.Top(10)))

	// A later score update does not change the arrival position of a tie
	s.write("second", 7)
	s.Equal([]string{"second", "third", "first"}, s.ids(s.cache.Top(10)))
}

func (s *CacheSuite) TestTopTruncatesToRequestedSize() {
	s.cache.Start(s.ctx)
	for i := 0; i < 15; i++ {
		s.write(fmt.Sprintf("p%02d", i), i)
	}

	top := s.cache.Top(10)
	s.Len(top, 10)
	s.Equal(14, top[0].Score)
	s.Equal(5, top[9].Score)
}

func (s *CacheSuite) TestStopDetachesFromTheFeed() {
	s.cache.Start(s.ctx)
	s.cache.Stop()

	s.write("a", 3)
	_, ok := s.cache.Player("a")
	s.False(ok)
}
