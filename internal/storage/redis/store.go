package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dlsl-isg/reaction-ring/internal/model"
	"github.com/dlsl-isg/reaction-ring/internal/storage"
)

// Store is a Redis-backed implementation of the shared state store. Every
// write is an upsert against a Redis key, and a pub/sub feed delivers
// insert/update/delete events to all subscribers across processes.
type Store struct {
	client *redis.Client
	cfg    Config

	subMu  sync.Mutex
	nextID int
	subs   map[int]subscriber

	pubsub *redis.PubSub
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type subscriber struct {
	onRoster  storage.RosterFunc
	onSession storage.SessionFunc
}

// New creates a new Redis store instance and starts the change-feed listener
func New(cfg Config) (*Store, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis store with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Store {
	s := &Store{
		client: client,
		cfg:    cfg,
		subs:   make(map[int]subscriber),
	}

	feedCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.pubsub = client.Subscribe(feedCtx, rosterFeedChannel(), sessionFeedChannel())

	s.wg.Add(1)
	go s.listenFeed()

	return s
}

// Close stops the change-feed listener and closes the Redis connection
func (s *Store) Close() error {
	s.cancel()
	_ = s.pubsub.Close()
	s.wg.Wait()
	return s.client.Close()
}

// Ensure Store implements the interface
var _ storage.Store = (*Store)(nil)

// Roster operations

func (s *Store) ReadRoster(ctx context.Context) ([]model.Player, error) {
	ids, err := s.client.SMembers(ctx, rosterIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []model.Player{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = playerKey(model.PlayerID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	roster := make([]model.Player, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue // Index entry without a record
		}
		var player model.Player
		if err := json.Unmarshal([]byte(val.(string)), &player); err != nil {
			continue // Skip invalid data
		}
		roster = append(roster, player)
	}

	return roster, nil
}

func (s *Store) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	data, err := s.client.Get(ctx, playerKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var player model.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Store) WritePlayer(ctx context.Context, player model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	// Use pipeline for atomic save + index update; the SAdd result tells us
	// whether this is an insert or an update for the feed event
	pipe := s.client.Pipeline()
	pipe.Set(ctx, playerKey(player.ID), data, 0)
	added := pipe.SAdd(ctx, rosterIndexKey(), string(player.ID))
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	kind := model.ChangeUpdate
	if added.Val() > 0 {
		kind = model.ChangeInsert
	}
	return s.publishRoster(ctx, model.RosterChange{Kind: kind, Player: player})
}

func (s *Store) UpsertPlayers(ctx context.Context, players []model.Player) error {
	if len(players) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()
	added := make([]*redis.IntCmd, len(players))
	for i, player := range players {
		data, err := json.Marshal(player)
		if err != nil {
			return err
		}
		pipe.Set(ctx, playerKey(player.ID), data, 0)
		added[i] = pipe.SAdd(ctx, rosterIndexKey(), string(player.ID))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	for i, player := range players {
		kind := model.ChangeUpdate
		if added[i].Val() > 0 {
			kind = model.ChangeInsert
		}
		if err := s.publishRoster(ctx, model.RosterChange{Kind: kind, Player: player}); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, playerKey(id))
	removed := pipe.SRem(ctx, rosterIndexKey(), string(id))
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	if removed.Val() == 0 {
		return nil
	}
	return s.publishRoster(ctx, model.RosterChange{
		Kind:   model.ChangeDelete,
		Player: model.Player{ID: id},
	})
}

// Session operations

func (s *Store) ReadSession(ctx context.Context) (model.Session, error) {
	data, err := s.client.Get(ctx, sessionKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// No record yet means no one is playing
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

func (s *Store) WriteSession(ctx context.Context, session model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, sessionKey(), data, 0).Err(); err != nil {
		return err
	}

	change := model.SessionChange{Kind: model.ChangeUpdate, Session: session}
	payload, err := json.Marshal(change)
	if err != nil {
		return err
	}
	return s.client.Publish(ctx, sessionFeedChannel(), payload).Err()
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

func (s *Store) publishRoster(ctx context.Context, change model.RosterChange) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return err
	}
	return s.client.Publish(ctx, rosterFeedChannel(), payload).Err()
}

// listenFeed dispatches pub/sub feed messages to local subscribers
func (s *Store) listenFeed() {
	defer s.wg.Done()

	for msg := range s.pubsub.Channel() {
		switch msg.Channel {
		case rosterFeedChannel():
			var change model.RosterChange
			if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
				continue // Skip invalid data
			}
			s.eachSubscriber(func(sub subscriber) {
				if sub.onRoster != nil {
					sub.onRoster(change)
				}
			})
		case sessionFeedChannel():
			var change model.SessionChange
			if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
				continue
			}
			s.eachSubscriber(func(sub subscriber) {
				if sub.onSession != nil {
					sub.onSession(change)
				}
			})
		}
	}
}

func (s *Store) eachSubscriber(f func(subscriber)) {
	s.subMu.Lock()
	subs := make([]subscriber, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.subMu.Unlock()

	for _, sub := range subs {
		f(sub)
	}
}
